// Package autopas is the top-level facade a driver program builds and
// drives: it resolves a selector.Configuration into one concrete
// container via selector.Select, then exposes the engine's external
// operations (AddParticle, AddOrUpdateHaloParticle, UpdateContainer,
// Begin, GetRegionIterator, IteratePairwise) over it.
//
// Grounded on app.go/app_builder.go's fluent builder for
// assembly, and on the same file's single entry point driving a whole
// update cycle (App.Run stepping its ECS schedule is the
// same shape as AutoPas[P].IteratePairwise stepping one interaction).
package autopas

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/autopas-go/autopas/container"
	"github.com/autopas-go/autopas/container/directsum"
	"github.com/autopas-go/autopas/container/linkedcells"
	"github.com/autopas-go/autopas/container/verletcluster"
	"github.com/autopas-go/autopas/container/verletlists"
	"github.com/autopas-go/autopas/functor"
	"github.com/autopas-go/autopas/internal/aperrors"
	"github.com/autopas-go/autopas/internal/applog"
	"github.com/autopas-go/autopas/particle"
	"github.com/autopas-go/autopas/selector"
	"github.com/autopas-go/autopas/traversal"
)

// IteratorBehavior restricts Begin/GetRegionIterator to owned
// particles, halo particles, or both.
type IteratorBehavior int

const (
	OwnedOnly IteratorBehavior = iota
	HaloOnly
	OwnedAndHalo
)

// farMargin extends a region query far enough past the domain to
// reach every halo particle any container might be holding, without
// the facade needing to know each container's own halo depth.
const farMargin = 1e9

// AutoPas is the engine's external handle: one box, one functor-driven
// container, one resolved selector.Plan. Every exported method mirrors
// one of the engine's named external operations.
type AutoPas[P particle.Particle[P]] struct {
	id             uuid.UUID
	boxMin, boxMax mgl64.Vec3
	cutoff         float64
	numWorkers     int
	logger         applog.Logger

	cfg  *selector.Configuration
	plan *selector.Plan
	cont container.Container[P]

	// lc is set iff plan.Container == selector.ContainerLinkedCells, so
	// IteratePairwise can build the specific traversal scheme the plan
	// named (c08/c18/c04/c04SoA/sliced/c01) rather than only the two
	// defaults LinkedCells.IteratePairwise picks on its own.
	lc *linkedcells.LinkedCells[P]

	// fatal is set once an InvariantViolation panic is recovered at the
	// IteratePairwise boundary. It permanently poisons this instance:
	// every later call returns fatal immediately without attempting a
	// traversal. An invariant violation terminates this AutoPas[P], not
	// the process it runs in.
	fatal error
}

// Builder assembles an AutoPas[P] through the engine's fluent style.
type Builder[P particle.Particle[P]] struct {
	boxMin, boxMax mgl64.Vec3
	cutoff         float64
	numWorkers     int
	logger         applog.Logger
	cfg            *selector.Configuration
	zeroDummy      func() P // required only if cfg allows verletClusterLists
}

// NewBuilder starts a Builder for a box [boxMin, boxMax] and cutoff
// rc. Defaults: numWorkers=1, logger=applog.Discard, an empty
// Configuration (Build fails until WithConfiguration supplies one).
func NewBuilder[P particle.Particle[P]](boxMin, boxMax mgl64.Vec3, cutoff float64) *Builder[P] {
	return &Builder[P]{
		boxMin:     boxMin,
		boxMax:     boxMax,
		cutoff:     cutoff,
		numWorkers: 1,
		logger:     applog.Discard,
		cfg:        selector.NewConfiguration(),
	}
}

func (b *Builder[P]) WithConfiguration(cfg *selector.Configuration) *Builder[P] {
	b.cfg = cfg
	return b
}

func (b *Builder[P]) WithNumWorkers(n int) *Builder[P] {
	if n > 0 {
		b.numWorkers = n
	}
	return b
}

func (b *Builder[P]) WithLogger(l applog.Logger) *Builder[P] {
	b.logger = applog.OrDiscard(l)
	return b
}

func (b *Builder[P]) WithClusterDummyFactory(zero func() P) *Builder[P] {
	b.zeroDummy = zero
	return b
}

// Build resolves b.cfg against f's declared capabilities via
// selector.Select and constructs the chosen container. It returns
// *aperrors.Error (KindUnknownOption / KindTraversalNotApplicable) if
// selection fails, or KindInvariantViolation if the configuration
// allows verletClusterLists without a dummy factory having been
// supplied.
func (b *Builder[P]) Build(f selector.FunctorCaps) (*AutoPas[P], error) {
	plan, err := selector.Select(b.cfg, f)
	if err != nil {
		return nil, err
	}

	a := &AutoPas[P]{
		id:         uuid.New(),
		boxMin:     b.boxMin,
		boxMax:     b.boxMax,
		cutoff:     b.cutoff,
		numWorkers: b.numWorkers,
		logger:     b.logger,
		cfg:        b.cfg,
		plan:       plan,
	}

	switch plan.Container {
	case selector.ContainerDirectSum:
		a.cont = directsum.New[P](b.boxMin, b.boxMax)
	case selector.ContainerLinkedCells:
		a.lc = linkedcells.New[P](b.boxMin, b.boxMax, b.cutoff, b.cfg.VerletSkin, plan.CellSizeFactor)
		a.cont = a.lc
	case selector.ContainerVerletLists, selector.ContainerVerletListsCells:
		a.cont = verletlists.New[P](b.boxMin, b.boxMax, b.cutoff, b.cfg.VerletSkin, plan.CellSizeFactor, b.cfg.RebuildFrequency)
	case selector.ContainerVerletClusterLists:
		if b.zeroDummy == nil {
			return nil, aperrors.InvariantViolation("verletClusterLists selected but no cluster dummy factory was supplied via WithClusterDummyFactory")
		}
		a.cont = verletcluster.New[P](b.boxMin, b.boxMax, b.cutoff, b.cfg.VerletSkin, plan.CellSizeFactor, b.cfg.RebuildFrequency, b.zeroDummy)
	default:
		return nil, aperrors.UnknownOption("unrecognized container type %v", plan.Container)
	}

	a.logger.Infof("autopas %s built container=%s traversal=%s layout=%d newton3=%v", a.id, plan.Container, plan.Traversal, plan.Layout, plan.Newton3)
	return a, nil
}

// ID is this AutoPas instance's unique build identity.
func (a *AutoPas[P]) ID() uuid.UUID { return a.id }

// Plan reports the resolved (container, traversal, layout, newton3)
// combination this instance runs.
func (a *AutoPas[P]) Plan() selector.Plan { return *a.plan }

func (a *AutoPas[P]) AddParticle(p P) { a.cont.AddParticle(p) }

// AddOrUpdateHaloParticle is the engine's halo insertion entry point;
// this port's containers treat every halo add as fresh (no
// existing-halo lookup-and-merge), consistent with halo particles
// always being stale copies rebuilt fresh each step, and with
// DeleteHaloParticles always running first in UpdateContainer.
func (a *AutoPas[P]) AddOrUpdateHaloParticle(p P) { a.cont.AddHaloParticle(p) }

// UpdateContainer re-homes every owned particle and returns the ones
// that left [boxMin, boxMax) entirely, plus whether the pass made
// structural changes that require a neighbor-list rebuild. It also
// clears stale halo particles first, consistent with the
// halo-is-always-stale rule.
func (a *AutoPas[P]) UpdateContainer() ([]P, bool) {
	a.cont.DeleteHaloParticles()
	return a.cont.UpdateContainer()
}

func (a *AutoPas[P]) Begin(behavior IteratorBehavior, fn func(p P) bool) {
	if behavior == OwnedOnly {
		a.cont.Iterate(fn)
		return
	}
	a.GetRegionIterator(
		a.boxMin.Sub(mgl64.Vec3{farMargin, farMargin, farMargin}),
		a.boxMax.Add(mgl64.Vec3{farMargin, farMargin, farMargin}),
		behavior, fn,
	)
}

func (a *AutoPas[P]) GetRegionIterator(low, high mgl64.Vec3, behavior IteratorBehavior, fn func(p P) bool) {
	a.cont.RegionIterator(low, high, func(p P) bool {
		switch behavior {
		case OwnedOnly:
			if p.Ownership() != particle.StateOwned {
				return true
			}
		case HaloOnly:
			if p.Ownership() != particle.StateHalo {
				return true
			}
		}
		return fn(p)
	})
}

func (a *AutoPas[P]) NumParticles() int { return a.cont.NumParticles() }

// IteratePairwise drives f over every in-range pair using the resolved
// Plan. An invariant violation is fatal: it is raised as a panic deep
// inside a container/traversal (see internal/aperrors.InvariantViolation
// call sites in container/verletlists), recovered exactly once here,
// and then poisons this AutoPas[P] permanently -- every later call
// returns the same stored error without attempting another traversal,
// rather than being swallowed into an ordinary, retriable result.
// TraversalNotApplicable/UnknownOption never reach this recover: they
// are returned directly below as typed results, never panics.
func (a *AutoPas[P]) IteratePairwise(f functor.Functor[P]) (err error) {
	if a.fatal != nil {
		return a.fatal
	}

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*aperrors.Error); ok {
				err = e
			} else {
				err = aperrors.InvariantViolation("panic during IteratePairwise: %v", r)
			}
			a.fatal = err
		}
	}()

	layout := a.plan.Layout
	newton3 := a.plan.Newton3

	if a.lc != nil {
		t, buildErr := a.buildLinkedCellsTraversal(f, layout, newton3)
		if buildErr != nil {
			return buildErr
		}
		if !t.IsApplicable() {
			return aperrors.TraversalNotApplicable("traversal %s not applicable to current cell block geometry", a.plan.Traversal)
		}
		a.lc.RunTraversal(t, f, layout)
		return nil
	}

	return a.cont.IteratePairwise(f, layout, newton3, a.numWorkers)
}

// buildLinkedCellsTraversal maps a.plan.Traversal onto a concrete
// traversal.Traversal[P] bound to a.lc's cell block, mirroring
// selector.TraversalTag.linkedCellsType's tag set.
func (a *AutoPas[P]) buildLinkedCellsTraversal(f functor.Functor[P], layout functor.Layout, newton3 bool) (traversal.Traversal[P], error) {
	cf := functor.NewCellFunctor[P](f, layout, newton3)
	cb := a.lc.CellBlock()
	il := a.lc.InteractionLength()

	switch a.plan.Traversal {
	case selector.TagC01:
		return traversal.NewC01[P](cb, cf, il, a.numWorkers), nil
	case selector.TagC08:
		return traversal.NewC08[P](cb, cf, il, a.numWorkers), nil
	case selector.TagC18:
		return traversal.NewC18[P](cb, cf, il, a.numWorkers), nil
	case selector.TagC04:
		return traversal.NewC04[P](cb, cf, il, a.numWorkers), nil
	case selector.TagC04SoA:
		return traversal.NewC04SoA[P](cb, cf, il, a.numWorkers), nil
	case selector.TagSliced:
		return traversal.NewSliced[P](cb, cf, il, a.numWorkers), nil
	default:
		return nil, aperrors.UnknownOption("traversal tag %s is not a linked-cells traversal", a.plan.Traversal)
	}
}

func (a *AutoPas[P]) String() string {
	return fmt.Sprintf("AutoPas[%s] container=%s traversal=%s", a.id, a.plan.Container, a.plan.Traversal)
}
