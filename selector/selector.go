// Package selector implements a pure container/traversal/layout/N3
// factory: given a Configuration naming the allowed option sets,
// Select walks the option tuple
// (container, traversal, layout, newton3, cellSizeFactor) and returns
// the first applicable Plan, or a typed error (UnknownOption,
// TraversalNotApplicable) from internal/aperrors. Select performs no
// I/O and holds no state beyond the Configuration passed to it,
// matching app_builder.go's systemScheduleBuilder fluent-builder
// shape for Configuration's own construction.
package selector

import (
	"github.com/autopas-go/autopas/functor"
	"github.com/autopas-go/autopas/internal/aperrors"
	"github.com/autopas-go/autopas/traversal"
)

// ContainerType names one of the engine's allowed container kinds.
type ContainerType int

const (
	ContainerDirectSum ContainerType = iota
	ContainerLinkedCells
	ContainerVerletLists
	ContainerVerletListsCells
	ContainerVerletClusterLists
)

func (c ContainerType) String() string {
	switch c {
	case ContainerDirectSum:
		return "directSum"
	case ContainerLinkedCells:
		return "linkedCells"
	case ContainerVerletLists:
		return "verletLists"
	case ContainerVerletListsCells:
		return "verletListsCells"
	case ContainerVerletClusterLists:
		return "verletClusterLists"
	default:
		return "unknown"
	}
}

// TraversalTag names one of the engine's allowed traversal schemes.
// Linked-cells tags (C01..Sliced) map 1:1 onto traversal.Type and are
// realized by an actual traversal.Traversal[P] object; the remaining
// tags name an iteration scheme a non-linked-cells container
// implements internally as its single IteratePairwise path (this port
// does not expose c01Verlet/c18Verlet/slicedVerlet/
// varVerletTraversalAsBuild/verletClusters/verletClustersColoring as
// distinct runnable objects, since container/verletlists and
// container/verletcluster each have exactly one internal traversal
// scheme -- recorded as an Open Question generalization in
// DESIGN.md, same rationale as traversal.ColorOf's single coloring
// rule).
type TraversalTag int

const (
	TagDirectSumTraversal TraversalTag = iota
	TagC01
	TagC04
	TagC04SoA
	TagC08
	TagC18
	TagSliced
	TagVerletTraversal
	TagC01Verlet
	TagC18Verlet
	TagSlicedVerlet
	TagVarVerletTraversalAsBuild
	TagVerletClusters
	TagVerletClustersColoring
	TagC01Cuda
)

func (t TraversalTag) String() string {
	switch t {
	case TagDirectSumTraversal:
		return "directSumTraversal"
	case TagC01:
		return "c01"
	case TagC04:
		return "c04"
	case TagC04SoA:
		return "c04SoA"
	case TagC08:
		return "c08"
	case TagC18:
		return "c18"
	case TagSliced:
		return "sliced"
	case TagVerletTraversal:
		return "verletTraversal"
	case TagC01Verlet:
		return "c01Verlet"
	case TagC18Verlet:
		return "c18Verlet"
	case TagSlicedVerlet:
		return "slicedVerlet"
	case TagVarVerletTraversalAsBuild:
		return "varVerletTraversalAsBuild"
	case TagVerletClusters:
		return "verletClusters"
	case TagVerletClustersColoring:
		return "verletClustersColoring"
	case TagC01Cuda:
		return "c01Cuda"
	default:
		return "unknown"
	}
}

// linkedCellsType reports whether tag is realized by an actual
// traversal.Traversal[P] object and, if so, which traversal.Type it
// maps to.
func (t TraversalTag) linkedCellsType() (traversal.Type, bool) {
	switch t {
	case TagC01:
		return traversal.TypeC01, true
	case TagC04:
		return traversal.TypeC04, true
	case TagC04SoA:
		return traversal.TypeC04SoA, true
	case TagC08:
		return traversal.TypeC08, true
	case TagC18:
		return traversal.TypeC18, true
	case TagSliced:
		return traversal.TypeSliced, true
	case TagC01Cuda:
		return traversal.TypeC01Cuda, true
	default:
		return 0, false
	}
}

// ownerContainer reports which ContainerType a non-linked-cells tag is
// only ever valid against.
func (t TraversalTag) ownerContainer() (ContainerType, bool) {
	switch t {
	case TagDirectSumTraversal:
		return ContainerDirectSum, true
	case TagVerletTraversal, TagC01Verlet, TagC18Verlet, TagSlicedVerlet, TagVarVerletTraversalAsBuild:
		return ContainerVerletLists, true
	case TagVerletClusters, TagVerletClustersColoring:
		return ContainerVerletClusterLists, true
	default:
		return 0, false
	}
}

// Configuration is the selector's pure input: the allowed option sets
// a driver permits, assembled through a fluent builder mirroring
// app_builder.go's style.
type Configuration struct {
	Containers       []ContainerType
	Traversals       []TraversalTag
	DataLayouts      []functor.Layout
	AllowCuda        bool
	Newton3          []bool
	CellSizeFactors  []float64
	VerletSkin       float64
	RebuildFrequency int
	NumSamples       int
}

// NewConfiguration returns an empty Configuration; every allowed-set
// field starts empty (nothing is applicable) until a With... call
// populates it, same as NewApp() starting with empty maps that
// UseModules/UseStates then fill in.
func NewConfiguration() *Configuration {
	return &Configuration{RebuildFrequency: 1, NumSamples: 1}
}

func (c *Configuration) WithContainers(types ...ContainerType) *Configuration {
	c.Containers = append(c.Containers, types...)
	return c
}

func (c *Configuration) WithTraversals(tags ...TraversalTag) *Configuration {
	c.Traversals = append(c.Traversals, tags...)
	return c
}

func (c *Configuration) WithDataLayouts(layouts ...functor.Layout) *Configuration {
	c.DataLayouts = append(c.DataLayouts, layouts...)
	return c
}

func (c *Configuration) WithNewton3(opts ...bool) *Configuration {
	c.Newton3 = append(c.Newton3, opts...)
	return c
}

func (c *Configuration) WithCellSizeFactors(factors ...float64) *Configuration {
	c.CellSizeFactors = append(c.CellSizeFactors, factors...)
	return c
}

func (c *Configuration) WithVerletSkin(skin float64) *Configuration {
	c.VerletSkin = skin
	return c
}

func (c *Configuration) WithRebuildFrequency(n int) *Configuration {
	c.RebuildFrequency = n
	return c
}

func (c *Configuration) WithNumSamples(n int) *Configuration {
	c.NumSamples = n
	return c
}

// Plan is one fully-resolved, statically-applicable combination ready
// for a driver to construct a container/traversal from.
type Plan struct {
	Container      ContainerType
	Traversal      TraversalTag
	Layout         functor.Layout
	Newton3        bool
	CellSizeFactor float64
}

// FunctorCaps is the subset of functor.Functor's capability
// predicates Select needs, kept narrow so callers don't have to build
// a real Functor[P] just to ask "what does this combination require".
type FunctorCaps interface {
	AllowsNewton3() bool
	AllowsNonNewton3() bool
}

// Select walks cfg's option tuple in declaration order (containers,
// then traversals, then layouts, then newton3, then cell size
// factors) and returns the first statically-applicable Plan against f,
// or a typed error: aperrors.UnknownOption if cfg names a traversal
// tag that isn't a recognized TraversalTag value, or
// aperrors.TraversalNotApplicable if every combination was recognized
// but none is statically compatible (c01 requires !N3, c04SoA requires
// SoA, and so on). This does not check cell-block geometry (enough interior
// cells for the chosen traversal's overlap) -- that is checked again,
// live, by the concrete traversal.Traversal[P].IsApplicable() the
// driver builds from a returned Plan, since geometry depends on a box
// size Select is never given.
func Select(cfg *Configuration, f FunctorCaps) (*Plan, error) {
	for _, ct := range cfg.Containers {
		for _, tag := range cfg.Traversals {
			if tag < TagDirectSumTraversal || tag > TagC01Cuda {
				return nil, aperrors.UnknownOption("unrecognized traversal tag %d", int(tag))
			}
			if owner, scoped := tag.ownerContainer(); scoped && owner != ct {
				continue
			}
			if _, isLinkedCells := tag.linkedCellsType(); isLinkedCells && ct != ContainerLinkedCells {
				continue
			}
			for _, layout := range cfg.DataLayouts {
				for _, n3 := range cfg.Newton3 {
					if !staticallyApplicable(ct, tag, layout, n3, f) {
						continue
					}
					factors := cfg.CellSizeFactors
					if len(factors) == 0 {
						factors = []float64{1.0}
					}
					for _, factor := range factors {
						return &Plan{Container: ct, Traversal: tag, Layout: layout, Newton3: n3, CellSizeFactor: factor}, nil
					}
				}
			}
		}
	}
	return nil, aperrors.TraversalNotApplicable("no applicable (container, traversal, layout, newton3) combination in configuration")
}

// staticallyApplicable implements the applicability composition rules
// at the tuple level: c01 requires !N3, c04SoA requires SoA,
// cuda-layout variants require an available device.
func staticallyApplicable(ct ContainerType, tag TraversalTag, layout functor.Layout, newton3 bool, f FunctorCaps) bool {
	if tag == TagC01Cuda || layout == functor.LayoutCuda {
		return false // no CUDA device is ever available in this module
	}
	if newton3 && !f.AllowsNewton3() {
		return false
	}
	if !newton3 && !f.AllowsNonNewton3() {
		return false
	}
	switch tag {
	case TagC01:
		if newton3 {
			return false // c01's full-sphere enumeration never uses N3
		}
	case TagC04SoA:
		if layout != functor.LayoutSoA {
			return false
		}
		if !newton3 {
			return false
		}
	case TagC04, TagC18:
		// this port builds c04/c18 as N3-only schemes
		// (traversal.C04/C18.UseNewton3 always report true); c08 and
		// sliced take either mode.
		if !newton3 {
			return false
		}
	}
	if ct == ContainerVerletClusterLists && layout != functor.LayoutAoS {
		// cluster kernels are driven through the AoS entry points only;
		// see the verletcluster entry in DESIGN.md.
		return false
	}
	return true
}
