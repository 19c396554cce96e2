// Package verletlists implements AoS/SoA Verlet neighbor lists: a
// per-particle candidate-neighbor list built once every few steps from
// a linked-cells pass, then reused directly (no cell-grid walk) until
// a rebuild is due.
package verletlists

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/autopas-go/autopas/cell"
	"github.com/autopas-go/autopas/container"
	"github.com/autopas-go/autopas/container/linkedcells"
	"github.com/autopas-go/autopas/functor"
	"github.com/autopas-go/autopas/internal/aperrors"
	"github.com/autopas-go/autopas/internal/handle"
	"github.com/autopas-go/autopas/particle"
	"github.com/autopas-go/autopas/soa"
	"github.com/autopas-go/autopas/traversal"
)

// VerletLists is a container.Container that stores particles in an
// internal linked-cells grid (used only for the periodic rebuild walk)
// and drives pairwise interactions from a flat neighbor-list snapshot
// the rest of the time.
type VerletLists[P particle.Particle[P]] struct {
	lc               *linkedcells.LinkedCells[P]
	rc, skin         float64
	rebuildFrequency int

	particles      []P
	neighbors      [][]int32
	buildPositions []mgl64.Vec3
	stepsSinceBuild int
	generation      handle.Generation
}

// BuildGeneration identifies which Rebuild produced the list currently
// in use, letting a caller that cached a reference to "the list as of
// build N" detect a newer build has since replaced it -- the same
// stable-identity idea behind per-particle handles, extended to
// whole-list rebuild identity.
func (vl *VerletLists[P]) BuildGeneration() handle.Generation { return vl.generation }

// New builds an empty VerletLists container. rebuildFrequency is the
// maximum number of IteratePairwise calls between rebuilds; a rebuild
// also happens early if any particle has moved more than skin/2 since
// the last one.
func New[P particle.Particle[P]](boxMin, boxMax mgl64.Vec3, rc, skin, cellSizeFactor float64, rebuildFrequency int) *VerletLists[P] {
	if rebuildFrequency < 1 {
		rebuildFrequency = 1
	}
	return &VerletLists[P]{
		lc:               linkedcells.New[P](boxMin, boxMax, rc, skin, cellSizeFactor),
		rc:               rc,
		skin:             skin,
		rebuildFrequency: rebuildFrequency,
		stepsSinceBuild:  rebuildFrequency, // force a build before the first IteratePairwise
	}
}

func (vl *VerletLists[P]) AddParticle(p P) {
	vl.lc.AddParticle(p)
	vl.invalidate()
}

func (vl *VerletLists[P]) AddHaloParticle(p P) {
	vl.lc.AddHaloParticle(p)
	vl.invalidate()
}

func (vl *VerletLists[P]) DeleteHaloParticles() {
	vl.lc.DeleteHaloParticles()
	vl.invalidate()
}

// UpdateContainer always reports a rebuild: re-homing rewrites the
// snapshot row order the neighbor lists index into.
func (vl *VerletLists[P]) UpdateContainer() ([]P, bool) {
	leaving, _ := vl.lc.UpdateContainer()
	vl.invalidate()
	return leaving, true
}

func (vl *VerletLists[P]) Iterate(fn func(p P) bool)                          { vl.lc.Iterate(fn) }
func (vl *VerletLists[P]) RegionIterator(low, high mgl64.Vec3, fn func(p P) bool) { vl.lc.RegionIterator(low, high, fn) }
func (vl *VerletLists[P]) NumParticles() int                                  { return vl.lc.NumParticles() }
func (vl *VerletLists[P]) BoxMin() mgl64.Vec3                                 { return vl.lc.BoxMin() }
func (vl *VerletLists[P]) BoxMax() mgl64.Vec3                                 { return vl.lc.BoxMax() }

// invalidate forces the next IteratePairwise to rebuild before using
// the list, since a structural change (add/remove/re-home) can make
// the existing neighbor lists reference stale or wrong particles.
func (vl *VerletLists[P]) invalidate() { vl.stepsSinceBuild = vl.rebuildFrequency }

func (vl *VerletLists[P]) needsRebuild() bool {
	if vl.stepsSinceBuild >= vl.rebuildFrequency {
		return true
	}
	halfSkin := vl.skin / 2
	for i, p := range vl.particles {
		if p.Position().Sub(vl.buildPositions[i]).Len() > halfSkin {
			return true
		}
	}
	return false
}

// Rebuild walks the internal linked-cells grid once and repopulates
// every particle's neighbor candidate list, exported so a caller (or a
// rebuild-frequency test) can force it without going through
// IteratePairwise.
func (vl *VerletLists[P]) Rebuild() {
	cb := vl.lc.CellBlock()
	dims := cb.Dims()

	vl.particles = vl.particles[:0]
	cellOf := make([]int, 0)
	for idx := 0; idx < cb.NumCells(); idx++ {
		cb.CellAt(idx).Each(func(_ int, p P) bool {
			vl.particles = append(vl.particles, p)
			cellOf = append(cellOf, idx)
			return true
		})
	}

	n := len(vl.particles)
	vl.neighbors = make([][]int32, n)
	vl.buildPositions = make([]mgl64.Vec3, n)
	for i, p := range vl.particles {
		vl.buildPositions[i] = p.Position()
	}

	byCell := make(map[int][]int32, cb.NumCells())
	for i, idx := range cellOf {
		byCell[idx] = append(byCell[idx], int32(i))
	}

	interactionLength := vl.rc + vl.skin
	overlap := traversal.Overlap(interactionLength, cb.CellLength())
	offsets := traversal.BuildHalfStencil(overlap, cb.CellLength(), interactionLength)

	addIfInRange := func(i, j int32) {
		d := vl.particles[i].Position().Sub(vl.particles[j].Position()).Len()
		if d <= interactionLength {
			vl.neighbors[i] = append(vl.neighbors[i], j)
		}
	}

	for idx, members := range byCell {
		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				addIfInRange(members[a], members[b])
			}
		}
		x, y, z := cb.Coords(idx)
		for _, o := range offsets {
			nx, ny, nz := x+o.DX, y+o.DY, z+o.DZ
			if nx < 0 || nx >= dims.X || ny < 0 || ny >= dims.Y || nz < 0 || nz >= dims.Z {
				continue
			}
			other, ok := byCell[cb.Index(nx, ny, nz)]
			if !ok {
				continue
			}
			for _, a := range members {
				for _, b := range other {
					addIfInRange(a, b)
				}
			}
		}
	}
	vl.stepsSinceBuild = 0
	vl.generation = handle.NewGeneration()
}

// Validate runs a validity-checker pass: for
// every pair of particles currently within rc (not rc+skin), assert
// the pair is present in the current AoS neighbor list. It returns an
// *aperrors.Error of kind InvariantViolation describing the first
// missing pair found, or nil if the list is a sound over-approximation
// of the true interaction set. Intended for callers (tests, or a
// driver's optional post-rebuild assertion) that want to confirm the
// "sound over-approximation" invariant directly rather than trust the
// skin/2 displacement bound alone.
func (vl *VerletLists[P]) Validate() error {
	present := make([]map[int32]bool, len(vl.particles))
	for i, nb := range vl.neighbors {
		m := make(map[int32]bool, len(nb))
		for _, j := range nb {
			m[j] = true
		}
		present[i] = m
	}
	for i := 0; i < len(vl.particles); i++ {
		for j := i + 1; j < len(vl.particles); j++ {
			d := vl.particles[i].Position().Sub(vl.particles[j].Position()).Len()
			if d > vl.rc {
				continue
			}
			if present[i][int32(j)] || present[j][int32(i)] {
				continue
			}
			return aperrors.InvariantViolation("verlet list missing in-range pair (%d,%d) at distance %f <= rc %f", i, j, d, vl.rc)
		}
	}
	return nil
}

// IteratePairwise rebuilds the neighbor list if it is due, then
// evaluates every stored pair through f. numWorkers is accepted for
// interface symmetry; the list-walk itself runs single-threaded, since
// the snapshot's per-particle neighbor slices aren't partitioned for
// safe concurrent force writes the way a colored cell traversal is.
func (vl *VerletLists[P]) IteratePairwise(f functor.Functor[P], layout functor.Layout, newton3 bool, numWorkers int) error {
	if vl.needsRebuild() {
		vl.Rebuild()
	}
	f.InitTraversal()
	if layout == functor.LayoutSoA {
		vl.iterateSoA(f, newton3)
	} else {
		for i, p := range vl.particles {
			for _, j := range vl.neighbors[i] {
				q := vl.particles[j]
				f.AoSFunctor(p, q, newton3)
				if !newton3 {
					f.AoSFunctor(q, p, false)
				}
			}
		}
	}
	f.EndTraversal(newton3)
	vl.stepsSinceBuild++
	return nil
}

// snapshotCell adapts the flat rebuild snapshot to cell.Cell so the
// functor's own SoALoader/SoAExtractor drive the SoA gather/scatter,
// honoring whatever attribute columns the functor declares via
// NeededAttrs/ComputedAttrs rather than a hardcoded position/force
// subset. The snapshot is read-only for the duration of a traversal;
// structural mutation through this adapter is an invariant violation.
type snapshotCell[P particle.Particle[P]] struct {
	particles  []P
	buf        *soa.Buffer
	cellLength float64
}

func (c *snapshotCell[P]) Add(P) handle.Handle {
	panic(aperrors.InvariantViolation("verlet snapshot is read-only during traversal"))
}

func (c *snapshotCell[P]) Clear() {
	panic(aperrors.InvariantViolation("verlet snapshot is read-only during traversal"))
}

func (c *snapshotCell[P]) RemoveAt(int) handle.Handle {
	panic(aperrors.InvariantViolation("verlet snapshot is read-only during traversal"))
}

func (c *snapshotCell[P]) Len() int { return len(c.particles) }

func (c *snapshotCell[P]) At(i int) P { return c.particles[i] }

func (c *snapshotCell[P]) Each(fn func(i int, p P) bool) {
	for i, p := range c.particles {
		if !fn(i, p) {
			return
		}
	}
}

func (c *snapshotCell[P]) SoABuffer() *soa.Buffer { return c.buf }

func (c *snapshotCell[P]) CellLength() float64 { return c.cellLength }

func (c *snapshotCell[P]) RMM() bool { return false }

var _ cell.Cell[*dummyParticle] = (*snapshotCell[*dummyParticle])(nil)

// iterateSoA wraps the flat particle snapshot as a read-only cell,
// lets the functor's SoALoader gather every column it declares into
// one buffer, calls the single Verlet entry point over the stored
// lists, and scatters results back through the functor's SoAExtractor
// -- the same loader/extractor bracketing discipline
// linkedcells.RunTraversal applies per cell, collapsed to the one
// concatenated buffer a Verlet traversal operates on.
func (vl *VerletLists[P]) iterateSoA(f functor.Functor[P], newton3 bool) {
	n := len(vl.particles)
	snap := &snapshotCell[P]{
		particles:  vl.particles,
		buf:        soa.New(),
		cellLength: vl.lc.CellBlock().CellLength(),
	}
	snap.buf.Resize(n)
	f.SoALoader(snap, snap.buf, 0)
	neighbors := vl.neighbors
	if !newton3 {
		// The stored lists hold each pair once; without N3 every pair
		// must appear from both sides, as in the AoS path.
		neighbors = make([][]int32, n)
		for i, nb := range vl.neighbors {
			neighbors[i] = append(neighbors[i], nb...)
			for _, j := range nb {
				neighbors[j] = append(neighbors[j], int32(i))
			}
		}
	}
	f.SoAFunctorVerlet(snap.buf, neighbors, 0, n, newton3)
	f.SoAExtractor(snap, snap.buf, 0)
}

var _ container.Container[*dummyParticle] = (*VerletLists[*dummyParticle])(nil)

// dummyParticle only exists to let the compiler check VerletLists
// satisfies container.Container at build time without requiring a
// real application particle type in this file.
type dummyParticle struct {
	r, f mgl64.Vec3
	id   uint64
	own  particle.OwnershipState
}

func (p *dummyParticle) Position() mgl64.Vec3                   { return p.r }
func (p *dummyParticle) SetPosition(r mgl64.Vec3)               { p.r = r }
func (p *dummyParticle) Force() mgl64.Vec3                      { return p.f }
func (p *dummyParticle) SetForce(f mgl64.Vec3)                  { p.f = f }
func (p *dummyParticle) AddForce(f mgl64.Vec3)                  { p.f = p.f.Add(f) }
func (p *dummyParticle) ID() uint64                             { return p.id }
func (p *dummyParticle) Ownership() particle.OwnershipState     { return p.own }
func (p *dummyParticle) SetOwnership(s particle.OwnershipState) { p.own = s }
func (p *dummyParticle) Clone() *dummyParticle                  { cp := *p; return &cp }
