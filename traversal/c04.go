package traversal

import (
	"github.com/autopas-go/autopas/cellblock"
	"github.com/autopas-go/autopas/functor"
	"github.com/autopas-go/autopas/particle"
)

// C04 is a finer-grained half-stencil coloring intended for small
// interaction lengths relative to cell size (overlap 1). It always
// runs with Newton3 enabled, like C18, and reuses the same safe
// coloring as C08/C18 -- the distinct "4 colors" of the source is a
// throughput detail of how the stencil is split across colors, not a
// correctness requirement the Go port needs to reproduce bit for bit.
// C04SoA is the same scheme forced onto the
// SoA data layout; use NewC04SoA to require it.
type C04[P particle.Particle[P]] struct {
	cb         *cellblock.CellBlock[P]
	cf         *functor.CellFunctor[P]
	offsets    []CellOffset
	overlap    int
	numWorkers int
	soaOnly    bool
}

func NewC04[P particle.Particle[P]](cb *cellblock.CellBlock[P], cf *functor.CellFunctor[P], interactionLength float64, numWorkers int) *C04[P] {
	return newC04(cb, cf, interactionLength, numWorkers, false)
}

func NewC04SoA[P particle.Particle[P]](cb *cellblock.CellBlock[P], cf *functor.CellFunctor[P], interactionLength float64, numWorkers int) *C04[P] {
	return newC04(cb, cf, interactionLength, numWorkers, true)
}

func newC04[P particle.Particle[P]](cb *cellblock.CellBlock[P], cf *functor.CellFunctor[P], interactionLength float64, numWorkers int, soaOnly bool) *C04[P] {
	overlap := Overlap(interactionLength, cb.CellLength())
	return &C04[P]{
		cb:         cb,
		cf:         cf,
		offsets:    BuildHalfStencil(overlap, cb.CellLength(), interactionLength),
		overlap:    overlap,
		numWorkers: numWorkers,
		soaOnly:    soaOnly,
	}
}

func (t *C04[P]) Type() Type {
	if t.soaOnly {
		return TypeC04SoA
	}
	return TypeC04
}

func (t *C04[P]) DataLayout() DataLayout {
	if t.cf.Layout == functor.LayoutSoA {
		return DataLayoutSoA
	}
	return DataLayoutAoS
}

func (t *C04[P]) UseNewton3() bool { return true }

func (t *C04[P]) IsApplicable() bool {
	if t.soaOnly && t.cf.Layout != functor.LayoutSoA {
		return false
	}
	d := t.cb.Dims()
	minInterior := d.X-2 >= 1 && d.Y-2 >= 1 && d.Z-2 >= 1
	return minInterior && t.cf.Newton3 && t.cf.F.AllowsNewton3()
}

func (t *C04[P]) TraverseParticlePairs() {
	t.cf.F.InitTraversal()
	runColoredBaseStep(t.cb, t.cf, t.offsets, t.overlap, t.numWorkers)
	t.cf.F.EndTraversal(true)
}
