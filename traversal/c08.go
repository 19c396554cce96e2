package traversal

import (
	"github.com/autopas-go/autopas/cellblock"
	"github.com/autopas-go/autopas/functor"
	"github.com/autopas-go/autopas/particle"
)

// C08 is the half-stencil traversal colored with (2*overlap+1)^3
// colors. It supports both Newton3 and non-N3
// functors; the dedup in BuildHalfStencil already guarantees each
// in-range cell pair is scheduled exactly once regardless.
type C08[P particle.Particle[P]] struct {
	cb         *cellblock.CellBlock[P]
	cf         *functor.CellFunctor[P]
	offsets    []CellOffset
	overlap    int
	numWorkers int
}

func NewC08[P particle.Particle[P]](cb *cellblock.CellBlock[P], cf *functor.CellFunctor[P], interactionLength float64, numWorkers int) *C08[P] {
	overlap := Overlap(interactionLength, cb.CellLength())
	return &C08[P]{
		cb:         cb,
		cf:         cf,
		offsets:    BuildHalfStencil(overlap, cb.CellLength(), interactionLength),
		overlap:    overlap,
		numWorkers: numWorkers,
	}
}

func (t *C08[P]) Type() Type { return TypeC08 }

func (t *C08[P]) DataLayout() DataLayout {
	if t.cf.Layout == functor.LayoutSoA {
		return DataLayoutSoA
	}
	return DataLayoutAoS
}

func (t *C08[P]) UseNewton3() bool { return t.cf.Newton3 }

func (t *C08[P]) IsApplicable() bool {
	d := t.cb.Dims()
	minInterior := d.X-2 >= 1 && d.Y-2 >= 1 && d.Z-2 >= 1
	if t.cf.Newton3 {
		return minInterior && t.cf.F.AllowsNewton3()
	}
	return minInterior && t.cf.F.AllowsNonNewton3()
}

func (t *C08[P]) TraverseParticlePairs() {
	t.cf.F.InitTraversal()
	runColoredBaseStep(t.cb, t.cf, t.offsets, t.overlap, t.numWorkers)
	t.cf.F.EndTraversal(t.cf.Newton3)
}
