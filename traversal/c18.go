package traversal

import (
	"github.com/autopas-go/autopas/cellblock"
	"github.com/autopas-go/autopas/functor"
	"github.com/autopas-go/autopas/particle"
)

// C18 is the half-stencil traversal that only ever runs with Newton3
// enabled: every cross-cell pair is written from a single call, so
// C18's color count matters only for throughput, never correctness.
type C18[P particle.Particle[P]] struct {
	cb         *cellblock.CellBlock[P]
	cf         *functor.CellFunctor[P]
	offsets    []CellOffset
	overlap    int
	numWorkers int
}

func NewC18[P particle.Particle[P]](cb *cellblock.CellBlock[P], cf *functor.CellFunctor[P], interactionLength float64, numWorkers int) *C18[P] {
	overlap := Overlap(interactionLength, cb.CellLength())
	return &C18[P]{
		cb:         cb,
		cf:         cf,
		offsets:    BuildHalfStencil(overlap, cb.CellLength(), interactionLength),
		overlap:    overlap,
		numWorkers: numWorkers,
	}
}

func (t *C18[P]) Type() Type { return TypeC18 }

func (t *C18[P]) DataLayout() DataLayout {
	if t.cf.Layout == functor.LayoutSoA {
		return DataLayoutSoA
	}
	return DataLayoutAoS
}

func (t *C18[P]) UseNewton3() bool { return true }

func (t *C18[P]) IsApplicable() bool {
	d := t.cb.Dims()
	minInterior := d.X-2 >= 1 && d.Y-2 >= 1 && d.Z-2 >= 1
	return minInterior && t.cf.Newton3 && t.cf.F.AllowsNewton3()
}

func (t *C18[P]) TraverseParticlePairs() {
	t.cf.F.InitTraversal()
	runColoredBaseStep(t.cb, t.cf, t.offsets, t.overlap, t.numWorkers)
	t.cf.F.EndTraversal(true)
}
