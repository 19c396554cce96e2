package traversal

import (
	"github.com/autopas-go/autopas/cellblock"
	"github.com/autopas-go/autopas/functor"
	"github.com/autopas-go/autopas/particle"
)

// C01 is the full-sphere, no-Newton3 traversal: every base cell visits
// its entire neighborhood (not a half stencil), writing only to its
// own particles' forces, never to a neighbor cell's. Because no two
// base-cell goroutines ever write to the same cell, every interior
// cell can be dispatched to its own goroutine at once -- no coloring,
// no slab, no lock.
type C01[P particle.Particle[P]] struct {
	cb         *cellblock.CellBlock[P]
	cf         *functor.CellFunctor[P]
	offsets    []CellOffset
	numWorkers int
}

// NewC01 builds a C01 traversal. cf must have Newton3 == false; N3
// force reciprocity has no meaning for a scheme that never writes to a
// neighbor cell.
func NewC01[P particle.Particle[P]](cb *cellblock.CellBlock[P], cf *functor.CellFunctor[P], interactionLength float64, numWorkers int) *C01[P] {
	overlap := Overlap(interactionLength, cb.CellLength())
	return &C01[P]{
		cb:         cb,
		cf:         cf,
		offsets:    BuildFullSphere(overlap, cb.CellLength(), interactionLength),
		numWorkers: numWorkers,
	}
}

func (t *C01[P]) Type() Type { return TypeC01 }

func (t *C01[P]) DataLayout() DataLayout {
	if t.cf.Layout == functor.LayoutSoA {
		return DataLayoutSoA
	}
	return DataLayoutAoS
}

func (t *C01[P]) UseNewton3() bool { return false }

func (t *C01[P]) IsApplicable() bool {
	return !t.cf.Newton3 && t.cf.F.AllowsNonNewton3()
}

func (t *C01[P]) TraverseParticlePairs() {
	t.cf.F.InitTraversal()
	dims := t.cb.Dims()
	runUncoloredBaseStep(t.cb, t.numWorkers, func(cb *cellblock.CellBlock[P], x, y, z int) {
		base := cb.CellAt(cb.Index(x, y, z))
		t.cf.ProcessCell(base)
		for _, o := range t.offsets {
			nx, ny, nz := x+o.DX, y+o.DY, z+o.DZ
			if nx < 0 || nx >= dims.X || ny < 0 || ny >= dims.Y || nz < 0 || nz >= dims.Z {
				continue
			}
			neighbor := cb.CellAt(cb.Index(nx, ny, nz))
			t.cf.ProcessCellPairOneWay(base, neighbor)
		}
	})
	t.cf.F.EndTraversal(false)
}
