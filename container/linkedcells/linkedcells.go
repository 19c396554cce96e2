// Package linkedcells implements the primary container: a
// cellblock.CellBlock driving the c01/c08/c18/c04/sliced traversals.
package linkedcells

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/autopas-go/autopas/cell"
	"github.com/autopas-go/autopas/cellblock"
	"github.com/autopas-go/autopas/container"
	"github.com/autopas-go/autopas/functor"
	"github.com/autopas-go/autopas/particle"
	"github.com/autopas-go/autopas/traversal"
)

// LinkedCells is a container.Container backed by a cellblock.CellBlock
// of cell.Full cells.
type LinkedCells[P particle.Particle[P]] struct {
	cb                *cellblock.CellBlock[P]
	interactionLength float64
}

// New builds an empty LinkedCells container. rc is the cutoff radius,
// skin the Verlet skin (0 if this container rebuilds every step),
// cellSizeFactor a multiplier on rc for the cell side length.
func New[P particle.Particle[P]](boxMin, boxMax mgl64.Vec3, rc, skin, cellSizeFactor float64) *LinkedCells[P] {
	cb := cellblock.New[P](boxMin, boxMax, rc, skin, cellSizeFactor,
		func(arenaID uint32, length float64) cell.Cell[P] {
			return cell.NewFull[P](arenaID, length)
		},
	)
	return &LinkedCells[P]{cb: cb, interactionLength: rc + skin}
}

// CellBlock exposes the underlying grid so the top-level autopas facade
// can build and probe traversals directly against it.
func (lc *LinkedCells[P]) CellBlock() *cellblock.CellBlock[P] { return lc.cb }

// InteractionLength is rc+skin, the range within which two cells must
// be considered for pair interactions.
func (lc *LinkedCells[P]) InteractionLength() float64 { return lc.interactionLength }

func (lc *LinkedCells[P]) AddParticle(p P) {
	p.SetOwnership(particle.StateOwned)
	idx := lc.cb.CellIndexOf(p.Position())
	lc.cb.CellAt(idx).Add(p)
}

func (lc *LinkedCells[P]) AddHaloParticle(p P) {
	p.SetOwnership(particle.StateHalo)
	idx := lc.cb.CellIndexOf(p.Position())
	lc.cb.CellAt(idx).Add(p)
}

func (lc *LinkedCells[P]) DeleteHaloParticles() {
	for idx := 0; idx < lc.cb.NumCells(); idx++ {
		c := lc.cb.CellAt(idx)
		removeWhere(c, func(p P) bool { return p.Ownership() == particle.StateHalo })
	}
}

// removeWhere deletes every particle matching pred via repeated
// swap-with-last RemoveAt, scanning from the back so a swapped-in
// particle is still checked.
func removeWhere[P particle.Particle[P]](c cell.Cell[P], pred func(p P) bool) {
	for i := c.Len() - 1; i >= 0; i-- {
		if pred(c.At(i)) {
			c.RemoveAt(i)
		}
	}
}

func (lc *LinkedCells[P]) UpdateContainer() ([]P, bool) {
	var all []P
	var homeOf []int
	for idx := 0; idx < lc.cb.NumCells(); idx++ {
		c := lc.cb.CellAt(idx)
		c.Each(func(_ int, p P) bool {
			if p.Ownership() == particle.StateOwned {
				all = append(all, p)
				homeOf = append(homeOf, idx)
			}
			return true
		})
		removeWhere(c, func(p P) bool { return p.Ownership() == particle.StateOwned })
	}

	oldHome := make(map[uint64]int, len(all))
	for i, p := range all {
		oldHome[p.ID()] = homeOf[i]
	}

	stay, leave := container.PartitionByBox[P](all, lc.cb.BoxMin(), lc.cb.BoxMax())
	moved := false
	for _, p := range stay {
		idx := lc.cb.CellIndexOf(p.Position())
		if idx != oldHome[p.ID()] {
			moved = true
		}
		lc.cb.CellAt(idx).Add(p)
	}
	return leave, moved || len(leave) > 0
}

func (lc *LinkedCells[P]) Iterate(fn func(p P) bool) {
	for idx := 0; idx < lc.cb.NumCells(); idx++ {
		cont := true
		lc.cb.CellAt(idx).Each(func(_ int, p P) bool {
			if p.Ownership() != particle.StateOwned {
				return true
			}
			if !fn(p) {
				cont = false
				return false
			}
			return true
		})
		if !cont {
			return
		}
	}
}

// RegionIterator walks only the cells whose extent can overlap [low,
// high), found via CellBlock's own coordinate mapping, then filters to
// particles whose position actually falls inside the region.
func (lc *LinkedCells[P]) RegionIterator(low, high mgl64.Vec3, fn func(p P) bool) {
	loIdx := lc.cb.CellIndexOf(low)
	hiIdx := lc.cb.CellIndexOf(high)
	lx, ly, lz := lc.cb.Coords(loIdx)
	hx, hy, hz := lc.cb.Coords(hiIdx)
	if lx > hx {
		lx, hx = hx, lx
	}
	if ly > hy {
		ly, hy = hy, ly
	}
	if lz > hz {
		lz, hz = hz, lz
	}

	for z := lz; z <= hz; z++ {
		for y := ly; y <= hy; y++ {
			for x := lx; x <= hx; x++ {
				c := lc.cb.CellAt(lc.cb.Index(x, y, z))
				cont := true
				c.Each(func(_ int, p P) bool {
					if !particle.InBox(p.Position(), low, high) {
						return true
					}
					if !fn(p) {
						cont = false
						return false
					}
					return true
				})
				if !cont {
					return
				}
			}
		}
	}
}

func (lc *LinkedCells[P]) NumParticles() int {
	n := 0
	lc.Iterate(func(P) bool { n++; return true })
	return n
}

func (lc *LinkedCells[P]) BoxMin() mgl64.Vec3 { return lc.cb.BoxMin() }
func (lc *LinkedCells[P]) BoxMax() mgl64.Vec3 { return lc.cb.BoxMax() }

// IteratePairwise builds a default traversal for the requested
// layout/Newton3 combination (C08 when newton3, C01 otherwise) and
// runs it. Callers that need a specific scheme (c18, c04, sliced) for
// tuning should build a traversal.Traversal directly via CellBlock()
// instead of going through this convenience entry point; the top-level
// autopas facade does exactly that for the plan selector.Select returns.
func (lc *LinkedCells[P]) IteratePairwise(f functor.Functor[P], layout functor.Layout, newton3 bool, numWorkers int) error {
	cf := functor.NewCellFunctor[P](f, layout, newton3)
	var t traversal.Traversal[P]
	if newton3 {
		t = traversal.NewC08[P](lc.cb, cf, lc.interactionLength, numWorkers)
	} else {
		t = traversal.NewC01[P](lc.cb, cf, lc.interactionLength, numWorkers)
	}

	lc.RunTraversal(t, f, layout)
	return nil
}

// RunTraversal executes any already-constructed traversal.Traversal[P]
// bound to this cell block against f, bracketing it with SoA
// gather/scatter when the traversal's layout calls for it. Exported so
// a driver that needs a traversal scheme other than IteratePairwise's
// two built-in defaults (e.g. the selector-driven c18/c04/sliced
// schemes the top-level facade picks) can build one directly against
// CellBlock() and still get the same SoA bracketing discipline.
func (lc *LinkedCells[P]) RunTraversal(t traversal.Traversal[P], f functor.Functor[P], layout functor.Layout) {
	if layout == functor.LayoutSoA {
		lc.loadAllSoABuffers(f)
	}
	t.TraverseParticlePairs()
	if layout == functor.LayoutSoA {
		lc.extractAllSoABuffers(f)
	}
}

// loadAllSoABuffers/extractAllSoABuffers gather/scatter every cell's
// side-car SoA buffer around an SoA-layout traversal; cell.Cell's own
// contract says a cell's SoA buffer is invalid after any structural
// mutation, so this always repopulates from scratch rather than
// trusting a stale buffer from a previous step.
func (lc *LinkedCells[P]) loadAllSoABuffers(f functor.Functor[P]) {
	for idx := 0; idx < lc.cb.NumCells(); idx++ {
		c := lc.cb.CellAt(idx)
		c.SoABuffer().Resize(c.Len())
		f.SoALoader(c, c.SoABuffer(), 0)
	}
}

func (lc *LinkedCells[P]) extractAllSoABuffers(f functor.Functor[P]) {
	for idx := 0; idx < lc.cb.NumCells(); idx++ {
		c := lc.cb.CellAt(idx)
		f.SoAExtractor(c, c.SoABuffer(), 0)
	}
}
