package functor

import (
	"github.com/autopas-go/autopas/cell"
	"github.com/autopas-go/autopas/particle"
)

// Layout is the pair layout a CellFunctor drives a Functor through.
type Layout int

const (
	LayoutAoS Layout = iota
	LayoutSoA
	// LayoutCuda is a recognized configuration tag with no
	// implementation anywhere in this module (CUDA offload is out of
	// scope); it exists so the selector's TraversalNotApplicable path
	// has a real layout value to reject.
	LayoutCuda
)

// CellFunctor enumerates pairs within one cell (ProcessCell) and
// between two cells (ProcessCellPair), deciding exactly which AoS/SoA
// entry point is called, how many times, and in which argument order,
// as a function of Layout and Newton3.
type CellFunctor[P particle.Particle[P]] struct {
	F       Functor[P]
	Layout  Layout
	Newton3 bool
}

// NewCellFunctor builds a CellFunctor bound to f.
func NewCellFunctor[P particle.Particle[P]](f Functor[P], layout Layout, newton3 bool) *CellFunctor[P] {
	return &CellFunctor[P]{F: f, Layout: layout, Newton3: newton3}
}

// ProcessCell evaluates every in-range pair inside one cell.
func (cf *CellFunctor[P]) ProcessCell(c cell.Cell[P]) {
	if cf.Layout == LayoutSoA {
		cf.F.SoAFunctorSingle(c.SoABuffer(), cf.Newton3)
		return
	}

	n := c.Len()
	if cf.Newton3 {
		// AoS-N3 intra-cell: each unordered pair visited once.
		for i := 0; i < n; i++ {
			pi := c.At(i)
			for j := i + 1; j < n; j++ {
				cf.F.AoSFunctor(pi, c.At(j), true)
			}
		}
		return
	}
	// AoS-no-N3 intra-cell: each unordered pair visited twice, once
	// in each ordering.
	for i := 0; i < n; i++ {
		pi := c.At(i)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			cf.F.AoSFunctor(pi, c.At(j), false)
		}
	}
}

// ProcessCellPair evaluates every in-range pair between two distinct
// cells.
func (cf *CellFunctor[P]) ProcessCellPair(c1, c2 cell.Cell[P]) {
	if cf.Layout == LayoutSoA {
		cf.F.SoAFunctorPair(c1.SoABuffer(), c2.SoABuffer(), cf.Newton3)
		if !cf.Newton3 {
			// no-N3 two-SoA form is called twice with swapped args.
			cf.F.SoAFunctorPair(c2.SoABuffer(), c1.SoABuffer(), false)
		}
		return
	}

	n1, n2 := c1.Len(), c2.Len()
	if cf.Newton3 {
		for i := 0; i < n1; i++ {
			pi := c1.At(i)
			for j := 0; j < n2; j++ {
				cf.F.AoSFunctor(pi, c2.At(j), true)
			}
		}
		return
	}
	for i := 0; i < n1; i++ {
		pi := c1.At(i)
		for j := 0; j < n2; j++ {
			pj := c2.At(j)
			cf.F.AoSFunctor(pi, pj, false)
			cf.F.AoSFunctor(pj, pi, false)
		}
	}
}
