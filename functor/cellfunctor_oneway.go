package functor

import "github.com/autopas-go/autopas/cell"

// ProcessCellPairOneWay evaluates c1(i)-c2(j) pairs without also
// evaluating the reverse ordering. It exists for traversals (c01)
// that enumerate the full neighbor sphere around every base cell: the
// reverse ordering (c2 as base, c1 as neighbor) is already scheduled
// as its own base-cell iteration elsewhere, so calling it here too
// would double-count every pair. Half-stencil traversals (c08, c18,
// c04, sliced) must use ProcessCellPair instead, since for them the
// reverse ordering is never independently scheduled.
func (cf *CellFunctor[P]) ProcessCellPairOneWay(c1, c2 cell.Cell[P]) {
	if cf.Newton3 {
		// N3 mode already writes both sides from the single call; a
		// one-way vs two-way distinction only matters in no-N3 mode.
		cf.ProcessCellPair(c1, c2)
		return
	}
	if cf.Layout == LayoutSoA {
		cf.F.SoAFunctorPair(c1.SoABuffer(), c2.SoABuffer(), false)
		return
	}
	n1, n2 := c1.Len(), c2.Len()
	for i := 0; i < n1; i++ {
		pi := c1.At(i)
		for j := 0; j < n2; j++ {
			cf.F.AoSFunctor(pi, c2.At(j), false)
		}
	}
}
