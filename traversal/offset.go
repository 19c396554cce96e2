package traversal

import "math"

// CellOffset is a cell-grid-relative displacement (dx, dy, dz).
type CellOffset struct{ DX, DY, DZ int }

// Overlap is the number of cell layers a particle in one cell can
// reach with an interaction of range interactionLength, given cells of
// side cellLength: ceil(interactionLength / cellLength).
func Overlap(interactionLength, cellLength float64) int {
	o := int(math.Ceil(interactionLength / cellLength))
	if o < 1 {
		return 1
	}
	return o
}

// BuildHalfStencil returns the canonical half-shell of cell offsets
// reaching within interactionLength of the base cell, keeping exactly
// one of each {delta, -delta} pair: the one whose first nonzero
// component is positive. Half-stencil traversals (c08, c18, c04,
// sliced) call functor.CellFunctor.ProcessCellPair once per returned
// offset and rely on this dedup to never schedule the reverse ordering
// separately.
func BuildHalfStencil(overlap int, cellLength, interactionLength float64) []CellOffset {
	var out []CellOffset
	for dz := -overlap; dz <= overlap; dz++ {
		for dy := -overlap; dy <= overlap; dy++ {
			for dx := -overlap; dx <= overlap; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				if !isRepresentative(dx, dy, dz) {
					continue
				}
				if minCellDistance(dx, dy, dz, cellLength) > interactionLength {
					continue
				}
				out = append(out, CellOffset{dx, dy, dz})
			}
		}
	}
	return out
}

// BuildFullSphere returns every offset (both orderings) within range,
// for traversals (c01) that visit each base cell's full neighborhood
// and rely on the other cell's own base-cell pass to cover the reverse
// ordering.
func BuildFullSphere(overlap int, cellLength, interactionLength float64) []CellOffset {
	var out []CellOffset
	for dz := -overlap; dz <= overlap; dz++ {
		for dy := -overlap; dy <= overlap; dy++ {
			for dx := -overlap; dx <= overlap; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				if minCellDistance(dx, dy, dz, cellLength) > interactionLength {
					continue
				}
				out = append(out, CellOffset{dx, dy, dz})
			}
		}
	}
	return out
}

func isRepresentative(dx, dy, dz int) bool {
	if dz != 0 {
		return dz > 0
	}
	if dy != 0 {
		return dy > 0
	}
	return dx > 0
}

// minCellDistance is the minimum possible distance between any point
// in the base cell's axis-aligned box and any point in the box offset
// by (dx, dy, dz) cells of side cellLength: adjacent cells (|d|<=1)
// touch (distance 0); each extra cell of separation on an axis adds
// one full cellLength of gap on that axis.
func minCellDistance(dx, dy, dz int, cellLength float64) float64 {
	axis := func(n int) float64 {
		if n < 0 {
			n = -n
		}
		if n <= 1 {
			return 0
		}
		return float64(n-1) * cellLength
	}
	x, y, z := axis(dx), axis(dy), axis(dz)
	return math.Sqrt(x*x + y*y + z*z)
}

// ColorOf assigns a color to a base-cell coordinate such that any two
// cells sharing a color never have overlapping stencils: residues are
// taken mod (2*overlap+1) per axis, which is always strictly greater
// than the combined reach (2*overlap) of two stencils pointed at each
// other. This is one safe, general coloring usable by every
// coloring-based traversal (c08, c18, c04); it trades the source's
// exact minimal-color counts (8/18/4) for a single, always-correct
// rule, since the count is an implementation detail -- the no-overlap
// property is the invariant that actually matters for interior
// force-pair coverage and the parallel-safety guarantee traversals
// must provide.
func ColorOf(x, y, z, overlap int) int {
	period := 2*overlap + 1
	return mod(x, period) + period*(mod(y, period)+period*mod(z, period))
}

// NumColors is the number of distinct values ColorOf can return.
func NumColors(overlap int) int {
	period := 2*overlap + 1
	return period * period * period
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
