package traversal

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/autopas-go/autopas/cellblock"
	"github.com/autopas-go/autopas/functor"
	"github.com/autopas-go/autopas/particle"
)

// Sliced splits the domain into Z-axis slabs, one per worker, and
// processes every slab's interior (cells whose full stencil stays
// inside the slab) concurrently; cells within `overlap` of a slab
// seam are deferred and processed in a final serial pass, since their
// stencil can reach into a neighboring slab that might be writing
// concurrently. When the domain is too shallow to give every
// requested worker a slab thick enough to have a safe interior, Sliced
// silently falls back to fewer, thicker slabs.
type Sliced[P particle.Particle[P]] struct {
	cb         *cellblock.CellBlock[P]
	cf         *functor.CellFunctor[P]
	offsets    []CellOffset
	overlap    int
	numWorkers int
}

func NewSliced[P particle.Particle[P]](cb *cellblock.CellBlock[P], cf *functor.CellFunctor[P], interactionLength float64, numWorkers int) *Sliced[P] {
	overlap := Overlap(interactionLength, cb.CellLength())
	return &Sliced[P]{
		cb:         cb,
		cf:         cf,
		offsets:    BuildHalfStencil(overlap, cb.CellLength(), interactionLength),
		overlap:    overlap,
		numWorkers: numWorkers,
	}
}

func (t *Sliced[P]) Type() Type { return TypeSliced }

func (t *Sliced[P]) DataLayout() DataLayout {
	if t.cf.Layout == functor.LayoutSoA {
		return DataLayoutSoA
	}
	return DataLayoutAoS
}

func (t *Sliced[P]) UseNewton3() bool { return t.cf.Newton3 }

func (t *Sliced[P]) IsApplicable() bool {
	d := t.cb.Dims()
	minInterior := d.X-2 >= 1 && d.Y-2 >= 1 && d.Z-2 >= 1
	if t.cf.Newton3 {
		return minInterior && t.cf.F.AllowsNewton3()
	}
	return minInterior && t.cf.F.AllowsNonNewton3()
}

// slabBounds splits the interior Z range [1, d.Z-2] into at most
// t.numWorkers contiguous, roughly-equal slabs, shrinking the slab
// count first if the domain can't give every slab a safe margin.
func (t *Sliced[P]) slabBounds(d cellblock.Dims) [][2]int {
	depth := d.Z - 2
	slabThickness := 2*t.overlap + 1

	numSlabs := t.numWorkers
	if numSlabs < 1 {
		numSlabs = 1
	}
	if maxSlabs := depth / slabThickness; maxSlabs >= 1 && numSlabs > maxSlabs {
		numSlabs = maxSlabs
	}
	if numSlabs > depth {
		numSlabs = depth
	}

	bounds := make([][2]int, numSlabs)
	z := 1
	remaining := depth
	for s := 0; s < numSlabs; s++ {
		share := remaining / (numSlabs - s)
		if share < 1 {
			share = 1
		}
		bounds[s] = [2]int{z, z + share - 1}
		z += share
		remaining -= share
	}
	bounds[numSlabs-1][1] = d.Z - 2 // last slab absorbs any rounding remainder
	return bounds
}

func (t *Sliced[P]) TraverseParticlePairs() {
	t.cf.F.InitTraversal()
	d := t.cb.Dims()
	bounds := t.slabBounds(d)

	var mu sync.Mutex
	var boundary [][3]int

	g := new(errgroup.Group)
	g.SetLimit(len(bounds))
	var pc panicCarrier
	for _, b := range bounds {
		b := b
		g.Go(func() error {
			return pc.capture(func() {
				var local [][3]int
				for z := b[0]; z <= b[1]; z++ {
					for y := 1; y <= d.Y-2; y++ {
						for x := 1; x <= d.X-2; x++ {
							if z-t.overlap < b[0] || z+t.overlap > b[1] {
								local = append(local, [3]int{x, y, z})
								continue
							}
							processBaseCellPairs(t.cb, t.cf, t.offsets, x, y, z, d)
						}
					}
				}
				mu.Lock()
				boundary = append(boundary, local...)
				mu.Unlock()
			})
		})
	}
	_ = g.Wait()
	pc.rethrow()

	for _, c := range boundary {
		processBaseCellPairs(t.cb, t.cf, t.offsets, c[0], c[1], c[2], d)
	}

	t.cf.F.EndTraversal(t.cf.Newton3)
}
