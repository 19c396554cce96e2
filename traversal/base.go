package traversal

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/autopas-go/autopas/cellblock"
	"github.com/autopas-go/autopas/functor"
	"github.com/autopas-go/autopas/particle"
)

// panicCarrier lets every worker goroutine in a color/slab fan-out
// recover its own panic (so one cell's invariant violation can never
// crash the whole process) while still making that panic reach the
// single recover() in autopas.go.AutoPas[P].IteratePairwise: each
// worker's recovered value is captured here, and once every worker in
// the group has finished, the first captured value is re-thrown in
// the caller's own goroutine. Only the first captured panic survives;
// later ones are dropped rather than overwriting it.
type panicCarrier struct {
	mu sync.Mutex
	v  any
}

// capture runs fn, converting any panic into a recovered value stored
// on c instead of letting it unwind this goroutine's stack past fn.
func (c *panicCarrier) capture(fn func()) error {
	defer func() {
		if r := recover(); r != nil {
			c.mu.Lock()
			if c.v == nil {
				c.v = r
			}
			c.mu.Unlock()
		}
	}()
	fn()
	return nil
}

// rethrow re-panics with the first captured value, if any. Call this
// only after every worker that might call capture has finished.
func (c *panicCarrier) rethrow() {
	if c.v != nil {
		panic(c.v)
	}
}

// runColoredBaseStep partitions every interior cell into
// NumColors(overlap) colors via ColorOf, then processes one color at a
// time: within a color, every member cell is dispatched to its own
// goroutine (capped at numWorkers concurrently via errgroup.SetLimit),
// and the whole color is joined before the next color starts. No two
// cells sharing a color have overlapping stencils, so this is race
// free for any numWorkers regardless of which half-stencil offsets are
// passed in.
func runColoredBaseStep[P particle.Particle[P]](
	cb *cellblock.CellBlock[P],
	cf *functor.CellFunctor[P],
	offsets []CellOffset,
	overlap int,
	numWorkers int,
) {
	dims := cb.Dims()
	byColor := make([][][3]int, NumColors(overlap))
	cb.EachInteriorCoord(func(x, y, z int) {
		c := ColorOf(x, y, z, overlap)
		byColor[c] = append(byColor[c], [3]int{x, y, z})
	})

	for _, members := range byColor {
		if len(members) == 0 {
			continue
		}
		g := new(errgroup.Group)
		if numWorkers > 0 {
			g.SetLimit(numWorkers)
		}
		var pc panicCarrier
		for _, coord := range members {
			coord := coord
			g.Go(func() error {
				return pc.capture(func() {
					processBaseCellPairs(cb, cf, offsets, coord[0], coord[1], coord[2], dims)
				})
			})
		}
		_ = g.Wait() // processBaseCellPairs never returns an error of its own
		pc.rethrow()
	}
}

// runUncoloredBaseStep dispatches every interior cell to its own
// goroutine at once (capped at numWorkers), relying on fn to only ever
// write to its own base cell's particles -- the c01 safety property.
func runUncoloredBaseStep[P particle.Particle[P]](
	cb *cellblock.CellBlock[P],
	numWorkers int,
	fn func(cb *cellblock.CellBlock[P], x, y, z int),
) {
	g := new(errgroup.Group)
	if numWorkers > 0 {
		g.SetLimit(numWorkers)
	}
	var pc panicCarrier
	cb.EachInteriorCoord(func(x, y, z int) {
		g.Go(func() error {
			return pc.capture(func() {
				fn(cb, x, y, z)
			})
		})
	})
	_ = g.Wait()
	pc.rethrow()
}

func processBaseCellPairs[P particle.Particle[P]](
	cb *cellblock.CellBlock[P],
	cf *functor.CellFunctor[P],
	offsets []CellOffset,
	x, y, z int,
	dims cellblock.Dims,
) {
	base := cb.CellAt(cb.Index(x, y, z))
	cf.ProcessCell(base)
	for _, o := range offsets {
		nx, ny, nz := x+o.DX, y+o.DY, z+o.DZ
		if nx < 0 || nx >= dims.X || ny < 0 || ny >= dims.Y || nz < 0 || nz >= dims.Z {
			continue
		}
		neighbor := cb.CellAt(cb.Index(nx, ny, nz))
		cf.ProcessCellPair(base, neighbor)
	}
}
