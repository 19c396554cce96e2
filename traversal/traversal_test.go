package traversal_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/autopas-go/autopas/cell"
	"github.com/autopas-go/autopas/cellblock"
	"github.com/autopas-go/autopas/functor"
	"github.com/autopas-go/autopas/particle"
	"github.com/autopas-go/autopas/soa"
	"github.com/autopas-go/autopas/traversal"
)

type tp struct {
	r, f mgl64.Vec3
	id   uint64
	own  particle.OwnershipState
}

func (p *tp) Position() mgl64.Vec3                   { return p.r }
func (p *tp) SetPosition(r mgl64.Vec3)               { p.r = r }
func (p *tp) Force() mgl64.Vec3                      { return p.f }
func (p *tp) SetForce(f mgl64.Vec3)                  { p.f = f }
func (p *tp) AddForce(f mgl64.Vec3)                  { p.f = p.f.Add(f) }
func (p *tp) ID() uint64                             { return p.id }
func (p *tp) Ownership() particle.OwnershipState     { return p.own }
func (p *tp) SetOwnership(s particle.OwnershipState) { p.own = s }
func (p *tp) Clone() *tp                             { cp := *p; return &cp }

// pairRecorder counts how many times every unordered particle-id pair
// is visited, guarded by a mutex since traversals call it from many
// goroutines concurrently.
type pairRecorder struct {
	mu     sync.Mutex
	counts map[[2]uint64]int
}

func newPairRecorder() *pairRecorder { return &pairRecorder{counts: map[[2]uint64]int{}} }

func (r *pairRecorder) AoSFunctor(i, j *tp, newton3 bool) {
	a, b := i.ID(), j.ID()
	if a > b {
		a, b = b, a
	}
	r.mu.Lock()
	r.counts[[2]uint64{a, b}]++
	r.mu.Unlock()
}
func (r *pairRecorder) SoAFunctorSingle(buf *soa.Buffer, newton3 bool)         {}
func (r *pairRecorder) SoAFunctorPair(buf1, buf2 *soa.Buffer, newton3 bool)    {}
func (r *pairRecorder) SoAFunctorVerlet(buf *soa.Buffer, nb [][]int32, a, b int, n3 bool) {}
func (r *pairRecorder) SoALoader(c cell.Cell[*tp], buf *soa.Buffer, offset int) {
	functor.LoadPositionForceColumns[*tp](c, buf, offset)
}
func (r *pairRecorder) SoAExtractor(c cell.Cell[*tp], buf *soa.Buffer, offset int) {
	functor.ExtractForceColumns[*tp](c, buf, offset)
}
func (r *pairRecorder) InitTraversal()            {}
func (r *pairRecorder) EndTraversal(bool)         {}
func (r *pairRecorder) AllowsNewton3() bool       { return true }
func (r *pairRecorder) AllowsNonNewton3() bool    { return true }
func (r *pairRecorder) IsRelevantForTuning() bool { return true }
func (r *pairRecorder) NeededAttrs() []soa.AttributeID {
	return []soa.AttributeID{soa.AttrPosX, soa.AttrPosY, soa.AttrPosZ}
}
func (r *pairRecorder) ComputedAttrs() []soa.AttributeID {
	return []soa.AttributeID{soa.AttrForceX, soa.AttrForceY, soa.AttrForceZ}
}

// buildGrid places one particle at the center of every interior cell
// of a 4x4x4-interior CellBlock (64 particles total).
func buildGrid(t *testing.T) (*cellblock.CellBlock[*tp], int) {
	t.Helper()
	cb := cellblock.New[*tp](
		mgl64.Vec3{0, 0, 0}, mgl64.Vec3{4, 4, 4},
		1.0, 0.0, 1.0,
		func(arenaID uint32, length float64) cell.Cell[*tp] {
			return cell.NewFull[*tp](arenaID, length)
		},
	)
	count := 0
	cb.EachInteriorCoord(func(x, y, z int) {
		c := cb.CellAt(cb.Index(x, y, z))
		center := mgl64.Vec3{float64(x) - 0.5, float64(y) - 0.5, float64(z) - 0.5}
		c.Add(&tp{id: uint64(count), own: particle.StateOwned, r: center})
		count++
	})
	return cb, count
}

func uniquePairs(counts map[[2]uint64]int) (total int, maxCount int) {
	for _, c := range counts {
		total++
		if c > maxCount {
			maxCount = c
		}
	}
	return
}

func TestC08VisitsEveryInRangePairExactlyOnce(t *testing.T) {
	cb, n := buildGrid(t)
	require.Equal(t, 64, n)

	rec := newPairRecorder()
	cf := functor.NewCellFunctor[*tp](rec, functor.LayoutAoS, true)
	tr := traversal.NewC08[*tp](cb, cf, 1.0, 4)
	require.True(t, tr.IsApplicable())
	tr.TraverseParticlePairs()

	_, maxCount := uniquePairs(rec.counts)
	require.Equal(t, 1, maxCount, "Newton3 half-stencil traversal must visit every pair exactly once")
	require.NotEmpty(t, rec.counts)
}

func TestC01AndC08AgreeOnCoveredPairs(t *testing.T) {
	cb1, _ := buildGrid(t)
	rec1 := newPairRecorder()
	cf1 := functor.NewCellFunctor[*tp](rec1, functor.LayoutAoS, true)
	traversal.NewC08[*tp](cb1, cf1, 1.0, 4).TraverseParticlePairs()

	cb2, _ := buildGrid(t)
	rec2 := newPairRecorder()
	cf2 := functor.NewCellFunctor[*tp](rec2, functor.LayoutAoS, false)
	c01 := traversal.NewC01[*tp](cb2, cf2, 1.0, 4)
	require.True(t, c01.IsApplicable())
	c01.TraverseParticlePairs()

	require.Equal(t, len(rec1.counts), len(rec2.counts), "N3 and no-N3 full-sphere traversals must cover the same set of pairs")
	for k, v := range rec1.counts {
		// C08 (N3) visits each in-range pair once; C01 (no-N3) visits
		// it twice, once from each side, since a no-N3 call only ever
		// updates its first argument's force.
		require.Equal(t, 2*v, rec2.counts[k], fmt.Sprintf("pair %v visited a different number of times", k))
	}
}

func TestC18RequiresNewton3(t *testing.T) {
	cb, _ := buildGrid(t)
	rec := newPairRecorder()
	cf := functor.NewCellFunctor[*tp](rec, functor.LayoutAoS, false)
	tr := traversal.NewC18[*tp](cb, cf, 1.0, 2)
	require.False(t, tr.IsApplicable())
}

func TestSlicedFallsBackWhenTooFewSafeSlabs(t *testing.T) {
	cb, _ := buildGrid(t)
	rec := newPairRecorder()
	cf := functor.NewCellFunctor[*tp](rec, functor.LayoutAoS, true)
	// Request far more workers than the 4-deep interior can give a
	// safe (2*overlap+1)-thick slab each; must still produce complete,
	// race-free coverage by falling back to fewer slabs.
	tr := traversal.NewSliced[*tp](cb, cf, 1.0, 64)
	tr.TraverseParticlePairs()

	_, maxCount := uniquePairs(rec.counts)
	require.Equal(t, 1, maxCount)
	require.NotEmpty(t, rec.counts)
}
