package verletcluster_test

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/autopas-go/autopas/cell"
	"github.com/autopas-go/autopas/container/verletcluster"
	"github.com/autopas-go/autopas/functor"
	"github.com/autopas-go/autopas/internal/aperrors"
	"github.com/autopas-go/autopas/particle"
	"github.com/autopas-go/autopas/soa"
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

func zeroDummy() *tp { return &tp{} }

// pairRecorder records every unordered real-particle pair visited,
// guarded by a mutex since the cluster coloring traversal calls it
// concurrently across towers.
type pairRecorder struct {
	mu     sync.Mutex
	counts map[[2]uint64]int
}

func newPairRecorder() *pairRecorder { return &pairRecorder{counts: map[[2]uint64]int{}} }

func (r *pairRecorder) AoSFunctor(i, j *tp, newton3 bool) {
	if i.Ownership() == particle.StateDummy || j.Ownership() == particle.StateDummy {
		return
	}
	a, b := i.ID(), j.ID()
	if a > b {
		a, b = b, a
	}
	r.mu.Lock()
	r.counts[[2]uint64{a, b}]++
	r.mu.Unlock()
}
func (r *pairRecorder) SoAFunctorSingle(*soa.Buffer, bool)                  {}
func (r *pairRecorder) SoAFunctorPair(*soa.Buffer, *soa.Buffer, bool)       {}
func (r *pairRecorder) SoAFunctorVerlet(*soa.Buffer, [][]int32, int, int, bool) {}
func (r *pairRecorder) SoALoader(cell.Cell[*tp], *soa.Buffer, int)          {}
func (r *pairRecorder) SoAExtractor(cell.Cell[*tp], *soa.Buffer, int)       {}
func (r *pairRecorder) InitTraversal()                                     {}
func (r *pairRecorder) EndTraversal(bool)                                  {}
func (r *pairRecorder) AllowsNewton3() bool                                { return true }
func (r *pairRecorder) AllowsNonNewton3() bool                             { return true }
func (r *pairRecorder) IsRelevantForTuning() bool                          { return true }
func (r *pairRecorder) NeededAttrs() []soa.AttributeID                     { return nil }
func (r *pairRecorder) ComputedAttrs() []soa.AttributeID                   { return nil }

func gridContainer(t *testing.T) (*verletcluster.VerletClusterLists[*tp], []*tp) {
	t.Helper()
	boxMin, boxMax := mgl64.Vec3{0, 0, 0}, mgl64.Vec3{6, 6, 6}
	vc := verletcluster.New[*tp](boxMin, boxMax, 1.5, 0.3, 1.0, 1, zeroDummy)

	var all []*tp
	id := uint64(0)
	for x := 0.5; x < 6; x += 1.0 {
		for y := 0.5; y < 6; y += 1.0 {
			for z := 0.5; z < 6; z += 1.0 {
				p := &tp{id: id, r: mgl64.Vec3{x, y, z}}
				vc.AddParticle(p)
				all = append(all, p)
				id++
			}
		}
	}
	return vc, all
}

func bruteForcePairs(all []*tp, cutoff float64) map[[2]uint64]bool {
	want := make(map[[2]uint64]bool)
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if all[i].Position().Sub(all[j].Position()).Len() <= cutoff {
				a, b := all[i].ID(), all[j].ID()
				want[[2]uint64{a, b}] = true
			}
		}
	}
	return want
}

func TestVerletClusterListsVisitsEveryInRangePairAtLeastOnce(t *testing.T) {
	vc, all := gridContainer(t)
	rec := newPairRecorder()
	require.NoError(t, vc.IteratePairwise(rec, functor.LayoutAoS, true, 4))

	// rc == 1.5 is the cutoff the concrete functor is responsible for
	// zeroing beyond; the cluster-coverage invariant this container
	// promises only guarantees rc+skin candidate coverage, so check
	// against that wider radius.
	want := bruteForcePairs(all, 1.5+0.3)
	for pair := range want {
		require.GreaterOrEqual(t, rec.counts[pair], 1, "pair %v within rc+skin must be visited", pair)
	}
}

func TestVerletClusterListsNewton3VisitsEachPairExactlyOnce(t *testing.T) {
	vc, all := gridContainer(t)
	rec := newPairRecorder()
	require.NoError(t, vc.IteratePairwise(rec, functor.LayoutAoS, true, 4))

	want := bruteForcePairs(all, 1.5+0.3)
	for pair, n := range rec.counts {
		if want[pair] {
			require.Equal(t, 1, n, "N3 mode must visit an in-range pair exactly once")
		}
	}
}

func TestIteratePairwiseRejectsNonAoSLayouts(t *testing.T) {
	vc, _ := gridContainer(t)
	rec := newPairRecorder()

	err := vc.IteratePairwise(rec, functor.LayoutSoA, true, 2)
	require.Error(t, err)
	kind, ok := aperrors.KindOf(err)
	require.True(t, ok)
	require.Equal(t, aperrors.KindTraversalNotApplicable, kind)
	require.Empty(t, rec.counts, "a rejected layout must not visit any pair")

	err = vc.IteratePairwise(rec, functor.LayoutCuda, true, 2)
	require.Error(t, err)
}

func TestVerletClusterListsRebuildPolicyRespectsSkin(t *testing.T) {
	vc, _ := gridContainer(t)
	rec := newPairRecorder()
	require.NoError(t, vc.IteratePairwise(rec, functor.LayoutAoS, true, 2))

	// Move one container-owned particle by less than skin/2. The skin
	// criterion alone does not call for a rebuild here (gridContainer's
	// rebuild frequency of 1 rebuilds on every call anyway); the next
	// traversal must still run cleanly.
	vc.Iterate(func(p *tp) bool {
		if p.ID() == 0 {
			p.SetPosition(p.Position().Add(mgl64.Vec3{0.05, 0, 0}))
			return false
		}
		return true
	})
	require.NotPanics(t, func() {
		_ = vc.IteratePairwise(rec, functor.LayoutAoS, true, 2)
	})
}
