package directsum_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/autopas-go/autopas/cell"
	"github.com/autopas-go/autopas/container/directsum"
	"github.com/autopas-go/autopas/functor"
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

// countingFunctor counts AoSFunctor calls, which is all directsum's
// pairwise test needs.
type countingFunctor struct{ calls int }

func (f *countingFunctor) AoSFunctor(i, j *tp, newton3 bool)                       { f.calls++ }
func (f *countingFunctor) SoAFunctorSingle(buf *soa.Buffer, newton3 bool)          {}
func (f *countingFunctor) SoAFunctorPair(buf1, buf2 *soa.Buffer, newton3 bool)     {}
func (f *countingFunctor) SoAFunctorVerlet(*soa.Buffer, [][]int32, int, int, bool) {}
func (f *countingFunctor) SoALoader(c cell.Cell[*tp], buf *soa.Buffer, offset int) {
	functor.LoadPositionForceColumns[*tp](c, buf, offset)
}
func (f *countingFunctor) SoAExtractor(c cell.Cell[*tp], buf *soa.Buffer, offset int) {
	functor.ExtractForceColumns[*tp](c, buf, offset)
}
func (f *countingFunctor) InitTraversal()            {}
func (f *countingFunctor) EndTraversal(bool)         {}
func (f *countingFunctor) AllowsNewton3() bool       { return true }
func (f *countingFunctor) AllowsNonNewton3() bool    { return true }
func (f *countingFunctor) IsRelevantForTuning() bool { return true }
func (f *countingFunctor) NeededAttrs() []soa.AttributeID {
	return []soa.AttributeID{soa.AttrPosX, soa.AttrPosY, soa.AttrPosZ}
}
func (f *countingFunctor) ComputedAttrs() []soa.AttributeID {
	return []soa.AttributeID{soa.AttrForceX, soa.AttrForceY, soa.AttrForceZ}
}

func TestIteratePairwiseVisitsEachOwnedPairOnceWithNewton3(t *testing.T) {
	ds := directsum.New[*tp](mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10})
	for i := uint64(0); i < 5; i++ {
		ds.AddParticle(&tp{id: i, r: mgl64.Vec3{float64(i), 0, 0}})
	}
	f := &countingFunctor{}
	require.NoError(t, ds.IteratePairwise(f, functor.LayoutAoS, true, 1))
	require.Equal(t, 10, f.calls) // C(5,2)
}

func TestIteratePairwiseIncludesOwnedHaloCrossPairs(t *testing.T) {
	ds := directsum.New[*tp](mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10})
	ds.AddParticle(&tp{id: 1})
	ds.AddParticle(&tp{id: 2})
	ds.AddHaloParticle(&tp{id: 3})

	f := &countingFunctor{}
	require.NoError(t, ds.IteratePairwise(f, functor.LayoutAoS, true, 1))
	require.Equal(t, 1+2, f.calls) // 1 owned-owned pair + 2 owned-halo pairs
}

func TestUpdateContainerPartitionsStayAndLeave(t *testing.T) {
	ds := directsum.New[*tp](mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10})
	ds.AddParticle(&tp{id: 1, r: mgl64.Vec3{5, 5, 5}})
	ds.AddParticle(&tp{id: 2, r: mgl64.Vec3{20, 5, 5}})

	leaving, rebuildNeeded := ds.UpdateContainer()
	require.True(t, rebuildNeeded)
	require.Len(t, leaving, 1)
	require.Equal(t, uint64(2), leaving[0].ID())
	require.Equal(t, 1, ds.NumParticles())
}

func TestDeleteHaloParticlesClearsHaloOnly(t *testing.T) {
	ds := directsum.New[*tp](mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10})
	ds.AddParticle(&tp{id: 1})
	ds.AddHaloParticle(&tp{id: 2})
	ds.DeleteHaloParticles()

	f := &countingFunctor{}
	require.NoError(t, ds.IteratePairwise(f, functor.LayoutAoS, true, 1))
	require.Equal(t, 0, f.calls)
}

func TestRegionIteratorOnlyVisitsParticlesInsideRegion(t *testing.T) {
	ds := directsum.New[*tp](mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10})
	ds.AddParticle(&tp{id: 1, r: mgl64.Vec3{1, 1, 1}})
	ds.AddParticle(&tp{id: 2, r: mgl64.Vec3{8, 8, 8}})

	var seen []uint64
	ds.RegionIterator(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{5, 5, 5}, func(p *tp) bool {
		seen = append(seen, p.ID())
		return true
	})
	require.Equal(t, []uint64{1}, seen)
}
