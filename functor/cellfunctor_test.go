package functor_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/autopas-go/autopas/cell"
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

// countingFunctor records every AoSFunctor call's (i, j, newton3)
// triple so tests can assert the exact visitation multiplicities
// required of every pair.
type countingFunctor struct {
	calls         [][3]uint64 // i.ID(), j.ID(), newton3-as-0-or-1
	soaSingle     int
	soaPairCalls  int
}

func (f *countingFunctor) AoSFunctor(i, j *tp, newton3 bool) {
	n3 := uint64(0)
	if newton3 {
		n3 = 1
	}
	f.calls = append(f.calls, [3]uint64{i.ID(), j.ID(), n3})
}
func (f *countingFunctor) SoAFunctorSingle(buf *soa.Buffer, newton3 bool) { f.soaSingle++ }
func (f *countingFunctor) SoAFunctorPair(buf1, buf2 *soa.Buffer, newton3 bool) {
	f.soaPairCalls++
}
func (f *countingFunctor) SoAFunctorVerlet(buf *soa.Buffer, neighbors [][]int32, iFrom, iTo int, newton3 bool) {
}
func (f *countingFunctor) SoALoader(c cell.Cell[*tp], buf *soa.Buffer, offset int) {
	functor.LoadPositionForceColumns[*tp](c, buf, offset)
}
func (f *countingFunctor) SoAExtractor(c cell.Cell[*tp], buf *soa.Buffer, offset int) {
	functor.ExtractForceColumns[*tp](c, buf, offset)
}
func (f *countingFunctor) InitTraversal()         {}
func (f *countingFunctor) EndTraversal(bool)      {}
func (f *countingFunctor) AllowsNewton3() bool    { return true }
func (f *countingFunctor) AllowsNonNewton3() bool { return true }
func (f *countingFunctor) IsRelevantForTuning() bool { return true }
func (f *countingFunctor) NeededAttrs() []soa.AttributeID {
	return []soa.AttributeID{soa.AttrPosX, soa.AttrPosY, soa.AttrPosZ}
}
func (f *countingFunctor) ComputedAttrs() []soa.AttributeID {
	return []soa.AttributeID{soa.AttrForceX, soa.AttrForceY, soa.AttrForceZ}
}

func fourParticleCell() cell.Cell[*tp] {
	c := cell.NewFull[*tp](0, 1.0)
	for i := uint64(0); i < 4; i++ {
		c.Add(&tp{id: i, own: particle.StateOwned, r: mgl64.Vec3{float64(i), 0, 0}})
	}
	return c
}

func TestProcessCellAoSNewton3VisitsEachUnorderedPairOnce(t *testing.T) {
	f := &countingFunctor{}
	cf := functor.NewCellFunctor[*tp](f, functor.LayoutAoS, true)
	cf.ProcessCell(fourParticleCell())

	require.Len(t, f.calls, 6) // C(4,2)
	for _, c := range f.calls {
		require.Equal(t, uint64(1), c[2])
		require.Less(t, c[0], c[1], "N3 intra-cell visits i<j only")
	}
}

func TestProcessCellAoSNoNewton3VisitsEachOrderingOnce(t *testing.T) {
	f := &countingFunctor{}
	cf := functor.NewCellFunctor[*tp](f, functor.LayoutAoS, false)
	cf.ProcessCell(fourParticleCell())

	require.Len(t, f.calls, 12) // 4*3
	for _, c := range f.calls {
		require.Equal(t, uint64(0), c[2])
		require.NotEqual(t, c[0], c[1])
	}
}

func TestProcessCellPairAoSNewton3(t *testing.T) {
	f := &countingFunctor{}
	cf := functor.NewCellFunctor[*tp](f, functor.LayoutAoS, true)

	c1 := cell.NewFull[*tp](0, 1.0)
	c1.Add(&tp{id: 1})
	c1.Add(&tp{id: 2})
	c2 := cell.NewFull[*tp](1, 1.0)
	c2.Add(&tp{id: 3})

	cf.ProcessCellPair(c1, c2)
	require.Len(t, f.calls, 2)
	for _, c := range f.calls {
		require.Equal(t, uint64(1), c[2])
		require.Equal(t, uint64(3), c[1])
	}
}

func TestProcessCellPairAoSNoNewton3CallsBothOrderings(t *testing.T) {
	f := &countingFunctor{}
	cf := functor.NewCellFunctor[*tp](f, functor.LayoutAoS, false)

	c1 := cell.NewFull[*tp](0, 1.0)
	c1.Add(&tp{id: 1})
	c2 := cell.NewFull[*tp](1, 1.0)
	c2.Add(&tp{id: 2})

	cf.ProcessCellPair(c1, c2)
	require.Len(t, f.calls, 2)
	require.Equal(t, [3]uint64{1, 2, 0}, f.calls[0])
	require.Equal(t, [3]uint64{2, 1, 0}, f.calls[1])
}

func TestProcessCellPairSoANewton3CallsOnce(t *testing.T) {
	f := &countingFunctor{}
	cf := functor.NewCellFunctor[*tp](f, functor.LayoutSoA, true)
	cf.ProcessCellPair(fourParticleCell(), fourParticleCell())
	require.Equal(t, 1, f.soaPairCalls)
}

func TestProcessCellPairSoANoNewton3CallsTwice(t *testing.T) {
	f := &countingFunctor{}
	cf := functor.NewCellFunctor[*tp](f, functor.LayoutSoA, false)
	cf.ProcessCellPair(fourParticleCell(), fourParticleCell())
	require.Equal(t, 2, f.soaPairCalls)
}
