// Package directsum implements the direct-sum container: the O(n^2)
// i<j baseline every
// other container is checked against. It stores owned and halo
// particles in two plain cells and lets functor.CellFunctor's existing
// one-cell/two-cell pair rules do all the work -- a direct-sum
// container is exactly "one cell of owned particles plus one cell of
// halo particles", so there is nothing bespoke to write for the pair
// enumeration itself.
package directsum

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/autopas-go/autopas/cell"
	"github.com/autopas-go/autopas/container"
	"github.com/autopas-go/autopas/functor"
	"github.com/autopas-go/autopas/particle"
)

// DirectSum is a container.Container backed by two cell.Full cells: an
// owned-particle cell and a halo-particle cell.
type DirectSum[P particle.Particle[P]] struct {
	boxMin, boxMax mgl64.Vec3
	owned          *cell.Full[P]
	halo           *cell.Full[P]
}

// New builds an empty DirectSum container over [boxMin, boxMax].
func New[P particle.Particle[P]](boxMin, boxMax mgl64.Vec3) *DirectSum[P] {
	return &DirectSum[P]{
		boxMin: boxMin,
		boxMax: boxMax,
		owned:  cell.NewFull[P](0, 0),
		halo:   cell.NewFull[P](1, 0),
	}
}

func (d *DirectSum[P]) AddParticle(p P) {
	p.SetOwnership(particle.StateOwned)
	d.owned.Add(p)
}

func (d *DirectSum[P]) AddHaloParticle(p P) {
	p.SetOwnership(particle.StateHalo)
	d.halo.Add(p)
}

func (d *DirectSum[P]) DeleteHaloParticles() {
	d.halo.Clear()
}

func (d *DirectSum[P]) UpdateContainer() ([]P, bool) {
	all := snapshot(d.owned)
	stay, leave := container.PartitionByBox[P](all, d.boxMin, d.boxMax)
	d.owned.Clear()
	for _, p := range stay {
		d.owned.Add(p)
	}
	return leave, len(leave) > 0
}

func snapshot[P particle.Particle[P]](c *cell.Full[P]) []P {
	out := make([]P, 0, c.Len())
	c.Each(func(_ int, p P) bool {
		out = append(out, p)
		return true
	})
	return out
}

func (d *DirectSum[P]) Iterate(fn func(p P) bool) {
	d.owned.Each(func(_ int, p P) bool { return fn(p) })
}

func (d *DirectSum[P]) RegionIterator(low, high mgl64.Vec3, fn func(p P) bool) {
	visit := func(_ int, p P) bool {
		if particle.InBox(p.Position(), low, high) {
			return fn(p)
		}
		return true
	}
	if !iterateAll(d.owned, visit) {
		return
	}
	iterateAll(d.halo, visit)
}

// iterateAll runs visit over every particle in c, returning false iff
// visit itself asked to stop early.
func iterateAll[P particle.Particle[P]](c *cell.Full[P], visit func(i int, p P) bool) bool {
	cont := true
	c.Each(func(i int, p P) bool {
		if !visit(i, p) {
			cont = false
			return false
		}
		return true
	})
	return cont
}

func (d *DirectSum[P]) NumParticles() int { return d.owned.Len() }

func (d *DirectSum[P]) BoxMin() mgl64.Vec3 { return d.boxMin }
func (d *DirectSum[P]) BoxMax() mgl64.Vec3 { return d.boxMax }

// IteratePairwise evaluates every owned-owned pair via
// CellFunctor.ProcessCell (once with newton3, once in each ordering
// without, per the intra-cell multiplicity rules) and every owned-halo
// cross pair via CellFunctor.ProcessCellPair. numWorkers is accepted for
// interface symmetry with the other containers but unused: direct sum
// is always a small-N debugging/reference container, never the
// parallel hot path.
func (d *DirectSum[P]) IteratePairwise(f functor.Functor[P], layout functor.Layout, newton3 bool, numWorkers int) error {
	cf := functor.NewCellFunctor[P](f, layout, newton3)
	f.InitTraversal()
	if layout == functor.LayoutSoA {
		d.owned.SoABuffer().Resize(d.owned.Len())
		f.SoALoader(d.owned, d.owned.SoABuffer(), 0)
		d.halo.SoABuffer().Resize(d.halo.Len())
		f.SoALoader(d.halo, d.halo.SoABuffer(), 0)
	}
	cf.ProcessCell(d.owned)
	if d.halo.Len() > 0 {
		cf.ProcessCellPair(d.owned, d.halo)
	}
	if layout == functor.LayoutSoA {
		f.SoAExtractor(d.owned, d.owned.SoABuffer(), 0)
	}
	f.EndTraversal(newton3)
	return nil
}
