// Package container defines the common container contract every
// concrete particle container (direct sum, linked cells, Verlet lists,
// Verlet-cluster lists) implements, and the updateContainer
// partitioning rule shared by every one of them.
package container

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/autopas-go/autopas/functor"
	"github.com/autopas-go/autopas/particle"
)

// Container is the storage+traversal-dispatch contract the top-level
// facade (package autopas) drives. Every concrete container owns its
// particles; AddParticle/AddHaloParticle copy the given particle in
// (via Particle.Clone, same as cell.Cell.Add), never alias it.
type Container[P particle.Particle[P]] interface {
	AddParticle(p P)
	AddHaloParticle(p P)

	// DeleteHaloParticles drops every particle currently marked
	// StateHalo. Called at the start of every UpdateContainer pass,
	// since halo particles are always stale copies from a neighbor
	// rank/box and must be rebuilt fresh each step.
	DeleteHaloParticles()

	// UpdateContainer re-homes every owned particle to the cell that
	// now matches its position and returns the particles that no
	// longer belong inside [BoxMin(), BoxMax()) at all -- the set the
	// facade must migrate out or exchange with a neighbor rank. The
	// second result reports whether the pass made structural changes
	// that invalidate any neighbor-list index built over the previous
	// arrangement.
	UpdateContainer() (leavers []P, rebuildNeeded bool)

	// Iterate visits every owned particle (StateOwned), stopping early
	// if fn returns false.
	Iterate(fn func(p P) bool)

	// RegionIterator visits every owned or halo particle whose
	// position falls in the half-open box [low, high), restricted to
	// cells that can possibly overlap the region.
	RegionIterator(low, high mgl64.Vec3, fn func(p P) bool)

	NumParticles() int
	BoxMin() mgl64.Vec3
	BoxMax() mgl64.Vec3

	// IteratePairwise drives every in-range particle pair through f
	// using the given layout/Newton3 combination, updating forces (and
	// whatever f's own accumulators track). The container picks which
	// traversal scheme realizes this; callers that care which one ran
	// use a selector.Configuration built around the same container.
	IteratePairwise(f functor.Functor[P], layout functor.Layout, newton3 bool, numWorkers int) error
}

// PartitionByBox splits particles into those whose position is still
// inside [boxMin, boxMax) (half-open on every axis, per
// particle.InBox) and those that have left. It is the shared core of
// every container's UpdateContainer: a particle's home cell may have
// changed without it leaving the box at all, which containers handle
// internally; PartitionByBox only answers the coarser "is it still
// ours" question the facade needs for cross-rank migration.
func PartitionByBox[P particle.Particle[P]](particles []P, boxMin, boxMax mgl64.Vec3) (stay, leave []P) {
	for _, p := range particles {
		if particle.InBox(p.Position(), boxMin, boxMax) {
			stay = append(stay, p)
		} else {
			leave = append(leave, p)
		}
	}
	return
}
