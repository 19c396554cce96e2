// Package cell implements ParticleCell: an add-by-copy, swap-delete,
// forward-iterable store of particles with a side-car SoA buffer, in
// both full (all attributes) and reduced-memory (position+force only)
// flavors.
package cell

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/autopas-go/autopas/internal/handle"
	"github.com/autopas-go/autopas/particle"
	"github.com/autopas-go/autopas/soa"
)

// Cell is the contract every container's storage satisfies. P is
// self-bounded to particle.Particle[P] throughout this module; see
// particle.Particle's doc comment for why.
type Cell[P particle.Particle[P]] interface {
	// Add appends a container-owned copy of p (via p.Clone()) and
	// returns the Handle identifying the new row.
	Add(p P) handle.Handle

	// Clear removes every particle, invalidating all handles.
	Clear()

	// RemoveAt deletes the particle at row i by swapping it with the
	// last row and popping. It returns the handle of whichever
	// particle now occupies row i (the zero Handle if i was last).
	RemoveAt(i int) handle.Handle

	// Len reports the particle count.
	Len() int

	// At returns the particle at row i. The reference is valid until
	// the next structural mutation (Add/RemoveAt/Clear) of this cell.
	At(i int) P

	// Each calls fn for every particle in forward order, stopping
	// early if fn returns false. Each must not be called concurrently
	// with a structural mutation of the same cell.
	Each(fn func(i int, p P) bool)

	// SoABuffer returns the cell's side-car SoA buffer. It is the
	// caller's job to treat it as invalidated after a structural
	// mutation and repopulate it via a Functor's SoALoader before the
	// next SoA traversal.
	SoABuffer() *soa.Buffer

	// CellLength is the cell's side length, set at construction and
	// carried for geometry.
	CellLength() float64

	// RMM reports whether this cell is a reduced-memory-mode cell
	// (positions and forces only, no ids) -- functors that need
	// AttrID/AttrOwnership must check this before relying on those
	// columns.
	RMM() bool
}

// Full is the default ParticleCell: keeps every particle attribute
// (via Clone) and a side-car SoA buffer.
type Full[P particle.Particle[P]] struct {
	arena      *handle.Arena
	particles  []P
	handles    []handle.Handle
	soaBuf     *soa.Buffer
	cellLength float64
}

// NewFull builds an empty Full cell with the given side length and
// arena id (typically the cell's lexicographic index in its
// CellBlock, so handles minted here are distinguishable from those of
// every other cell).
func NewFull[P particle.Particle[P]](arenaID uint32, cellLength float64) *Full[P] {
	return &Full[P]{
		arena:      handle.NewArena(arenaID),
		soaBuf:     soa.New(),
		cellLength: cellLength,
	}
}

func (c *Full[P]) Add(p P) handle.Handle {
	row := uint32(len(c.particles))
	h := c.arena.Alloc(row)
	c.particles = append(c.particles, p.Clone())
	c.handles = append(c.handles, h)
	return h
}

func (c *Full[P]) Clear() {
	for i := range c.particles {
		c.arena.Free(uint32(i))
	}
	c.particles = c.particles[:0]
	c.handles = c.handles[:0]
}

func (c *Full[P]) RemoveAt(i int) handle.Handle {
	n := len(c.particles)
	last := n - 1
	c.arena.Free(uint32(i))
	if i != last {
		c.arena.Free(uint32(last))
		c.particles[i] = c.particles[last]
		movedRow := uint32(i)
		c.handles[i] = c.arena.Alloc(movedRow)
	}
	c.particles = c.particles[:last]
	c.handles = c.handles[:last]
	if i != last {
		return c.handles[i]
	}
	return handle.Handle{}
}

func (c *Full[P]) Len() int { return len(c.particles) }

func (c *Full[P]) At(i int) P { return c.particles[i] }

func (c *Full[P]) Each(fn func(i int, p P) bool) {
	for i, p := range c.particles {
		if !fn(i, p) {
			return
		}
	}
}

func (c *Full[P]) SoABuffer() *soa.Buffer { return c.soaBuf }

func (c *Full[P]) CellLength() float64 { return c.cellLength }

func (c *Full[P]) RMM() bool { return false }

// HandleAt returns the current Handle of row i, a stable key for
// callers that want one rather than a raw index.
func (c *Full[P]) HandleAt(i int) handle.Handle { return c.handles[i] }

// RMM is the reduced-memory-mode ParticleCell: only positions and
// forces are retained, trading the ability to carry id/ownership
// per-particle for a smaller footprint. Since At/Each must still hand
// back a full P, RMM is constructed with a factory that stamps every
// reconstructed particle with the same id/ownership (typically
// StateOwned, id 0) -- callers that need real per-particle ids must
// use Full instead. RMM exists for bulk passes (e.g. a rebuild
// traversal's scratch cells) where only r and F are read or written.
type RMM[P particle.Particle[P]] struct {
	arena      *handle.Arena
	positions  []mgl64.Vec3
	forces     []mgl64.Vec3
	soaBuf     *soa.Buffer
	cellLength float64
	zero       func() P
}

// NewRMM builds an empty RMM cell. zero must return a fresh P whose
// Position/Force will be overwritten by Add/At; its id/ownership
// fields are reused for every reconstructed particle.
func NewRMM[P particle.Particle[P]](arenaID uint32, cellLength float64, zero func() P) *RMM[P] {
	return &RMM[P]{
		arena:      handle.NewArena(arenaID),
		soaBuf:     soa.New(),
		cellLength: cellLength,
		zero:       zero,
	}
}

func (c *RMM[P]) Add(p P) handle.Handle {
	row := uint32(len(c.positions))
	h := c.arena.Alloc(row)
	c.positions = append(c.positions, p.Position())
	c.forces = append(c.forces, p.Force())
	return h
}

func (c *RMM[P]) Clear() {
	for i := range c.positions {
		c.arena.Free(uint32(i))
	}
	c.positions = c.positions[:0]
	c.forces = c.forces[:0]
}

func (c *RMM[P]) RemoveAt(i int) handle.Handle {
	last := len(c.positions) - 1
	c.arena.Free(uint32(i))
	var out handle.Handle
	if i != last {
		c.arena.Free(uint32(last))
		c.positions[i] = c.positions[last]
		c.forces[i] = c.forces[last]
		out = c.arena.Alloc(uint32(i))
	}
	c.positions = c.positions[:last]
	c.forces = c.forces[:last]
	return out
}

func (c *RMM[P]) Len() int { return len(c.positions) }

func (c *RMM[P]) At(i int) P {
	p := c.zero()
	p.SetPosition(c.positions[i])
	p.SetForce(c.forces[i])
	return p
}

func (c *RMM[P]) Each(fn func(i int, p P) bool) {
	for i := range c.positions {
		if !fn(i, c.At(i)) {
			return
		}
	}
}

func (c *RMM[P]) SoABuffer() *soa.Buffer { return c.soaBuf }

func (c *RMM[P]) CellLength() float64 { return c.cellLength }

func (c *RMM[P]) RMM() bool { return true }
