// Package cellblock implements CellBlock: the
// dense 3D array of cells a linked-cells style container indexes its
// domain with, one halo layer deep on every side, lexicographically
// addressed exactly like the engine's Sector/Brick 3D grid
// (voxelrt/rt/volume/xbrickmap.go) and SpatialHashGrid
// (mod_spatialgrid.go).
package cellblock

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/autopas-go/autopas/cell"
	"github.com/autopas-go/autopas/particle"
)

// Dims is the cell-grid's (nx, ny, nz) extent, halo layers included.
type Dims struct{ X, Y, Z int }

// Flags records, per cell, whether it may ever contain an owned or a
// halo particle -- the CellBorderAndFlagManager capability.
type Flags struct {
	CanContainOwned bool
	CanContainHalo  bool
}

// CellBorderAndFlagManager is the capability CellBlock exposes for
// traversals that need to know whether a cell sits on the domain
// border without walking its particle list.
type CellBorderAndFlagManager interface {
	FlagsAt(idx int) Flags
	IsHalo(idx int) bool
}

// CellBlock maps [boxMin, boxMax] to a dense grid of cells, one halo
// layer deep on each side, with lexicographic addressing
// idx = x + nx*(y + ny*z).
type CellBlock[P particle.Particle[P]] struct {
	boxMin, boxMax mgl64.Vec3
	cellLength     float64
	dims           Dims
	cells          []cell.Cell[P]
	flags          []Flags
	newCell        func(arenaID uint32, length float64) cell.Cell[P]
}

// New builds a CellBlock covering [boxMin, boxMax] with cell side
// length max(rc+skin, cellSizeFactor*rc).
// newCell constructs the concrete ParticleCell implementation (Full
// or RMM) for each grid slot.
func New[P particle.Particle[P]](
	boxMin, boxMax mgl64.Vec3,
	rc, skin, cellSizeFactor float64,
	newCell func(arenaID uint32, length float64) cell.Cell[P],
) *CellBlock[P] {
	cellLength := math.Max(rc+skin, cellSizeFactor*rc)

	dims := Dims{
		X: haloDimension(boxMax.X()-boxMin.X(), cellLength),
		Y: haloDimension(boxMax.Y()-boxMin.Y(), cellLength),
		Z: haloDimension(boxMax.Z()-boxMin.Z(), cellLength),
	}

	cb := &CellBlock[P]{
		boxMin:     boxMin,
		boxMax:     boxMax,
		cellLength: cellLength,
		dims:       dims,
		newCell:    newCell,
	}
	cb.allocate()
	return cb
}

func haloDimension(boxExtent, cellLength float64) int {
	interior := int(math.Ceil(boxExtent / cellLength))
	if interior < 1 {
		interior = 1
	}
	return interior + 2 // one halo layer each side
}

func (cb *CellBlock[P]) allocate() {
	n := cb.dims.X * cb.dims.Y * cb.dims.Z
	cb.cells = make([]cell.Cell[P], n)
	cb.flags = make([]Flags, n)
	for z := 0; z < cb.dims.Z; z++ {
		for y := 0; y < cb.dims.Y; y++ {
			for x := 0; x < cb.dims.X; x++ {
				idx := cb.Index(x, y, z)
				cb.cells[idx] = cb.newCell(uint32(idx), cb.cellLength)
				cb.flags[idx] = Flags{
					CanContainOwned: cb.isInterior(x, y, z),
					CanContainHalo:  true, // conservative: any cell, including interior ones near the border, may briefly hold a halo particle
				}
			}
		}
	}
}

func (cb *CellBlock[P]) isInterior(x, y, z int) bool {
	return x >= 1 && x <= cb.dims.X-2 &&
		y >= 1 && y <= cb.dims.Y-2 &&
		z >= 1 && z <= cb.dims.Z-2
}

// Dims reports the grid extent.
func (cb *CellBlock[P]) Dims() Dims { return cb.dims }

// CellLength reports the common cell side length.
func (cb *CellBlock[P]) CellLength() float64 { return cb.cellLength }

// BoxMin/BoxMax report the domain this block was built for.
func (cb *CellBlock[P]) BoxMin() mgl64.Vec3 { return cb.boxMin }
func (cb *CellBlock[P]) BoxMax() mgl64.Vec3 { return cb.boxMax }

// Index maps a 3D cell coordinate to its lexicographic slot,
// idx = x + nx*(y + ny*z).
func (cb *CellBlock[P]) Index(x, y, z int) int {
	return x + cb.dims.X*(y+cb.dims.Y*z)
}

// Coords is the inverse of Index.
func (cb *CellBlock[P]) Coords(idx int) (x, y, z int) {
	x = idx % cb.dims.X
	rem := idx / cb.dims.X
	y = rem % cb.dims.Y
	z = rem / cb.dims.Y
	return
}

// CellAt returns the cell at lexicographic index idx.
func (cb *CellBlock[P]) CellAt(idx int) cell.Cell[P] { return cb.cells[idx] }

// NumCells is the total number of cells, halo layer included.
func (cb *CellBlock[P]) NumCells() int { return len(cb.cells) }

// CellIndexOf returns the lexicographic index of the cell that should
// own a particle at world position r. Positions outside the grid
// (including deep outside the halo) are clamped to the nearest valid
// cell so callers can always safely index, but the caller must check
// particle.InBox separately if "is this still owned" matters.
func (cb *CellBlock[P]) CellIndexOf(r mgl64.Vec3) int {
	x := cb.axisIndex(r.X(), cb.boxMin.X(), cb.dims.X)
	y := cb.axisIndex(r.Y(), cb.boxMin.Y(), cb.dims.Y)
	z := cb.axisIndex(r.Z(), cb.boxMin.Z(), cb.dims.Z)
	return cb.Index(x, y, z)
}

func (cb *CellBlock[P]) axisIndex(v, boxMinAxis float64, dim int) int {
	idx := int(math.Floor((v-boxMinAxis)/cb.cellLength)) + 1 // +1 to skip the low halo layer
	if idx < 0 {
		idx = 0
	}
	if idx > dim-1 {
		idx = dim - 1
	}
	return idx
}

// FlagsAt implements CellBorderAndFlagManager.
func (cb *CellBlock[P]) FlagsAt(idx int) Flags { return cb.flags[idx] }

// IsHalo implements CellBorderAndFlagManager: a cell is a halo cell
// iff it cannot contain an owned particle.
func (cb *CellBlock[P]) IsHalo(idx int) bool { return !cb.flags[idx].CanContainOwned }

// EachInteriorCoord calls fn for every non-halo (owned-eligible) cell
// coordinate, the base-cell universe every linked-cells traversal
// schedules colors/slabs over.
func (cb *CellBlock[P]) EachInteriorCoord(fn func(x, y, z int)) {
	for z := 1; z <= cb.dims.Z-2; z++ {
		for y := 1; y <= cb.dims.Y-2; y++ {
			for x := 1; x <= cb.dims.X-2; x++ {
				fn(x, y, z)
			}
		}
	}
}
