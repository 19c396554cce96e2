// Package handle provides stable particle handles.
//
// A raw-pointer Verlet-list key (unordered_map<Particle*, ...>) breaks
// once a particle moves between cells, since that invalidates the
// pointer identity a list used as a key. Handle replaces the pointer
// with an (arena, slot, generation) triple so a list entry stays valid
// (or detectably stale) across structural mutation of the cell it
// used to live in.
package handle

// Handle identifies a single particle slot inside an arena (typically
// one arena per ParticleCell). Generation increments every time the
// slot is reused after a delete, so a Handle captured before a delete
// never aliases whatever particle is later placed in the same slot.
type Handle struct {
	Arena uint32
	Slot  uint32
	Gen   uint64
}

// Zero reports whether h is the zero Handle (used as a "no handle"
// sentinel by callers that keep Handle in a plain map/slice).
func (h Handle) Zero() bool { return h == Handle{} }

// Arena hands out generation-tagged slots, one per ParticleCell
// (or other owning AoS store). It never recycles a Slot number across
// generations with a stale Gen still floating around: a slot is
// reusable as soon as Free is called on it, but callers that only keep
// a Handle value (not a live index into the arena) detect staleness by
// comparing Gen on next use, since the arena only increments Gen for a
// slot when it is freed.
type Arena struct {
	id   uint32
	gens []uint64
	free []uint32
}

// NewArena creates an empty Arena tagged with id (typically the owning
// cell's lexicographic index within its CellBlock).
func NewArena(id uint32) *Arena {
	return &Arena{id: id}
}

// Alloc returns a fresh Handle for a newly-inserted particle at row.
// row is the caller's own index (e.g. cell slice length before
// append); Alloc does not track storage itself, only identity.
func (a *Arena) Alloc(row uint32) Handle {
	for int(row) >= len(a.gens) {
		a.gens = append(a.gens, 0)
	}
	return Handle{Arena: a.id, Slot: row, Gen: a.gens[row]}
}

// Free bumps the generation of row, invalidating every Handle pointing
// at it that hasn't already been consumed.
func (a *Arena) Free(row uint32) {
	if int(row) < len(a.gens) {
		a.gens[row]++
	}
}

// Valid reports whether h still refers to the current occupant of its
// slot (i.e. no Free happened between Alloc and now).
func (a *Arena) Valid(h Handle) bool {
	if h.Arena != a.id || int(h.Slot) >= len(a.gens) {
		return false
	}
	return a.gens[h.Slot] == h.Gen
}
