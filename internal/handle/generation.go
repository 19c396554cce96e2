package handle

import "github.com/google/uuid"

// Generation stamps one build of a Verlet or Verlet-cluster list so a
// caller holding a stale reference to "the list as of build N" can
// detect that a newer build has since replaced it, independent of
// the per-slot Arena/Handle generation counters above (which track
// individual particle slots, not whole-list rebuilds).
type Generation uuid.UUID

// NewGeneration mints a fresh, globally unique generation stamp.
func NewGeneration() Generation { return Generation(uuid.New()) }

func (g Generation) String() string { return uuid.UUID(g).String() }
