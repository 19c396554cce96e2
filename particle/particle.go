// Package particle defines the capability set the engine requires
// from an application-supplied particle type.
// The engine never depends on concrete particle fields beyond this
// interface: positions, forces, a stable id, and an ownership flag.
package particle

import "github.com/go-gl/mathgl/mgl64"

// OwnershipState classifies a particle as owned by this container,
// a halo copy of a particle owned elsewhere, or a dummy (padding,
// never a real interaction partner).
type OwnershipState uint8

const (
	StateOwned OwnershipState = iota
	StateHalo
	StateDummy
)

func (s OwnershipState) String() string {
	switch s {
	case StateOwned:
		return "owned"
	case StateHalo:
		return "halo"
	case StateDummy:
		return "dummy"
	default:
		return "unknown"
	}
}

// Particle is the capability set the engine requires. It is
// self-bounded (F-bounded polymorphism): an application particle type
// T implements Particle[T] with pointer receivers, and every generic
// container/traversal in this module is parameterized over P
// Particle[P], so P is always instantiated to a pointer type (*T).
// A cell's backing slice therefore holds pointers to its own clones,
// so position/force can be mutated in place through the P handle, and
// Clone gives containers an explicit, cheap way to
// take ownership of a caller-supplied particle without aliasing it.
type Particle[Self any] interface {
	Position() mgl64.Vec3
	SetPosition(r mgl64.Vec3)

	Force() mgl64.Vec3
	SetForce(f mgl64.Vec3)
	AddForce(f mgl64.Vec3)

	ID() uint64

	Ownership() OwnershipState
	SetOwnership(s OwnershipState)

	// Clone returns a deep, container-owned copy of the receiver.
	Clone() Self
}

// InBox reports whether r lies inside [boxMin, boxMax), the
// half-open convention used to decide which owned particles have
// left the domain.
func InBox(r, boxMin, boxMax mgl64.Vec3) bool {
	for d := 0; d < 3; d++ {
		if r[d] < boxMin[d] || r[d] >= boxMax[d] {
			return false
		}
	}
	return true
}
