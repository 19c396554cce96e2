// Package functor defines the functor adapter contract: the boundary
// between the engine, which only knows how to enumerate in-range
// pairs, and an application-supplied pair kernel, which only knows
// how to compute something from two particles (or two SoA buffers).
package functor

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/autopas-go/autopas/cell"
	"github.com/autopas-go/autopas/particle"
	"github.com/autopas-go/autopas/soa"
)

// Functor is the capability set a pair kernel exposes to the engine.
// The engine never inspects a Functor's internal accumulators; it only
// calls these entry points in a fixed order and multiplicity per pair.
type Functor[P particle.Particle[P]] interface {
	// AoSFunctor updates Force on i (and on j too, iff newton3) from
	// one particle pair. Called with i==j never happens; the engine
	// guarantees i and j are distinct particles.
	AoSFunctor(i, j P, newton3 bool)

	// SoAFunctorSingle evaluates every pair within one SoA buffer.
	SoAFunctorSingle(buf *soa.Buffer, newton3 bool)

	// SoAFunctorPair evaluates every cross pair between two SoA
	// buffers (no pair within either buffer alone).
	SoAFunctorPair(buf1, buf2 *soa.Buffer, newton3 bool)

	// SoAFunctorVerlet evaluates rows [iFrom, iTo) of buf against the
	// candidate partners named by neighbors (row indices into buf),
	// used by Verlet-list traversals.
	SoAFunctorVerlet(buf *soa.Buffer, neighbors [][]int32, iFrom, iTo int, newton3 bool)

	// SoALoader gathers the columns this functor needs from c into
	// buf starting at row offset.
	SoALoader(c cell.Cell[P], buf *soa.Buffer, offset int)

	// SoAExtractor scatters the columns this functor computed back
	// from buf (starting at row offset) into c.
	SoAExtractor(c cell.Cell[P], buf *soa.Buffer, offset int)

	// InitTraversal/EndTraversal bracket one iteratePairwise call,
	// zeroing and then reducing any per-thread accumulators
	// (potential, virial). EndTraversal must halve any accumulated
	// scalar in non-N3 mode, since the engine visits each pair twice
	// in that mode.
	InitTraversal()
	EndTraversal(newton3 bool)

	AllowsNewton3() bool
	AllowsNonNewton3() bool
	IsRelevantForTuning() bool

	// NeededAttrs/ComputedAttrs declare, as a fixed slice, which SoA
	// columns SoALoader reads into and SoAExtractor writes back from
	// -- the Go stand-in for the source's compile-time attribute
	// template parameter.
	NeededAttrs() []soa.AttributeID
	ComputedAttrs() []soa.AttributeID
}

// LoadPositionForceColumns is the SoALoader every functor that only
// needs position+force can delegate to; most don't need anything
// fancier. It is exported so concrete functors (including this
// module's own test-only functors) don't all hand-roll the same
// gather loop.
func LoadPositionForceColumns[P particle.Particle[P]](c cell.Cell[P], buf *soa.Buffer, offset int) {
	px, py, pz := buf.Column(soa.AttrPosX), buf.Column(soa.AttrPosY), buf.Column(soa.AttrPosZ)
	fx, fy, fz := buf.Column(soa.AttrForceX), buf.Column(soa.AttrForceY), buf.Column(soa.AttrForceZ)
	ids := buf.Column(soa.AttrID)
	owned := buf.Column(soa.AttrOwnedMask)
	c.Each(func(i int, p P) bool {
		row := offset + i
		r := p.Position()
		f := p.Force()
		px[row], py[row], pz[row] = r.X(), r.Y(), r.Z()
		fx[row], fy[row], fz[row] = f.X(), f.Y(), f.Z()
		ids[row] = float64(p.ID())
		if p.Ownership() == particle.StateOwned {
			owned[row] = 1
		} else {
			owned[row] = 0
		}
		return true
	})
}

// ExtractForceColumns is the SoAExtractor counterpart of
// LoadPositionForceColumns.
func ExtractForceColumns[P particle.Particle[P]](c cell.Cell[P], buf *soa.Buffer, offset int) {
	fx, fy, fz := buf.Column(soa.AttrForceX), buf.Column(soa.AttrForceY), buf.Column(soa.AttrForceZ)
	c.Each(func(i int, p P) bool {
		row := offset + i
		p.SetForce(mgl64.Vec3{fx[row], fy[row], fz[row]})
		return true
	})
}
