// Package traversal implements the linked-cells pair-traversal schemes
// c01, c08, c18, c04 (and its c04SoA variant), and sliced. Each scheme
// answers "which (base cell, offset) pairs get
// visited, on how many goroutines, with what data race safety" while
// delegating the actual pair math to a functor.CellFunctor.
package traversal

import "github.com/autopas-go/autopas/particle"

// DataLayout is the traversal-level counterpart of functor.Layout; it
// additionally names the CUDA layout so selector applicability checks
// can reject it without the traversal package importing a GPU stack
// that doesn't exist in this module (c01Cuda is modeled as a
// configuration tag that is always inapplicable, never implemented).
type DataLayout int

const (
	DataLayoutAoS DataLayout = iota
	DataLayoutSoA
	DataLayoutCuda
)

// Type names one traversal scheme; the selector maps its linked-cells
// TraversalTag values onto these.
type Type int

const (
	TypeC01 Type = iota
	TypeC08
	TypeC18
	TypeC04
	TypeC04SoA
	TypeSliced
	TypeC01Cuda // never applicable; kept only as a recognizable tag
)

func (t Type) String() string {
	switch t {
	case TypeC01:
		return "c01"
	case TypeC08:
		return "c08"
	case TypeC18:
		return "c18"
	case TypeC04:
		return "c04"
	case TypeC04SoA:
		return "c04SoA"
	case TypeSliced:
		return "sliced"
	case TypeC01Cuda:
		return "c01Cuda"
	default:
		return "unknown"
	}
}

// Traversal is one cell-pair-visitation scheme over a linked-cells
// grid. A concrete traversal binds to a *cellblock.CellBlock[P] and a
// *functor.CellFunctor[P] at construction time.
type Traversal[P particle.Particle[P]] interface {
	Type() Type
	DataLayout() DataLayout
	UseNewton3() bool

	// IsApplicable reports whether this traversal can run against the
	// bound cell block's current shape and the functor's declared
	// newton3/layout support. A false here is never a bug: the
	// top-level autopas facade checks it before running a selected plan
	// and returns TraversalNotApplicable instead of traversing.
	IsApplicable() bool

	// TraverseParticlePairs visits every in-range cell pair exactly
	// once if UseNewton3, or with the no-N3 double-visit multiplicity
	// otherwise. Forces must be fully accumulated when this returns.
	TraverseParticlePairs()
}
