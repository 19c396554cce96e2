// Package aperrors defines the typed error kinds the engine surfaces
// to its driver.
//
// Wrapping follows the pattern in the example pack's
// kubernetes-sigs-cluster-api-provider-azure scope constructor, which
// wraps its own construction failures with github.com/pkg/errors
// (errors.Wrap(err, "failed to init ...")); errors.Is/errors.As
// (stdlib) still work against the wrapped values pkg/errors produces.
package aperrors

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the four error kinds the engine reports.
type Kind int

const (
	// KindTraversalNotApplicable: selected combination fails static
	// applicability; the driver may skip or re-tune.
	KindTraversalNotApplicable Kind = iota
	// KindUnknownOption: selector received an unrecognized tag.
	KindUnknownOption
	// KindInvariantViolation: internal invariant broke. Fatal.
	KindInvariantViolation
	// KindPostProcessingOrder: EndTraversal called twice without a
	// reset, or a result accessor was called before post-processing.
	KindPostProcessingOrder
)

func (k Kind) String() string {
	switch k {
	case KindTraversalNotApplicable:
		return "TraversalNotApplicable"
	case KindUnknownOption:
		return "UnknownOption"
	case KindInvariantViolation:
		return "InvariantViolation"
	case KindPostProcessingOrder:
		return "PostProcessingOrder"
	default:
		return "UnknownKind"
	}
}

// Error is the concrete error type returned by selector/builder entry
// points and by the top-level AutoPas facade.
type Error struct {
	kind Kind
	msg  string
	err  error // cause, or nil
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Kind reports which of the four error kinds e is.
func (e *Error) Kind() Kind { return e.kind }

// Is lets errors.Is(err, aperrors.ErrTraversalNotApplicable) work without
// comparing messages.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.kind == e.kind && other.msg == ""
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// TraversalNotApplicable builds a KindTraversalNotApplicable error.
func TraversalNotApplicable(format string, args ...any) *Error {
	return newf(KindTraversalNotApplicable, format, args...)
}

// UnknownOption builds a KindUnknownOption error.
func UnknownOption(format string, args ...any) *Error {
	return newf(KindUnknownOption, format, args...)
}

// InvariantViolation builds a KindInvariantViolation error and stack-
// traces it via pkg/errors, since this kind is always fatal and the
// trace is the first thing a caller will want.
func InvariantViolation(format string, args ...any) *Error {
	e := newf(KindInvariantViolation, format, args...)
	e.err = errors.WithStack(fmt.Errorf(e.msg))
	return e
}

// PostProcessingOrder builds a KindPostProcessingOrder error.
func PostProcessingOrder(format string, args ...any) *Error {
	return newf(KindPostProcessingOrder, format, args...)
}

// Wrap attaches a cause to an existing Error, preserving its Kind.
func Wrap(e *Error, cause error) *Error {
	return &Error{kind: e.kind, msg: e.msg, err: errors.Wrap(cause, e.msg)}
}

// sentinels for errors.Is comparisons against a bare kind.
var (
	ErrTraversalNotApplicable = &Error{kind: KindTraversalNotApplicable}
	ErrUnknownOption          = &Error{kind: KindUnknownOption}
	ErrInvariantViolation     = &Error{kind: KindInvariantViolation}
	ErrPostProcessingOrder    = &Error{kind: KindPostProcessingOrder}
)

// KindOf extracts the Kind of err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.kind, true
	}
	return 0, false
}
