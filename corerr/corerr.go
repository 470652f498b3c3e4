// Package corerr declares the error kinds raised by the node graph
// compiler core. Each kind is created once at package init time and
// instantiated with errors.Kind.New at the call site, the same pattern
// the rest of the compiler's ambient stack uses for domain errors.
package corerr

import errors "gopkg.in/src-d/go-errors.v1"

var (
	// TypeMismatch is raised when operand types disagree with a
	// symbol's signature. Fatal: aborts the whole compilation run.
	TypeMismatch = errors.NewKind("type mismatch: %s")

	// ShapeMismatch is raised when two index tries required to have
	// identical key sets do not. Fatal for the containing equation;
	// aborts the current node's compilation.
	ShapeMismatch = errors.NewKind("shape mismatch at %s: %s")

	// UnboundIdentifier is raised when a reference points to an
	// identifier neither declared nor generated by the normalizer.
	UnboundIdentifier = errors.NewKind("unbound identifier %q in node %q")

	// InvariantViolation is raised when a normalization postcondition
	// does not hold, e.g. a pre on a non-identifier reaching the node
	// generator. Fatal: indicates a normalizer bug.
	InvariantViolation = errors.NewKind("invariant violation: %s")

	// UnsupportedConstruct is raised when a language feature that an
	// earlier pass was supposed to eliminate is still present.
	UnsupportedConstruct = errors.NewKind("unsupported construct %s in node %q")
)

// Fatal reports whether an error kind aborts the entire compilation
// run rather than only the node currently being compiled, per the
// propagation rules of the error handling design.
func Fatal(err error) bool {
	return TypeMismatch.Is(err) || InvariantViolation.Is(err)
}
