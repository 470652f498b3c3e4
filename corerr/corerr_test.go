package corerr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFatalClassifiesTypeMismatchAndInvariantViolation(t *testing.T) {
	require.True(t, Fatal(TypeMismatch.New("int")))
	require.True(t, Fatal(InvariantViolation.New("bug")))
}

func TestFatalExcludesNodeLocalErrors(t *testing.T) {
	require.False(t, Fatal(UnboundIdentifier.New("x", "n")))
	require.False(t, Fatal(UnsupportedConstruct.New("Foo", "n")))
	require.False(t, Fatal(ShapeMismatch.New("n", "reason")))
}
