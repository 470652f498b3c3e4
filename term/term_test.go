package term

import "testing"

import "github.com/stretchr/testify/require"

func TestHashConsPhysicalEquality(t *testing.T) {
	s := NewStore()
	a, err := s.Plus(s.IntTerm(1), s.IntTerm(2))
	require.NoError(t, err)
	b, err := s.Plus(s.IntTerm(1), s.IntTerm(2))
	require.NoError(t, err)

	require.Same(t, a, b, "structurally equal terms must be pointer-equal")
	require.Equal(t, a.Tag(), b.Tag())
}

func TestHashConsDistinguishesDifferentTerms(t *testing.T) {
	s := NewStore()
	a, err := s.Plus(s.IntTerm(1), s.IntTerm(2))
	require.NoError(t, err)
	b, err := s.Plus(s.IntTerm(1), s.IntTerm(3))
	require.NoError(t, err)

	require.NotSame(t, a, b)
	require.NotEqual(t, a.Tag(), b.Tag())
}

func TestNegateSimplifyCancelsDoubleNegation(t *testing.T) {
	s := NewStore()
	x := s.FreeVar("x", s.Bool())
	xt := s.Var(x)

	neg := s.NegateSimplify(xt)
	notNeg, ok := neg.AsVar()
	require.False(t, ok)
	_ = notNeg

	doubleNeg := s.NegateSimplify(neg)
	require.Same(t, xt, doubleNeg, "negate_simplify(negate_simplify(t)) must cancel back to t")
}

func TestNegateSimplifyFlipsComparisons(t *testing.T) {
	s := NewStore()
	lt, err := s.Lt(s.IntTerm(1), s.IntTerm(2))
	require.NoError(t, err)

	geq, err := s.Geq(s.IntTerm(1), s.IntTerm(2))
	require.NoError(t, err)

	negLt := s.NegateSimplify(lt)
	require.Same(t, geq, negLt, "negating a strict less-than must flip to >=")
}

func TestMkNamedRejectsReservedNamespace(t *testing.T) {
	s := NewStore()
	_, named := s.MkNamed(s.True())
	_, err := s.MkNamedUnsafe(reservedNamedNamespace, 0, named)
	require.Error(t, err)
}

func TestTypeInterningIsStructural(t *testing.T) {
	s := NewStore()
	lo, hi := int64(0), int64(9)
	a := s.IntRange(&lo, &hi)
	lo2, hi2 := int64(0), int64(9)
	b := s.IntRange(&lo2, &hi2)
	require.Same(t, a, b)
}

func TestImportPreservesStateVariableIdentity(t *testing.T) {
	src := NewStore()
	sv := NewStateVarStore().Get("x", Scope{"n"}, src.Int(), StateVariableFlags{}, SourceLocal)
	t1 := src.Var(src.StateInstance(sv, 0))

	dst := NewStore()
	imported := dst.Import(src, t1)

	v, ok := imported.AsVar()
	require.True(t, ok)
	require.Equal(t, sv.ID(), v.StateVar().ID(), "import must preserve state-variable identity, not rebuild it")
}
