package expr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sdflang/core/term"
)

func stateVarExpr(s *term.Store, svs *term.StateVarStore, name string, typ *term.Type) Expr {
	sv := svs.Get(name, term.Scope{"n"}, typ, term.StateVariableFlags{}, term.SourceLocal)
	return Close(s.Var(s.StateInstance(sv, 0)))
}

func TestMkPreDelaysStateVariableByOneOffset(t *testing.T) {
	s := term.NewStore()
	svs := term.NewStateVarStore()
	x := stateVarExpr(s, svs, "x", s.Int())

	pre, err := MkPre(s, x)
	require.NoError(t, err)

	v, ok := pre.Init.AsVar()
	require.True(t, ok)
	require.Equal(t, int64(-1), v.Offset())
	require.Same(t, pre.Init, pre.Step, "a pre expression has no temporal distinction left to make: both components are the same delayed term")
}

func TestMkPreRejectsNonStateVariableOperand(t *testing.T) {
	s := term.NewStore()
	lit := Close(s.IntTerm(3))
	_, err := MkPre(s, lit)
	require.Error(t, err, "pre must only ever be applied to a state-variable reference by the time it reaches this layer")
}

func TestMkArrowUsesInitAtFirstInstantAndStepThereafter(t *testing.T) {
	s := term.NewStore()
	svs := term.NewStateVarStore()
	zero := Close(s.IntTerm(0))
	x := stateVarExpr(s, svs, "x", s.Int())

	a, err := MkArrow(s, zero, x)
	require.NoError(t, err)
	require.Same(t, zero.Init, a.Init)
	require.Same(t, x.Step, a.Step)
}

func TestMkIteCoalescesArrayDepth(t *testing.T) {
	s := term.NewStore()
	svs := term.NewStateVarStore()
	lo, hi := int64(0), int64(2)
	arrTyp := s.Array(s.IntRange(&lo, &hi), s.Int())

	arr := stateVarExpr(s, svs, "arr", arrTyp)
	scalar := Close(s.IntTerm(0))
	cond := Close(s.True())

	out, err := MkIte(s, cond, arr, scalar)
	require.NoError(t, err)
	require.Equal(t, term.TyInt, out.Typ.Kind(), "the deeper array side is selected down to scalar before ite is built")
}

func TestMkSelectAndPushDistributesThroughIte(t *testing.T) {
	s := term.NewStore()
	svs := term.NewStateVarStore()
	lo, hi := int64(0), int64(2)
	arrTyp := s.Array(s.IntRange(&lo, &hi), s.Int())

	a := stateVarExpr(s, svs, "a", arrTyp)
	b := stateVarExpr(s, svs, "b", arrTyp)
	cond := Close(s.True())

	ite, err := MkIte(s, cond, a, b)
	require.NoError(t, err)

	idx := Close(s.IntTerm(0))
	sel, err := MkSelectAndPush(s, ite, idx)
	require.NoError(t, err)
	require.Equal(t, term.TyInt, sel.Typ.Kind())
}
