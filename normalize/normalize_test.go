package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sdflang/core/ast"
	"github.com/sdflang/core/term"
	"github.com/sdflang/core/typing"
)

type fakeCtx struct {
	sigs map[string]typing.NodeSignature
}

func (f *fakeCtx) NodeSignature(name string) (typing.NodeSignature, bool) {
	sig, ok := f.sigs[name]
	return sig, ok
}
func (f *fakeCtx) ContractTypeParams(string) ([]string, bool)                { return nil, false }
func (f *fakeCtx) IsSubrange(*term.Type) (int64, int64, bool)                { return 0, 0, false }
func (f *fakeCtx) RefinementPredicate(*term.Type) (string, bool)             { return "", false }
func (f *fakeCtx) NodeTypeArgs(string, string) ([]*term.Type, bool)          { return nil, false }

func newTestNormalizer(store *term.Store, sigs map[string]typing.NodeSignature) *Normalizer {
	return New(store, &fakeCtx{sigs: sigs}, NewCounter(0), nil)
}

// A Pre directly under an Arrow needs no oracle: the Arrow's init
// branch already guards it.
func TestNormalizeExprLeavesArrowGuardedPreAlone(t *testing.T) {
	s := term.NewStore()
	n := newTestNormalizer(s, nil)
	st := &nodeState{nodeName: "n", symtab: map[string]*term.Type{"x": s.Int()}, generated: newGeneratedIdentifiers()}

	arrow := &ast.Arrow{
		Init: &ast.IntConst{Value: 0},
		Step: &ast.Pre{Operand: &ast.Ident{Name: "x"}},
	}
	out, err := n.normalizeExpr(arrow, nil, st)
	require.NoError(t, err)

	a, ok := out.(*ast.Arrow)
	require.True(t, ok)
	pre, ok := a.Step.(*ast.Pre)
	require.True(t, ok, "a pre already guarded by an enclosing arrow is left as a pre, not rewritten to an oracle arrow")
	ident, ok := pre.Operand.(*ast.Ident)
	require.True(t, ok)
	require.Equal(t, "x", ident.Name)
	require.Empty(t, st.generated.Oracles)
}

// An unguarded Pre must be rewritten into oracleArrow -> pre(x) and
// recorded as a fresh oracle.
func TestNormalizeExprIntroducesOracleForUnguardedPre(t *testing.T) {
	s := term.NewStore()
	n := newTestNormalizer(s, nil)
	st := &nodeState{nodeName: "n", symtab: map[string]*term.Type{"x": s.Int()}, generated: newGeneratedIdentifiers()}

	pre := &ast.Pre{Operand: &ast.Ident{Name: "x"}}
	out, err := n.normalizeExpr(pre, nil, st)
	require.NoError(t, err)

	arrow, ok := out.(*ast.Arrow)
	require.True(t, ok, "an unguarded pre must become an arrow guarding it with a fresh oracle")
	_, ok = arrow.Init.(*ast.Ident)
	require.True(t, ok)
	innerPre, ok := arrow.Step.(*ast.Pre)
	require.True(t, ok)
	_, ok = innerPre.Operand.(*ast.Ident)
	require.True(t, ok)

	require.Len(t, st.generated.Oracles, 1)
	require.Equal(t, KindOracle, st.generated.Oracles[0].Kind)
	require.Same(t, s.Int(), st.generated.Oracles[0].Type)
}

// Every call argument must end up an Ident or literal constant, never
// a compound expression.
func TestNormalizeCallLiftsNonAtomicArguments(t *testing.T) {
	s := term.NewStore()
	sigs := map[string]typing.NodeSignature{
		"double": {Inputs: []*term.Type{s.Int()}, Outputs: []*term.Type{s.Int()}},
	}
	n := newTestNormalizer(s, sigs)
	st := &nodeState{nodeName: "n", symtab: map[string]*term.Type{"x": s.Int(), "y": s.Int()}, generated: newGeneratedIdentifiers()}

	call := &ast.Call{
		Kind:   ast.PlainCall,
		Callee: "double",
		Args: []ast.Expr{
			&ast.BinOp{Op: ast.OpPlus, Left: &ast.Ident{Name: "x"}, Right: &ast.Ident{Name: "y"}},
		},
	}
	out, err := n.normalizeExpr(call, nil, st)
	require.NoError(t, err)

	ident, ok := out.(*ast.Ident)
	require.True(t, ok, "a single-output call normalizes to a reference to its lifted output")
	require.Contains(t, ident.Name, "_call")

	require.Len(t, st.generated.Calls, 1)
	entry := st.generated.Calls[0]
	require.Len(t, entry.Args, 1)
	_, argIsIdent := entry.Args[0].(*ast.Ident)
	require.True(t, argIsIdent, "call arguments must be lifted to an identifier, never left as a compound expression")
}

func TestNormalizeCallUnknownCalleeIsUnboundIdentifier(t *testing.T) {
	s := term.NewStore()
	n := newTestNormalizer(s, nil)
	st := &nodeState{nodeName: "n", symtab: map[string]*term.Type{}, generated: newGeneratedIdentifiers()}

	call := &ast.Call{Kind: ast.PlainCall, Callee: "missing"}
	_, err := n.normalizeExpr(call, nil, st)
	require.Error(t, err)
}

func TestNormalizeNodeRecordsAssertionAndPropertyLocals(t *testing.T) {
	s := term.NewStore()
	n := newTestNormalizer(s, nil)

	decl := ast.NodeDecl{
		Name:    "n",
		Inputs:  []ast.Param{{Name: "x", Type: ast.ScalarType{Typ: s.Int()}}},
		Outputs: []ast.Param{{Name: "y", Type: ast.ScalarType{Typ: s.Bool()}}},
		Equations: []ast.Equation{
			{LHS: &ast.VarDef{Name: "y"}, RHS: &ast.BinOp{Op: ast.OpGt, Left: &ast.Ident{Name: "x"}, Right: &ast.IntConst{Value: 0}}},
		},
		Asserts: []ast.Assert{
			{Operand: &ast.BinOp{Op: ast.OpGeq, Left: &ast.Ident{Name: "x"}, Right: &ast.IntConst{Value: 0}}},
		},
		Properties: []ast.Property{
			{Name: "p", Operand: &ast.Ident{Name: "y"}, Kind: ast.PropertyPlain},
		},
	}

	_, gen, err := n.NormalizeNode(decl)
	require.NoError(t, err)
	require.Len(t, gen.Assertions, 1, "a compound assert operand must be lifted to a named local")
	require.Empty(t, gen.NonvacuityProperties, "a plain property is not recorded as a nonvacuity obligation")
}

func TestBindLoopIndicesAddsIntTypedIndices(t *testing.T) {
	s := term.NewStore()
	n := newTestNormalizer(s, nil)
	st := &nodeState{nodeName: "n", symtab: map[string]*term.Type{}, generated: newGeneratedIdentifiers()}

	loop := &ast.ArrayDefLoop{Base: &ast.VarDef{Name: "a"}, IdxVars: []string{"i"}}
	n.bindLoopIndices(loop, st)
	require.Same(t, s.Int(), st.symtab["i"])
}
