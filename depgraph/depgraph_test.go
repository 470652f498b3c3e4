package depgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sdflang/core/ast"
	"github.com/sdflang/core/compile"
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
func (f *fakeCtx) ContractTypeParams(string) ([]string, bool)       { return nil, false }
func (f *fakeCtx) IsSubrange(*term.Type) (int64, int64, bool)       { return 0, 0, false }
func (f *fakeCtx) RefinementPredicate(*term.Type) (string, bool)    { return "", false }
func (f *fakeCtx) NodeTypeArgs(string, string) ([]*term.Type, bool) { return nil, false }

// chain: c = b + 1, b = a, a is an input. Property on c should have a
// cone of influence reaching a, b and c but nothing else.
func chainDecl(s *term.Store) ast.NodeDecl {
	return ast.NodeDecl{
		Name:    "chain",
		Inputs:  []ast.Param{{Name: "a", Type: ast.ScalarType{Typ: s.Int()}}, {Name: "unrelated", Type: ast.ScalarType{Typ: s.Int()}}},
		Outputs: []ast.Param{{Name: "c", Type: ast.ScalarType{Typ: s.Int()}}},
		Locals:  []ast.Param{{Name: "b", Type: ast.ScalarType{Typ: s.Int()}}},
		Equations: []ast.Equation{
			{LHS: &ast.VarDef{Name: "b"}, RHS: &ast.Ident{Name: "a"}},
			{LHS: &ast.VarDef{Name: "c"}, RHS: &ast.BinOp{Op: ast.OpPlus, Left: &ast.Ident{Name: "b"}, Right: &ast.IntConst{Value: 1}}},
		},
		Properties: []ast.Property{
			{Name: "c_holds", Operand: &ast.Ident{Name: "c"}, Kind: ast.PropertyPlain},
		},
	}
}

func compileChain(t *testing.T) (*term.Store, *compile.CompilerState) {
	s := term.NewStore()
	cs := compile.NewCompilerState(s, &fakeCtx{}, nil)
	_, err := cs.CompileNode(chainDecl(s))
	require.NoError(t, err)
	return s, cs
}

func TestBuildAddsDefinitionalEdges(t *testing.T) {
	s, cs := compileChain(t)
	g := Build(s, cs.Nodes)

	rec := cs.Nodes["chain"]
	cSV := rec.Outputs[0]
	bSV := rec.Locals[0]

	succ := g.Successors(cSV)
	require.Len(t, succ, 1)
	require.Same(t, bSV, succ[0], "c's only dependency is b")
}

func TestConeOfInfluenceExcludesUnrelatedInput(t *testing.T) {
	s, cs := compileChain(t)
	g := Build(s, cs.Nodes)
	rec := cs.Nodes["chain"]

	cone := ConeOfInfluence(g, []*term.StateVariable{rec.Outputs[0]})

	_, hasB := cone[rec.Locals[0].ID()]
	require.True(t, hasB)
	_, hasA := cone[rec.Inputs[0].ID()]
	require.True(t, hasA)
	_, hasUnrelated := cone[rec.Inputs[1].ID()]
	require.False(t, hasUnrelated, "an input never referenced by the property's defining chain must not appear in its cone")
}

func TestGraphHasNoSelfEdges(t *testing.T) {
	s := term.NewStore()
	cs := compile.NewCompilerState(s, &fakeCtx{}, nil)
	decl := ast.NodeDecl{
		Name:    "self",
		Outputs: []ast.Param{{Name: "y", Type: ast.ScalarType{Typ: s.Int()}}},
		Equations: []ast.Equation{
			{LHS: &ast.VarDef{Name: "y"}, RHS: &ast.IntConst{Value: 1}},
		},
	}
	_, err := cs.CompileNode(decl)
	require.NoError(t, err)

	g := Build(s, cs.Nodes)
	ySV := cs.Nodes["self"].Outputs[0]
	for _, to := range g.Successors(ySV) {
		require.NotEqual(t, ySV.ID(), to.ID())
	}
}

func TestRenderDOTHighlightsCone(t *testing.T) {
	s, cs := compileChain(t)
	g := Build(s, cs.Nodes)
	rec := cs.Nodes["chain"]
	cone := ConeOfInfluence(g, []*term.StateVariable{rec.Outputs[0]})

	out := RenderDOT(g, cone)
	require.Contains(t, out, rec.Outputs[0].FullName())
	require.Contains(t, out, highlightColor)
}
