package compile

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
func (f *fakeCtx) ContractTypeParams(string) ([]string, bool)       { return nil, false }
func (f *fakeCtx) IsSubrange(*term.Type) (int64, int64, bool)       { return 0, 0, false }
func (f *fakeCtx) RefinementPredicate(*term.Type) (string, bool)    { return "", false }
func (f *fakeCtx) NodeTypeArgs(string, string) ([]*term.Type, bool) { return nil, false }

// identity node: output y = input x.
func identityDecl(s *term.Store) ast.NodeDecl {
	return ast.NodeDecl{
		Name:    "identity",
		Inputs:  []ast.Param{{Name: "x", Type: ast.ScalarType{Typ: s.Int()}}},
		Outputs: []ast.Param{{Name: "y", Type: ast.ScalarType{Typ: s.Int()}}},
		Equations: []ast.Equation{
			{LHS: &ast.VarDef{Name: "y"}, RHS: &ast.Ident{Name: "x"}},
		},
	}
}

func TestCompileNodeSimpleEquation(t *testing.T) {
	s := term.NewStore()
	cs := NewCompilerState(s, &fakeCtx{}, nil)
	rec, err := cs.CompileNode(identityDecl(s))
	require.NoError(t, err)

	require.Len(t, rec.Inputs, 1)
	require.Len(t, rec.Outputs, 1)
	require.Len(t, rec.Equations, 1)
	require.Same(t, rec.Outputs[0], rec.Equations[0].SVar)
}

// counter node: y = 0 -> pre(y) + 1, a pre already guarded by its own
// arrow, so normalization introduces no oracle and no extra local.
func counterDecl(s *term.Store) ast.NodeDecl {
	return ast.NodeDecl{
		Name:    "counter",
		Outputs: []ast.Param{{Name: "y", Type: ast.ScalarType{Typ: s.Int()}}},
		Equations: []ast.Equation{
			{LHS: &ast.VarDef{Name: "y"}, RHS: &ast.Arrow{
				Init: &ast.IntConst{Value: 0},
				Step: &ast.BinOp{Op: ast.OpPlus, Left: &ast.Pre{Operand: &ast.Ident{Name: "y"}}, Right: &ast.IntConst{Value: 1}},
			}},
		},
	}
}

func TestCompileNodeArrowGuardedPreNeedsNoOracle(t *testing.T) {
	s := term.NewStore()
	cs := NewCompilerState(s, &fakeCtx{}, nil)
	rec, err := cs.CompileNode(counterDecl(s))
	require.NoError(t, err)

	require.Len(t, rec.Equations, 1, "y is guarded directly by its own arrow, so no extra oracle equation is needed")
	require.Len(t, rec.Locals, 0)
}

// node with a genuinely record-typed output r: {a: int; b: bool},
// flattened to one scalar equation per leaf field.
func recordDecl(s *term.Store) ast.NodeDecl {
	recordType := ast.RecordSurfaceType{
		Name:       "pair",
		Fields:     map[string]ast.SurfaceType{"a": ast.ScalarType{Typ: s.Int()}, "b": ast.ScalarType{Typ: s.Bool()}},
		FieldOrder: []string{"a", "b"},
	}
	return ast.NodeDecl{
		Name:    "pair",
		Inputs:  []ast.Param{{Name: "x", Type: ast.ScalarType{Typ: s.Int()}}},
		Outputs: []ast.Param{{Name: "r", Type: recordType}},
		Equations: []ast.Equation{
			{
				LHS: &ast.VarDef{Name: "r"},
				RHS: &ast.RecordLit{
					TypeName:   "pair",
					Fields:     map[string]ast.Expr{"a": &ast.Ident{Name: "x"}, "b": &ast.BoolConst{Value: true}},
					FieldOrder: []string{"a", "b"},
				},
			},
		},
	}
}

func TestCompileNodeExpandsRecordEquation(t *testing.T) {
	s := term.NewStore()
	cs := NewCompilerState(s, &fakeCtx{}, nil)
	rec, err := cs.CompileNode(recordDecl(s))
	require.NoError(t, err)
	require.Len(t, rec.Equations, 2, "a record left-hand side expands to one scalar equation per leaf")
	require.Len(t, rec.Outputs, 2, "both leaf fields of the record output are registered as state variables")

	names := map[string]bool{}
	for _, sv := range rec.Outputs {
		names[sv.Name()] = true
	}
	require.True(t, names["a"])
	require.True(t, names["b"])
}

// array-def-loop node whose right-hand side indexes a shorter array:
// A[0..4] defined by "A[i] = B[i]" where B only has bounds 0..2. The
// tighter bound must win so the loop never reads past B.
func arrayBoundTieBreakDecl(s *term.Store) ast.NodeDecl {
	aLo, aHi := int64(0), int64(4)
	bLo, bHi := int64(0), int64(2)
	aType := s.Array(s.IntRange(&aLo, &aHi), s.Int())
	bType := s.Array(s.IntRange(&bLo, &bHi), s.Int())
	return ast.NodeDecl{
		Name:    "shrink",
		Inputs:  []ast.Param{{Name: "B", Type: ast.ScalarType{Typ: bType}}},
		Outputs: []ast.Param{{Name: "A", Type: ast.ScalarType{Typ: aType}}},
		Equations: []ast.Equation{
			{
				LHS: &ast.ArrayDefLoop{Base: &ast.VarDef{Name: "A"}, IdxVars: []string{"i"}},
				RHS: &ast.ArrayIndex{Base: &ast.Ident{Name: "B"}, Index: &ast.Ident{Name: "i"}},
			},
		},
	}
}

func TestCompileNodeArrayDefLoopTiesToShorterBound(t *testing.T) {
	s := term.NewStore()
	cs := NewCompilerState(s, &fakeCtx{}, nil)
	rec, err := cs.CompileNode(arrayBoundTieBreakDecl(s))
	require.NoError(t, err)
	require.Len(t, rec.Equations, 3, "the loop stops at B's bound (0..2), not A's declared bound (0..4)")
}

// node calling another, exercising CallRecord lowering.
func callerDecl(s *term.Store) ast.NodeDecl {
	return ast.NodeDecl{
		Name:    "caller",
		Inputs:  []ast.Param{{Name: "x", Type: ast.ScalarType{Typ: s.Int()}}},
		Outputs: []ast.Param{{Name: "y", Type: ast.ScalarType{Typ: s.Int()}}},
		Equations: []ast.Equation{
			{LHS: &ast.VarDef{Name: "y"}, RHS: &ast.Call{Kind: ast.PlainCall, Callee: "identity", Args: []ast.Expr{&ast.Ident{Name: "x"}}}},
		},
	}
}

func TestCompileNodeLowersCall(t *testing.T) {
	s := term.NewStore()
	ctx := &fakeCtx{sigs: map[string]typing.NodeSignature{
		"identity": {Inputs: []*term.Type{s.Int()}, Outputs: []*term.Type{s.Int()}},
	}}
	cs := NewCompilerState(s, ctx, nil)
	rec, err := cs.CompileNode(callerDecl(s))
	require.NoError(t, err)

	require.Len(t, rec.Calls, 1)
	require.Equal(t, "identity", rec.Calls[0].Callee)
	require.Len(t, rec.Calls[0].Args, 1)
	require.Len(t, rec.Calls[0].Outputs, 1)
}

// node with a single-guarantee contract, exercising the sofar
// accumulator synthesis.
func contractDecl(s *term.Store) ast.NodeDecl {
	return ast.NodeDecl{
		Name:    "guarded",
		Inputs:  []ast.Param{{Name: "x", Type: ast.ScalarType{Typ: s.Int()}}},
		Outputs: []ast.Param{{Name: "y", Type: ast.ScalarType{Typ: s.Int()}}},
		Equations: []ast.Equation{
			{LHS: &ast.VarDef{Name: "y"}, RHS: &ast.Ident{Name: "x"}},
		},
		Contract: &ast.ContractBody{Items: []ast.ContractItem{
			{Kind: ast.ItemGuarantee, Operand: &ast.BinOp{Op: ast.OpGeq, Left: &ast.Ident{Name: "y"}, Right: &ast.IntConst{Value: 0}}},
		}},
	}
}

func TestCompileNodeSynthesizesSofarAccumulator(t *testing.T) {
	s := term.NewStore()
	cs := NewCompilerState(s, &fakeCtx{}, nil)
	rec, err := cs.CompileNode(contractDecl(s))
	require.NoError(t, err)

	require.NotNil(t, rec.Contract)
	require.NotNil(t, rec.Contract.Sofar)
	require.Equal(t, "sofar", rec.Contract.Sofar.Name())

	found := false
	for _, eq := range rec.Equations {
		if eq.SVar == rec.Contract.Sofar {
			found = true
		}
	}
	require.True(t, found, "the sofar accumulator must have its own equation in the node record")
}

func TestCompileProgramCompilesInDeclarationOrder(t *testing.T) {
	s := term.NewStore()
	ctx := &fakeCtx{sigs: map[string]typing.NodeSignature{
		"identity": {Inputs: []*term.Type{s.Int()}, Outputs: []*term.Type{s.Int()}},
	}}
	cs := NewCompilerState(s, ctx, nil)
	prog := &ast.Program{Nodes: []ast.NodeDecl{identityDecl(s), callerDecl(s)}}
	err := cs.CompileProgram(prog)
	require.NoError(t, err)
	require.Len(t, cs.Nodes, 2)
}
