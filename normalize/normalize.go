// Copyright 2024 The sdflang Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package normalize rewrites a type-checked node body into the
// restricted shape the node generator consumes: every Pre either sits
// directly under an Arrow or is guarded by a freshly introduced
// oracle, every call is lifted out of its expression into its own call
// entry (its expression position replaced by a reference to the call's
// outputs), and every call/condact/restart-every argument is an
// identifier or a literal constant.
package normalize

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sdflang/core/ast"
	"github.com/sdflang/core/corerr"
	"github.com/sdflang/core/term"
	"github.com/sdflang/core/typing"
)

// Normalizer rewrites node bodies against a shared fresh-name counter
// and a shared hash-cons store used only to manufacture literal types
// during inference, never to build terms.
type Normalizer struct {
	store   *term.Store
	ctx     typing.Context
	counter *Counter
	log     *logrus.Entry
}

// New builds a Normalizer. counter is shared across every node of one
// compilation run, per the monotone fresh-name requirement.
func New(store *term.Store, ctx typing.Context, counter *Counter, log *logrus.Entry) *Normalizer {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Normalizer{store: store, ctx: ctx, counter: counter, log: log}
}

// nodeState carries the per-node symbol table and accumulator across
// one NormalizeNode call. symtab holds the scalar type of every name
// that denotes a scalar value (declared or generated); surface holds
// the full declared surface type (scalar or structured) of every
// declared input/output/local, consulted when resolving a record or
// tuple projection chain down to its scalar leaf.
type nodeState struct {
	nodeName  string
	symtab    map[string]*term.Type
	surface   map[string]ast.SurfaceType
	generated *GeneratedIdentifiers
}

// NormalizeNode rewrites one node's equations, asserts and properties
// in place and returns the new declaration alongside the identifiers
// generated while doing so.
func (n *Normalizer) NormalizeNode(decl ast.NodeDecl) (ast.NodeDecl, *GeneratedIdentifiers, error) {
	st := &nodeState{
		nodeName:  decl.Name,
		symtab:    make(map[string]*term.Type),
		surface:   make(map[string]ast.SurfaceType),
		generated: newGeneratedIdentifiers(),
	}
	bindParam := func(p ast.Param, role ConstraintRole) {
		st.surface[p.Name] = p.Type
		if sc, ok := p.Type.(ast.ScalarType); ok {
			st.symtab[p.Name] = sc.Typ
			n.recordTypeConstraints(p.Name, sc.Typ, role, false, st)
		}
	}
	for _, p := range decl.Inputs {
		bindParam(p, RoleInput)
	}
	for _, p := range decl.Outputs {
		bindParam(p, RoleOutput)
	}
	for _, p := range decl.Locals {
		bindParam(p, RoleLocal)
	}

	out := decl
	out.Equations = make([]ast.Equation, len(decl.Equations))
	for i, eq := range decl.Equations {
		n.bindLoopIndices(eq.LHS, st)
		rhs, err := n.normalizeExpr(eq.RHS, nil, st)
		if err != nil {
			return ast.NodeDecl{}, nil, err
		}
		out.Equations[i] = ast.Equation{Position: eq.Position, LHS: eq.LHS, RHS: rhs}
	}

	out.Asserts = make([]ast.Assert, len(decl.Asserts))
	for i, a := range decl.Asserts {
		op, err := n.normalizeExpr(a.Operand, nil, st)
		if err != nil {
			return ast.NodeDecl{}, nil, err
		}
		ident, err := n.liftToLocal(op, st)
		if err != nil {
			return ast.NodeDecl{}, nil, err
		}
		out.Asserts[i] = ast.Assert{Position: a.Position, Operand: ident}
		if id, ok := ident.(*ast.Ident); ok {
			st.generated.Assertions = append(st.generated.Assertions, id.Name)
		}
	}

	out.Properties = make([]ast.Property, len(decl.Properties))
	for i, p := range decl.Properties {
		op, err := n.normalizeExpr(p.Operand, nil, st)
		if err != nil {
			return ast.NodeDecl{}, nil, err
		}
		ident, err := n.liftToLocal(op, st)
		if err != nil {
			return ast.NodeDecl{}, nil, err
		}
		out.Properties[i] = ast.Property{Position: p.Position, Name: p.Name, Operand: ident, Kind: p.Kind}
		if p.Kind == ast.PropertyNonvacuity {
			if id, ok := ident.(*ast.Ident); ok {
				st.generated.NonvacuityProperties = append(st.generated.NonvacuityProperties, id.Name)
			}
		}
	}

	if decl.Contract != nil {
		body, err := n.normalizeContractBody(*decl.Contract, st)
		if err != nil {
			return ast.NodeDecl{}, nil, err
		}
		out.Contract = &body
	}

	n.log.WithFields(logrus.Fields{
		"node":    decl.Name,
		"locals":  len(st.generated.LocalOrder),
		"oracles": len(st.generated.Oracles),
		"calls":   len(st.generated.Calls),
	}).Debug("normalized node")

	return out, st.generated, nil
}

func (n *Normalizer) normalizeContractBody(body ast.ContractBody, st *nodeState) (ast.ContractBody, error) {
	out := body
	out.Items = make([]ast.ContractItem, len(body.Items))
	for i, item := range body.Items {
		ni := item
		switch item.Kind {
		case ast.ItemAssume, ast.ItemWeaklyAssume, ast.ItemGuarantee, ast.ItemWeaklyGuarantee, ast.ItemGhostConst, ast.ItemGhostVar:
			if item.Operand == nil {
				break
			}
			op, err := n.normalizeExpr(item.Operand, nil, st)
			if err != nil {
				return ast.ContractBody{}, err
			}
			ni.Operand = op
			if item.Kind == ast.ItemGhostConst || item.Kind == ast.ItemGhostVar {
				// Ghost variables are grouped with outputs for subrange/
				// refinement constraint purposes: a constraint on either
				// becomes a contract guarantee, not a plain property.
				typ, err := n.inferType(op, st)
				if err == nil {
					st.symtab[item.Name] = typ
					st.surface[item.Name] = ast.ScalarType{Typ: typ}
					n.recordTypeConstraints(item.Name, typ, RoleOutput, false, st)
				}
			}
		case ast.ItemMode:
			reqs := make([]ast.ContractItem, len(item.ModeRequires))
			for j, r := range item.ModeRequires {
				op, err := n.normalizeExpr(r.Operand, nil, st)
				if err != nil {
					return ast.ContractBody{}, err
				}
				r.Operand = op
				reqs[j] = r
			}
			ens := make([]ast.ContractItem, len(item.ModeEnsures))
			for j, e := range item.ModeEnsures {
				op, err := n.normalizeExpr(e.Operand, nil, st)
				if err != nil {
					return ast.ContractBody{}, err
				}
				e.Operand = op
				ens[j] = e
			}
			ni.ModeRequires, ni.ModeEnsures = reqs, ens
		case ast.ItemImport:
			inputs := make([]ast.Expr, len(item.ImportInputs))
			for j, in := range item.ImportInputs {
				norm, err := n.normalizeExpr(in, nil, st)
				if err != nil {
					return ast.ContractBody{}, err
				}
				inputs[j] = norm
			}
			ni.ImportInputs = inputs
			st.generated.ContractCallInstantiations = append(st.generated.ContractCallInstantiations, ContractCallInstantiation{
				ContractName: item.ImportCallee,
				Inputs:       inputs,
				Outputs:      item.ImportOutputs,
			})
		}
		out.Items[i] = ni
	}
	return out, nil
}

// addHistoryVar dedups name into HistoryVars; the same identifier is
// routinely sampled by more than one Pre across a node body.
func (st *nodeState) addHistoryVar(name string) {
	for _, existing := range st.generated.HistoryVars {
		if existing == name {
			return
		}
	}
	st.generated.HistoryVars = append(st.generated.HistoryVars, name)
}

// bindLoopIndices adds an ArrayDefLoop's index variables to the symbol
// table as plain ints so inference on the RHS can resolve them.
func (n *Normalizer) bindLoopIndices(lhs ast.StructureDef, st *nodeState) {
	if loop, ok := lhs.(*ast.ArrayDefLoop); ok {
		for _, v := range loop.IdxVars {
			st.symtab[v] = n.store.Int()
		}
	}
}

// recordTypeConstraints consults the typing context for subrange and
// refinement-type facts about typ and, when present, synthesizes a
// predicate expression over name and appends it to the matching
// GeneratedIdentifiers constraint list.
func (n *Normalizer) recordTypeConstraints(name string, typ *term.Type, role ConstraintRole, derived bool, st *nodeState) {
	if lo, hi, ok := n.ctx.IsSubrange(typ); ok {
		pred := &ast.BinOp{
			Op:   ast.OpAnd,
			Left: &ast.BinOp{Op: ast.OpLeq, Left: &ast.IntConst{Value: lo}, Right: &ast.Ident{Name: name}},
			Right: &ast.BinOp{Op: ast.OpLeq, Left: &ast.Ident{Name: name}, Right: &ast.IntConst{Value: hi}},
		}
		st.generated.SubrangeConstraints = append(st.generated.SubrangeConstraints, Constraint{VarName: name, Pred: pred, Role: role, Derived: derived})
	}
	if predName, ok := n.ctx.RefinementPredicate(typ); ok {
		pred := &ast.Call{Kind: ast.PlainCall, Callee: predName, Args: []ast.Expr{&ast.Ident{Name: name}}}
		st.generated.RefinementConstraints = append(st.generated.RefinementConstraints, Constraint{VarName: name, Pred: pred, Role: role, Derived: derived})
	}
}

func isAtomic(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Ident, *ast.IntConst, *ast.RealConst, *ast.BoolConst:
		return true
	default:
		return false
	}
}

// liftToLocal binds a non-atomic expression to a fresh local and
// returns a reference to it; atomic expressions pass through
// unchanged.
func (n *Normalizer) liftToLocal(e ast.Expr, st *nodeState) (ast.Expr, error) {
	if isAtomic(e) {
		return e, nil
	}
	typ, err := n.inferType(e, st)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%d_%s", n.counter.Next(), KindLocal)
	st.generated.addLocal(name, e)
	st.symtab[name] = typ
	n.recordTypeConstraints(name, typ, RoleLocal, true, st)
	return &ast.Ident{Name: name}, nil
}

// normalizeExpr rewrites e bottom-up. guard is the normalized
// initial-instant expression of the innermost enclosing Arrow, or nil
// when no Arrow currently guards the evaluation point.
func (n *Normalizer) normalizeExpr(e ast.Expr, guard ast.Expr, st *nodeState) (ast.Expr, error) {
	switch v := e.(type) {
	case *ast.Ident, *ast.IntConst, *ast.RealConst, *ast.BoolConst:
		return e, nil

	case *ast.BinOp:
		l, err := n.normalizeExpr(v.Left, guard, st)
		if err != nil {
			return nil, err
		}
		r, err := n.normalizeExpr(v.Right, guard, st)
		if err != nil {
			return nil, err
		}
		return &ast.BinOp{Position: v.Position, Op: v.Op, Left: l, Right: r}, nil

	case *ast.UnOp:
		o, err := n.normalizeExpr(v.Operand, guard, st)
		if err != nil {
			return nil, err
		}
		return &ast.UnOp{Position: v.Position, Op: v.Op, Operand: o}, nil

	case *ast.Ite:
		c, err := n.normalizeExpr(v.Cond, guard, st)
		if err != nil {
			return nil, err
		}
		t, err := n.normalizeExpr(v.Then, guard, st)
		if err != nil {
			return nil, err
		}
		el, err := n.normalizeExpr(v.Else, guard, st)
		if err != nil {
			return nil, err
		}
		return &ast.Ite{Position: v.Position, Cond: c, Then: t, Else: el}, nil

	case *ast.Arrow:
		a, err := n.normalizeExpr(v.Init, guard, st)
		if err != nil {
			return nil, err
		}
		b, err := n.normalizeExpr(v.Step, a, st)
		if err != nil {
			return nil, err
		}
		return &ast.Arrow{Position: v.Position, Init: a, Step: b}, nil

	case *ast.Pre:
		inner, err := n.normalizeExpr(v.Operand, guard, st)
		if err != nil {
			return nil, err
		}
		lifted, err := n.liftToLocal(inner, st)
		if err != nil {
			return nil, err
		}
		if id, ok := lifted.(*ast.Ident); ok {
			st.addHistoryVar(id.Name)
		}
		if guard != nil {
			return &ast.Pre{Position: v.Position, Operand: lifted}, nil
		}
		typ, err := n.inferType(lifted, st)
		if err != nil {
			return nil, err
		}
		oracleName := fmt.Sprintf("%d_%s", n.counter.Next(), KindOracle)
		st.generated.Oracles = append(st.generated.Oracles, Oracle{Name: oracleName, Kind: KindOracle, Type: typ})
		st.symtab[oracleName] = typ
		n.recordTypeConstraints(oracleName, typ, RoleLocal, true, st)
		return &ast.Arrow{
			Position: v.Position,
			Init:     &ast.Ident{Name: oracleName},
			Step:     &ast.Pre{Position: v.Position, Operand: lifted},
		}, nil

	case *ast.Call:
		return n.normalizeCall(v, guard, st)

	case *ast.GroupExpr:
		items := make([]ast.Expr, len(v.Items))
		for i, it := range v.Items {
			ni, err := n.normalizeExpr(it, guard, st)
			if err != nil {
				return nil, err
			}
			items[i] = ni
		}
		return &ast.GroupExpr{Position: v.Position, Items: items}, nil

	case *ast.RecordProj:
		b, err := n.normalizeExpr(v.Base, guard, st)
		if err != nil {
			return nil, err
		}
		return &ast.RecordProj{Position: v.Position, Base: b, Field: v.Field}, nil

	case *ast.TupleProj:
		b, err := n.normalizeExpr(v.Base, guard, st)
		if err != nil {
			return nil, err
		}
		return &ast.TupleProj{Position: v.Position, Base: b, Idx: v.Idx}, nil

	case *ast.ArrayIndex:
		b, err := n.normalizeExpr(v.Base, guard, st)
		if err != nil {
			return nil, err
		}
		i, err := n.normalizeExpr(v.Index, guard, st)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayIndex{Position: v.Position, Base: b, Index: i}, nil

	case *ast.RecordLit:
		fields := make(map[string]ast.Expr, len(v.Fields))
		for _, fname := range v.FieldOrder {
			nf, err := n.normalizeExpr(v.Fields[fname], guard, st)
			if err != nil {
				return nil, err
			}
			fields[fname] = nf
		}
		return &ast.RecordLit{Position: v.Position, TypeName: v.TypeName, Fields: fields, FieldOrder: append([]string(nil), v.FieldOrder...)}, nil

	case *ast.ArrayLit:
		items := make([]ast.Expr, len(v.Items))
		for i, it := range v.Items {
			ni, err := n.normalizeExpr(it, guard, st)
			if err != nil {
				return nil, err
			}
			items[i] = ni
		}
		return &ast.ArrayLit{Position: v.Position, Items: items}, nil

	case *ast.Quantifier:
		st.symtab[v.VarName] = v.VarType
		st.surface[v.VarName] = ast.ScalarType{Typ: v.VarType}
		body, err := n.normalizeExpr(v.Body, guard, st)
		if err != nil {
			return nil, err
		}
		return &ast.Quantifier{Position: v.Position, Forall: v.Forall, VarName: v.VarName, VarType: v.VarType, Body: body}, nil

	default:
		return nil, corerr.UnsupportedConstruct.New(fmt.Sprintf("%T", e), st.nodeName)
	}
}

// normalizeCall implements rule 3: every call becomes its own
// CallEntry and the expression position it occupied is replaced by a
// reference to its (possibly tupled) outputs.
func (n *Normalizer) normalizeCall(c *ast.Call, guard ast.Expr, st *nodeState) (ast.Expr, error) {
	args := make([]ast.Expr, len(c.Args))
	for i, a := range c.Args {
		na, err := n.normalizeExpr(a, guard, st)
		if err != nil {
			return nil, err
		}
		lifted, err := n.liftToLocal(na, st)
		if err != nil {
			return nil, err
		}
		args[i] = lifted
	}

	var activation, restart ast.Expr
	if c.Kind == ast.Condact {
		na, err := n.normalizeExpr(c.Activation, guard, st)
		if err != nil {
			return nil, err
		}
		activation, err = n.liftToLocal(na, st)
		if err != nil {
			return nil, err
		}
	}
	if c.Kind == ast.RestartEvery {
		nr, err := n.normalizeExpr(c.Restart, guard, st)
		if err != nil {
			return nil, err
		}
		restart, err = n.liftToLocal(nr, st)
		if err != nil {
			return nil, err
		}
	}

	var defaults []ast.Expr
	if c.Defaults != nil {
		defaults = make([]ast.Expr, len(c.Defaults))
		for i, d := range c.Defaults {
			nd, err := n.normalizeExpr(d, guard, st)
			if err != nil {
				return nil, err
			}
			defaults[i] = nd
		}
	}

	sig, ok := n.ctx.NodeSignature(c.Callee)
	if !ok {
		return nil, corerr.UnboundIdentifier.New(c.Callee, st.nodeName)
	}

	k := n.counter.Next()
	var outputs []string
	if len(sig.Outputs) == 1 {
		outputs = []string{fmt.Sprintf("%d_%s", k, KindCall)}
	} else {
		outputs = make([]string, len(sig.Outputs))
		for i := range sig.Outputs {
			outputs[i] = fmt.Sprintf("%d_%s_%d", k, KindCall, i)
		}
	}
	for i, name := range outputs {
		st.symtab[name] = sig.Outputs[i]
	}

	st.generated.Calls = append(st.generated.Calls, CallEntry{
		Position:       c.Pos(),
		Outputs:        outputs,
		ActivationCond: activation,
		RestartCond:    restart,
		Callee:         c.Callee,
		TypeArgs:       nil,
		Args:           args,
		Defaults:       defaults,
	})

	if len(outputs) == 1 {
		return &ast.Ident{Name: outputs[0]}, nil
	}
	items := make([]ast.Expr, len(outputs))
	for i, name := range outputs {
		items[i] = &ast.Ident{Name: name}
	}
	return &ast.GroupExpr{Items: items}, nil
}

// InferExprType exposes the normalizer's scalar type inference to the
// node generator, which needs it again to type the generated locals
// before registering them as state variables. params supplies
// the declared surface type of every input/output/local so a
// record/tuple projection chain appearing in a generated local's
// right-hand side can be resolved down to its scalar leaf.
func (n *Normalizer) InferExprType(e ast.Expr, symtab map[string]*term.Type, nodeName string, params []ast.Param) (*term.Type, error) {
	st := &nodeState{nodeName: nodeName, symtab: symtab, surface: make(map[string]ast.SurfaceType, len(params)), generated: newGeneratedIdentifiers()}
	for _, p := range params {
		st.surface[p.Name] = p.Type
	}
	return n.inferType(e, st)
}

// resolveSurfaceType resolves e down to its declared surface type,
// following record/tuple projection chains through st.surface and
// falling back to scalar inference for every other node. This is how a
// record- or tuple-typed Param's projections (and record/tuple/array
// literals built from scalars) get a type without term.Type ever
// needing a record or tuple variant of its own.
func (n *Normalizer) resolveSurfaceType(e ast.Expr, st *nodeState) (ast.SurfaceType, error) {
	switch v := e.(type) {
	case *ast.Ident:
		if sf, ok := st.surface[v.Name]; ok {
			return sf, nil
		}
		t, err := n.inferType(e, st)
		if err != nil {
			return nil, err
		}
		return ast.ScalarType{Typ: t}, nil

	case *ast.RecordProj:
		base, err := n.resolveSurfaceType(v.Base, st)
		if err != nil {
			return nil, err
		}
		rec, ok := base.(ast.RecordSurfaceType)
		if !ok {
			return nil, corerr.InvariantViolation.New(fmt.Sprintf("record projection %q applied to a non-record value in %q", v.Field, st.nodeName))
		}
		f, ok := rec.Fields[v.Field]
		if !ok {
			return nil, corerr.UnboundIdentifier.New(v.Field, st.nodeName)
		}
		return f, nil

	case *ast.TupleProj:
		base, err := n.resolveSurfaceType(v.Base, st)
		if err != nil {
			return nil, err
		}
		tup, ok := base.(ast.TupleSurfaceType)
		if !ok {
			return nil, corerr.InvariantViolation.New(fmt.Sprintf("tuple projection #%d applied to a non-tuple value in %q", v.Idx, st.nodeName))
		}
		if v.Idx < 0 || v.Idx >= len(tup.Items) {
			return nil, corerr.InvariantViolation.New(fmt.Sprintf("tuple projection #%d out of range in %q", v.Idx, st.nodeName))
		}
		return tup.Items[v.Idx], nil

	case *ast.ArrayIndex:
		base, err := n.resolveSurfaceType(v.Base, st)
		if err != nil {
			return nil, err
		}
		sc, ok := base.(ast.ScalarType)
		if !ok || sc.Typ.Kind() != term.TyArray {
			return nil, corerr.InvariantViolation.New(fmt.Sprintf("array index applied to a non-array value in %q", st.nodeName))
		}
		return ast.ScalarType{Typ: sc.Typ.Elem()}, nil

	case *ast.ArrayLit:
		if len(v.Items) == 0 {
			return nil, corerr.InvariantViolation.New(fmt.Sprintf("empty array literal in %q has no inferrable element type", st.nodeName))
		}
		elemSf, err := n.resolveSurfaceType(v.Items[0], st)
		if err != nil {
			return nil, err
		}
		elemSc, ok := elemSf.(ast.ScalarType)
		if !ok {
			return nil, corerr.InvariantViolation.New(fmt.Sprintf("array literal of structured elements in %q is not supported", st.nodeName))
		}
		lo, hi := int64(0), int64(len(v.Items)-1)
		return ast.ScalarType{Typ: n.store.Array(n.store.IntRange(&lo, &hi), elemSc.Typ)}, nil

	case *ast.RecordLit:
		fields := make(map[string]ast.SurfaceType, len(v.Fields))
		for _, fname := range v.FieldOrder {
			f, err := n.resolveSurfaceType(v.Fields[fname], st)
			if err != nil {
				return nil, err
			}
			fields[fname] = f
		}
		return ast.RecordSurfaceType{Name: v.TypeName, Fields: fields, FieldOrder: append([]string(nil), v.FieldOrder...)}, nil

	case *ast.GroupExpr:
		items := make([]ast.SurfaceType, len(v.Items))
		for i, it := range v.Items {
			f, err := n.resolveSurfaceType(it, st)
			if err != nil {
				return nil, err
			}
			items[i] = f
		}
		return ast.TupleSurfaceType{Items: items}, nil

	default:
		t, err := n.inferType(e, st)
		if err != nil {
			return nil, err
		}
		return ast.ScalarType{Typ: t}, nil
	}
}

// inferType is a best-effort type resolver sufficient to name the
// oracle introduced for an unguarded Pre and the local introduced for
// a lifted subexpression; it never needs to be exact about refinement
// or subrange detail, only the base shape the generator re-derives in
// full during compilation.
func (n *Normalizer) inferType(e ast.Expr, st *nodeState) (*term.Type, error) {
	switch v := e.(type) {
	case *ast.Ident:
		if t, ok := st.symtab[v.Name]; ok {
			return t, nil
		}
		return nil, corerr.UnboundIdentifier.New(v.Name, st.nodeName)
	case *ast.IntConst:
		return n.store.Int(), nil
	case *ast.RealConst:
		return n.store.Real(), nil
	case *ast.BoolConst:
		return n.store.Bool(), nil
	case *ast.BinOp:
		switch v.Op {
		case ast.OpAnd, ast.OpOr, ast.OpImplies, ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLeq, ast.OpGt, ast.OpGeq:
			return n.store.Bool(), nil
		default:
			return n.inferType(v.Left, st)
		}
	case *ast.UnOp:
		switch v.Op {
		case ast.OpNot:
			return n.store.Bool(), nil
		case ast.OpToInt:
			return n.store.Int(), nil
		case ast.OpToReal:
			return n.store.Real(), nil
		default:
			return n.inferType(v.Operand, st)
		}
	case *ast.Ite:
		return n.inferType(v.Then, st)
	case *ast.Pre:
		return n.inferType(v.Operand, st)
	case *ast.Arrow:
		return n.inferType(v.Step, st)
	case *ast.RecordProj, *ast.TupleProj, *ast.ArrayIndex, *ast.ArrayLit, *ast.RecordLit, *ast.GroupExpr:
		sf, err := n.resolveSurfaceType(e, st)
		if err != nil {
			return nil, err
		}
		sc, ok := sf.(ast.ScalarType)
		if !ok {
			return nil, corerr.InvariantViolation.New(fmt.Sprintf("cannot infer a scalar type for %T in %q; structured values must not reach an unguarded pre", e, st.nodeName))
		}
		return sc.Typ, nil
	case *ast.Quantifier:
		return n.store.Bool(), nil
	default:
		return nil, corerr.UnsupportedConstruct.New(fmt.Sprintf("%T", e), st.nodeName)
	}
}
