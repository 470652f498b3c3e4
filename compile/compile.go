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

package compile

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sdflang/core/ast"
	"github.com/sdflang/core/corerr"
	"github.com/sdflang/core/expr"
	"github.com/sdflang/core/normalize"
	"github.com/sdflang/core/term"
	"github.com/sdflang/core/trie"
	"github.com/sdflang/core/typing"
)

// CompilerState is the per-run compiler: one hash-cons store, one
// state-variable registry, one fresh-name counter, shared across every
// node of a program so cross-node references stay consistent.
type CompilerState struct {
	Store   *term.Store
	SVars   *term.StateVarStore
	Ctx     typing.Context
	Counter *normalize.Counter
	Log     *logrus.Entry

	norm  *normalize.Normalizer
	Nodes map[string]*NodeRecord
}

// NewCompilerState wires together one compilation run's shared state.
func NewCompilerState(store *term.Store, ctx typing.Context, log *logrus.Entry) *CompilerState {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	counter := normalize.NewCounter(0)
	return &CompilerState{
		Store:   store,
		SVars:   term.NewStateVarStore(),
		Ctx:     ctx,
		Counter: counter,
		Log:     log,
		norm:    normalize.New(store, ctx, counter, log),
		Nodes:   make(map[string]*NodeRecord),
	}
}

// CompileProgram compiles every node of prog in declaration order,
// making each compiled NodeRecord available to later nodes that call
// it.
func (cs *CompilerState) CompileProgram(prog *ast.Program) error {
	for _, decl := range prog.Nodes {
		if decl.IsExtern {
			continue
		}
		if _, err := cs.CompileNode(decl); err != nil {
			return fmt.Errorf("compiling node %s: %w", decl.Name, err)
		}
	}
	return nil
}

// flattenParamType registers one state variable per scalar leaf of a
// declared input/output/local's surface type, mirroring expandEquation's
// recursive descent into a structured left-hand side: a record
// descends by field name, a tuple by position, each level appending
// its own name to the scope the way ArrayDefLoop's elemScope does.
// The returned trie lets compileStructExpr later resolve a projection
// chain on this name back down to the scalar state variable it reads.
func (cs *CompilerState) flattenParamType(name string, scope term.Scope, st ast.SurfaceType, flags term.StateVariableFlags, source term.StateVariableSource, path trie.Path) ([]*term.StateVariable, *trie.Trie[*term.StateVariable], error) {
	switch t := st.(type) {
	case ast.ScalarType:
		sv := cs.SVars.Get(name, scope, t.Typ, flags, source)
		return []*term.StateVariable{sv}, trie.Singleton[*term.StateVariable](path, sv), nil

	case ast.RecordSurfaceType:
		fieldScope := append(term.Scope(nil), scope...)
		fieldScope = append(fieldScope, name)
		var svs []*term.StateVariable
		tr := trie.Empty[*term.StateVariable]()
		for _, f := range t.FieldOrder {
			sub, subTrie, err := cs.flattenParamType(f, fieldScope, t.Fields[f], flags, source, append(path, trie.Record(f)))
			if err != nil {
				return nil, nil, err
			}
			svs = append(svs, sub...)
			for _, b := range subTrie.Bindings() {
				tr = tr.Add(b.Path, b.Val)
			}
		}
		return svs, tr, nil

	case ast.TupleSurfaceType:
		itemScope := append(term.Scope(nil), scope...)
		itemScope = append(itemScope, name)
		var svs []*term.StateVariable
		tr := trie.Empty[*term.StateVariable]()
		for i, item := range t.Items {
			sub, subTrie, err := cs.flattenParamType(fmt.Sprintf("%d", i), itemScope, item, flags, source, append(path, trie.Tuple(i)))
			if err != nil {
				return nil, nil, err
			}
			svs = append(svs, sub...)
			for _, b := range subTrie.Bindings() {
				tr = tr.Add(b.Path, b.Val)
			}
		}
		return svs, tr, nil

	default:
		return nil, nil, corerr.UnsupportedConstruct.New(fmt.Sprintf("%T", st), name)
	}
}

// CompileNode runs the ten-step per-node pipeline:
//  1. normalize the body (pre-guarding, call lifting, call-output references)
//  2. flatten and register state variables for inputs/outputs/locals
//  3. register state variables for generated locals
//  4. register state variables for oracles
//  5. compile every equation, expanding structured left-hand sides
//  6. compile asserts
//  7. compile properties
//  8. lower every lifted call to a CallRecord
//  9. compile the attached contract, if any, including the sofar accumulator
//  10. register the finished NodeRecord
func (cs *CompilerState) CompileNode(decl ast.NodeDecl) (*NodeRecord, error) {
	normDecl, gen, err := cs.norm.NormalizeNode(decl)
	if err != nil {
		return nil, err
	}

	scope := term.Scope{decl.Name}
	symtab := make(map[string]*term.Type)
	// structs maps every record/tuple-typed input/output/local to the
	// trie of scalar state variables its surface type was flattened
	// into; a scalar-typed Param lives in symtab instead (step 1 fix:
	// term.Type has no record/tuple variant, so a structured Param is
	// expanded here rather than registered as a single state variable).
	structs := make(map[string]*trie.Trie[*term.StateVariable])
	rec := &NodeRecord{Name: decl.Name, IsFunction: decl.IsFunction}

	bindParams := func(params []ast.Param, flags func(ast.Param) term.StateVariableFlags, source term.StateVariableSource, into *[]*term.StateVariable) error {
		for _, p := range params {
			svs, tr, err := cs.flattenParamType(p.Name, scope, p.Type, flags(p), source, nil)
			if err != nil {
				return err
			}
			*into = append(*into, svs...)
			if sc, ok := p.Type.(ast.ScalarType); ok {
				symtab[p.Name] = sc.Typ
			} else {
				structs[p.Name] = tr
			}
		}
		return nil
	}
	if err := bindParams(decl.Inputs, func(p ast.Param) term.StateVariableFlags {
		return term.StateVariableFlags{IsInput: true, IsConst: p.IsConst}
	}, term.SourceInput, &rec.Inputs); err != nil {
		return nil, err
	}
	if err := bindParams(decl.Outputs, func(ast.Param) term.StateVariableFlags {
		return term.StateVariableFlags{}
	}, term.SourceOutput, &rec.Outputs); err != nil {
		return nil, err
	}
	if err := bindParams(decl.Locals, func(p ast.Param) term.StateVariableFlags {
		return term.StateVariableFlags{IsConst: p.IsConst}
	}, term.SourceLocal, &rec.Locals); err != nil {
		return nil, err
	}

	allParams := make([]ast.Param, 0, len(decl.Inputs)+len(decl.Outputs)+len(decl.Locals))
	allParams = append(allParams, decl.Inputs...)
	allParams = append(allParams, decl.Outputs...)
	allParams = append(allParams, decl.Locals...)

	// Step 3/4: generated locals and oracles need a type before they can
	// become state variables; both are resolvable in the order the
	// normalizer produced them because each only references names
	// already bound.
	for _, name := range gen.LocalOrder {
		rhs := gen.Locals[name]
		typ, err := cs.norm.InferExprType(rhs, symtab, decl.Name, allParams)
		if err != nil {
			return nil, err
		}
		sv := cs.SVars.Get(name, scope, typ, term.StateVariableFlags{}, term.SourceGenerated)
		rec.Locals = append(rec.Locals, sv)
		symtab[name] = typ
	}
	for _, o := range gen.Oracles {
		sv := cs.SVars.Get(o.Name, scope, o.Type, term.StateVariableFlags{}, term.SourceOracle)
		rec.Locals = append(rec.Locals, sv)
		symtab[o.Name] = o.Type
	}
	for _, c := range gen.Calls {
		sig, ok := cs.Ctx.NodeSignature(c.Callee)
		if !ok {
			return nil, corerr.UnboundIdentifier.New(c.Callee, decl.Name)
		}
		for i, name := range c.Outputs {
			typ := sig.Outputs[i]
			sv := cs.SVars.Get(name, scope, typ, term.StateVariableFlags{}, term.SourceCall)
			rec.Locals = append(rec.Locals, sv)
			symtab[name] = typ
		}
	}

	env := make(map[string]expr.Expr, len(symtab))
	for name := range symtab {
		sv, ok := cs.SVars.Lookup(name, scope)
		if !ok {
			return nil, corerr.InvariantViolation.New(fmt.Sprintf("state variable %q missing after registration in node %q", name, decl.Name))
		}
		env[name] = expr.Close(cs.Store.Var(cs.Store.StateInstance(sv, 0)))
	}

	// Generated locals carry their own defining equation (the
	// expression the normalizer lifted them out of); oracles and call
	// outputs do not: an oracle is unconstrained by construction and a
	// call output is constrained by the callee's own transition
	// relation, not by an equation in this node.
	for _, name := range gen.LocalOrder {
		ce, err := cs.compileExpr(env, structs, gen.Locals[name])
		if err != nil {
			return nil, err
		}
		sv, _ := cs.SVars.Lookup(name, scope)
		rec.Equations = append(rec.Equations, Equation{SVar: sv, Expr: ce})
	}

	// Step 5: compile every equation, expanding structured left-hand
	// sides down to their scalar leaves against the mirrored shape of
	// the right-hand side.
	for _, eq := range normDecl.Equations {
		eqs, _, err := cs.expandEquation(decl.Name, scope, symtab, env, structs, eq.LHS, eq.RHS, nil)
		if err != nil {
			return nil, err
		}
		rec.Equations = append(rec.Equations, eqs...)
	}

	// Step 6: asserts.
	for _, a := range normDecl.Asserts {
		ce, err := cs.compileExpr(env, structs, a.Operand)
		if err != nil {
			return nil, err
		}
		rec.Asserts = append(rec.Asserts, ce)
	}

	// Step 7: properties. A plain property annotation on the same state
	// variable as a nonvacuity check is redundant with it, so the
	// nonvacuity obligation wins.
	nonvacuitySet := make(map[string]bool, len(gen.NonvacuityProperties))
	for _, name := range gen.NonvacuityProperties {
		nonvacuitySet[name] = true
	}
	for _, p := range normDecl.Properties {
		if p.Kind == ast.PropertyPlain {
			if id, ok := p.Operand.(*ast.Ident); ok && nonvacuitySet[id.Name] {
				continue
			}
		}
		ce, err := cs.compileExpr(env, structs, p.Operand)
		if err != nil {
			return nil, err
		}
		rec.Properties = append(rec.Properties, PropertyRecord{Name: p.Name, Expr: ce, Kind: p.Kind})
	}

	// Step 8: lower every lifted call.
	for _, c := range gen.Calls {
		call, err := cs.compileCall(decl.Name, scope, env, structs, c)
		if err != nil {
			return nil, err
		}
		rec.Calls = append(rec.Calls, call)
		rec.Locals = append(rec.Locals, call.Oracles...)
	}

	// Step 9: contract, including the sofar accumulator.
	if normDecl.Contract != nil {
		contract, err := cs.compileContract(decl.Name, scope, env, structs, symtab, *normDecl.Contract)
		if err != nil {
			return nil, err
		}
		rec.Contract = contract
		if contract.Sofar != nil {
			rec.Equations = append(rec.Equations, Equation{SVar: contract.Sofar, Expr: contract.SofarEquation})
		}
	}

	// Subrange/refinement constraints recorded against inputs become
	// contract assumptions, those against outputs/ghost variables
	// become guarantees, and those against locals become plain or
	// candidate-invariant properties.
	for _, lst := range [][]normalize.Constraint{gen.SubrangeConstraints, gen.RefinementConstraints} {
		for _, c := range lst {
			ce, err := cs.compileExpr(env, structs, c.Pred)
			if err != nil {
				return nil, err
			}
			if c.Derived {
				rec.Properties = append(rec.Properties, PropertyRecord{Name: c.VarName, Expr: ce, Kind: ast.PropertyCandidateInvariant})
				continue
			}
			switch c.Role {
			case normalize.RoleInput:
				if rec.Contract == nil {
					rec.Contract = &Contract{}
				}
				rec.Contract.Assumes = append(rec.Contract.Assumes, ce)
			case normalize.RoleOutput:
				if rec.Contract == nil {
					rec.Contract = &Contract{}
				}
				rec.Contract.Guarantees = append(rec.Contract.Guarantees, ce)
			default:
				rec.Properties = append(rec.Properties, PropertyRecord{Name: c.VarName, Expr: ce, Kind: ast.PropertyPlain})
			}
		}
	}

	// History variables: every identifier the source sampled through
	// pre at least once, grouped by type.
	if len(gen.HistoryVars) > 0 {
		rec.HistoryVars = make(map[*term.Type][]*term.StateVariable)
		for _, name := range gen.HistoryVars {
			sv, ok := cs.SVars.Lookup(name, scope)
			if !ok {
				continue
			}
			rec.HistoryVars[sv.Type()] = append(rec.HistoryVars[sv.Type()], sv)
		}
	}

	cs.Log.WithFields(logrus.Fields{
		"node":       decl.Name,
		"equations":  len(rec.Equations),
		"calls":      len(rec.Calls),
		"properties": len(rec.Properties),
	}).Info("compiled node")

	cs.Nodes[decl.Name] = rec
	return rec, nil
}

// compileCall lowers one lifted call to a CallRecord: its arguments
// are compiled in the caller's environment and its outputs resolved to
// the state variables already registered for them. If the callee has
// already been compiled (it was declared earlier in the program), its
// oracle-sourced locals are propagated into fresh caller-scoped state
// variables so the transition system still carries a free input for
// each one; a forward-referencing call to a not-yet-compiled callee
// skips propagation (documented limitation, DESIGN.md).
func (cs *CompilerState) compileCall(nodeName string, scope term.Scope, env map[string]expr.Expr, structs map[string]*trie.Trie[*term.StateVariable], c normalize.CallEntry) (CallRecord, error) {
	outSVs := make([]*term.StateVariable, len(c.Outputs))
	for i, name := range c.Outputs {
		sv, ok := cs.SVars.Lookup(name, scope)
		if !ok {
			return CallRecord{}, corerr.InvariantViolation.New(fmt.Sprintf("call output %q not registered in node %q", name, nodeName))
		}
		outSVs[i] = sv
	}
	args := make([]expr.Expr, len(c.Args))
	for i, a := range c.Args {
		ce, err := cs.compileExpr(env, structs, a)
		if err != nil {
			return CallRecord{}, err
		}
		args[i] = ce
	}
	var defaults []expr.Expr
	if c.Defaults != nil {
		defaults = make([]expr.Expr, len(c.Defaults))
		for i, d := range c.Defaults {
			ce, err := cs.compileExpr(env, structs, d)
			if err != nil {
				return CallRecord{}, err
			}
			defaults[i] = ce
		}
	}
	var activation, restart expr.Expr
	if c.ActivationCond != nil {
		var err error
		activation, err = cs.compileExpr(env, structs, c.ActivationCond)
		if err != nil {
			return CallRecord{}, err
		}
	}
	if c.RestartCond != nil {
		var err error
		restart, err = cs.compileExpr(env, structs, c.RestartCond)
		if err != nil {
			return CallRecord{}, err
		}
	}
	instScope := append(term.Scope(nil), scope...)
	instScope = append(instScope, c.Callee)

	var oracles []*term.StateVariable
	inlined := false
	if callee, ok := cs.Nodes[c.Callee]; ok {
		inlined = callee.IsFunction
		for _, sv := range callee.Locals {
			if sv.Source() != term.SourceOracle {
				continue
			}
			oname := fmt.Sprintf("%d_%s", cs.Counter.Next(), normalize.KindPropagatedOracle)
			osv := cs.SVars.Get(oname, instScope, sv.Type(), term.StateVariableFlags{}, term.SourceOracle)
			oracles = append(oracles, osv)
		}
	}

	return CallRecord{
		CallID:        cs.Counter.Next(),
		Position:      c.Position,
		Callee:        c.Callee,
		Outputs:       outSVs,
		Args:          args,
		Oracles:       oracles,
		Defaults:      defaults,
		Activation:    activation,
		Restart:       restart,
		Inlined:       inlined,
		InstanceScope: instScope,
	}, nil
}

// compileContract compiles a node's assume/guarantee/mode structure
// and synthesizes the sofar accumulator: a fresh boolean state
// variable holding the conjunction of every guarantee seen so far,
// equal to true -> (pre(sofar) and this instant's guarantees).
func (cs *CompilerState) compileContract(nodeName string, scope term.Scope, env map[string]expr.Expr, structs map[string]*trie.Trie[*term.StateVariable], symtab map[string]*term.Type, body ast.ContractBody) (*Contract, error) {
	c := &Contract{}
	for _, item := range body.Items {
		switch item.Kind {
		case ast.ItemAssume, ast.ItemWeaklyAssume:
			if item.Operand == nil {
				continue
			}
			ce, err := cs.compileExpr(env, structs, item.Operand)
			if err != nil {
				return nil, err
			}
			c.Assumes = append(c.Assumes, ce)
		case ast.ItemGuarantee, ast.ItemWeaklyGuarantee:
			if item.Operand == nil {
				continue
			}
			ce, err := cs.compileExpr(env, structs, item.Operand)
			if err != nil {
				return nil, err
			}
			c.Guarantees = append(c.Guarantees, ce)
		case ast.ItemMode:
			m := Mode{Name: item.Name}
			for _, r := range item.ModeRequires {
				ce, err := cs.compileExpr(env, structs, r.Operand)
				if err != nil {
					return nil, err
				}
				m.Requires = append(m.Requires, ce)
			}
			for _, e := range item.ModeEnsures {
				ce, err := cs.compileExpr(env, structs, e.Operand)
				if err != nil {
					return nil, err
				}
				m.Ensures = append(m.Ensures, ce)
			}
			c.Modes = append(c.Modes, m)
		}
	}

	if len(c.Guarantees) == 0 {
		return c, nil
	}

	sofarName := "sofar"
	sv := cs.SVars.Get(sofarName, scope, cs.Store.Bool(), term.StateVariableFlags{}, term.SourceGenerated)
	sofarRef := expr.Close(cs.Store.Var(cs.Store.StateInstance(sv, 0)))
	preSofar, err := expr.MkPre(cs.Store, sofarRef)
	if err != nil {
		return nil, err
	}
	conj := c.Guarantees[0]
	for _, g := range c.Guarantees[1:] {
		var err error
		conj, err = liftBinary(cs.Store, variadic2(cs.Store.And), conj, g)
		if err != nil {
			return nil, err
		}
	}
	stepVal, err := liftBinary(cs.Store, variadic2(cs.Store.And), preSofar, conj)
	if err != nil {
		return nil, err
	}
	trueExpr := expr.Close(cs.Store.True())
	eq, err := expr.MkArrow(cs.Store, trueExpr, stepVal)
	if err != nil {
		return nil, err
	}
	c.Sofar = sv
	c.SofarEquation = eq
	return c, nil
}

// expandEquation flattens a possibly structured left-hand side against
// the mirrored shape of its right-hand side, registering a scalar
// equation per leaf. The per-call leaf trie is returned so a caller
// compiling a contract or array-def-loop can look up the state
// variable bound at a specific index path.
func (cs *CompilerState) expandEquation(nodeName string, scope term.Scope, symtab map[string]*term.Type, env map[string]expr.Expr, structs map[string]*trie.Trie[*term.StateVariable], lhs ast.StructureDef, rhs ast.Expr, path trie.Path) ([]Equation, *trie.Trie[*term.StateVariable], error) {
	switch l := lhs.(type) {
	case *ast.VarDef:
		// A VarDef naming a record/tuple-typed parameter binds the whole
		// structured value at once (e.g. "r = {a = ...; b = ...}"); flatten
		// both sides in lockstep against the leaf trie step 2 already
		// built for it, rather than treating l.Name as one scalar SVar.
		if leafTrie, ok := structs[l.Name]; ok {
			rhsTrie, err := cs.compileStructExpr(env, structs, rhs)
			if err != nil {
				return nil, nil, err
			}
			combined, err := trie.Map2(func(_ trie.Path, sv *term.StateVariable, ce expr.Expr) (Equation, error) {
				return Equation{SVar: sv, Expr: ce}, nil
			}, leafTrie, rhsTrie, fmt.Sprintf("structured equation for %q in node %q", l.Name, nodeName))
			if err != nil {
				return nil, nil, err
			}
			eqs := make([]Equation, 0, combined.Len())
			outTrie := trie.Empty[*term.StateVariable]()
			for _, b := range combined.Bindings() {
				eqs = append(eqs, b.Val)
				outTrie = outTrie.Add(append(append(trie.Path(nil), path...), b.Path...), b.Val.SVar)
			}
			return eqs, outTrie, nil
		}
		sv, ok := cs.SVars.Lookup(l.Name, scope)
		if !ok {
			return nil, nil, corerr.InvariantViolation.New(fmt.Sprintf("left-hand side %q not a registered state variable in node %q", l.Name, nodeName))
		}
		ce, err := cs.compileExpr(env, structs, rhs)
		if err != nil {
			return nil, nil, err
		}
		return []Equation{{SVar: sv, Expr: ce}}, trie.Singleton[*term.StateVariable](path, sv), nil

	case *ast.TupleDef:
		group, ok := rhs.(*ast.GroupExpr)
		if !ok || len(group.Items) != len(l.Items) {
			return nil, nil, corerr.ShapeMismatch.New(nodeName, "tuple left-hand side against non-tuple right-hand side")
		}
		var eqs []Equation
		t := trie.Empty[*term.StateVariable]()
		for i, item := range l.Items {
			sub, subTrie, err := cs.expandEquation(nodeName, scope, symtab, env, structs, item, group.Items[i], append(path, trie.Tuple(i)))
			if err != nil {
				return nil, nil, err
			}
			eqs = append(eqs, sub...)
			for _, b := range subTrie.Bindings() {
				t = t.Add(b.Path, b.Val)
			}
		}
		return eqs, t, nil

	case *ast.RecordDef:
		lit, ok := rhs.(*ast.RecordLit)
		if !ok {
			return nil, nil, corerr.ShapeMismatch.New(nodeName, "record left-hand side against non-record right-hand side")
		}
		var eqs []Equation
		t := trie.Empty[*term.StateVariable]()
		for _, field := range l.FieldOrder {
			sub, subTrie, err := cs.expandEquation(nodeName, scope, symtab, env, structs, l.Fields[field], lit.Fields[field], append(path, trie.Record(field)))
			if err != nil {
				return nil, nil, err
			}
			eqs = append(eqs, sub...)
			for _, b := range subTrie.Bindings() {
				t = t.Add(b.Path, b.Val)
			}
		}
		return eqs, t, nil

	case *ast.ListDef:
		lit, ok := rhs.(*ast.ArrayLit)
		if !ok || len(lit.Items) != len(l.Items) {
			return nil, nil, corerr.ShapeMismatch.New(nodeName, "list left-hand side against non-array right-hand side")
		}
		var eqs []Equation
		t := trie.Empty[*term.StateVariable]()
		for i, item := range l.Items {
			sub, subTrie, err := cs.expandEquation(nodeName, scope, symtab, env, structs, item, lit.Items[i], append(path, trie.List(i)))
			if err != nil {
				return nil, nil, err
			}
			eqs = append(eqs, sub...)
			for _, b := range subTrie.Bindings() {
				t = t.Add(b.Path, b.Val)
			}
		}
		return eqs, t, nil

	case *ast.ArrayDefLoop:
		base, ok := l.Base.(*ast.VarDef)
		if !ok {
			return nil, nil, corerr.UnsupportedConstruct.New("array-def-loop over a non-variable base", nodeName)
		}
		typ, ok := symtab[base.Name]
		if !ok || typ.Kind() != term.TyArray {
			return nil, nil, corerr.TypeMismatch.New(fmt.Sprintf("array-def-loop target %q is not array-typed in node %q", base.Name, nodeName))
		}
		lo, hi := typ.Index().Bounds()
		if lo == nil || hi == nil {
			return nil, nil, corerr.UnsupportedConstruct.New("array-def-loop over an unbounded index range", nodeName)
		}
		// The right-hand side may itself index a shorter array (e.g.
		// "A[i] = B[i]" where B is declared with a tighter bound than
		// A); the smaller of the two upper bounds wins so the loop
		// never reads past the shorter array. When the right-hand side
		// carries no resolvable numeric bound, the left-hand side's own
		// declared bound is kept as-is.
		effHi := *hi
		if rhsHi, ok := collectArrayBaseBounds(rhs, symtab); ok && rhsHi < effHi {
			effHi = rhsHi
		}
		var eqs []Equation
		t := trie.Empty[*term.StateVariable]()
		for k := *lo; k <= effHi; k++ {
			elemScope := append(term.Scope(nil), scope...)
			elemScope = append(elemScope, base.Name)
			sv := cs.SVars.Get(fmt.Sprintf("%d", k), elemScope, typ.Elem(), term.StateVariableFlags{}, term.SourceGenerated)
			substituted := substituteIndexVars(rhs, l.IdxVars, []int64{k})
			ce, err := cs.compileExpr(env, structs, substituted)
			if err != nil {
				return nil, nil, err
			}
			eqs = append(eqs, Equation{SVar: sv, Expr: ce})
			t = t.Add(append(append(trie.Path(nil), path...), trie.ArrayInt(int(k))), sv)
		}
		return eqs, t, nil

	default:
		return nil, nil, corerr.UnsupportedConstruct.New(fmt.Sprintf("%T", lhs), nodeName)
	}
}

// collectArrayBaseBounds walks e looking for an ArrayIndex whose base
// is a declared array-typed identifier with a known numeric upper
// bound, tracking the tightest (smallest) such bound found anywhere in
// the expression. found is false when no resolvable numeric bound
// exists anywhere in e.
func collectArrayBaseBounds(e ast.Expr, symtab map[string]*term.Type) (hi int64, found bool) {
	best := int64(0)
	any := false
	consider := func(h int64) {
		if !any || h < best {
			best = h
			any = true
		}
	}
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch v := e.(type) {
		case *ast.ArrayIndex:
			if id, ok := v.Base.(*ast.Ident); ok {
				if t, ok := symtab[id.Name]; ok && t.Kind() == term.TyArray {
					if _, h := t.Index().Bounds(); h != nil {
						consider(*h)
					}
				}
			}
			walk(v.Base)
			walk(v.Index)
		case *ast.BinOp:
			walk(v.Left)
			walk(v.Right)
		case *ast.UnOp:
			walk(v.Operand)
		case *ast.Ite:
			walk(v.Cond)
			walk(v.Then)
			walk(v.Else)
		case *ast.Pre:
			walk(v.Operand)
		case *ast.Arrow:
			walk(v.Init)
			walk(v.Step)
		case *ast.RecordProj:
			walk(v.Base)
		case *ast.TupleProj:
			walk(v.Base)
		}
	}
	walk(e)
	return best, any
}

// substituteIndexVars replaces every Ident matching one of names with
// the corresponding literal integer constant; used to unroll an
// array-def-loop equation once per concrete index.
func substituteIndexVars(e ast.Expr, names []string, vals []int64) ast.Expr {
	idx := func(name string) (int64, bool) {
		for i, n := range names {
			if n == name {
				return vals[i], true
			}
		}
		return 0, false
	}
	var walk func(ast.Expr) ast.Expr
	walk = func(e ast.Expr) ast.Expr {
		switch v := e.(type) {
		case *ast.Ident:
			if val, ok := idx(v.Name); ok {
				return &ast.IntConst{Position: v.Position, Value: val}
			}
			return v
		case *ast.BinOp:
			return &ast.BinOp{Position: v.Position, Op: v.Op, Left: walk(v.Left), Right: walk(v.Right)}
		case *ast.UnOp:
			return &ast.UnOp{Position: v.Position, Op: v.Op, Operand: walk(v.Operand)}
		case *ast.Ite:
			return &ast.Ite{Position: v.Position, Cond: walk(v.Cond), Then: walk(v.Then), Else: walk(v.Else)}
		case *ast.Pre:
			return &ast.Pre{Position: v.Position, Operand: walk(v.Operand)}
		case *ast.Arrow:
			return &ast.Arrow{Position: v.Position, Init: walk(v.Init), Step: walk(v.Step)}
		case *ast.ArrayIndex:
			return &ast.ArrayIndex{Position: v.Position, Base: walk(v.Base), Index: walk(v.Index)}
		case *ast.RecordProj:
			return &ast.RecordProj{Position: v.Position, Base: walk(v.Base), Field: v.Field}
		case *ast.TupleProj:
			return &ast.TupleProj{Position: v.Position, Base: walk(v.Base), Idx: v.Idx}
		default:
			return v
		}
	}
	return walk(e)
}
