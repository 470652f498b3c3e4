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

	"github.com/shopspring/decimal"

	"github.com/sdflang/core/ast"
	"github.com/sdflang/core/corerr"
	"github.com/sdflang/core/expr"
	"github.com/sdflang/core/term"
	"github.com/sdflang/core/trie"
)

// compileExpr lowers a normalized expression to the term-level expr
// layer. Every non-atomic subexpression has already been lifted to a
// named local by the normalizer, so recursion here only ever has to
// handle the connectives the generator itself is responsible for:
// boolean/arithmetic operators, ite, pre and arrow, quantifiers, plus
// the structural projections that survive flattening (e.g. a record
// projection applied to a call result). structs maps every record/
// tuple-typed name in scope to the trie of scalar state variables it
// was flattened into during step 2, consulted by the struct-valued
// cases below.
func (cs *CompilerState) compileExpr(env map[string]expr.Expr, structs map[string]*trie.Trie[*term.StateVariable], e ast.Expr) (expr.Expr, error) {
	switch v := e.(type) {
	case *ast.Ident:
		ex, ok := env[v.Name]
		if !ok {
			return expr.Expr{}, corerr.UnboundIdentifier.New(v.Name, "<expr>")
		}
		return ex, nil

	case *ast.IntConst:
		return expr.Close(cs.Store.IntTerm(v.Value)), nil

	case *ast.RealConst:
		d, err := decimal.NewFromString(v.Value)
		if err != nil {
			return expr.Expr{}, corerr.InvariantViolation.New(fmt.Sprintf("malformed real literal %q", v.Value))
		}
		return expr.Close(cs.Store.RealTerm(d)), nil

	case *ast.BoolConst:
		if v.Value {
			return expr.Close(cs.Store.True()), nil
		}
		return expr.Close(cs.Store.False()), nil

	case *ast.BinOp:
		l, err := cs.compileExpr(env, structs, v.Left)
		if err != nil {
			return expr.Expr{}, err
		}
		r, err := cs.compileExpr(env, structs, v.Right)
		if err != nil {
			return expr.Expr{}, err
		}
		return cs.compileBinOp(v.Op, l, r)

	case *ast.UnOp:
		o, err := cs.compileExpr(env, structs, v.Operand)
		if err != nil {
			return expr.Expr{}, err
		}
		return cs.compileUnOp(v.Op, o)

	case *ast.Ite:
		c, err := cs.compileExpr(env, structs, v.Cond)
		if err != nil {
			return expr.Expr{}, err
		}
		t, err := cs.compileExpr(env, structs, v.Then)
		if err != nil {
			return expr.Expr{}, err
		}
		el, err := cs.compileExpr(env, structs, v.Else)
		if err != nil {
			return expr.Expr{}, err
		}
		return expr.MkIte(cs.Store, c, t, el)

	case *ast.Pre:
		o, err := cs.compileExpr(env, structs, v.Operand)
		if err != nil {
			return expr.Expr{}, err
		}
		return expr.MkPre(cs.Store, o)

	case *ast.Arrow:
		a, err := cs.compileExpr(env, structs, v.Init)
		if err != nil {
			return expr.Expr{}, err
		}
		b, err := cs.compileExpr(env, structs, v.Step)
		if err != nil {
			return expr.Expr{}, err
		}
		return expr.MkArrow(cs.Store, a, b)

	case *ast.ArrayIndex:
		base, err := cs.compileExpr(env, structs, v.Base)
		if err != nil {
			return expr.Expr{}, err
		}
		idx, err := cs.compileExpr(env, structs, v.Index)
		if err != nil {
			return expr.Expr{}, err
		}
		return expr.MkSelectAndPush(cs.Store, base, idx)

	case *ast.Quantifier:
		boundTerm := cs.Store.Var(cs.Store.BoundVar(0, v.VarType))
		childEnv := make(map[string]expr.Expr, len(env)+1)
		for k, val := range env {
			childEnv[k] = val
		}
		childEnv[v.VarName] = expr.Close(boundTerm)
		body, err := cs.compileExpr(childEnv, structs, v.Body)
		if err != nil {
			return expr.Expr{}, err
		}
		quant := cs.Store.Forall
		if !v.Forall {
			quant = cs.Store.Exists
		}
		return expr.Expr{Init: quant(v.VarType, body.Init), Step: quant(v.VarType, body.Step), Typ: cs.Store.Bool()}, nil

	case *ast.RecordProj, *ast.TupleProj, *ast.RecordLit, *ast.GroupExpr:
		tr, err := cs.compileStructExpr(env, structs, e)
		if err != nil {
			return expr.Expr{}, err
		}
		leaf, ok := tr.Find(nil)
		if !ok {
			return expr.Expr{}, corerr.InvariantViolation.New(fmt.Sprintf("%T does not resolve to a scalar value in this position", e))
		}
		return leaf, nil

	default:
		return expr.Expr{}, corerr.UnsupportedConstruct.New(fmt.Sprintf("%T", e), "<expr>")
	}
}

// compileStructExpr lowers a structured (record/tuple-typed)
// expression to a trie of scalar expr.Expr, one per leaf, keyed the
// same way the corresponding state variables were flattened in step 2.
// A plain identifier that names a structured local/input/output is
// looked up in structs; every other node recurses structurally and
// falls back to compileExpr at a genuinely scalar leaf.
func (cs *CompilerState) compileStructExpr(env map[string]expr.Expr, structs map[string]*trie.Trie[*term.StateVariable], e ast.Expr) (*trie.Trie[expr.Expr], error) {
	switch v := e.(type) {
	case *ast.Ident:
		if tr, ok := structs[v.Name]; ok {
			return trie.Map(func(_ trie.Path, sv *term.StateVariable) expr.Expr {
				return expr.Close(cs.Store.Var(cs.Store.StateInstance(sv, 0)))
			}, tr), nil
		}
		ce, err := cs.compileExpr(env, structs, e)
		if err != nil {
			return nil, err
		}
		return trie.Singleton[expr.Expr](nil, ce), nil

	case *ast.RecordLit:
		out := trie.Empty[expr.Expr]()
		for _, f := range v.FieldOrder {
			sub, err := cs.compileStructExpr(env, structs, v.Fields[f])
			if err != nil {
				return nil, err
			}
			for _, b := range sub.Bindings() {
				out = out.Add(append(trie.Path{trie.Record(f)}, b.Path...), b.Val)
			}
		}
		return out, nil

	case *ast.GroupExpr:
		out := trie.Empty[expr.Expr]()
		for i, it := range v.Items {
			sub, err := cs.compileStructExpr(env, structs, it)
			if err != nil {
				return nil, err
			}
			for _, b := range sub.Bindings() {
				out = out.Add(append(trie.Path{trie.Tuple(i)}, b.Path...), b.Val)
			}
		}
		return out, nil

	case *ast.RecordProj:
		base, err := cs.compileStructExpr(env, structs, v.Base)
		if err != nil {
			return nil, err
		}
		sub := base.FindPrefix(trie.Path{trie.Record(v.Field)})
		if sub.IsEmpty() {
			return nil, corerr.InvariantViolation.New(fmt.Sprintf("record projection %q not found", v.Field))
		}
		return sub, nil

	case *ast.TupleProj:
		base, err := cs.compileStructExpr(env, structs, v.Base)
		if err != nil {
			return nil, err
		}
		sub := base.FindPrefix(trie.Path{trie.Tuple(v.Idx)})
		if sub.IsEmpty() {
			return nil, corerr.InvariantViolation.New(fmt.Sprintf("tuple projection #%d not found", v.Idx))
		}
		return sub, nil

	default:
		ce, err := cs.compileExpr(env, structs, e)
		if err != nil {
			return nil, err
		}
		return trie.Singleton[expr.Expr](nil, ce), nil
	}
}

// liftBinary applies a *term.Store binary term constructor pointwise
// to the init and step components of two expressions, the pattern
// every boolean/arithmetic/bitvector operator in compileBinOp shares.
func liftBinary(s *term.Store, op func(a, b *term.Term) (*term.Term, error), l, r expr.Expr) (expr.Expr, error) {
	init, err := op(l.Init, r.Init)
	if err != nil {
		return expr.Expr{}, err
	}
	step, err := op(l.Step, r.Step)
	if err != nil {
		return expr.Expr{}, err
	}
	return expr.Expr{Init: init, Step: step, Typ: init.Type()}, nil
}

func liftUnary(s *term.Store, op func(a *term.Term) (*term.Term, error), e expr.Expr) (expr.Expr, error) {
	init, err := op(e.Init)
	if err != nil {
		return expr.Expr{}, err
	}
	step, err := op(e.Step)
	if err != nil {
		return expr.Expr{}, err
	}
	return expr.Expr{Init: init, Step: step, Typ: init.Type()}, nil
}

func variadic2(f func(...*term.Term) (*term.Term, error)) func(a, b *term.Term) (*term.Term, error) {
	return func(a, b *term.Term) (*term.Term, error) { return f(a, b) }
}

func (cs *CompilerState) compileBinOp(op ast.BinOpKind, l, r expr.Expr) (expr.Expr, error) {
	s := cs.Store
	switch op {
	case ast.OpAnd:
		return liftBinary(s, variadic2(s.And), l, r)
	case ast.OpOr:
		return liftBinary(s, variadic2(s.Or), l, r)
	case ast.OpImplies:
		return liftBinary(s, s.Implies, l, r)
	case ast.OpEq:
		return liftBinary(s, s.Eq, l, r)
	case ast.OpNeq:
		eq, err := liftBinary(s, s.Eq, l, r)
		if err != nil {
			return expr.Expr{}, err
		}
		return liftUnary(s, s.Not, eq)
	case ast.OpLt:
		return liftBinary(s, s.Lt, l, r)
	case ast.OpLeq:
		return liftBinary(s, s.Leq, l, r)
	case ast.OpGt:
		return liftBinary(s, s.Gt, l, r)
	case ast.OpGeq:
		return liftBinary(s, s.Geq, l, r)
	case ast.OpPlus:
		return liftBinary(s, s.Plus, l, r)
	case ast.OpMinus:
		return liftBinary(s, s.Minus, l, r)
	case ast.OpTimes:
		return liftBinary(s, s.Times, l, r)
	case ast.OpDiv:
		return liftBinary(s, s.Div, l, r)
	case ast.OpIntDiv:
		return liftBinary(s, s.IntDiv, l, r)
	case ast.OpMod:
		return liftBinary(s, s.Mod, l, r)
	case ast.OpBVAnd:
		return liftBinary(s, s.BVAnd, l, r)
	case ast.OpBVOr:
		return liftBinary(s, s.BVOr, l, r)
	case ast.OpBVXor:
		return liftBinary(s, s.BVXor, l, r)
	case ast.OpBVShl:
		return liftBinary(s, s.BVShl, l, r)
	case ast.OpBVLshr:
		return liftBinary(s, s.BVLshr, l, r)
	case ast.OpBVAshr:
		return liftBinary(s, s.BVAshr, l, r)
	case ast.OpBVConcat:
		return liftBinary(s, s.BVConcat, l, r)
	default:
		return expr.Expr{}, corerr.UnsupportedConstruct.New(fmt.Sprintf("binop %d", op), "<expr>")
	}
}

func (cs *CompilerState) compileUnOp(op ast.UnOpKind, e expr.Expr) (expr.Expr, error) {
	s := cs.Store
	switch op {
	case ast.OpNot:
		return liftUnary(s, s.Not, e)
	case ast.OpUMinus:
		return liftUnary(s, s.UMinus, e)
	case ast.OpToInt:
		return liftUnary(s, s.ToInt, e)
	case ast.OpToReal:
		return liftUnary(s, s.ToReal, e)
	case ast.OpBVNot:
		return liftUnary(s, s.BVNot, e)
	default:
		return expr.Expr{}, corerr.UnsupportedConstruct.New(fmt.Sprintf("unop %d", op), "<expr>")
	}
}
