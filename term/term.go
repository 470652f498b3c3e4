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

// Package term implements the process-wide hash-consing term store:
// symbols, types, variables and the lambda-tree term nodes built over
// them. Every constructor interns its result, so structurally equal
// terms are always the same *Term (pointer equality implies and is
// implied by structural equality).
package term

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sdflang/core/corerr"
)

// Tag is the unique integer identity assigned to a hash-consed record
// the first time it is constructed. Tags are stable for the lifetime
// of the process and never reused.
type Tag int64

// Stats exposes observability counters over the hash-cons tables.
type Stats struct {
	TypeCount   int
	SymbolCount int
	VarCount    int
	TermCount   int
	Peak        int
	// Collisions is always zero: terms are interned under a canonical
	// structural key (not a raw hash bucket), so two distinct terms
	// never share a table slot. The counter is retained for
	// observability-interface parity with a true hash-bucket store.
	Collisions int
}

// Store is the process-wide hash-cons table. Construct terms only
// through its methods; never with a struct literal, or physical
// sharing is not guaranteed.
type Store struct {
	counter int64

	types   map[string]*Type
	symbols map[string]*Symbol
	vars    map[string]*Variable
	terms   map[string]*Term

	namedCounter int64

	stats Stats
}

// NewStore creates an empty hash-cons store. Most callers should use
// the process-wide Default store instead, unless they specifically
// need the "disjoint store" semantics that Import relies on.
func NewStore() *Store {
	return &Store{
		types:   make(map[string]*Type),
		symbols: make(map[string]*Symbol),
		vars:    make(map[string]*Variable),
		terms:   make(map[string]*Term),
	}
}

var defaultStore = NewStore()

// Default returns the process-wide hash-cons store.
func Default() *Store { return defaultStore }

func (s *Store) nextTag() Tag {
	s.counter++
	return Tag(s.counter)
}

// Stats returns a snapshot of the store's observability counters.
func (s *Store) Stats() Stats { return s.stats }

func (s *Store) bumpPeak() {
	total := s.stats.TypeCount + s.stats.SymbolCount + s.stats.VarCount + s.stats.TermCount
	if total > s.stats.Peak {
		s.stats.Peak = total
	}
}

// Term is a hash-consed lambda-tree node: either a variable leaf, an
// applied symbol over an ordered list of children, a let-binding, or a
// quantifier binder.
type Term struct {
	tag Tag
	typ *Type

	vr       *Variable
	sym      *Symbol
	children []*Term

	isLet   bool
	letName string

	isQuant     bool
	quantForall bool
	binderType  *Type
}

func (t *Term) Tag() Tag   { return t.tag }
func (t *Term) Type() *Type { return t.typ }

// IsNumeral reports whether t is an integer, real or bit-vector
// literal leaf.
func (t *Term) IsNumeral() bool {
	if t.vr != nil || t.isLet || t.isQuant {
		return false
	}
	switch t.sym.kind {
	case SymIntLit, SymRealLit, SymBVLit:
		return true
	default:
		return false
	}
}

// NodeArgsOf returns the ordered child terms of an applied-symbol
// node, or nil for a leaf, let or quantifier node.
func (t *Term) NodeArgsOf() []*Term {
	if t.sym == nil {
		return nil
	}
	return t.children
}

// Symbol returns the applied symbol, or nil if t is not an
// application node.
func (t *Term) Symbol() *Symbol { return t.sym }

// AsVar returns the leaf variable and true if t is a variable node.
func (t *Term) AsVar() (*Variable, bool) { return t.vr, t.vr != nil }

// Destruct flattens a run of same-kind top-level quantifier binders
// into one (binderTypes, body) pair; a non-quantifier term destructs
// to (nil, t).
func (t *Term) Destruct() (forall bool, binderTypes []*Type, body *Term) {
	cur := t
	for cur.isQuant {
		if len(binderTypes) > 0 && cur.quantForall != forall {
			break
		}
		forall = cur.quantForall
		binderTypes = append(binderTypes, cur.binderType)
		cur = cur.children[0]
	}
	return forall, binderTypes, cur
}

func (t *Term) key() string {
	switch {
	case t.vr != nil:
		return fmt.Sprintf("V|%d", t.vr.tag)
	case t.isLet:
		return fmt.Sprintf("L|%d|%d", t.children[0].tag, t.children[1].tag)
	case t.isQuant:
		return fmt.Sprintf("Q|%v|%d|%d", t.quantForall, t.binderType.tag, t.children[0].tag)
	default:
		var sb strings.Builder
		sb.WriteString("A|")
		fmt.Fprintf(&sb, "%d", t.sym.tag)
		for _, c := range t.children {
			fmt.Fprintf(&sb, "|%d", c.tag)
		}
		return sb.String()
	}
}

func (t *Term) String() string {
	switch {
	case t.vr != nil:
		return t.vr.String()
	case t.isLet:
		return fmt.Sprintf("(let (%s %s) %s)", t.letName, t.children[0], t.children[1])
	case t.isQuant:
		q := "exists"
		if t.quantForall {
			q = "forall"
		}
		return fmt.Sprintf("(%s (:%s) %s)", q, t.binderType, t.children[0])
	default:
		parts := make([]string, len(t.children))
		for i, c := range t.children {
			parts[i] = c.String()
		}
		if len(parts) == 0 {
			return t.sym.String()
		}
		return fmt.Sprintf("(%s %s)", t.sym.String(), strings.Join(parts, " "))
	}
}

func (s *Store) internTerm(t *Term) *Term {
	k := t.key()
	if existing, ok := s.terms[k]; ok {
		return existing
	}
	t.tag = s.nextTag()
	s.terms[k] = t
	s.stats.TermCount++
	s.bumpPeak()
	return t
}

func (v *Variable) valueType() *Type {
	if v.sv != nil {
		return v.sv.typ
	}
	return v.typ
}

// Var hash-cons a term leaf wrapping a variable occurrence.
func (s *Store) Var(v *Variable) *Term {
	return s.internTerm(&Term{vr: v, typ: v.valueType()})
}

func (s *Store) apply(sym *Symbol, typ *Type, children ...*Term) *Term {
	return s.internTerm(&Term{sym: sym, typ: typ, children: children})
}

// Let hash-cons a let-binding. Occurrences of a free variable named
// `name` inside body are resolved to value by EvalT's lazy
// let-unfolding; Map does not substitute them (it only shifts binder
// depth), matching "lazy let-unfolding" traversal semantics.
func (s *Store) Let(name string, value, body *Term) *Term {
	return s.internTerm(&Term{isLet: true, letName: name, children: []*Term{value, body}, typ: body.typ})
}

func (s *Store) quant(forall bool, binderType *Type, body *Term) *Term {
	return s.internTerm(&Term{isQuant: true, quantForall: forall, binderType: binderType, children: []*Term{body}, typ: s.Bool()})
}

// Forall / Exists hash-cons a quantifier over one bound variable of
// binderType; body must reference the bound variable via BoundVar(0, binderType).
func (s *Store) Forall(binderType *Type, body *Term) *Term { return s.quant(true, binderType, body) }
func (s *Store) Exists(binderType *Type, body *Term) *Term { return s.quant(false, binderType, body) }

func typeMismatch(op string, got ...*Type) error {
	names := make([]string, len(got))
	for i, t := range got {
		names[i] = t.String()
	}
	return corerr.TypeMismatch.New(fmt.Sprintf("%s(%s)", op, strings.Join(names, ", ")))
}

// IntTerm hash-cons the int-typed term for the integer literal v.
func (s *Store) IntTerm(v int64) *Term {
	return s.apply(s.IntLit(v), s.Int())
}

// RealTerm hash-cons the real-typed term for the exact decimal literal
// v, avoiding the float64 rounding a naive parse would introduce.
func (s *Store) RealTerm(v decimal.Decimal) *Term {
	return s.apply(s.RealLit(v), s.Real())
}

// True / False hash-cons the boolean literals.
func (s *Store) True() *Term  { return s.apply(s.symTrue(), s.Bool()) }
func (s *Store) False() *Term { return s.apply(s.symFalse(), s.Bool()) }

func (s *Store) requireBool(op string, ts ...*Term) error {
	for _, t := range ts {
		if t.typ.kind != TyBool {
			return typeMismatch(op, t.typ)
		}
	}
	return nil
}

// Not builds the logical negation of a, collapsing double negation.
func (s *Store) Not(a *Term) (*Term, error) {
	if err := s.requireBool("not", a); err != nil {
		return nil, err
	}
	return s.Negate(a), nil
}

// And / Or build n-ary boolean connectives.
func (s *Store) And(args ...*Term) (*Term, error) {
	if err := s.requireBool("and", args...); err != nil {
		return nil, err
	}
	return s.apply(s.symOp(SymAnd), s.Bool(), args...), nil
}
func (s *Store) Or(args ...*Term) (*Term, error) {
	if err := s.requireBool("or", args...); err != nil {
		return nil, err
	}
	return s.apply(s.symOp(SymOr), s.Bool(), args...), nil
}

// Implies builds a -> b (boolean implication, distinct from the
// temporal arrow operator which lives in package expr).
func (s *Store) Implies(a, b *Term) (*Term, error) {
	if err := s.requireBool("implies", a, b); err != nil {
		return nil, err
	}
	return s.apply(s.symOp(SymImplies), s.Bool(), a, b), nil
}

// Eq / Distinct build equality and n-ary distinctness over same-typed
// operands.
func (s *Store) Eq(a, b *Term) (*Term, error) {
	if a.typ.tag != b.typ.tag {
		return nil, typeMismatch("=", a.typ, b.typ)
	}
	return s.apply(s.symOp(SymEq), s.Bool(), a, b), nil
}
func (s *Store) Distinct(args ...*Term) (*Term, error) {
	if len(args) == 0 {
		return s.True(), nil
	}
	want := args[0].typ
	for _, a := range args[1:] {
		if a.typ.tag != want.tag {
			return nil, typeMismatch("distinct", a.typ, want)
		}
	}
	return s.apply(s.symOp(SymDistinct), s.Bool(), args...), nil
}

func (s *Store) isNumericType(t *Type) bool {
	switch t.kind {
	case TyInt, TyIntRange, TyReal:
		return true
	default:
		return false
	}
}

func (s *Store) cmp(op string, kind SymbolKind, a, b *Term) (*Term, error) {
	if !s.isNumericType(a.typ) || !s.isNumericType(b.typ) {
		return nil, typeMismatch(op, a.typ, b.typ)
	}
	return s.apply(s.symOp(kind), s.Bool(), a, b), nil
}

func (s *Store) Lt(a, b *Term) (*Term, error)  { return s.cmp("<", SymLt, a, b) }
func (s *Store) Leq(a, b *Term) (*Term, error) { return s.cmp("<=", SymLeq, a, b) }
func (s *Store) Gt(a, b *Term) (*Term, error)  { return s.cmp(">", SymGt, a, b) }
func (s *Store) Geq(a, b *Term) (*Term, error) { return s.cmp(">=", SymGeq, a, b) }

func (s *Store) arith(op string, kind SymbolKind, a, b *Term) (*Term, error) {
	if !s.isNumericType(a.typ) || !s.isNumericType(b.typ) {
		return nil, typeMismatch(op, a.typ, b.typ)
	}
	resultType := a.typ
	if a.typ.kind == TyIntRange {
		resultType = s.Int()
	}
	return s.apply(s.symOp(kind), resultType, a, b), nil
}

func (s *Store) Plus(a, b *Term) (*Term, error)   { return s.arith("+", SymPlus, a, b) }
func (s *Store) Minus(a, b *Term) (*Term, error)  { return s.arith("-", SymMinus, a, b) }
func (s *Store) Times(a, b *Term) (*Term, error)  { return s.arith("*", SymTimes, a, b) }
func (s *Store) Div(a, b *Term) (*Term, error)    { return s.arith("/", SymDiv, a, b) }
func (s *Store) IntDiv(a, b *Term) (*Term, error) { return s.arith("div", SymIntDiv, a, b) }
func (s *Store) Mod(a, b *Term) (*Term, error)    { return s.arith("mod", SymMod, a, b) }

// UMinus builds unary arithmetic negation.
func (s *Store) UMinus(a *Term) (*Term, error) {
	if !s.isNumericType(a.typ) {
		return nil, typeMismatch("-", a.typ)
	}
	return s.apply(s.symOp(SymUMinus), a.typ, a), nil
}

// ToInt / ToReal build numeric casts.
func (s *Store) ToInt(a *Term) (*Term, error) {
	if a.typ.kind != TyReal {
		return nil, typeMismatch("to_int", a.typ)
	}
	return s.apply(s.symOp(SymToInt), s.Int(), a), nil
}
func (s *Store) ToReal(a *Term) (*Term, error) {
	if !s.isNumericType(a.typ) {
		return nil, typeMismatch("to_real", a.typ)
	}
	return s.apply(s.symOp(SymToReal), s.Real(), a), nil
}

// Select builds the array read select(arr, idx).
func (s *Store) Select(arr, idx *Term) (*Term, error) {
	if arr.typ.kind != TyArray {
		return nil, typeMismatch("select", arr.typ)
	}
	// An int or int_range index is accepted for an int- or
	// int_range-indexed array; any other index must match exactly.
	intLike := func(t *Type) bool { return t.kind == TyInt || t.kind == TyIntRange }
	if arr.typ.index.tag != idx.typ.tag && !(intLike(arr.typ.index) && intLike(idx.typ)) {
		return nil, typeMismatch("select index", arr.typ.index, idx.typ)
	}
	return s.apply(s.symOp(SymSelect), arr.typ.elem, arr, idx), nil
}

// StoreArr builds the array write store(arr, idx, val). Named
// StoreArr rather than Store to avoid colliding with the *Store
// receiver type.
func (s *Store) StoreArr(arr, idx, val *Term) (*Term, error) {
	if arr.typ.kind != TyArray {
		return nil, typeMismatch("store", arr.typ)
	}
	if arr.typ.index.tag != idx.typ.tag {
		return nil, typeMismatch("store index", arr.typ.index, idx.typ)
	}
	if arr.typ.elem.tag != val.typ.tag {
		return nil, typeMismatch("store value", arr.typ.elem, val.typ)
	}
	return s.apply(s.symOp(SymStore), arr.typ, arr, idx, val), nil
}

// Ite builds the conditional term ite(c, a, b); branches must already
// share a type (package expr's mk_ite performs the array-coalescing
// rule before calling this).
func (s *Store) Ite(c, a, b *Term) (*Term, error) {
	if c.typ.kind != TyBool {
		return nil, typeMismatch("ite condition", c.typ)
	}
	if a.typ.tag != b.typ.tag {
		return nil, typeMismatch("ite branches", a.typ, b.typ)
	}
	return s.apply(s.symOp(SymIte), a.typ, c, a, b), nil
}

// UFApply builds an uninterpreted-function application.
func (s *Store) UFApply(name string, resultType *Type, args ...*Term) *Term {
	return s.apply(s.UF(name), resultType, args...)
}

func (s *Store) bvBinOp(op string, kind SymbolKind, a, b *Term, unsigned bool) (*Term, error) {
	want := TyBV
	if unsigned {
		want = TyUBV
	}
	if a.typ.kind != want || b.typ.kind != want || a.typ.width != b.typ.width {
		return nil, typeMismatch(op, a.typ, b.typ)
	}
	return s.apply(s.symOp(kind), a.typ, a, b), nil
}

func (s *Store) BVAnd(a, b *Term) (*Term, error)  { return s.bvBinOp("bvand", SymBVAnd, a, b, false) }
func (s *Store) BVOr(a, b *Term) (*Term, error)   { return s.bvBinOp("bvor", SymBVOr, a, b, false) }
func (s *Store) BVXor(a, b *Term) (*Term, error)  { return s.bvBinOp("bvxor", SymBVXor, a, b, false) }
func (s *Store) BVAdd(a, b *Term) (*Term, error)  { return s.bvBinOp("bvadd", SymBVAdd, a, b, false) }
func (s *Store) BVSub(a, b *Term) (*Term, error)  { return s.bvBinOp("bvsub", SymBVSub, a, b, false) }
func (s *Store) BVMul(a, b *Term) (*Term, error)  { return s.bvBinOp("bvmul", SymBVMul, a, b, false) }
func (s *Store) BVUDiv(a, b *Term) (*Term, error) { return s.bvBinOp("bvudiv", SymBVUDiv, a, b, true) }
func (s *Store) BVSDiv(a, b *Term) (*Term, error) { return s.bvBinOp("bvsdiv", SymBVSDiv, a, b, false) }
func (s *Store) BVShl(a, b *Term) (*Term, error)  { return s.bvBinOp("bvshl", SymBVShl, a, b, false) }
func (s *Store) BVLshr(a, b *Term) (*Term, error) { return s.bvBinOp("bvlshr", SymBVLshr, a, b, true) }
func (s *Store) BVAshr(a, b *Term) (*Term, error) { return s.bvBinOp("bvashr", SymBVAshr, a, b, false) }

// BVNot builds bit-vector one's-complement negation.
func (s *Store) BVNot(a *Term) (*Term, error) {
	if a.typ.kind != TyBV && a.typ.kind != TyUBV {
		return nil, typeMismatch("bvnot", a.typ)
	}
	return s.apply(s.symOp(SymBVNot), a.typ, a), nil
}

// BVExtract builds bit-vector extraction over inclusive bounds
// [lo, hi] of a.
func (s *Store) BVExtract(hi, lo int64, a *Term) (*Term, error) {
	if a.typ.kind != TyBV && a.typ.kind != TyUBV {
		return nil, typeMismatch("extract", a.typ)
	}
	if hi < lo || hi >= int64(a.typ.width) {
		return nil, typeMismatch("extract bounds", a.typ)
	}
	width := int(hi-lo) + 1
	resultType := s.BV(width)
	if a.typ.kind == TyUBV {
		resultType = s.UBV(width)
	}
	return s.apply(s.BVExtractSym(hi, lo), resultType, a), nil
}

// BVConcat builds bit-vector concatenation, a acting as the
// high-order bits.
func (s *Store) BVConcat(a, b *Term) (*Term, error) {
	if (a.typ.kind != TyBV && a.typ.kind != TyUBV) || a.typ.kind != b.typ.kind {
		return nil, typeMismatch("concat", a.typ, b.typ)
	}
	resultType := s.BV(a.typ.width + b.typ.width)
	if a.typ.kind == TyUBV {
		resultType = s.UBV(a.typ.width + b.typ.width)
	}
	return s.apply(s.symOp(SymBVConcat), resultType, a, b), nil
}

// BVSignExtend / BVZeroExtend widen a bit-vector by extra bits.
func (s *Store) BVSignExtend(extra int, a *Term) (*Term, error) {
	if a.typ.kind != TyBV {
		return nil, typeMismatch("sign_extend", a.typ)
	}
	return s.apply(s.BVSignExtendSym(extra), s.BV(a.typ.width+extra), a), nil
}
func (s *Store) BVZeroExtend(extra int, a *Term) (*Term, error) {
	if a.typ.kind != TyUBV {
		return nil, typeMismatch("zero_extend", a.typ)
	}
	return s.apply(s.BVZeroExtendSym(extra), s.UBV(a.typ.width+extra), a), nil
}

// Negate returns the negation of a boolean term, collapsing double
// negation: Negate(Negate(t)) == t whenever the inner term is itself a
// negation.
func (s *Store) Negate(a *Term) *Term {
	if a.sym != nil && a.sym.kind == SymNot {
		return a.children[0]
	}
	return s.apply(s.symOp(SymNot), s.Bool(), a)
}

// NegateSimplify negates a, additionally cancelling through arithmetic
// comparison flips and boolean constants: not(true) = false, not(a<b)
// = a>=b, and so on.
func (s *Store) NegateSimplify(a *Term) *Term {
	if a.sym == nil {
		return s.Negate(a)
	}
	switch a.sym.kind {
	case SymTrue:
		return s.False()
	case SymFalse:
		return s.True()
	case SymNot:
		return a.children[0]
	case SymLt:
		return s.apply(s.symOp(SymGeq), s.Bool(), a.children...)
	case SymLeq:
		return s.apply(s.symOp(SymGt), s.Bool(), a.children...)
	case SymGt:
		return s.apply(s.symOp(SymLeq), s.Bool(), a.children...)
	case SymGeq:
		return s.apply(s.symOp(SymLt), s.Bool(), a.children...)
	default:
		return s.Negate(a)
	}
}

// MkNamed tags t with a fresh integer in the reserved "t" namespace and
// returns both the integer and the wrapping term.
func (s *Store) MkNamed(t *Term) (int64, *Term) {
	k := s.namedCounter
	s.namedCounter++
	sym := s.namedSymbol(reservedNamedNamespace, k)
	return k, s.apply(sym, t.typ, t)
}

// MkNamedUnsafe tags t with an explicit (namespace, k) pair, rejecting
// the reserved "t" namespace that MkNamed uses internally.
func (s *Store) MkNamedUnsafe(namespace string, k int64, t *Term) (*Term, error) {
	if namespace == reservedNamedNamespace {
		return nil, corerr.InvariantViolation.New(fmt.Sprintf("namespace %q is reserved by MkNamed", reservedNamedNamespace))
	}
	return s.apply(s.namedSymbol(namespace, k), t.typ, t), nil
}

// EvalT performs a bottom-up, right-to-left fold over t, resolving
// let-bound free-variable occurrences lazily: f is never called on a
// let's value until a reference to it is actually reached while
// folding the body.
func (s *Store) EvalT(f func(t *Term, childResults []interface{}) interface{}, t *Term) interface{} {
	return s.evalT(f, t, nil)
}

func (s *Store) evalT(f func(*Term, []interface{}) interface{}, t *Term, env map[string]func() interface{}) interface{} {
	if t.vr != nil {
		if t.vr.kind == VarFree && env != nil {
			if v, ok := env[t.vr.name]; ok {
				return v()
			}
		}
		return f(t, nil)
	}
	if t.isLet {
		value, outer := t.children[0], env
		var val interface{}
		done := false
		next := make(map[string]func() interface{}, len(env)+1)
		for k, v := range env {
			next[k] = v
		}
		next[t.letName] = func() interface{} {
			if !done {
				val, done = s.evalT(f, value, outer), true
			}
			return val
		}
		return s.evalT(f, t.children[1], next)
	}
	results := make([]interface{}, len(t.children))
	for i := len(t.children) - 1; i >= 0; i-- {
		results[i] = s.evalT(f, t.children[i], env)
	}
	return f(t, results)
}

// Map rebuilds t by applying f to every subterm bottom-up; f receives
// the binder depth current at that subterm (incremented on entry to a
// quantifier body) so that it can shift de-Bruijn-indexed bound
// variables it introduces.
func (s *Store) Map(f func(depth int, t *Term) *Term, t *Term) *Term {
	return s.mapDepth(f, t, 0)
}

func (s *Store) mapDepth(f func(int, *Term) *Term, t *Term, depth int) *Term {
	switch {
	case t.vr != nil:
		return f(depth, t)
	case t.isLet:
		val := s.mapDepth(f, t.children[0], depth)
		body := s.mapDepth(f, t.children[1], depth)
		if val == t.children[0] && body == t.children[1] {
			return f(depth, t)
		}
		return f(depth, s.Let(t.letName, val, body))
	case t.isQuant:
		body := s.mapDepth(f, t.children[0], depth+1)
		if body == t.children[0] {
			return f(depth, t)
		}
		return f(depth, s.quant(t.quantForall, t.binderType, body))
	default:
		children := make([]*Term, len(t.children))
		changed := false
		for i, c := range t.children {
			nc := s.mapDepth(f, c, depth)
			children[i] = nc
			if nc != c {
				changed = true
			}
		}
		if !changed {
			return f(depth, t)
		}
		return f(depth, s.apply(t.sym, t.typ, children...))
	}
}

// Import copies t from a disjoint store into s, preserving structure,
// and returns the equivalent term hash-consed in s.
func (s *Store) Import(src *Store, t *Term) *Term {
	switch {
	case t.vr != nil:
		return s.Var(s.importVar(t.vr))
	case t.isLet:
		return s.Let(t.letName, s.Import(src, t.children[0]), s.Import(src, t.children[1]))
	case t.isQuant:
		return s.quant(t.quantForall, s.importType(t.binderType), s.Import(src, t.children[0]))
	default:
		children := make([]*Term, len(t.children))
		for i, c := range t.children {
			children[i] = s.Import(src, c)
		}
		return s.apply(s.importSymbol(t.sym), s.importType(t.typ), children...)
	}
}

func (s *Store) importType(t *Type) *Type {
	switch t.kind {
	case TyBool:
		return s.Bool()
	case TyInt:
		return s.Int()
	case TyReal:
		return s.Real()
	case TyIntRange:
		return s.IntRange(t.lo, t.hi)
	case TyBV:
		return s.BV(t.width)
	case TyUBV:
		return s.UBV(t.width)
	case TyArray:
		return s.Array(s.importType(t.index), s.importType(t.elem))
	case TyEnum:
		return s.Enum(t.name, t.ctors)
	case TyAbstract:
		return s.Abstract(t.name)
	default:
		return t
	}
}

func (s *Store) importSymbol(sym *Symbol) *Symbol {
	cp := *sym
	cp.tag = 0
	return s.internSymbol(&cp)
}

// importVar preserves a variable's StateVariable pointer across
// stores: state variables are not process-wide hash-consed, so
// importing one re-binds to the same underlying record rather than
// copying it.
func (s *Store) importVar(v *Variable) *Variable {
	switch v.kind {
	case VarFree:
		return s.FreeVar(v.name, s.importType(v.typ))
	case VarBound:
		return s.BoundVar(v.index, s.importType(v.typ))
	case VarStateInstance:
		return s.StateInstance(v.sv, v.offset)
	case VarConstState:
		return s.ConstState(v.sv)
	default:
		return v
	}
}
