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

// Package expr implements the typed expression layer: a view over
// hash-consed terms carrying the source language's time model. Every
// expression pairs an "init" term, evaluated at the initial instant,
// with a "step" term, evaluated at every instant thereafter.
package expr

import (
	"fmt"

	"github.com/sdflang/core/corerr"
	"github.com/sdflang/core/term"
)

// Expr is a (init, step) term pair sharing a cached type. Constructors
// in this package preserve the invariant that both components have
// the declared type and that hash-consing is never bypassed: every
// term inside an Expr came from a term.Store constructor.
type Expr struct {
	Init *term.Term
	Step *term.Term
	Typ  *term.Type
}

// Close lifts a single time-invariant term into an expression whose
// init and step components coincide.
func Close(t *term.Term) Expr {
	return Expr{Init: t, Step: t, Typ: t.Type()}
}

func mismatch(op string, e Expr) error {
	return corerr.TypeMismatch.New(fmt.Sprintf("%s: init/step type disagreement (%s vs %s)", op, e.Init.Type(), e.Step.Type()))
}

func checkShape(op string, e Expr) error {
	if e.Init.Type().Tag() != e.Step.Type().Tag() {
		return mismatch(op, e)
	}
	return nil
}

// MkPre freezes the step component at the previous instant: the
// resulting expression's init and step are both e's step shifted back
// one instant. Guarding the result against evaluation at the initial
// instant is the normalizer's job (package normalize), not this
// layer's; MkPre is a pure term-building operation.
func MkPre(s *term.Store, e Expr) (Expr, error) {
	if err := checkShape("pre", e); err != nil {
		return Expr{}, err
	}
	prev, err := mkPreTerm(s, e.Step)
	if err != nil {
		return Expr{}, err
	}
	return Expr{Init: prev, Step: prev, Typ: e.Typ}, nil
}

// mkPreTerm builds the one-step-delay of t. t must be a state-variable
// instance term (the normalizer guarantees this for every surviving
// Pre argument); the delayed term references the same state variable
// at one less an offset.
func mkPreTerm(s *term.Store, t *term.Term) (*term.Term, error) {
	v, ok := t.AsVar()
	if !ok || v.Kind() != term.VarStateInstance {
		return nil, corerr.InvariantViolation.New(fmt.Sprintf("pre applied to non-state-variable term %s", t))
	}
	return s.Var(s.StateInstance(v.StateVar(), v.Offset()-1)), nil
}

// MkArrow builds e1 -> e2: e1's init component at the initial instant,
// e2's step component thereafter. Array operands of differing
// dimensionality are coalesced first by inserting select on the
// deeper side until shapes match.
func MkArrow(s *term.Store, e1, e2 Expr) (Expr, error) {
	e1c, e2c, typ, err := coalesceArrays(s, e1, e2)
	if err != nil {
		return Expr{}, err
	}
	return Expr{Init: e1c.Init, Step: e2c.Step, Typ: typ}, nil
}

// MkIte builds ite(c, a, b), first array-coalescing a and b.
func MkIte(s *term.Store, c, a, b Expr) (Expr, error) {
	ac, bc, typ, err := coalesceArrays(s, a, b)
	if err != nil {
		return Expr{}, err
	}
	init, err := s.Ite(c.Init, ac.Init, bc.Init)
	if err != nil {
		return Expr{}, err
	}
	step, err := s.Ite(c.Step, ac.Step, bc.Step)
	if err != nil {
		return Expr{}, err
	}
	return Expr{Init: init, Step: step, Typ: typ}, nil
}

// arrayDepth reports how many Array layers wrap a type.
func arrayDepth(t *term.Type) int {
	depth := 0
	for t.Kind() == term.TyArray {
		depth++
		t = t.Elem()
	}
	return depth
}

// coalesceArrays implements the array-coalescing rule shared by
// MkArrow and MkIte: when one side is an array of strictly greater
// depth than the other, select zero is pushed onto the deeper side,
// repeatedly, until the depths agree; types that still disagree after
// coalescing are a genuine type error.
func coalesceArrays(s *term.Store, a, b Expr) (Expr, Expr, *term.Type, error) {
	da, db := arrayDepth(a.Typ), arrayDepth(b.Typ)
	for da > db {
		var err error
		a, err = selectZero(s, a)
		if err != nil {
			return Expr{}, Expr{}, nil, err
		}
		da--
	}
	for db > da {
		var err error
		b, err = selectZero(s, b)
		if err != nil {
			return Expr{}, Expr{}, nil, err
		}
		db--
	}
	if a.Typ.Tag() != b.Typ.Tag() {
		return Expr{}, Expr{}, nil, corerr.TypeMismatch.New(fmt.Sprintf("array coalescing: %s vs %s", a.Typ, b.Typ))
	}
	return a, b, a.Typ, nil
}

func selectZero(s *term.Store, e Expr) (Expr, error) {
	zero := s.IntTerm(0)
	init, err := s.Select(e.Init, zero)
	if err != nil {
		return Expr{}, err
	}
	step, err := s.Select(e.Step, zero)
	if err != nil {
		return Expr{}, err
	}
	return Expr{Init: init, Step: step, Typ: e.Typ.Elem()}, nil
}

// MkSelectAndPush builds select(e, i). Init and Step are handled
// separately, so an expression built by MkArrow gets the select on each
// of its two components. Within a component, an ite term has the select
// distributed into both branches (recursively), so that downstream
// encoding sees the select pushed past the branch points; a store term,
// like any other term, is wrapped in a plain select.
func MkSelectAndPush(s *term.Store, e Expr, i Expr) (Expr, error) {
	init, err := selectAndPushTerm(s, e.Init, i.Init)
	if err != nil {
		return Expr{}, err
	}
	step, err := selectAndPushTerm(s, e.Step, i.Step)
	if err != nil {
		return Expr{}, err
	}
	return Expr{Init: init, Step: step, Typ: e.Typ.Elem()}, nil
}

func selectAndPushTerm(s *term.Store, arr, idx *term.Term) (*term.Term, error) {
	sym := arr.Symbol()
	if sym == nil {
		return s.Select(arr, idx)
	}
	args := arr.NodeArgsOf()
	switch sym.Kind() {
	case term.SymIte:
		a, err := selectAndPushTerm(s, args[1], idx)
		if err != nil {
			return nil, err
		}
		b, err := selectAndPushTerm(s, args[2], idx)
		if err != nil {
			return nil, err
		}
		return s.Ite(args[0], a, b)
	case term.SymStore:
		// select(store(a, j, v), i) distributes only when i and j are
		// not provably equal; conservatively fall back to a plain
		// select, which is always sound.
		return s.Select(arr, idx)
	default:
		return s.Select(arr, idx)
	}
}
