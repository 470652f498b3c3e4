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

// Package compile implements the node generator: it turns one
// normalized node body into a flat transition-system fragment of
// scalar state-variable equations, call instantiations and contract
// obligations, all expressed over hash-consed terms.
package compile

import (
	"github.com/sdflang/core/ast"
	"github.com/sdflang/core/expr"
	"github.com/sdflang/core/term"
)

// CallRecord is one node instantiation lifted out of expression
// position by the normalizer and lowered to concrete state variables
// here.
type CallRecord struct {
	CallID   int64
	Position ast.Position
	Callee   string
	Outputs  []*term.StateVariable
	Args     []expr.Expr
	// Oracles holds the callee's own propagated oracle locals: one
	// fresh caller-scoped state variable per unconstrained oracle the
	// callee introduced, so the caller's transition system still
	// carries a free input for it instead of silently inlining it.
	Oracles       []*term.StateVariable
	Defaults      []expr.Expr
	Activation    expr.Expr // zero value (nil Typ) when the call is unconditional
	Restart       expr.Expr
	// Inlined is true when the callee is declared as a function (a
	// stateless, memory-less call kind): its call_id still identifies
	// the instantiation, but the callee contributes no state variables
	// of its own beyond the ones listed here.
	Inlined       bool
	InstanceScope term.Scope
}

// Mode is one compiled contract mode.
type Mode struct {
	Name     string
	Requires []expr.Expr
	Ensures  []expr.Expr
}

// Contract is the compiled assume/guarantee/mode structure attached to
// a node.
type Contract struct {
	Assumes    []expr.Expr
	Guarantees []expr.Expr
	Modes      []Mode

	// Sofar is the synthesized "conjunction so far" accumulator state
	// variable: sofar = true -> (pre(sofar) and every guarantee this
	// instant). It is nil when the contract has no guarantees.
	Sofar         *term.StateVariable
	SofarEquation expr.Expr
}

// Equation binds one scalar state variable to its defining expression.
type Equation struct {
	SVar *term.StateVariable
	Expr expr.Expr
}

// NodeRecord is the fully compiled form of one node: every structured
// input/output/local has been flattened to scalar state variables,
// every equation lowered to a term-level expr.Expr, every call and
// contract obligation resolved.
type NodeRecord struct {
	Name       string
	IsFunction bool
	Inputs     []*term.StateVariable
	Outputs    []*term.StateVariable
	Locals     []*term.StateVariable

	Equations []Equation
	Asserts   []expr.Expr
	Properties []PropertyRecord

	Calls []CallRecord

	Contract *Contract

	// HistoryVars groups every state variable the source sampled
	// through pre at least once, by its scalar type, mirroring the
	// normalizer's per-node HistoryVars list once resolved to compiled
	// state variables.
	HistoryVars map[*term.Type][]*term.StateVariable
}

// PropertyRecord pairs a compiled proof obligation with its source
// name and kind (plain, contract guarantee, nonvacuity check, or
// candidate invariant derived from a subrange/refinement constraint)
// for reporting.
type PropertyRecord struct {
	Name string
	Expr expr.Expr
	Kind ast.PropertyKind
}
