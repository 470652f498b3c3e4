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

// Package depgraph builds a directed dependency graph over state
// variables from a set of compiled nodes, supporting cone-of-influence
// queries and DOT rendering for observability.
package depgraph

import (
	"github.com/sdflang/core/compile"
	"github.com/sdflang/core/expr"
	"github.com/sdflang/core/term"
)

// Graph is an adjacency-list directed graph keyed by state-variable
// identity. Self-edges are never recorded: a variable cannot depend on
// itself in a useful sense and the DOT renderer is required to omit
// them regardless.
type Graph struct {
	byID  map[int64]*term.StateVariable
	edges map[int64]map[int64]struct{}
}

func newGraph() *Graph {
	return &Graph{byID: make(map[int64]*term.StateVariable), edges: make(map[int64]map[int64]struct{})}
}

func (g *Graph) addVar(sv *term.StateVariable) {
	g.byID[sv.ID()] = sv
}

func (g *Graph) addEdge(from, to *term.StateVariable) {
	g.addVar(from)
	g.addVar(to)
	if from.ID() == to.ID() {
		return
	}
	m, ok := g.edges[from.ID()]
	if !ok {
		m = make(map[int64]struct{})
		g.edges[from.ID()] = m
	}
	m[to.ID()] = struct{}{}
}

func (g *Graph) addClique(vars []*term.StateVariable) {
	for _, a := range vars {
		for _, b := range vars {
			g.addEdge(a, b)
		}
	}
}

// Successors returns the state variables sv directly depends on.
func (g *Graph) Successors(sv *term.StateVariable) []*term.StateVariable {
	out := make([]*term.StateVariable, 0, len(g.edges[sv.ID()]))
	for id := range g.edges[sv.ID()] {
		out = append(out, g.byID[id])
	}
	return out
}

// collectVars walks a term and returns every distinct state variable
// it references, via the store's bottom-up fold.
func collectVars(store *term.Store, t *term.Term) []*term.StateVariable {
	seen := make(map[int64]*term.StateVariable)
	store.EvalT(func(node *term.Term, _ []interface{}) interface{} {
		if v, ok := node.AsVar(); ok {
			if v.Kind() == term.VarStateInstance || v.Kind() == term.VarConstState {
				sv := v.StateVar()
				seen[sv.ID()] = sv
			}
		}
		return nil
	}, t)
	out := make([]*term.StateVariable, 0, len(seen))
	for _, sv := range seen {
		out = append(out, sv)
	}
	return out
}

func exprVars(store *term.Store, e expr.Expr) []*term.StateVariable {
	seen := make(map[int64]*term.StateVariable)
	for _, sv := range collectVars(store, e.Init) {
		seen[sv.ID()] = sv
	}
	for _, sv := range collectVars(store, e.Step) {
		seen[sv.ID()] = sv
	}
	out := make([]*term.StateVariable, 0, len(seen))
	for _, sv := range seen {
		out = append(out, sv)
	}
	return out
}

// Build constructs the dependency graph for a compiled program: one
// directed edge lhs -> rhs-variable per equation, a clique over the
// variables of every non-definitional term (asserts, properties,
// contract items, call conditions), and bidirectional edges between
// every call's parent/child state-variable mapping. Equations whose
// left-hand side is transitively reachable from a guarantee's atoms in
// a preliminary pass are excluded from the definitional treatment,
// per the pruning rule: those variables are properties of the
// contract, not bindings a downstream consumer should treat as free
// definitions.
func Build(store *term.Store, nodes map[string]*compile.NodeRecord) *Graph {
	prelim := newGraph()
	for _, n := range nodes {
		addDefinitionalEdges(store, prelim, n)
		addNonDefinitionalCliques(store, prelim, n)
		addCallMappings(store, prelim, n, nodes)
	}

	pruned := guaranteeReachableDefinitions(store, prelim, nodes)

	g := newGraph()
	for _, n := range nodes {
		for _, eq := range n.Equations {
			if pruned[eq.SVar.ID()] {
				g.addClique(append([]*term.StateVariable{eq.SVar}, exprVars(store, eq.Expr)...))
				continue
			}
			for _, rv := range exprVars(store, eq.Expr) {
				g.addEdge(eq.SVar, rv)
			}
		}
		addNonDefinitionalCliques(store, g, n)
		addCallMappings(store, g, n, nodes)
	}
	return g
}

func addDefinitionalEdges(store *term.Store, g *Graph, n *compile.NodeRecord) {
	for _, eq := range n.Equations {
		for _, rv := range exprVars(store, eq.Expr) {
			g.addEdge(eq.SVar, rv)
		}
	}
}

func addNonDefinitionalCliques(store *term.Store, g *Graph, n *compile.NodeRecord) {
	for _, a := range n.Asserts {
		g.addClique(exprVars(store, a))
	}
	for _, p := range n.Properties {
		g.addClique(exprVars(store, p.Expr))
	}
	if n.Contract != nil {
		for _, a := range n.Contract.Assumes {
			g.addClique(exprVars(store, a))
		}
		for _, gu := range n.Contract.Guarantees {
			g.addClique(exprVars(store, gu))
		}
		for _, m := range n.Contract.Modes {
			for _, r := range m.Requires {
				g.addClique(exprVars(store, r))
			}
			for _, e := range m.Ensures {
				g.addClique(exprVars(store, e))
			}
		}
	}
	for _, c := range n.Calls {
		if c.Activation.Typ != nil {
			g.addClique(exprVars(store, c.Activation))
		}
		if c.Restart.Typ != nil {
			g.addClique(exprVars(store, c.Restart))
		}
	}
}

func addCallMappings(store *term.Store, g *Graph, n *compile.NodeRecord, nodes map[string]*compile.NodeRecord) {
	for _, c := range n.Calls {
		callee, ok := nodes[c.Callee]
		if !ok {
			continue
		}
		for i, arg := range c.Args {
			if i >= len(callee.Inputs) {
				break
			}
			for _, parentVar := range exprVars(store, arg) {
				g.addEdge(parentVar, callee.Inputs[i])
				g.addEdge(callee.Inputs[i], parentVar)
			}
		}
		for i, out := range c.Outputs {
			if i >= len(callee.Outputs) {
				break
			}
			g.addEdge(out, callee.Outputs[i])
			g.addEdge(callee.Outputs[i], out)
		}
	}
}

// guaranteeReachableDefinitions computes, via the preliminary graph,
// every state variable forward-reachable from a guarantee atom across
// every node; these are the definitions the pruning rule removes from
// the definitional set.
func guaranteeReachableDefinitions(store *term.Store, prelim *Graph, nodes map[string]*compile.NodeRecord) map[int64]bool {
	var seeds []*term.StateVariable
	for _, n := range nodes {
		if n.Contract == nil {
			continue
		}
		for _, gu := range n.Contract.Guarantees {
			seeds = append(seeds, exprVars(store, gu)...)
		}
	}
	reached := make(map[int64]bool)
	memo := make(map[int64]map[int64]bool)
	for _, sv := range seeds {
		for id := range forwardReachable(prelim, sv, memo) {
			reached[id] = true
		}
	}
	return reached
}

// forwardReachable computes the forward-reachable set from sv in g,
// memoizing per state-variable id so repeated cone-of-influence
// queries over overlapping property sets share work.
func forwardReachable(g *Graph, sv *term.StateVariable, memo map[int64]map[int64]bool) map[int64]bool {
	if cached, ok := memo[sv.ID()]; ok {
		return cached
	}
	visited := map[int64]bool{sv.ID(): true}
	stack := []int64{sv.ID()}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range g.edges[cur] {
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	memo[sv.ID()] = visited
	return visited
}

// ConeOfInfluence returns the union of the forward-reachable sets of
// every property's referenced state variables, memoized across the
// call.
func ConeOfInfluence(g *Graph, properties []*term.StateVariable) map[int64]*term.StateVariable {
	memo := make(map[int64]map[int64]bool)
	out := make(map[int64]*term.StateVariable)
	for _, p := range properties {
		for id := range forwardReachable(g, p, memo) {
			out[id] = g.byID[id]
		}
	}
	return out
}
