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

// Package typing declares the interface the surface type checker
// supplies to the compiler core. The core never implements this
// interface itself; the checker is always an external collaborator.
package typing

import "github.com/sdflang/core/term"

// NodeSignature is the input/output type list of a declared node.
type NodeSignature struct {
	Inputs  []*term.Type
	Outputs []*term.Type
}

// Context is consulted by the AST normalizer and the node generator to
// resolve facts the surface checker already established: node
// signatures, contract-node polymorphic parameters, subrange/
// refinement-type recognition, and the concrete type arguments a
// specific call site instantiates a polymorphic node with.
type Context interface {
	// NodeSignature returns the input/output types of a declared node
	// or function, not including any type parameters.
	NodeSignature(name string) (NodeSignature, bool)

	// ContractTypeParams returns the ordered list of polymorphic type
	// parameter names a contract node declares.
	ContractTypeParams(contractName string) ([]string, bool)

	// IsSubrange reports whether t is an integer subrange type and, if
	// so, its inclusive bounds.
	IsSubrange(t *term.Type) (lo, hi int64, ok bool)

	// RefinementPredicate returns the refinement predicate attached to
	// a `type T = { x: base | pred(x) }`-shaped type alias, expressed
	// as a callback the generator can instantiate against a candidate
	// term; ok is false when t carries no refinement.
	RefinementPredicate(t *term.Type) (name string, ok bool)

	// NodeTypeArgs returns the concrete type arguments a specific
	// instantiation of a polymorphic node or contract was checked
	// against, keyed by the call-site position string the checker
	// attached during type checking.
	NodeTypeArgs(calleeName, callSiteKey string) ([]*term.Type, bool)
}
