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

package term

import "strings"

// Scope is the ordered list of naming segments that disambiguates the
// state variables produced by flattening a structured identifier, e.g.
// field "a" of a record-typed local "r" in node "n" flattens to a state
// variable named "a" with scope []string{"n", "r"}.
type Scope []string

func (sc Scope) String() string { return strings.Join(sc, ".") }

func (sc Scope) key() string { return strings.Join(sc, "\x1f") }

// StateVariableSource classifies how a state variable was introduced,
// used to populate a node's source map.
type StateVariableSource uint8

const (
	SourceInput StateVariableSource = iota
	SourceOutput
	SourceLocal
	SourceOracle
	SourceCall
	SourceGenerated
	SourceGhost
)

// StateVariable is a named, typed entity identified by (name, scope).
// Unlike Symbol/Type/Variable, a StateVariable is not globally
// hash-consed across the process: its identity is scoped to one
// compilation, so it is created through a StateVarStore owned by that
// compilation's CompilerState rather than through the process-wide
// term Store.
type StateVariable struct {
	id       int64
	name     string
	scope    Scope
	typ      *Type
	isInput  bool
	isConst  bool
	forInvGen bool
	source   StateVariableSource
}

// ID is unique among the state variables of the StateVarStore that
// created it (each store counts from 0), usable as a map key or for
// stable ordering within one compilation; it is not an SMT-visible
// name.
func (sv *StateVariable) ID() int64                 { return sv.id }
func (sv *StateVariable) Name() string               { return sv.name }
func (sv *StateVariable) Scope() Scope                { return sv.scope }
func (sv *StateVariable) Type() *Type                 { return sv.typ }
func (sv *StateVariable) IsInput() bool               { return sv.isInput }
func (sv *StateVariable) IsConst() bool               { return sv.isConst }
func (sv *StateVariable) ForInvGen() bool             { return sv.forInvGen }
func (sv *StateVariable) Source() StateVariableSource { return sv.source }

// FullName renders "scope.segments.name", the flattened identifier
// used for pretty-printing and DOT rendering.
func (sv *StateVariable) FullName() string {
	if len(sv.scope) == 0 {
		return sv.name
	}
	return sv.scope.String() + "." + sv.name
}

func (sv *StateVariable) String() string { return sv.FullName() }

// StateVariableFlags bundles the three independent boolean flags a
// state variable carries.
type StateVariableFlags struct {
	IsInput   bool
	IsConst   bool
	ForInvGen bool
}

// StateVarStore is the per-compilation registry enforcing that the set
// (name, scope) maps injectively to a StateVariable identity: a
// request for an identity already seen returns the existing record
// instead of allocating a new one.
type StateVarStore struct {
	byIdentity map[string]*StateVariable
	all        []*StateVariable
	nextID     int64
}

// NewStateVarStore creates an empty registry for one compilation.
func NewStateVarStore() *StateVarStore {
	return &StateVarStore{byIdentity: make(map[string]*StateVariable)}
}

// Get creates the state variable (name, scope) on first request and
// returns the same record on every subsequent request with an
// identical identity.
func (s *StateVarStore) Get(name string, scope Scope, typ *Type, flags StateVariableFlags, src StateVariableSource) *StateVariable {
	key := scope.key() + "\x1e" + name
	if existing, ok := s.byIdentity[key]; ok {
		return existing
	}
	sv := &StateVariable{
		id:        s.nextID,
		name:      name,
		scope:     append(Scope(nil), scope...),
		typ:       typ,
		isInput:   flags.IsInput,
		isConst:   flags.IsConst,
		forInvGen: flags.ForInvGen,
		source:    src,
	}
	s.nextID++
	s.byIdentity[key] = sv
	s.all = append(s.all, sv)
	return sv
}

// Lookup returns the state variable for (name, scope) if it has
// already been created, and false otherwise.
func (s *StateVarStore) Lookup(name string, scope Scope) (*StateVariable, bool) {
	sv, ok := s.byIdentity[scope.key()+"\x1e"+name]
	return sv, ok
}

// All returns every state variable created so far, in creation order.
func (s *StateVarStore) All() []*StateVariable {
	return append([]*StateVariable(nil), s.all...)
}

// Len reports the number of distinct state variables created.
func (s *StateVarStore) Len() int { return len(s.all) }
