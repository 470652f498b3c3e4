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

import "fmt"

// VarKind tags the four shapes a Variable can take.
type VarKind uint8

const (
	VarFree VarKind = iota
	VarBound
	VarStateInstance
	VarConstState
)

// Variable is a hash-consed reference: a free variable (name + type),
// a de-Bruijn-indexed bound variable, a state-variable instance at a
// given offset, or a constant state variable.
type Variable struct {
	tag  Tag
	kind VarKind

	name   string // VarFree
	typ    *Type  // VarFree, VarBound
	index  int    // VarBound: de Bruijn index
	sv     *StateVariable
	offset int // VarStateInstance: 0 = current instant, -1 = previous, ...
}

func (v *Variable) Tag() Tag             { return v.tag }
func (v *Variable) Kind() VarKind        { return v.kind }
func (v *Variable) Name() string         { return v.name }
func (v *Variable) Type() *Type          { return v.typ }
func (v *Variable) DeBruijnIndex() int   { return v.index }
func (v *Variable) StateVar() *StateVariable { return v.sv }
func (v *Variable) Offset() int          { return v.offset }

func (v *Variable) key() string {
	switch v.kind {
	case VarFree:
		return fmt.Sprintf("F|%s|%d", v.name, v.typ.tag)
	case VarBound:
		return fmt.Sprintf("B|%d|%d", v.index, v.typ.tag)
	case VarStateInstance:
		return fmt.Sprintf("S|%d|%d", v.sv.id, v.offset)
	case VarConstState:
		return fmt.Sprintf("C|%d", v.sv.id)
	default:
		return "?"
	}
}

func (v *Variable) String() string {
	switch v.kind {
	case VarFree:
		return v.name
	case VarBound:
		return fmt.Sprintf("#%d", v.index)
	case VarStateInstance:
		if v.offset == 0 {
			return v.sv.FullName()
		}
		return fmt.Sprintf("%s@%d", v.sv.FullName(), v.offset)
	case VarConstState:
		return v.sv.FullName()
	default:
		return "?var"
	}
}

func (s *Store) internVar(v *Variable) *Variable {
	k := v.key()
	if existing, ok := s.vars[k]; ok {
		return existing
	}
	v.tag = s.nextTag()
	s.vars[k] = v
	s.stats.VarCount++
	return v
}

// FreeVar hash-cons a free variable occurrence.
func (s *Store) FreeVar(name string, typ *Type) *Variable {
	return s.internVar(&Variable{kind: VarFree, name: name, typ: typ})
}

// BoundVar hash-cons a de-Bruijn-indexed bound variable occurrence.
func (s *Store) BoundVar(index int, typ *Type) *Variable {
	return s.internVar(&Variable{kind: VarBound, index: index, typ: typ})
}

// StateInstance hash-cons a reference to sv at the given instant
// offset (0 = current instant, negative = past).
func (s *Store) StateInstance(sv *StateVariable, offset int) *Variable {
	return s.internVar(&Variable{kind: VarStateInstance, sv: sv, offset: offset})
}

// ConstState hash-cons a reference to a constant (time-invariant)
// state variable.
func (s *Store) ConstState(sv *StateVariable) *Variable {
	return s.internVar(&Variable{kind: VarConstState, sv: sv})
}
