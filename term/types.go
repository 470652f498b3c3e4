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

import (
	"fmt"
	"strings"
)

// TypeKind tags the variant carried by a Type.
type TypeKind uint8

const (
	TyBool TypeKind = iota
	TyInt
	TyIntRange
	TyReal
	TyBV
	TyUBV
	TyArray
	TyEnum
	TyAbstract
)

// Type is a hash-consed type term. Two structurally equal types are
// always the same *Type: construct types only through the package
// constructors below, never with a struct literal.
type Type struct {
	tag  Tag
	kind TypeKind

	// int_range(lo?, hi?); nil means unbounded on that side.
	lo, hi *int64

	// bv(width) / ubv(width)
	width int

	// array(index, elem)
	index, elem *Type

	// enum(name, ctors) / abstract(name)
	name  string
	ctors []string
}

// Tag returns the hash-cons tag, stable for the lifetime of the
// process.
func (t *Type) Tag() Tag { return t.tag }

// Kind returns the type's variant tag.
func (t *Type) Kind() TypeKind { return t.kind }

// Width returns the bit-vector width of a bv/ubv type, or 0 otherwise.
func (t *Type) Width() int { return t.width }

// Bounds returns the int_range bounds; either may be nil.
func (t *Type) Bounds() (lo, hi *int64) { return t.lo, t.hi }

// Elem returns the array element type, or nil if t is not an array.
func (t *Type) Elem() *Type { return t.elem }

// Index returns the array index type, or nil if t is not an array.
func (t *Type) Index() *Type { return t.index }

// Name returns the enum or abstract type name, or "" otherwise.
func (t *Type) Name() string { return t.name }

// Ctors returns the enum constructor names, or nil otherwise.
func (t *Type) Ctors() []string { return t.ctors }

func (t *Type) String() string {
	switch t.kind {
	case TyBool:
		return "bool"
	case TyInt:
		return "int"
	case TyIntRange:
		lo, hi := "_", "_"
		if t.lo != nil {
			lo = fmt.Sprintf("%d", *t.lo)
		}
		if t.hi != nil {
			hi = fmt.Sprintf("%d", *t.hi)
		}
		return fmt.Sprintf("int_range(%s,%s)", lo, hi)
	case TyReal:
		return "real"
	case TyBV:
		return fmt.Sprintf("bv(%d)", t.width)
	case TyUBV:
		return fmt.Sprintf("ubv(%d)", t.width)
	case TyArray:
		return fmt.Sprintf("array(%s,%s)", t.index, t.elem)
	case TyEnum:
		return fmt.Sprintf("enum(%s,{%s})", t.name, strings.Join(t.ctors, ","))
	case TyAbstract:
		return fmt.Sprintf("abstract(%s)", t.name)
	default:
		return "<?type>"
	}
}

func (t *Type) key() string {
	switch t.kind {
	case TyBool, TyInt, TyReal:
		return fmt.Sprintf("%d", t.kind)
	case TyIntRange:
		lo, hi := "_", "_"
		if t.lo != nil {
			lo = fmt.Sprintf("%d", *t.lo)
		}
		if t.hi != nil {
			hi = fmt.Sprintf("%d", *t.hi)
		}
		return fmt.Sprintf("%d|%s|%s", t.kind, lo, hi)
	case TyBV, TyUBV:
		return fmt.Sprintf("%d|%d", t.kind, t.width)
	case TyArray:
		return fmt.Sprintf("%d|%d|%d", t.kind, t.index.tag, t.elem.tag)
	case TyEnum:
		return fmt.Sprintf("%d|%s|%s", t.kind, t.name, strings.Join(t.ctors, ","))
	case TyAbstract:
		return fmt.Sprintf("%d|%s", t.kind, t.name)
	default:
		return fmt.Sprintf("%d", t.kind)
	}
}

// Bool, Int and Real are the canonical hash-consed scalar types.
func (s *Store) Bool() *Type { return s.internType(&Type{kind: TyBool}) }
func (s *Store) Int() *Type  { return s.internType(&Type{kind: TyInt}) }
func (s *Store) Real() *Type { return s.internType(&Type{kind: TyReal}) }

// IntRange hash-cons an int_range(lo?, hi?) type. Either bound may be
// nil for an unbounded side.
func (s *Store) IntRange(lo, hi *int64) *Type {
	return s.internType(&Type{kind: TyIntRange, lo: lo, hi: hi})
}

// BV hash-cons a signed bit-vector type of the given width.
func (s *Store) BV(width int) *Type {
	return s.internType(&Type{kind: TyBV, width: width})
}

// UBV hash-cons an unsigned bit-vector type of the given width.
func (s *Store) UBV(width int) *Type {
	return s.internType(&Type{kind: TyUBV, width: width})
}

// Array hash-cons an array(index, elem) type. The index type is used
// exactly as given: Array performs no clamping of its own, so the size
// of the array is whatever range the caller built the index type with.
func (s *Store) Array(index, elem *Type) *Type {
	return s.internType(&Type{kind: TyArray, index: index, elem: elem})
}

// Enum hash-cons an enum(name, ctors) type.
func (s *Store) Enum(name string, ctors []string) *Type {
	cp := append([]string(nil), ctors...)
	return s.internType(&Type{kind: TyEnum, name: name, ctors: cp})
}

// Abstract hash-cons an abstract(name) type, used to bind polymorphic
// node type parameters to a concrete-looking placeholder for the
// duration of one instantiation.
func (s *Store) Abstract(name string) *Type {
	return s.internType(&Type{kind: TyAbstract, name: name})
}

func (s *Store) internType(t *Type) *Type {
	// The store is process-wide but single-threaded cooperative: no
	// locking is performed here, matching every other intern path.
	k := t.key()
	if existing, ok := s.types[k]; ok {
		return existing
	}
	t.tag = s.nextTag()
	s.types[k] = t
	s.stats.TypeCount++
	return t
}
