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

	"github.com/shopspring/decimal"
)

// SymbolKind tags the operator or literal carried by a Symbol.
type SymbolKind uint8

const (
	SymTrue SymbolKind = iota
	SymFalse
	SymNot
	SymAnd
	SymOr
	SymImplies
	SymEq
	SymDistinct
	SymLt
	SymLeq
	SymGt
	SymGeq
	SymPlus
	SymMinus
	SymTimes
	SymDiv
	SymIntDiv
	SymMod
	SymUMinus
	SymToInt
	SymToReal
	SymIntLit
	SymRealLit
	SymBVLit
	SymBVAnd
	SymBVOr
	SymBVXor
	SymBVNot
	SymBVAdd
	SymBVSub
	SymBVMul
	SymBVUDiv
	SymBVSDiv
	SymBVShl
	SymBVLshr
	SymBVAshr
	SymBVExtract
	SymBVConcat
	SymBVSignExtend
	SymBVZeroExtend
	SymSelect
	SymStore
	SymIte
	SymUF
	SymNamed
	SymInterpGroup
	SymForall
	SymExists
)

// reservedNamedNamespace is the "t" namespace MkNamed reserves for its
// own fresh integers; MkNamedUnsafe refuses to allocate within it.
const reservedNamedNamespace = "t"

// Symbol is a hash-consed tagged operator or literal. Applied symbols
// (everything but the nullary ones) are combined with child Terms by
// the Store's term constructors; the Symbol itself never carries
// children, only the fixed parameters of its kind (literal value,
// bit-vector width, extract bounds, or a name).
type Symbol struct {
	tag  Tag
	kind SymbolKind

	i     int64           // IntLit / BVLit magnitude, extract hi, named tag
	lo    int64           // extract low bound
	r     decimal.Decimal // RealLit
	width int             // BV width for BVLit / extract / sign-extend / zero-extend
	name  string          // UF name, interpolation-group tag, named namespace
}

func (s *Symbol) Tag() Tag        { return s.tag }
func (s *Symbol) Kind() SymbolKind { return s.kind }
func (s *Symbol) Int() int64       { return s.i }
func (s *Symbol) Real() decimal.Decimal { return s.r }
func (s *Symbol) Width() int       { return s.width }
func (s *Symbol) ExtractBounds() (hi, lo int64) { return s.i, s.lo }
func (s *Symbol) Name() string     { return s.name }

func (s *Symbol) key() string {
	return fmt.Sprintf("%d|%d|%d|%s|%d|%s", s.kind, s.i, s.lo, s.r.String(), s.width, s.name)
}

func (s *Symbol) String() string {
	switch s.kind {
	case SymTrue:
		return "true"
	case SymFalse:
		return "false"
	case SymIntLit:
		return fmt.Sprintf("%d", s.i)
	case SymRealLit:
		return s.r.String()
	case SymBVLit:
		return fmt.Sprintf("bv%d:%d", s.width, s.i)
	case SymUF:
		return s.name
	case SymNamed:
		return fmt.Sprintf("%s%d", s.name, s.i)
	case SymInterpGroup:
		return s.name
	case SymBVExtract:
		return fmt.Sprintf("extract[%d:%d]", s.i, s.lo)
	default:
		return fmt.Sprintf("op#%d", s.kind)
	}
}

func (s *Store) internSymbol(sym *Symbol) *Symbol {
	k := sym.key()
	if existing, ok := s.symbols[k]; ok {
		return existing
	}
	sym.tag = s.nextTag()
	s.symbols[k] = sym
	s.stats.SymbolCount++
	return sym
}

func (s *Store) nullarySymbol(kind SymbolKind) *Symbol {
	return s.internSymbol(&Symbol{kind: kind})
}

// symTrue, symFalse and symOp hash-cons
// the fixed-shape symbols used by the term constructors in term.go.
func (s *Store) symTrue() *Symbol  { return s.nullarySymbol(SymTrue) }
func (s *Store) symFalse() *Symbol { return s.nullarySymbol(SymFalse) }
func (s *Store) symOp(kind SymbolKind) *Symbol { return s.nullarySymbol(kind) }

// IntLit hash-cons an integer literal symbol.
func (s *Store) IntLit(v int64) *Symbol {
	return s.internSymbol(&Symbol{kind: SymIntLit, i: v})
}

// RealLit hash-cons a real literal symbol using an exact decimal value
// so that numerically equal literals constructed independently always
// hash-cons to the same Symbol (float64 comparison is not adequate
// here: two different parses of the same decimal can differ in their
// last bit).
func (s *Store) RealLit(v decimal.Decimal) *Symbol {
	return s.internSymbol(&Symbol{kind: SymRealLit, r: v})
}

// BVLit hash-cons a bit-vector literal symbol of the given width.
func (s *Store) BVLit(width int, v int64) *Symbol {
	return s.internSymbol(&Symbol{kind: SymBVLit, width: width, i: v})
}

// UF hash-cons an uninterpreted-function-reference symbol.
func (s *Store) UF(name string) *Symbol {
	return s.internSymbol(&Symbol{kind: SymUF, name: name})
}

// BVExtractSym hash-cons a bit-vector extract symbol with inclusive
// bounds [lo, hi].
func (s *Store) BVExtractSym(hi, lo int64) *Symbol {
	return s.internSymbol(&Symbol{kind: SymBVExtract, i: hi, lo: lo})
}

// BVSignExtendSym / BVZeroExtendSym hash-cons a sign/zero-extend
// symbol widening by the given number of extra bits.
func (s *Store) BVSignExtendSym(extra int) *Symbol {
	return s.internSymbol(&Symbol{kind: SymBVSignExtend, width: extra})
}
func (s *Store) BVZeroExtendSym(extra int) *Symbol {
	return s.internSymbol(&Symbol{kind: SymBVZeroExtend, width: extra})
}

// InterpGroupSym hash-cons an interpolation-group tag symbol.
func (s *Store) InterpGroupSym(name string) *Symbol {
	return s.internSymbol(&Symbol{kind: SymInterpGroup, name: name})
}

func (s *Store) namedSymbol(namespace string, n int64) *Symbol {
	return s.internSymbol(&Symbol{kind: SymNamed, name: namespace, i: n})
}
