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

// Package trie implements the typed index trie: a persistent map from
// ordered sequences of index tags to values, used throughout the
// compiler as the universal container for "one value per scalar leaf
// of a structured value".
package trie

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sdflang/core/corerr"
)

// TagKind discriminates the six index-tag shapes. Ordering between
// kinds follows this declaration order; ordering within a kind follows
// the natural order of its payload.
type TagKind uint8

const (
	RecordIndex TagKind = iota
	TupleIndex
	ListIndex
	ArrayIntIndex
	ArrayVarIndex
	AbstractTypeIndex
)

// Tag is one segment of an index path.
type Tag struct {
	Kind TagKind
	Name string // RecordIndex, AbstractTypeIndex
	Int  int    // TupleIndex, ListIndex, ArrayIntIndex
	Expr string // ArrayVarIndex: a stable string key for the indexing expression
}

func Record(name string) Tag        { return Tag{Kind: RecordIndex, Name: name} }
func Tuple(i int) Tag               { return Tag{Kind: TupleIndex, Int: i} }
func List(i int) Tag                { return Tag{Kind: ListIndex, Int: i} }
func ArrayInt(i int) Tag            { return Tag{Kind: ArrayIntIndex, Int: i} }
func ArrayVar(exprKey string) Tag   { return Tag{Kind: ArrayVarIndex, Expr: exprKey} }
func AbstractType(name string) Tag  { return Tag{Kind: AbstractTypeIndex, Name: name} }

func (t Tag) String() string {
	switch t.Kind {
	case RecordIndex:
		return "." + t.Name
	case TupleIndex:
		return fmt.Sprintf("#%d", t.Int)
	case ListIndex:
		return fmt.Sprintf("[%d]", t.Int)
	case ArrayIntIndex:
		return fmt.Sprintf("[%d]", t.Int)
	case ArrayVarIndex:
		return fmt.Sprintf("[%s]", t.Expr)
	case AbstractTypeIndex:
		return "<" + t.Name + ">"
	default:
		return "?"
	}
}

// Less gives the total order on tags: kind first, then natural order
// inside the kind.
func Less(a, b Tag) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	switch a.Kind {
	case RecordIndex, AbstractTypeIndex:
		return a.Name < b.Name
	case TupleIndex, ListIndex, ArrayIntIndex:
		return a.Int < b.Int
	case ArrayVarIndex:
		return a.Expr < b.Expr
	default:
		return false
	}
}

// Path is an ordered sequence of index tags naming one leaf.
type Path []Tag

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, t := range p {
		parts[i] = t.String()
	}
	return strings.Join(parts, "")
}

func (p Path) key() string {
	var sb strings.Builder
	for _, t := range p {
		fmt.Fprintf(&sb, "%d:%s:%d:%s|", t.Kind, t.Name, t.Int, t.Expr)
	}
	return sb.String()
}

// Trie is a persistent, totally-ordered map from Path to V. The zero
// value is the empty trie.
type Trie[V any] struct {
	entries map[string]entry[V]
}

type entry[V any] struct {
	path Path
	val  V
}

// Empty returns the empty trie.
func Empty[V any]() *Trie[V] {
	return &Trie[V]{entries: make(map[string]entry[V])}
}

// Singleton returns a trie with exactly one binding.
func Singleton[V any](path Path, v V) *Trie[V] {
	t := Empty[V]()
	t.entries[path.key()] = entry[V]{path: append(Path(nil), path...), val: v}
	return t
}

// IsEmpty reports whether the trie has no bindings.
func (t *Trie[V]) IsEmpty() bool { return t == nil || len(t.entries) == 0 }

// Len reports the number of bindings.
func (t *Trie[V]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Add returns a new trie with path bound to v, replacing any existing
// binding for that exact path.
func (t *Trie[V]) Add(path Path, v V) *Trie[V] {
	out := t.clone()
	out.entries[path.key()] = entry[V]{path: append(Path(nil), path...), val: v}
	return out
}

// Remove returns a new trie without any binding for path.
func (t *Trie[V]) Remove(path Path) *Trie[V] {
	out := t.clone()
	delete(out.entries, path.key())
	return out
}

func (t *Trie[V]) clone() *Trie[V] {
	out := Empty[V]()
	if t == nil {
		return out
	}
	for k, e := range t.entries {
		out.entries[k] = e
	}
	return out
}

// Find returns the value bound to path, if any.
func (t *Trie[V]) Find(path Path) (V, bool) {
	var zero V
	if t == nil {
		return zero, false
	}
	e, ok := t.entries[path.key()]
	if !ok {
		return zero, false
	}
	return e.val, true
}

// FindPrefix returns the sub-trie of every binding whose path starts
// with prefix, with prefix stripped from the returned keys.
func (t *Trie[V]) FindPrefix(prefix Path) *Trie[V] {
	out := Empty[V]()
	if t == nil {
		return out
	}
	pfx := prefix.key()
	for _, e := range t.entries {
		ek := e.path.key()
		if strings.HasPrefix(ek, pfx) {
			rest := e.path[len(prefix):]
			out.entries[rest.key()] = entry[V]{path: append(Path(nil), rest...), val: e.val}
		}
	}
	return out
}

// MemPrefix reports whether any binding's path starts with prefix.
func (t *Trie[V]) MemPrefix(prefix Path) bool {
	if t == nil {
		return false
	}
	pfx := prefix.key()
	for _, e := range t.entries {
		if strings.HasPrefix(e.path.key(), pfx) {
			return true
		}
	}
	return false
}

// Bindings returns every (path, value) pair in key order.
func (t *Trie[V]) Bindings() []struct {
	Path Path
	Val  V
} {
	if t == nil {
		return nil
	}
	out := make([]struct {
		Path Path
		Val  V
	}, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, struct {
			Path Path
			Val  V
		}{Path: e.path, Val: e.val})
	}
	sort.Slice(out, func(i, j int) bool { return lessPath(out[i].Path, out[j].Path) })
	return out
}

func lessPath(a, b Path) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return Less(a[i], b[i])
		}
	}
	return len(a) < len(b)
}

// Values returns every bound value in key order.
func (t *Trie[V]) Values() []V {
	bs := t.Bindings()
	out := make([]V, len(bs))
	for i, b := range bs {
		out[i] = b.Val
	}
	return out
}

// Fold folds f over every binding in key order.
func Fold[V, A any](f func(path Path, v V, acc A) A, t *Trie[V], acc A) A {
	for _, b := range t.Bindings() {
		acc = f(b.Path, b.Val, acc)
	}
	return acc
}

// Map transforms every value, preserving keys and shape.
func Map[V, W any](f func(path Path, v V) W, t *Trie[V]) *Trie[W] {
	out := Empty[W]()
	if t == nil {
		return out
	}
	for k, e := range t.entries {
		out.entries[k] = entry[W]{path: e.path, val: f(e.path, e.val)}
	}
	return out
}

func keySet[V any](t *Trie[V]) map[string]struct{} {
	set := make(map[string]struct{})
	if t == nil {
		return set
	}
	for k := range t.entries {
		set[k] = struct{}{}
	}
	return set
}

// sameShape reports whether a and b bind exactly the same set of
// paths.
func sameShape[V, W any](a *Trie[V], b *Trie[W]) bool {
	ka, kb := keySet(a), keySet(b)
	if len(ka) != len(kb) {
		return false
	}
	for k := range ka {
		if _, ok := kb[k]; !ok {
			return false
		}
	}
	return true
}

// Map2 combines two shape-identical tries leaf-by-leaf. It fails with
// corerr.ShapeMismatch if the two tries do not bind identical key
// sets.
func Map2[A, B, C any](f func(path Path, a A, b B) (C, error), ta *Trie[A], tb *Trie[B], where string) (*Trie[C], error) {
	if !sameShape(ta, tb) {
		return nil, shapeMismatch(where, ta, tb)
	}
	out := Empty[C]()
	for k, ea := range ta.entries {
		eb := tb.entries[k]
		v, err := f(ea.path, ea.val, eb.val)
		if err != nil {
			return nil, err
		}
		out.entries[k] = entry[C]{path: ea.path, val: v}
	}
	return out, nil
}

// Fold2 folds over two shape-identical tries leaf-by-leaf in key
// order. It fails with corerr.ShapeMismatch if the two tries do not
// bind identical key sets.
func Fold2[A, B, Acc any](f func(path Path, a A, b B, acc Acc) (Acc, error), ta *Trie[A], tb *Trie[B], where string, acc Acc) (Acc, error) {
	if !sameShape(ta, tb) {
		return acc, shapeMismatch(where, ta, tb)
	}
	pairs := ta.Bindings()
	for _, p := range pairs {
		eb := tb.entries[p.Path.key()]
		var err error
		acc, err = f(p.Path, p.Val, eb.val, acc)
		if err != nil {
			return acc, err
		}
	}
	return acc, nil
}

func shapeMismatch[A, B any](where string, ta *Trie[A], tb *Trie[B]) error {
	ka, kb := keySet(ta), keySet(tb)
	var onlyA, onlyB []string
	for k := range ka {
		if _, ok := kb[k]; !ok {
			onlyA = append(onlyA, k)
		}
	}
	for k := range kb {
		if _, ok := ka[k]; !ok {
			onlyB = append(onlyB, k)
		}
	}
	return corerr.ShapeMismatch.New(where, fmt.Sprintf("only-in-lhs=%v only-in-rhs=%v", onlyA, onlyB))
}

// TopMaxIndex returns the greatest ListIndex tag value appearing at
// the root of the trie's paths, or -1 if there is none.
func TopMaxIndex[V any](t *Trie[V]) int {
	max := -1
	if t == nil {
		return max
	}
	for _, e := range t.entries {
		if len(e.path) == 0 {
			continue
		}
		top := e.path[0]
		if top.Kind == ListIndex && top.Int > max {
			max = top.Int
		}
	}
	return max
}

// MkScopeForIndex derives the scope-segment list used to disambiguate
// state variables from an index path: record/abstract segments
// contribute their name, positional segments contribute a decimal
// string of their ordinal.
func MkScopeForIndex(path Path) []string {
	out := make([]string, 0, len(path))
	for _, t := range path {
		switch t.Kind {
		case RecordIndex:
			out = append(out, t.Name)
		case AbstractTypeIndex:
			out = append(out, t.Name)
		case TupleIndex, ListIndex, ArrayIntIndex:
			out = append(out, fmt.Sprintf("%d", t.Int))
		case ArrayVarIndex:
			out = append(out, t.Expr)
		}
	}
	return out
}

// FilterArrayIndices returns the sub-sequence of path consisting only
// of ArrayIntIndex/ArrayVarIndex tags, in order.
func FilterArrayIndices(path Path) Path {
	var out Path
	for _, t := range path {
		if t.Kind == ArrayIntIndex || t.Kind == ArrayVarIndex {
			out = append(out, t)
		}
	}
	return out
}
