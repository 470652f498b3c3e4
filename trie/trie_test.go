package trie

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func build3() *Trie[int] {
	t := Empty[int]()
	t = t.Add(Path{Record("a")}, 1)
	t = t.Add(Path{Record("b"), Tuple(0)}, 2)
	t = t.Add(Path{Record("b"), Tuple(1)}, 3)
	return t
}

func TestAddFindBindingsOrder(t *testing.T) {
	trie := build3()
	require.Equal(t, 3, trie.Len())

	v, ok := trie.Find(Path{Record("a")})
	require.True(t, ok)
	require.Equal(t, 1, v)

	bs := trie.Bindings()
	require.Len(t, bs, 3)
	require.Equal(t, Path{Record("a")}, bs[0].Path, "record tags order by name before the nested tuple entries")
}

func TestAddIsPersistent(t *testing.T) {
	t1 := Singleton[int](Path{Record("x")}, 1)
	t2 := t1.Add(Path{Record("y")}, 2)

	require.Equal(t, 1, t1.Len())
	require.Equal(t, 2, t2.Len())
}

func TestFindPrefix(t *testing.T) {
	trie := build3()
	sub := trie.FindPrefix(Path{Record("b")})
	require.Equal(t, 2, sub.Len())
	v, ok := sub.Find(Path{Tuple(0)})
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestFold2RequiresIdenticalShape(t *testing.T) {
	a := Singleton[int](Path{Record("x")}, 1)
	b := Singleton[int](Path{Record("y")}, 2)

	_, err := Fold2(func(p Path, av, bv int, acc int) (int, error) {
		return acc + av + bv, nil
	}, a, b, "shape-test", 0)
	require.Error(t, err, "fold2 over tries with different key sets must signal shape mismatch")
}

func TestFold2SumsOverMatchingShape(t *testing.T) {
	a := Singleton[int](Path{Record("x")}, 1).Add(Path{Record("y")}, 2)
	b := Singleton[int](Path{Record("x")}, 10).Add(Path{Record("y")}, 20)

	sum, err := Fold2(func(p Path, av, bv int, acc int) (int, error) {
		return acc + av + bv, nil
	}, a, b, "shape-test", 0)
	require.NoError(t, err)
	require.Equal(t, 33, sum)
}

func TestMap2PreservesPaths(t *testing.T) {
	a := Singleton[int](Path{Tuple(0)}, 1)
	b := Singleton[int](Path{Tuple(0)}, 2)

	out, err := Map2(func(p Path, av, bv int) (int, error) { return av + bv, nil }, a, b, "sum")
	require.NoError(t, err)
	v, ok := out.Find(Path{Tuple(0)})
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func TestTopMaxIndex(t *testing.T) {
	tr := Empty[int]().Add(Path{List(0)}, 1).Add(Path{List(3)}, 2).Add(Path{List(1)}, 3)
	require.Equal(t, 3, TopMaxIndex(tr))
	require.Equal(t, -1, TopMaxIndex(Empty[int]()))
}

func TestMkScopeForIndex(t *testing.T) {
	scope := MkScopeForIndex(Path{Record("r"), Tuple(2), ArrayInt(5)})
	require.Equal(t, []string{"r", "2", "5"}, scope)
}

func TestFilterArrayIndices(t *testing.T) {
	path := Path{Record("r"), ArrayInt(1), Tuple(0), ArrayVar("i")}
	filtered := FilterArrayIndices(path)
	require.Equal(t, Path{ArrayInt(1), ArrayVar("i")}, filtered)
}
