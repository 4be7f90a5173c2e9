package bptree

import (
	"cmp"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect[K comparable, V any](seq func(func(K, V) bool)) []Pair[K, V] {
	var out []Pair[K, V]
	seq(func(k K, v V) bool {
		out = append(out, Pair[K, V]{k, v})
		return true
	})
	return out
}

// Scenario 1 (spec §8): capacity 4, insert 1..5 -> size 5, ordered items,
// height >= 2 (root split after the 4th insert).
func TestScenarioInsertAndSplit(t *testing.T) {
	m, err := NewMap[int, string](WithCapacity(4))
	require.NoError(t, err)

	for i, v := range []string{"a", "b", "c", "d", "e"} {
		m.Set(i+1, v)
	}

	assert.Equal(t, 5, m.Len())

	got := collect[int, string](m.Items(nil, nil))
	want := []Pair[int, string]{{1, "a"}, {2, "b"}, {3, "c"}, {4, "d"}, {5, "e"}}
	assert.Equal(t, want, got)

	_, ok := m.root.(*branch[int, string])
	assert.True(t, ok, "root should have split into a branch after 4th insert")
}

// Scenario 2: capacity 4, insert 1..20, delete 5/10/15, remaining items in
// order, all leaves still at equal depth.
func TestScenarioDeleteMaintainsOrderAndBalance(t *testing.T) {
	m, err := NewMap[int, string](WithCapacity(4))
	require.NoError(t, err)

	for i := 1; i <= 20; i++ {
		m.Set(i, "")
	}
	for _, k := range []int{5, 10, 15} {
		require.NoError(t, m.Delete(k))
	}

	var want []int
	for i := 1; i <= 20; i++ {
		if i == 5 || i == 10 || i == 15 {
			continue
		}
		want = append(want, i)
	}

	var got []int
	for k := range m.Keys(nil, nil) {
		got = append(got, k)
	}
	assert.Equal(t, want, got)
	assertBalanced(t, m)
}

// Scenario 3: bulk-load squares 0..999, get/size/range checks.
func TestScenarioBulkLoadSquares(t *testing.T) {
	items := make([]Pair[int, int], 1000)
	for i := range items {
		items[i] = Pair[int, int]{i, i * i}
	}

	m, err := FromSorted(items, WithCapacity(16))
	require.NoError(t, err)

	v, ok := m.Get(500)
	require.True(t, ok)
	assert.Equal(t, 250000, v)
	assert.Equal(t, 1000, m.Len())

	start, end := 100, 110
	got := collect[int, int](m.Items(&start, &end))
	var want []Pair[int, int]
	for i := 100; i < 110; i++ {
		want = append(want, Pair[int, int]{i, i * i})
	}
	assert.Equal(t, want, got)
}

// Scenario 4: capacity 4, insert 1..8, delete 1..7 -> size 1, items=[(8,8)],
// root collapsed to a single leaf.
func TestScenarioRootCollapse(t *testing.T) {
	m, err := NewMap[int, int](WithCapacity(4))
	require.NoError(t, err)

	for i := 1; i <= 8; i++ {
		m.Set(i, i)
	}
	for i := 1; i <= 7; i++ {
		require.NoError(t, m.Delete(i))
	}

	assert.Equal(t, 1, m.Len())
	assert.Equal(t, []Pair[int, int]{{8, 8}}, collect[int, int](m.Items(nil, nil)))

	_, isLeaf := m.root.(*leaf[int, int])
	assert.True(t, isLeaf, "root should have collapsed to a single leaf")
}

// Scenario 5: duplicate sets are last-writer-wins and don't grow size.
func TestScenarioDuplicateSetsOverwrite(t *testing.T) {
	m, err := NewMap[int, string]()
	require.NoError(t, err)

	m.Set(7, "x")
	m.Set(7, "y")
	m.Set(7, "z")

	assert.Equal(t, 1, m.Len())
	v, ok := m.Get(7)
	require.True(t, ok)
	assert.Equal(t, "z", v)
}

// Scenario 6: empty-map error behavior.
func TestScenarioEmptyMapErrors(t *testing.T) {
	m, err := NewMap[int, string]()
	require.NoError(t, err)

	_, _, err = m.PopItem()
	assert.ErrorIs(t, err, ErrEmpty)

	err = m.Delete(42)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.Equal(t, "d", m.GetOr(42, "d"))
}

func TestNewMapInvalidCapacity(t *testing.T) {
	_, err := NewMap[int, int](WithCapacity(3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCapacity))
}

func TestFromSortedMatchesSequentialInserts(t *testing.T) {
	items := make([]Pair[int, int], 0, 200)
	for i := 0; i < 200; i++ {
		items = append(items, Pair[int, int]{i, i})
	}

	bulk, err := FromSorted(items, WithCapacity(8))
	require.NoError(t, err)

	sequential, err := NewMap[int, int](WithCapacity(8))
	require.NoError(t, err)
	for _, p := range items {
		sequential.Set(p.Key, p.Value)
	}

	assert.Equal(t, collect[int, int](sequential.Items(nil, nil)), collect[int, int](bulk.Items(nil, nil)))
}

func TestFromSortedToleratesOutOfOrderAndDuplicateInput(t *testing.T) {
	items := []Pair[int, int]{{1, 1}, {3, 3}, {2, 2}, {3, 33}}

	m, err := FromSorted(items, WithCapacity(4))
	require.NoError(t, err)

	assert.Equal(t, 3, m.Len())
	v, ok := m.Get(3)
	require.True(t, ok)
	assert.Equal(t, 33, v)

	var got []int
	for k := range m.Keys(nil, nil) {
		got = append(got, k)
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestCopyIsStructurallyIndependent(t *testing.T) {
	m, err := NewMap[int, int](WithCapacity(4))
	require.NoError(t, err)
	for i := 0; i < 30; i++ {
		m.Set(i, i)
	}

	cp := m.Copy()
	assert.Equal(t, collect[int, int](m.Items(nil, nil)), collect[int, int](cp.Items(nil, nil)))

	cp.Set(1000, 1000)
	require.NoError(t, m.Delete(0))

	_, ok := m.Get(1000)
	assert.False(t, ok, "mutating the copy must not affect the original")
	_, ok = cp.Get(0)
	assert.True(t, ok, "mutating the original must not affect the copy")
}

func TestDictLikeExtras(t *testing.T) {
	m, err := NewMap[string, int](WithCapacity(4))
	require.NoError(t, err)

	assert.True(t, m.IsEmpty())

	assert.Equal(t, 10, m.SetDefault("a", 10))
	assert.Equal(t, 10, m.SetDefault("a", 20))

	m.Update(FromPairs([]Pair[string, int]{{"b", 2}, {"c", 3}}))
	m.Update(FromMap(map[string]int{"d": 4}))
	assert.Equal(t, 4, m.Len())

	v, err := m.Pop("b")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	assert.Equal(t, 99, m.PopDefault("missing", 99))

	k, v, err := m.PopItem()
	require.NoError(t, err)
	assert.Equal(t, "a", k)
	assert.Equal(t, 10, v)

	m.Clear()
	assert.True(t, m.IsEmpty())
	assert.Equal(t, 0, m.Len())
}

func TestRangeEqualsFilterOverItems(t *testing.T) {
	m, err := NewMap[int, int](WithCapacity(4))
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		m.Set(i, i)
	}

	all := collect[int, int](m.Items(nil, nil))

	a, b := 10, 30
	ranged := collect[int, int](m.Range(&a, &b))

	var want []Pair[int, int]
	for _, p := range all {
		if p.Key >= a && p.Key < b {
			want = append(want, p)
		}
	}
	assert.Equal(t, want, ranged)
}

func TestBackwardIterationIsReverseOfItems(t *testing.T) {
	m, err := NewMap[int, int](WithCapacity(4))
	require.NoError(t, err)
	for i := 0; i < 40; i++ {
		m.Set(i, i)
	}

	forward := collect[int, int](m.Items(nil, nil))
	backward := collect[int, int](m.Backward(nil, nil))

	require.Len(t, backward, len(forward))
	for i := range forward {
		assert.Equal(t, forward[len(forward)-1-i], backward[i])
	}
}

// assertBalanced walks every root-to-leaf path and asserts they all reach
// the same depth (spec §8 invariant 1).
func assertBalanced[K cmp.Ordered, V any](t *testing.T, m *Map[K, V]) {
	t.Helper()

	depth := func(n node[K, V]) int {
		d := 0
		for !n.isLeaf() {
			n = n.(*branch[K, V]).children[0]
			d++
		}
		return d
	}
	want := depth(m.root)

	var walk func(n node[K, V], d int)
	walk = func(n node[K, V], d int) {
		if n.isLeaf() {
			assert.Equal(t, want, d, "leaf at unequal depth")
			return
		}
		br := n.(*branch[K, V])
		for _, c := range br.children {
			walk(c, d+1)
		}
	}
	walk(m.root, 0)
}
