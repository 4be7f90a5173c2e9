package bptree

import (
	"cmp"
	"sort"

	"github.com/sahilb315/bptree/internal/assert"
)

// leaf stores sorted (key, value) pairs and is forward/backward linked to
// its neighbors so range scans can walk the leaf chain in O(1) per step
// after an O(log n) descent. Grounded on bplus-tree/btree.go's Node
// (leaf fields) and iterator.go's next/prev usage in the teacher repo.
type leaf[K cmp.Ordered, V any] struct {
	keys   []K
	values []V
	next   *leaf[K, V] // non-owning link to successor leaf; nil for the rightmost leaf
	prev   *leaf[K, V] // non-owning back-link, used only for reverse iteration
}

func newLeaf[K cmp.Ordered, V any]() *leaf[K, V] {
	return &leaf[K, V]{}
}

func (l *leaf[K, V]) isLeaf() bool   { return true }
func (l *leaf[K, V]) keyCount() int  { return len(l.keys) }
func (l *leaf[K, V]) isFull(capacity int) bool {
	return len(l.keys) >= capacity
}
func (l *leaf[K, V]) isUnderfull(capacity int) bool {
	return len(l.keys) < minKeys(capacity)
}
func (l *leaf[K, V]) canDonate(capacity int) bool {
	return len(l.keys) > minKeys(capacity)
}

// findPosition returns the index where key is, or where it would be
// inserted, and whether it is already present.
func (l *leaf[K, V]) findPosition(key K) (int, bool) {
	pos := sort.Search(len(l.keys), func(i int) bool {
		return cmp.Compare(l.keys[i], key) >= 0
	})
	exists := pos < len(l.keys) && l.keys[pos] == key
	return pos, exists
}

// insert places key/value in sorted position, overwriting and returning the
// prior value if key was already present.
func (l *leaf[K, V]) insert(key K, value V) (old V, existed bool) {
	pos, exists := l.findPosition(key)
	if exists {
		old = l.values[pos]
		l.values[pos] = value
		return old, true
	}

	l.keys = append(l.keys, key)
	copy(l.keys[pos+1:], l.keys[pos:])
	l.keys[pos] = key

	l.values = append(l.values, value)
	copy(l.values[pos+1:], l.values[pos:])
	l.values[pos] = value

	return old, false
}

func (l *leaf[K, V]) get(key K) (V, bool) {
	pos, exists := l.findPosition(key)
	if !exists {
		var zero V
		return zero, false
	}
	return l.values[pos], true
}

// delete removes key if present, returning the removed value.
func (l *leaf[K, V]) delete(key K) (V, bool) {
	pos, exists := l.findPosition(key)
	if !exists {
		var zero V
		return zero, false
	}
	removed := l.values[pos]
	l.keys = append(l.keys[:pos], l.keys[pos+1:]...)
	l.values = append(l.values[:pos], l.values[pos+1:]...)
	return removed, true
}

// split moves the upper half of this leaf's entries into a new right
// sibling, splicing it into the chain. mid = n/2, n the key count at split
// time (spec §4.2).
func (l *leaf[K, V]) split() *leaf[K, V] {
	mid := len(l.keys) / 2

	right := newLeaf[K, V]()
	right.keys = append(right.keys, l.keys[mid:]...)
	right.values = append(right.values, l.values[mid:]...)

	l.keys = l.keys[:mid]
	l.values = l.values[:mid]

	right.next = l.next
	if right.next != nil {
		right.next.prev = right
	}
	right.prev = l
	l.next = right

	return right
}

// splitAndInsert splits this (full) leaf and inserts key/value into
// whichever half it belongs to, returning the new sibling and the
// separator key (the new sibling's first key).
func (l *leaf[K, V]) splitAndInsert(key K, value V) (*leaf[K, V], K) {
	right := l.split()

	if cmp.Compare(key, right.keys[0]) < 0 {
		l.insert(key, value)
	} else {
		right.insert(key, value)
	}

	return right, right.keys[0]
}

// borrowFromLeft moves sibling's last pair to this leaf's front.
func (l *leaf[K, V]) borrowFromLeft(sibling *leaf[K, V]) {
	assert.Assert(len(sibling.keys) > 0, "borrowFromLeft: empty donor sibling")

	lastIdx := len(sibling.keys) - 1
	key, value := sibling.keys[lastIdx], sibling.values[lastIdx]
	sibling.keys = sibling.keys[:lastIdx]
	sibling.values = sibling.values[:lastIdx]

	l.keys = append([]K{key}, l.keys...)
	l.values = append([]V{value}, l.values...)
}

// borrowFromRight moves sibling's first pair to this leaf's end.
func (l *leaf[K, V]) borrowFromRight(sibling *leaf[K, V]) {
	assert.Assert(len(sibling.keys) > 0, "borrowFromRight: empty donor sibling")

	key, value := sibling.keys[0], sibling.values[0]
	sibling.keys = sibling.keys[1:]
	sibling.values = sibling.values[1:]

	l.keys = append(l.keys, key)
	l.values = append(l.values, value)
}

// mergeWithRight appends sibling's entries to this leaf and inherits its
// next link; sibling is then dropped by the caller (the rebalancer).
func (l *leaf[K, V]) mergeWithRight(sibling *leaf[K, V]) {
	l.keys = append(l.keys, sibling.keys...)
	l.values = append(l.values, sibling.values...)

	l.next = sibling.next
	if l.next != nil {
		l.next.prev = l
	}
}
