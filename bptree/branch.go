package bptree

import (
	"cmp"
	"sort"

	"github.com/sahilb315/bptree/internal/assert"
)

// branch stores sorted separator keys and m+1 child references, routing
// descent toward the leaf that may hold a given key. Grounded on the
// internal-node half of bplus-tree/btree.go's Node/splitNode/
// traverseRightOrLeft, renamed and made right-biased per spec §4.3.
type branch[K cmp.Ordered, V any] struct {
	keys     []K
	children []node[K, V]
}

func newBranch[K cmp.Ordered, V any]() *branch[K, V] {
	return &branch[K, V]{}
}

func (b *branch[K, V]) isLeaf() bool  { return false }
func (b *branch[K, V]) keyCount() int { return len(b.keys) }
func (b *branch[K, V]) isFull(capacity int) bool {
	return len(b.keys) >= capacity
}
func (b *branch[K, V]) isUnderfull(capacity int) bool {
	return len(b.keys) < minKeys(capacity)
}
func (b *branch[K, V]) canDonate(capacity int) bool {
	return len(b.keys) > minKeys(capacity)
}

// findChildIndex returns the index of the child subtree that contains key,
// using a right-biased search: a key equal to a separator routes right of
// it, matching the invariant that keys in children[i+1] >= keys[i].
func (b *branch[K, V]) findChildIndex(key K) int {
	assert.Assert(len(b.children) == len(b.keys)+1,
		"branch has %d children but %d keys (want %d children)",
		len(b.children), len(b.keys), len(b.keys)+1)

	idx := sort.Search(len(b.keys), func(i int) bool {
		return cmp.Compare(key, b.keys[i]) < 0
	})

	assert.Assert(idx < len(b.children), "child index %d out of range (%d children)", idx, len(b.children))
	return idx
}

func (b *branch[K, V]) getChild(key K) node[K, V] {
	return b.children[b.findChildIndex(key)]
}

// split divides this (full) branch in half, promoting the middle key.
// mid = m/2, m the key count at split time (spec §4.3).
func (b *branch[K, V]) split() (*branch[K, V], K) {
	mid := len(b.keys) / 2
	promoted := b.keys[mid]

	right := newBranch[K, V]()
	right.keys = append(right.keys, b.keys[mid+1:]...)
	right.children = append(right.children, b.children[mid+1:]...)

	b.keys = b.keys[:mid]
	b.children = b.children[:mid+1]

	return right, promoted
}

// insertChildAndSplitIfNeeded inserts separator at childIndex (and
// newChild at childIndex+1), splitting if the branch overflows as a
// result. Returns (nil, zero, false) when no split occurred.
func (b *branch[K, V]) insertChildAndSplitIfNeeded(childIndex int, separator K, newChild node[K, V], capacity int) (*branch[K, V], K, bool) {
	assert.Assert(childIndex >= 0 && childIndex <= len(b.keys),
		"insert index %d out of bounds [0,%d]", childIndex, len(b.keys))

	b.keys = append(b.keys, separator)
	copy(b.keys[childIndex+1:], b.keys[childIndex:])
	b.keys[childIndex] = separator

	b.children = append(b.children, nil)
	copy(b.children[childIndex+2:], b.children[childIndex+1:])
	b.children[childIndex+1] = newChild

	if !b.isFull(capacity) {
		var zero K
		return nil, zero, false
	}

	right, promoted := b.split()
	return right, promoted, true
}

// borrowFromLeft prepends separatorFromParent to this branch and moves
// sibling's last child to this branch's front, returning sibling's popped
// last key as the new parent separator.
func (b *branch[K, V]) borrowFromLeft(sibling *branch[K, V], separatorFromParent K) K {
	assert.Assert(len(sibling.keys) > 0, "borrowFromLeft: empty donor sibling")

	b.keys = append([]K{separatorFromParent}, b.keys...)

	lastChild := sibling.children[len(sibling.children)-1]
	sibling.children = sibling.children[:len(sibling.children)-1]
	b.children = append([]node[K, V]{lastChild}, b.children...)

	newSeparator := sibling.keys[len(sibling.keys)-1]
	sibling.keys = sibling.keys[:len(sibling.keys)-1]
	return newSeparator
}

// borrowFromRight appends separatorFromParent and sibling's first child,
// returning sibling's popped first key as the new parent separator.
func (b *branch[K, V]) borrowFromRight(sibling *branch[K, V], separatorFromParent K) K {
	assert.Assert(len(sibling.keys) > 0, "borrowFromRight: empty donor sibling")

	b.keys = append(b.keys, separatorFromParent)

	firstChild := sibling.children[0]
	sibling.children = sibling.children[1:]
	b.children = append(b.children, firstChild)

	newSeparator := sibling.keys[0]
	sibling.keys = sibling.keys[1:]
	return newSeparator
}

// mergeWithRight appends separatorFromParent, then sibling's keys and
// children, preserving len(children) = len(keys)+1.
func (b *branch[K, V]) mergeWithRight(sibling *branch[K, V], separatorFromParent K) {
	b.keys = append(b.keys, separatorFromParent)
	b.keys = append(b.keys, sibling.keys...)
	b.children = append(b.children, sibling.children...)
}
