package bptree

import (
	"cmp"
	"iter"
)

// findLeafForKey descends from the root to the leaf that contains, or
// would contain, key.
func (m *Map[K, V]) findLeafForKey(key K) *leaf[K, V] {
	curr := m.root
	for !curr.isLeaf() {
		curr = curr.(*branch[K, V]).getChild(key)
	}
	return curr.(*leaf[K, V])
}

// Items returns a lazy, single-pass sequence of (key, value) pairs with
// start inclusive and end exclusive; either bound may be nil. Mutating the
// map during iteration is undefined behavior (spec §5).
func (m *Map[K, V]) Items(start, end *K) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		var curr *leaf[K, V]
		var startIdx int

		if start == nil {
			curr, startIdx = m.head, 0
		} else {
			curr = m.findLeafForKey(*start)
			startIdx, _ = curr.findPosition(*start)
		}

		for curr != nil {
			for i := startIdx; i < len(curr.keys); i++ {
				if end != nil && cmp.Compare(curr.keys[i], *end) >= 0 {
					return
				}
				if !yield(curr.keys[i], curr.values[i]) {
					return
				}
			}
			curr = curr.next
			startIdx = 0
		}
	}
}

// Keys returns a lazy sequence of keys in [start, end).
func (m *Map[K, V]) Keys(start, end *K) iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.Items(start, end) {
			if !yield(k) {
				return
			}
		}
	}
}

// Values returns a lazy sequence of values in key order over [start, end).
func (m *Map[K, V]) Values(start, end *K) iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.Items(start, end) {
			if !yield(v) {
				return
			}
		}
	}
}

// Range is an alias of Items (spec §6's operation table).
func (m *Map[K, V]) Range(start, end *K) iter.Seq2[K, V] {
	return m.Items(start, end)
}

// Backward returns a lazy sequence of (key, value) pairs in descending key
// order over [start, end). Reverse iteration is not required by the spec
// but is a natural extension of the doubly-linked leaf chain (spec §9).
func (m *Map[K, V]) Backward(start, end *K) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if m.IsEmpty() {
			return
		}

		var curr *leaf[K, V]
		var idx int

		if end == nil {
			curr = m.tailLeaf()
			idx = len(curr.keys) - 1
		} else {
			curr = m.findLeafForKey(*end)
			pos, _ := curr.findPosition(*end)
			idx = pos - 1
		}

		for curr != nil {
			for ; idx >= 0; idx-- {
				if start != nil && cmp.Compare(curr.keys[idx], *start) < 0 {
					return
				}
				if !yield(curr.keys[idx], curr.values[idx]) {
					return
				}
			}
			curr = curr.prev
			if curr != nil {
				idx = len(curr.keys) - 1
			}
		}
	}
}

func (m *Map[K, V]) tailLeaf() *leaf[K, V] {
	curr := m.head
	for curr.next != nil {
		curr = curr.next
	}
	return curr
}
