// Package bptree implements an in-memory B+ tree ordered map: a mutable
// associative container from totally-ordered keys to arbitrary values,
// supporting point operations, ordered range iteration, and bulk
// construction from pre-sorted input.
//
// The container is single-owner and not safe for concurrent use: it does no
// internal locking, and mutating a Map while iterating over it is undefined.
package bptree

import (
	"cmp"

	"github.com/go-logr/logr"
	"github.com/sahilb315/bptree/internal/telemetry"
)

// DefaultCapacity is used when no WithCapacity option is given.
const DefaultCapacity = 128

// Pair is a single key/value entry, used by bulk construction and Update.
type Pair[K cmp.Ordered, V any] struct {
	Key   K
	Value V
}

// Map is an in-memory B+ tree ordered map from K to V.
//
// A zero Map is not usable; construct one with NewMap or FromSorted.
type Map[K cmp.Ordered, V any] struct {
	capacity       int
	root           node[K, V]
	head           *leaf[K, V]
	rightmostCache *leaf[K, V]
	logger         logr.Logger
}

// config collects constructor options. It does not need to be generic
// over K/V, which keeps WithCapacity/WithLogger callable without explicit
// type arguments.
type config struct {
	capacity int
	logger   logr.Logger
}

// Option configures a Map at construction time.
type Option func(*config)

// WithCapacity overrides the default node capacity (128). Capacity must
// be at least 4.
func WithCapacity(capacity int) Option {
	return func(c *config) { c.capacity = capacity }
}

// WithLogger attaches a logr.Logger that receives trace-level records of
// splits, merges, borrows, and root collapses. The default is
// logr.Discard().
func WithLogger(logger logr.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// NewMap creates an empty Map with node capacity 128, or as overridden by
// WithCapacity. It returns a wrapped ErrInvalidCapacity if capacity < 4.
func NewMap[K cmp.Ordered, V any](opts ...Option) (*Map[K, V], error) {
	cfg := config{capacity: DefaultCapacity, logger: telemetry.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.capacity < 4 {
		return nil, invalidCapacityError(cfg.capacity)
	}

	head := newLeaf[K, V]()
	return &Map[K, V]{
		capacity:       cfg.capacity,
		root:           head,
		head:           head,
		rightmostCache: head,
		logger:         cfg.logger,
	}, nil
}

// FromSorted bulk-constructs a Map from pairs assumed to be sorted in
// non-decreasing key order. Out-of-order or duplicate input is handled
// correctly but falls back to the general insertion path (spec §4.1).
func FromSorted[K cmp.Ordered, V any](items []Pair[K, V], opts ...Option) (*Map[K, V], error) {
	m, err := NewMap[K, V](opts...)
	if err != nil {
		return nil, err
	}
	for _, p := range items {
		m.bulkInsert(p.Key, p.Value)
	}
	return m, nil
}

// pathEntry records a branch visited during descent and which child index
// was taken, so split/underflow repair can propagate upward without
// parent pointers (spec §9).
type pathEntry[K cmp.Ordered, V any] struct {
	branch *branch[K, V]
	index  int
}

func (m *Map[K, V]) descend(key K) (*leaf[K, V], []pathEntry[K, V]) {
	var path []pathEntry[K, V]
	curr := m.root
	for !curr.isLeaf() {
		br := curr.(*branch[K, V])
		idx := br.findChildIndex(key)
		path = append(path, pathEntry[K, V]{br, idx})
		curr = br.children[idx]
	}
	return curr.(*leaf[K, V]), path
}

// Set inserts key/value, overwriting any existing value for key.
func (m *Map[K, V]) Set(key K, value V) {
	lf, path := m.descend(key)

	var sibling node[K, V]
	var separator K
	split := false

	_, exists := lf.findPosition(key)
	switch {
	case exists:
		// overwrite in place; never overflows the leaf
		lf.insert(key, value)
	case lf.isFull(m.capacity):
		right, sep := lf.splitAndInsert(key, value)
		sibling, separator, split = right, sep, true
		m.logger.V(1).Info("leaf split", "separator", separator)
	default:
		lf.insert(key, value)
	}

	for i := len(path) - 1; split && i >= 0; i-- {
		entry := path[i]
		right, promoted, didSplit := entry.branch.insertChildAndSplitIfNeeded(entry.index, separator, sibling, m.capacity)
		if !didSplit {
			split = false
			break
		}
		sibling, separator, split = right, promoted, true
		m.logger.V(1).Info("branch split", "promoted", separator)
	}

	if split {
		newRoot := newBranch[K, V]()
		newRoot.keys = append(newRoot.keys, separator)
		newRoot.children = append(newRoot.children, m.root, sibling)
		m.root = newRoot
		m.logger.V(1).Info("root split, height increased")
	}
}

// bulkInsert is the sorted fast path described in spec §4.1: append to the
// cached rightmost leaf when it is safe to do so, otherwise fall back to
// Set and refresh the cache.
func (m *Map[K, V]) bulkInsert(key K, value V) {
	cache := m.rightmostCache
	if cache != nil && len(cache.keys) > 0 && !cache.isFull(m.capacity) &&
		cmp.Compare(key, cache.keys[len(cache.keys)-1]) > 0 {
		cache.keys = append(cache.keys, key)
		cache.values = append(cache.values, value)
		return
	}

	m.Set(key, value)
	m.refreshRightmostCache()
}

func (m *Map[K, V]) refreshRightmostCache() {
	curr := m.head
	for curr.next != nil {
		curr = curr.next
	}
	m.rightmostCache = curr
}

// Get returns the value for key and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	curr := m.root
	for !curr.isLeaf() {
		curr = curr.(*branch[K, V]).getChild(key)
	}
	return curr.(*leaf[K, V]).get(key)
}

// GetOr returns the value for key, or def if key is absent.
func (m *Map[K, V]) GetOr(key K, def V) V {
	if v, ok := m.Get(key); ok {
		return v
	}
	return def
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key, returning ErrKeyNotFound if it was absent.
func (m *Map[K, V]) Delete(key K) error {
	lf, path := m.descend(key)

	if _, ok := lf.delete(key); !ok {
		return keyNotFoundError(key)
	}

	for i := len(path) - 1; i >= 0; i-- {
		entry := path[i]
		if entry.branch.children[entry.index].isUnderfull(m.capacity) {
			rebalance(entry.branch, entry.index, m.capacity, m.logger)
		}
	}

	if br, ok := m.root.(*branch[K, V]); ok && len(br.children) == 1 {
		m.root = br.children[0]
		m.logger.V(1).Info("root collapsed, height decreased")
	}

	return nil
}

// Pop removes and returns key's value, or ErrKeyNotFound if absent.
func (m *Map[K, V]) Pop(key K) (V, error) {
	v, ok := m.Get(key)
	if !ok {
		var zero V
		return zero, keyNotFoundError(key)
	}
	_ = m.Delete(key)
	return v, nil
}

// PopDefault removes and returns key's value, or def if absent (never
// errors).
func (m *Map[K, V]) PopDefault(key K, def V) V {
	v, err := m.Pop(key)
	if err != nil {
		return def
	}
	return v
}

// PopItem removes and returns the first (key, value) pair in key order, or
// ErrEmpty if the map has no entries.
func (m *Map[K, V]) PopItem() (K, V, error) {
	if len(m.head.keys) == 0 {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, ErrEmpty
	}
	key := m.head.keys[0]
	value := m.head.values[0]
	_ = m.Delete(key)
	return key, value, nil
}

// Len returns the number of key/value pairs in the map.
func (m *Map[K, V]) Len() int {
	n := 0
	for l := m.head; l != nil; l = l.next {
		n += len(l.keys)
	}
	return n
}

// IsEmpty reports whether the map has no entries.
func (m *Map[K, V]) IsEmpty() bool {
	return m.Len() == 0
}

// Clear resets the map to a single empty leaf.
func (m *Map[K, V]) Clear() {
	head := newLeaf[K, V]()
	m.root = head
	m.head = head
	m.rightmostCache = head
}

// SetDefault returns the existing value for key if present; otherwise it
// sets key to def and returns def.
func (m *Map[K, V]) SetDefault(key K, def V) V {
	if v, ok := m.Get(key); ok {
		return v
	}
	m.Set(key, def)
	return def
}

// UpdateSource supplies pairs to Update, from either a map or a pair
// sequence (spec §6: "merge from mapping or pair sequence").
type UpdateSource[K cmp.Ordered, V any] interface {
	pairs() []Pair[K, V]
}

type mapSource[K cmp.Ordered, V any] map[K]V

func (s mapSource[K, V]) pairs() []Pair[K, V] {
	out := make([]Pair[K, V], 0, len(s))
	for k, v := range s {
		out = append(out, Pair[K, V]{k, v})
	}
	return out
}

type pairSource[K cmp.Ordered, V any] []Pair[K, V]

func (s pairSource[K, V]) pairs() []Pair[K, V] { return s }

// FromMap adapts a Go map into an UpdateSource.
func FromMap[K cmp.Ordered, V any](m map[K]V) UpdateSource[K, V] {
	return mapSource[K, V](m)
}

// FromPairs adapts a pair slice into an UpdateSource.
func FromPairs[K cmp.Ordered, V any](pairs []Pair[K, V]) UpdateSource[K, V] {
	return pairSource[K, V](pairs)
}

// Update inserts or overwrites every pair from src.
func (m *Map[K, V]) Update(src UpdateSource[K, V]) {
	for _, p := range src.pairs() {
		m.Set(p.Key, p.Value)
	}
}

// Copy returns a structurally independent shallow duplicate: mutating one
// map never affects the other, but value payloads are shared (spec §5).
func (m *Map[K, V]) Copy() *Map[K, V] {
	cp, _ := NewMap[K, V](WithCapacity(m.capacity), WithLogger(m.logger))
	for k, v := range m.Items(nil, nil) {
		cp.Set(k, v)
	}
	return cp
}
