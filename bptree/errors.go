package bptree

import "github.com/cockroachdb/errors"

// Sentinel errors returned by public operations. Use errors.Is to test for
// them, since operations wrap them with additional context.
var (
	// ErrInvalidCapacity is returned by NewMap/FromSorted when capacity < 4.
	ErrInvalidCapacity = errors.New("bptree: capacity must be at least 4")

	// ErrKeyNotFound is returned by Delete and Pop (without a default) when
	// the key is absent.
	ErrKeyNotFound = errors.New("bptree: key not found")

	// ErrEmpty is returned by PopItem when the map has no entries.
	ErrEmpty = errors.New("bptree: map is empty")
)

func invalidCapacityError(capacity int) error {
	return errors.Wrapf(ErrInvalidCapacity, "got capacity %d", capacity)
}

func keyNotFoundError[K any](key K) error {
	return errors.Wrapf(ErrKeyNotFound, "key %v", key)
}
