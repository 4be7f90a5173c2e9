package bptree

import (
	"cmp"

	"github.com/go-logr/logr"
	"github.com/sahilb315/bptree/internal/assert"
)

// rebalance repairs underflow in parent.children[childIndex] after a
// delete, per spec §4.4:
//  1. not underfull -> no-op
//  2. empty -> merge straight away
//  3. else borrow from the right sibling first, then the left
//  4. else merge, preferring the left sibling
//
// A merge that would overflow capacity is skipped, leaving the child
// underfull rather than violating the fixed node capacity (spec §4.4's
// capacity guard).
func rebalance[K cmp.Ordered, V any](parent *branch[K, V], childIndex int, capacity int, logger logr.Logger) {
	child := parent.children[childIndex]

	if !child.isUnderfull(capacity) {
		return
	}

	hasLeft := childIndex > 0
	hasRight := childIndex < len(parent.children)-1

	if child.keyCount() == 0 {
		mergeWithSibling(parent, childIndex, capacity, hasLeft, hasRight, logger)
		return
	}

	if hasRight && parent.children[childIndex+1].canDonate(capacity) {
		redistributeFromRight(parent, childIndex)
		logger.V(1).Info("borrowed from right sibling", "childIndex", childIndex)
		return
	}

	if hasLeft && parent.children[childIndex-1].canDonate(capacity) {
		redistributeFromLeft(parent, childIndex)
		logger.V(1).Info("borrowed from left sibling", "childIndex", childIndex)
		return
	}

	mergeWithSibling(parent, childIndex, capacity, hasLeft, hasRight, logger)
}

func redistributeFromLeft[K cmp.Ordered, V any](parent *branch[K, V], childIndex int) {
	child := parent.children[childIndex]
	left := parent.children[childIndex-1]

	if leftLeaf, ok := left.(*leaf[K, V]); ok {
		childLeaf := child.(*leaf[K, V])
		childLeaf.borrowFromLeft(leftLeaf)
		parent.keys[childIndex-1] = childLeaf.keys[0]
		return
	}

	leftBranch := left.(*branch[K, V])
	childBranch := child.(*branch[K, V])
	separator := parent.keys[childIndex-1]
	newSeparator := childBranch.borrowFromLeft(leftBranch, separator)
	parent.keys[childIndex-1] = newSeparator
}

func redistributeFromRight[K cmp.Ordered, V any](parent *branch[K, V], childIndex int) {
	child := parent.children[childIndex]
	right := parent.children[childIndex+1]

	if rightLeaf, ok := right.(*leaf[K, V]); ok {
		childLeaf := child.(*leaf[K, V])
		childLeaf.borrowFromRight(rightLeaf)
		parent.keys[childIndex] = rightLeaf.keys[0]
		return
	}

	rightBranch := right.(*branch[K, V])
	childBranch := child.(*branch[K, V])
	separator := parent.keys[childIndex]
	newSeparator := childBranch.borrowFromRight(rightBranch, separator)
	parent.keys[childIndex] = newSeparator
}

func mergeWithSibling[K cmp.Ordered, V any](parent *branch[K, V], childIndex, capacity int, hasLeft, hasRight bool, logger logr.Logger) {
	child := parent.children[childIndex]

	if hasLeft {
		left := parent.children[childIndex-1]
		if merged := tryMerge(left, child, parent.keys[childIndex-1], capacity); merged {
			parent.children = append(parent.children[:childIndex], parent.children[childIndex+1:]...)
			parent.keys = append(parent.keys[:childIndex-1], parent.keys[childIndex:]...)
			logger.V(1).Info("merged with left sibling", "childIndex", childIndex)
		}
		return
	}

	if hasRight {
		right := parent.children[childIndex+1]
		if merged := tryMerge(child, right, parent.keys[childIndex], capacity); merged {
			parent.children = append(parent.children[:childIndex+1], parent.children[childIndex+2:]...)
			parent.keys = append(parent.keys[:childIndex], parent.keys[childIndex+1:]...)
			logger.V(1).Info("merged with right sibling", "childIndex", childIndex)
		}
		return
	}

	// No sibling at all: child is the sole surviving child of parent. Root
	// collapse (handled by the caller) or a tolerated underfull state.
}

// tryMerge merges src into dst (dst keeps the survivor identity) if doing
// so would not exceed capacity, returning whether it merged.
func tryMerge[K cmp.Ordered, V any](dst, src node[K, V], separator K, capacity int) bool {
	assert.Assert(dst.isLeaf() == src.isLeaf(), "tryMerge: mismatched node kinds")

	if dstLeaf, ok := dst.(*leaf[K, V]); ok {
		srcLeaf := src.(*leaf[K, V])

		if dstLeaf.keyCount()+srcLeaf.keyCount() > capacity {
			return false
		}
		dstLeaf.mergeWithRight(srcLeaf)
		return true
	}

	dstBranch := dst.(*branch[K, V])
	srcBranch := src.(*branch[K, V])

	totalKeys := dstBranch.keyCount() + srcBranch.keyCount() + 1
	totalChildren := len(dstBranch.children) + len(srcBranch.children)
	if totalKeys > capacity || totalChildren > capacity+1 {
		return false
	}
	dstBranch.mergeWithRight(srcBranch, separator)
	return true
}
