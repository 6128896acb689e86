// Copyright 2026 The Malloclab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import "unsafe"

// coalesce merges bp with any free physical neighbors. bp's header/footer
// must already record allocation = 0, and bp must already be linked into
// the index by the caller. The returned pointer is the (possibly
// different) address of the merged block, itself linked into the index.
func (a *Allocator) coalesce(bp unsafe.Pointer) unsafe.Pointer {
	prevAllocated := allocOf(header(prevBlock(bp)))
	nextAllocated := allocOf(header(nextBlock(bp)))
	size := sizeOf(header(bp))

	switch {
	case prevAllocated && nextAllocated:
		return bp

	case prevAllocated && !nextAllocated:
		next := nextBlock(bp)
		a.deleteNode(bp)
		a.deleteNode(next)
		size += sizeOf(header(next))
		markFree(bp, size)
		a.insertNode(bp)
		return bp

	case !prevAllocated && nextAllocated:
		prev := prevBlock(bp)
		a.deleteNode(bp)
		a.deleteNode(prev)
		size += sizeOf(header(prev))
		markFree(prev, size)
		a.insertNode(prev)
		return prev

	default:
		prev := prevBlock(bp)
		next := nextBlock(bp)
		a.deleteNode(bp)
		a.deleteNode(prev)
		a.deleteNode(next)
		size += sizeOf(header(prev)) + sizeOf(header(next))
		markFree(prev, size)
		a.insertNode(prev)
		return prev
	}
}
