// Copyright 2026 The Malloclab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import "unsafe"

const (
	// noSplitRemainder is the largest leftover that is folded into the
	// allocated block instead of becoming a new free fragment.
	noSplitRemainder = 16

	// largeRequestThreshold is the adjusted-size cutoff above which place
	// splits toward the high end of the free block instead of the low
	// end. Workload-tuned; part of the allocator's contract.
	largeRequestThreshold = 73
)

// place carves asize bytes out of a free block bp (already removed from the
// index by the caller) and returns the address of the allocated payload.
// If splitting leaves a fragment, the fragment is marked free and
// reinserted into the index.
func (a *Allocator) place(bp unsafe.Pointer, asize int) unsafe.Pointer {
	total := sizeOf(header(bp))
	remainder := total - asize

	switch {
	case remainder <= noSplitRemainder:
		markAllocated(bp, total)
		return bp

	case asize >= largeRequestThreshold:
		// Large request: keep the fragment at the low address so small
		// free blocks stay clustered there, and place the payload at the
		// high end for better locality among large allocations.
		markFree(bp, remainder)
		a.insertNode(bp)
		high := nextBlock(bp)
		markAllocated(high, asize)
		return high

	default:
		// Small request: place the payload at the low end so the new
		// free fragment extends the existing run of small free blocks.
		markAllocated(bp, asize)
		high := nextBlock(bp)
		markFree(high, remainder)
		a.insertNode(high)
		return bp
	}
}
