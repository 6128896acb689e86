// Copyright 2026 The Malloclab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import "unsafe"

// minExtensionBytes is the smallest chunk requested from the memory system
// on a heap-extending malloc or realloc, to amortize the cost of the sbrk
// call over several small requests. Workload-tuned; part of the
// allocator's contract.
const minExtensionBytes = 4096

// extendHeap asks the memory system for at least bytes more, aligned up to a
// double word, and lays out a new free block in the space the old epilogue
// occupied, followed by a fresh epilogue header. The new block is indexed
// and coalesced with its predecessor, which may already be free.
func (a *Allocator) extendHeap(bytes int) (unsafe.Pointer, error) {
	size := alignUp(bytes, dwordSize)

	// The byte sbrk hands back is exactly where the old epilogue header
	// lived: the heap's previous last word. Writing a block header there
	// logically replaces that sentinel.
	bp, err := a.sys.Sbrk(size)
	if err != nil {
		return nil, err
	}

	markFree(bp, size)
	putWordRaw(header(nextBlock(bp)), pack(0, true)) // new epilogue header

	a.insertNode(bp)
	return a.coalesce(bp), nil
}
