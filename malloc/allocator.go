// Copyright 2026 The Malloclab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/cznic/malloclab/memsys"
)

// trace is the conventional stderr-tracing knob used by allocators in this
// style: flip it to true to have every public operation report its
// arguments and result on stderr.
const trace = false

const (
	headerFooterOverhead = 8  // bytes reserved for an allocated block's header+footer
	minBlockSize         = 16 // smallest legal block: header+pred+succ+footer

	// initialHeapBytes is the size of the single free block Init seeds
	// the heap with.
	initialHeapBytes = 64

	// reallocBufferBytes is the slack added to every Realloc target size
	// so that repeated small in-place grows of the same block are
	// absorbed without copying. Workload-tuned; part of the allocator's
	// contract.
	reallocBufferBytes = 128
)

// Allocator is a single-threaded segregated-fit allocator over a memsys.System.
// The zero value is not ready for use; call Init before any other method.
//
// Allocator is not safe for concurrent use; see the package doc comment.
type Allocator struct {
	sys   *memsys.System
	base  uintptr
	lists [numClasses]word
	ready bool
}

// NewAllocator returns an Allocator over sys. Init must still be called
// before the allocator can service requests.
func NewAllocator(sys *memsys.System) *Allocator {
	return &Allocator{sys: sys}
}

// Init resets the allocator's index, lays down the heap prologue and
// epilogue, and seeds the heap with one initial free block. It returns an
// error (the in-band -1 of the original contract) if the memory system
// refuses the extension.
func (a *Allocator) Init() error {
	if trace {
		defer func() { fmt.Fprintf(os.Stderr, "Init()\n") }()
	}

	if a.sys == nil {
		return fmt.Errorf("malloc: Init: allocator has no memory system")
	}

	a.base = uintptr(a.sys.HeapLo())
	for i := range a.lists {
		a.lists[i] = 0
	}
	a.ready = false

	// 4 words: alignment pad, prologue header (size 8, allocated),
	// prologue footer (size 8, allocated), epilogue header (size 0,
	// allocated).
	pad, err := a.sys.Sbrk(4 * wordSize)
	if err != nil {
		return fmt.Errorf("malloc: Init: %w", err)
	}
	putWordRaw(addPtr(pad, wordSize), pack(dwordSize, true))
	putWordRaw(addPtr(pad, 2*wordSize), pack(dwordSize, true))
	putWordRaw(addPtr(pad, 3*wordSize), pack(0, true))

	if _, err := a.extendHeap(initialHeapBytes); err != nil {
		return fmt.Errorf("malloc: Init: %w", err)
	}

	a.ready = true
	return nil
}

// adjustedSize converts a requested payload size into the block size
// malloc must carve out: at least 16 bytes, otherwise the requested size
// plus header+footer overhead, rounded up to a double word.
func adjustedSize(size int) int {
	if size <= headerFooterOverhead {
		return minBlockSize
	}
	return alignUp(size+headerFooterOverhead, dwordSize)
}

// Malloc allocates size bytes and returns the payload address, or nil if
// size is zero. It panics if size is negative or the allocator has not
// been initialized — both are programmer contract violations, not runtime
// conditions the caller can recover from.
func (a *Allocator) Malloc(size int) (r unsafe.Pointer, err error) {
	if trace {
		defer func() { fmt.Fprintf(os.Stderr, "Malloc(%#x) %p, %v\n", size, r, err) }()
	}
	if size < 0 {
		panic("malloc: Malloc: negative size")
	}
	if !a.ready {
		panic("malloc: Malloc: allocator not initialized")
	}
	if size == 0 {
		return nil, nil
	}

	asize := adjustedSize(size)

	bp := a.findFit(asize)
	if bp == nil {
		extend := asize
		if extend < minExtensionBytes {
			extend = minExtensionBytes
		}
		bp, err = a.extendHeap(extend)
		if err != nil {
			return nil, err
		}
	}

	a.deleteNode(bp)
	return a.place(bp, asize), nil
}

// Free releases the block at bp, which must have been returned by a prior
// Malloc or Realloc and not already freed. Freeing nil is a no-op.
func (a *Allocator) Free(bp unsafe.Pointer) {
	if trace {
		defer func() { fmt.Fprintf(os.Stderr, "Free(%p)\n", bp) }()
	}
	if bp == nil {
		return
	}
	if !a.ready {
		panic("malloc: Free: allocator not initialized")
	}

	size := sizeOf(header(bp))
	markFree(bp, size)
	a.insertNode(bp)
	a.coalesce(bp)
}

// Realloc changes the size of the block at bp. Unlike the C standard
// library, Realloc(bp, 0) returns nil without freeing bp: a Go caller has
// no other handle on bp, so silently dropping it on a zero-size request
// would leak the block with no way for the caller to get it back.
// Realloc(nil, size) behaves as Malloc(size).
//
// A grow reserves a 128-byte realloc buffer beyond the requested size, so a
// sequence of small repeated grows of the same block is usually absorbed in
// place without a copy. When the block cannot grow in place, the new block
// comes from Malloc(size) and carries no such buffer.
func (a *Allocator) Realloc(bp unsafe.Pointer, size int) (r unsafe.Pointer, err error) {
	if trace {
		defer func() { fmt.Fprintf(os.Stderr, "Realloc(%p, %#x) %p, %v\n", bp, size, r, err) }()
	}
	if size == 0 {
		return nil, nil
	}
	if !a.ready {
		panic("malloc: Realloc: allocator not initialized")
	}
	if bp == nil {
		return a.Malloc(size)
	}

	newSize := adjustedSize(size) + reallocBufferBytes
	currentSize := sizeOf(header(bp))
	slack := currentSize - newSize
	if slack >= 0 {
		return bp, nil
	}

	next := nextBlock(bp)
	nextAllocated := allocOf(header(next))
	nextSize := sizeOf(header(next))
	if !nextAllocated || nextSize == 0 {
		rem := currentSize + nextSize - newSize
		if rem < 0 {
			extend := -rem
			if extend < minExtensionBytes {
				extend = minExtensionBytes
			}
			if _, err := a.extendHeap(extend); err != nil {
				return nil, err
			}
			next = nextBlock(bp)
			rem = currentSize + sizeOf(header(next)) - newSize
		}

		a.deleteNode(next)
		markAllocated(bp, newSize+rem)
		return bp, nil
	}

	newBp, err := a.Malloc(size)
	if err != nil {
		return nil, err
	}
	// Copy min(requested size, bytes actually held by the old block). The
	// classic reference formula for this step is min(size, newSize), but
	// newSize is always >= size, so that formula always reduces to just
	// copying size bytes even when the old block held less — reading past
	// what bp actually owns. Clamping to the old block's real payload
	// capacity instead avoids that out-of-bounds read.
	copySize := currentSize - headerFooterOverhead
	if size < copySize {
		copySize = size
	}
	memcpy(newBp, bp, copySize)
	a.Free(bp)
	return newBp, nil
}
