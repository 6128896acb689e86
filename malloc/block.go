// Copyright 2026 The Malloclab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import "unsafe"

// word is the 32-bit quantity every piece of block metadata is packed into.
type word = uint32

const (
	wordSize  = 4 // bytes per word
	dwordSize = 8 // bytes per double word; payload boundaries are dword-aligned

	allocBit   word = 0x1
	reallocTag word = 0x2
	tagSizeBits       = 3 // low 3 bits of a header/footer word are flags, not size
)

// if n%m != 0 { n += m-n%m }. m must be a power of 2.
func alignUp(n, m int) int { return (n + m - 1) &^ (m - 1) }

// pack encodes size (already dword-aligned) and the allocation bit into one
// metadata word. The reallocation tag, if any, is added by putWordPreserveTag.
func pack(size int, allocated bool) word {
	w := word(size)
	if allocated {
		w |= allocBit
	}
	return w
}

func getWord(p unsafe.Pointer) word { return *(*word)(p) }

func putWordRaw(p unsafe.Pointer, w word) { *(*word)(p) = w }

// putWordPreserveTag writes w but keeps whatever reallocation tag was
// already set at p. No call site in this package uses it — see the
// reallocation-tag discussion in the package-level design notes — but it is
// kept as the tag-aware counterpart to putWordRaw for anyone re-enabling the
// tag.
func putWordPreserveTag(p unsafe.Pointer, w word) {
	putWordRaw(p, w|(getWord(p)&reallocTag))
}

func sizeOf(p unsafe.Pointer) int    { return int(getWord(p) &^ word((1<<tagSizeBits)-1)) }
func allocOf(p unsafe.Pointer) bool  { return getWord(p)&allocBit != 0 }
func tagOf(p unsafe.Pointer) bool    { return getWord(p)&reallocTag != 0 }
func setTag(p unsafe.Pointer)        { putWordRaw(p, getWord(p)|reallocTag) }
func clearTag(p unsafe.Pointer)      { putWordRaw(p, getWord(p)&^reallocTag) }

func addPtr(p unsafe.Pointer, n int) unsafe.Pointer { return unsafe.Pointer(uintptr(p) + uintptr(n)) }
func subPtr(p unsafe.Pointer, n int) unsafe.Pointer { return unsafe.Pointer(uintptr(p) - uintptr(n)) }

// header returns the address of bp's header word. bp always points at the
// first payload byte (or, for a free block, the first byte of the
// predecessor link).
func header(bp unsafe.Pointer) unsafe.Pointer { return subPtr(bp, wordSize) }

// footer returns the address of bp's footer word, derived from the size
// recorded in bp's own header.
func footer(bp unsafe.Pointer) unsafe.Pointer {
	return addPtr(bp, sizeOf(header(bp))-dwordSize)
}

// nextBlock returns the payload address of the block physically following
// bp, using bp's own header size.
func nextBlock(bp unsafe.Pointer) unsafe.Pointer {
	return addPtr(bp, sizeOf(header(bp)))
}

// prevBlock returns the payload address of the block physically preceding
// bp, using the boundary tag one word before bp (the previous block's
// footer).
func prevBlock(bp unsafe.Pointer) unsafe.Pointer {
	return subPtr(bp, sizeOf(subPtr(bp, dwordSize)))
}

// markAllocated writes size and the allocated bit into both the header and
// footer of bp, clearing any reallocation tag.
func markAllocated(bp unsafe.Pointer, size int) {
	w := pack(size, true)
	putWordRaw(header(bp), w)
	putWordRaw(footer(bp), w)
}

// markFree writes size and a cleared allocated bit into both the header and
// footer of bp.
func markFree(bp unsafe.Pointer, size int) {
	w := pack(size, false)
	putWordRaw(header(bp), w)
	putWordRaw(footer(bp), w)
}

func memcpy(dst, src unsafe.Pointer, n int) {
	if n <= 0 {
		return
	}
	copy(unsafe.Slice((*byte)(dst), n), unsafe.Slice((*byte)(src), n))
}
