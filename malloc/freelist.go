// Copyright 2026 The Malloclab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import (
	"unsafe"

	"github.com/cznic/mathutil"
)

// numClasses is the number of segregated free-list buckets. Bucket k holds free blocks whose size lies in
// [2^k, 2^(k+1)), clamped at the top end.
const numClasses = 20

// classOf returns the bucket index for a block of the given size.
// size is always >= 16 (the minimum block size), so size's bit length is
// always >= 1 and k is never negative.
func classOf(size int) int {
	k := mathutil.BitLen(size) - 1
	if k >= numClasses {
		k = numClasses - 1
	}
	return k
}

// Each free block's interior holds two word-sized links, at offsets 0 and 4
// past its payload address (bp). They are stored as 4-byte offsets into the
// heap rather than raw 8-byte pointers, since a minimum-size free block only
// has room for two word-sized link fields; offset 0 is reserved as NULL and
// never collides with a real block address, since it always falls inside
// the prologue's alignment pad. pred links toward smaller sizes in the
// bucket, succ links toward larger ones; the bucket head is the smallest
// element, so a fit search starting at the head and following succ finds
// the smallest block that is big enough (best fit within the bucket).

func predLinkAddr(bp unsafe.Pointer) unsafe.Pointer { return bp }
func succLinkAddr(bp unsafe.Pointer) unsafe.Pointer { return addPtr(bp, wordSize) }

func (a *Allocator) toOffset(p unsafe.Pointer) word {
	if p == nil {
		return 0
	}
	return word(uintptr(p) - a.base)
}

func (a *Allocator) fromOffset(o word) unsafe.Pointer {
	if o == 0 {
		return nil
	}
	return unsafe.Pointer(a.base + uintptr(o))
}

func (a *Allocator) pred(bp unsafe.Pointer) unsafe.Pointer { return a.fromOffset(getWord(predLinkAddr(bp))) }
func (a *Allocator) succ(bp unsafe.Pointer) unsafe.Pointer { return a.fromOffset(getWord(succLinkAddr(bp))) }

func (a *Allocator) setPred(bp, v unsafe.Pointer) { putWordRaw(predLinkAddr(bp), a.toOffset(v)) }
func (a *Allocator) setSucc(bp, v unsafe.Pointer) { putWordRaw(succLinkAddr(bp), a.toOffset(v)) }

func (a *Allocator) head(k int) unsafe.Pointer      { return a.fromOffset(a.lists[k]) }
func (a *Allocator) setHead(k int, bp unsafe.Pointer) { a.lists[k] = a.toOffset(bp) }

// insertNode splices a free block bp (whose header/footer already carry its
// current size) into the segregated list for that size, keeping the bucket
// ordered ascending by size from the head.
func (a *Allocator) insertNode(bp unsafe.Pointer) {
	size := sizeOf(header(bp))
	k := classOf(size)

	var insert, search unsafe.Pointer
	search = a.head(k)
	for search != nil && size > sizeOf(header(search)) {
		insert = search
		search = a.succ(search)
	}

	switch {
	case insert != nil && search != nil:
		a.setSucc(insert, bp)
		a.setPred(bp, insert)
		a.setSucc(bp, search)
		a.setPred(search, bp)
	case insert == nil && search != nil:
		a.setPred(bp, nil)
		a.setSucc(bp, search)
		a.setPred(search, bp)
		a.setHead(k, bp)
	case insert != nil && search == nil:
		a.setSucc(insert, bp)
		a.setPred(bp, insert)
		a.setSucc(bp, nil)
	default:
		a.setPred(bp, nil)
		a.setSucc(bp, nil)
		a.setHead(k, bp)
	}
}

// deleteNode removes bp from whichever bucket its current size places it
// in. bp must currently be linked into that bucket.
func (a *Allocator) deleteNode(bp unsafe.Pointer) {
	size := sizeOf(header(bp))
	k := classOf(size)

	p := a.pred(bp)
	s := a.succ(bp)
	switch {
	case p == nil && s == nil:
		a.setHead(k, nil)
	case p == nil && s != nil:
		a.setPred(s, nil)
		a.setHead(k, s)
	case p != nil && s == nil:
		a.setSucc(p, nil)
	default:
		a.setSucc(p, s)
		a.setPred(s, p)
	}
}

// findFit returns a free block of size >= asize still linked in the index,
// or nil if none exists. It starts at asize's own bucket and, once it
// reaches a bucket whose size class can possibly satisfy asize, scans every
// subsequent non-empty bucket (and always the last bucket) for the first
// block that fits — best fit within a bucket, first-fit across buckets.
func (a *Allocator) findFit(asize int) unsafe.Pointer {
	searchSize := 1
	for k := classOf(asize); k < numClasses; k++ {
		if k == numClasses-1 || (searchSize <= 1 && a.head(k) != nil) {
			for bp := a.head(k); bp != nil; bp = a.succ(bp) {
				if sizeOf(header(bp)) >= asize {
					return bp
				}
			}
		}
		searchSize >>= 1
	}
	return nil
}
