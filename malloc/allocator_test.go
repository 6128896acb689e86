// Copyright 2026 The Malloclab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import (
	"testing"
	"unsafe"

	"github.com/cznic/malloclab/memsys"
)

const testHeapCapacity = 8 << 20

func newTestAllocator(t *testing.T) *Allocator {
	t.Helper()
	sys, err := memsys.New(testHeapCapacity)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sys.Close() })

	a := NewAllocator(sys)
	if err := a.Init(); err != nil {
		t.Fatal(err)
	}
	return a
}

func writePattern(bp unsafe.Pointer, n int, seed byte) {
	b := unsafe.Slice((*byte)(bp), n)
	for i := range b {
		b[i] = seed + byte(i)
	}
}

func checkPattern(t *testing.T, bp unsafe.Pointer, n int, seed byte) {
	t.Helper()
	b := unsafe.Slice((*byte)(bp), n)
	for i := range b {
		if b[i] != seed+byte(i) {
			t.Fatalf("pattern mismatch at byte %d: got %d want %d", i, b[i], seed+byte(i))
		}
	}
}

// Scenario 1: malloc(1) then free then malloc(1) again.
func TestScenario1SmallAllocFree(t *testing.T) {
	a := newTestAllocator(t)

	p, err := a.Malloc(1)
	if err != nil || p == nil {
		t.Fatalf("Malloc(1) = %p, %v", p, err)
	}
	if uintptr(p)%dwordSize != 0 {
		t.Fatalf("p = %p not 8-byte aligned", p)
	}
	if got := sizeOf(header(p)); got != minBlockSize {
		t.Fatalf("header size = %d, want %d", got, minBlockSize)
	}

	a.Free(p)

	q, err := a.Malloc(1)
	if err != nil || q == nil {
		t.Fatalf("second Malloc(1) = %p, %v", q, err)
	}
}

// Scenario 2: two 64-byte allocations freed in order must coalesce into one
// free block of at least 128 bytes, indexed in bucket 7.
func TestScenario2CoalesceBothAllocated(t *testing.T) {
	a := newTestAllocator(t)

	pa, err := a.Malloc(64)
	if err != nil {
		t.Fatal(err)
	}
	pb, err := a.Malloc(64)
	if err != nil {
		t.Fatal(err)
	}

	a.Free(pa)
	a.Free(pb)

	free := walkFreeIndex(a)
	if len(free) != 1 {
		t.Fatalf("expected exactly one free block after coalescing, got %d: %v", len(free), free)
	}
	if free[0].size < 128 {
		t.Fatalf("coalesced free block size = %d, want >= 128", free[0].size)
	}
	if free[0].class != 7 {
		t.Fatalf("coalesced free block in bucket %d, want 7", free[0].class)
	}
}

// Scenario 3: a, b, c allocated; a and c freed. b keeps them from
// coalescing, so two 40-byte free blocks remain, both in bucket 5.
func TestScenario3NoCoalesceAcrossLiveBlock(t *testing.T) {
	a := newTestAllocator(t)

	pa, err := a.Malloc(32)
	if err != nil {
		t.Fatal(err)
	}
	pb, err := a.Malloc(32)
	if err != nil {
		t.Fatal(err)
	}
	pc, err := a.Malloc(32)
	if err != nil {
		t.Fatal(err)
	}
	_ = pb

	a.Free(pa)
	a.Free(pc)

	free := walkFreeIndex(a)
	if len(free) != 2 {
		t.Fatalf("expected two free blocks, got %d: %v", len(free), free)
	}
	for _, f := range free {
		if f.size != 40 {
			t.Fatalf("free block size = %d, want 40", f.size)
		}
		if f.class != 5 {
			t.Fatalf("free block in bucket %d, want 5", f.class)
		}
	}
}

// Scenario 4: realloc growing into the epilogue/free space stays in place
// with the 128-byte buffer applied.
func TestScenario4ReallocGrowInPlace(t *testing.T) {
	a := newTestAllocator(t)

	p, err := a.Malloc(100)
	if err != nil {
		t.Fatal(err)
	}

	q, err := a.Realloc(p, 200)
	if err != nil {
		t.Fatal(err)
	}
	if q != p {
		t.Fatalf("expected grow-in-place, got new pointer %p (old %p)", q, p)
	}
	if got, want := sizeOf(header(q)), alignUp(200+headerFooterOverhead, dwordSize)+reallocBufferBytes; got < want {
		t.Fatalf("header size = %d, want >= %d", got, want)
	}
}

// Scenario 4 (fenced): forcing the out-of-place path preserves the first
// bytes and releases the old block.
func TestScenario4ReallocOutOfPlace(t *testing.T) {
	a := newTestAllocator(t)

	p, err := a.Malloc(100)
	if err != nil {
		t.Fatal(err)
	}
	// Fence block keeps the next physical block allocated so Realloc must
	// fall back to malloc+memcpy+free. p is a large request, so place puts it
	// at the high end of the heap, right below the epilogue; only a request
	// that no free block can hold lands after it. Malloc(4096) extends the
	// heap by exactly its 4104-byte block, which place leaves unsplit.
	fence, err := a.Malloc(4096)
	if err != nil {
		t.Fatal(err)
	}
	_ = fence

	writePattern(p, 100, 7)

	q, err := a.Realloc(p, 200)
	if err != nil {
		t.Fatal(err)
	}
	if q == p {
		t.Fatal("expected out-of-place realloc given a live fence block")
	}
	checkPattern(t, q, 100, 7)
}

// Scenario 5: allocate until the host refuses, then confirm NULL without a
// crash and that live pointers are still freeable.
func TestScenario5ExhaustHeap(t *testing.T) {
	sys, err := memsys.New(64 << 10)
	if err != nil {
		t.Fatal(err)
	}
	defer sys.Close()

	a := NewAllocator(sys)
	if err := a.Init(); err != nil {
		t.Fatal(err)
	}

	var live []unsafe.Pointer
	var sawFailure bool
	for i := 0; i < 100000; i++ {
		p, err := a.Malloc(80)
		if err != nil {
			sawFailure = true
			break
		}
		live = append(live, p)
	}
	if !sawFailure {
		t.Fatal("expected allocation to eventually fail against a bounded heap")
	}

	for _, p := range live {
		a.Free(p)
	}
}

// Scenario 6: writing a pattern, forcing an out-of-place realloc, and
// reading it back from the new pointer.
func TestScenario6ReallocPreservesPrefix(t *testing.T) {
	a := newTestAllocator(t)

	p, err := a.Malloc(200)
	if err != nil {
		t.Fatal(err)
	}
	// p sits right below the epilogue (high-end placement of a large
	// request); a fence that extends the heap is what lands after it.
	fence, err := a.Malloc(4096)
	if err != nil {
		t.Fatal(err)
	}
	_ = fence

	writePattern(p, 200, 42)

	q, err := a.Realloc(p, 2000)
	if err != nil {
		t.Fatal(err)
	}
	checkPattern(t, q, 200, 42)
}

func TestMallocZeroSizeReturnsNil(t *testing.T) {
	a := newTestAllocator(t)
	p, err := a.Malloc(0)
	if err != nil || p != nil {
		t.Fatalf("Malloc(0) = %p, %v, want nil, nil", p, err)
	}
}

func TestReallocZeroSizeDoesNotFree(t *testing.T) {
	a := newTestAllocator(t)
	p, err := a.Malloc(32)
	if err != nil {
		t.Fatal(err)
	}
	writePattern(p, 32, 9)

	q, err := a.Realloc(p, 0)
	if err != nil || q != nil {
		t.Fatalf("Realloc(p, 0) = %p, %v, want nil, nil", q, err)
	}

	// p must still be live and untouched.
	checkPattern(t, p, 32, 9)
	a.Free(p)
}

func TestReallocNilActsLikeMalloc(t *testing.T) {
	a := newTestAllocator(t)
	p, err := a.Realloc(nil, 40)
	if err != nil || p == nil {
		t.Fatalf("Realloc(nil, 40) = %p, %v", p, err)
	}
	a.Free(p)
}

func TestMallocNegativeSizePanics(t *testing.T) {
	a := newTestAllocator(t)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for negative size")
		}
	}()
	a.Malloc(-1)
}
