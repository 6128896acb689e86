// Copyright 2026 The Malloclab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import (
	"testing"
	"unsafe"
)

func TestPackRoundTrip(t *testing.T) {
	cases := []struct {
		size      int
		allocated bool
	}{
		{16, true},
		{16, false},
		{4096, true},
		{0, true}, // the epilogue
	}
	for _, c := range cases {
		w := pack(c.size, c.allocated)
		var buf word
		p := unsafe.Pointer(&buf)
		putWordRaw(p, w)
		if got := sizeOf(p); got != c.size {
			t.Errorf("pack(%d,%v): sizeOf = %d", c.size, c.allocated, got)
		}
		if got := allocOf(p); got != c.allocated {
			t.Errorf("pack(%d,%v): allocOf = %v", c.size, c.allocated, got)
		}
	}
}

func TestTagSurvivesPreservingWrite(t *testing.T) {
	var buf word
	p := unsafe.Pointer(&buf)
	putWordRaw(p, pack(32, false))
	setTag(p)
	if !tagOf(p) {
		t.Fatal("setTag did not set the tag")
	}

	putWordPreserveTag(p, pack(64, true))
	if !tagOf(p) {
		t.Fatal("putWordPreserveTag lost the tag")
	}
	if sizeOf(p) != 64 || !allocOf(p) {
		t.Fatal("putWordPreserveTag did not apply the new size/alloc bits")
	}

	clearTag(p)
	if tagOf(p) {
		t.Fatal("clearTag did not clear the tag")
	}
}

func TestAlignUp(t *testing.T) {
	cases := map[[2]int]int{
		{0, 8}:  0,
		{1, 8}:  8,
		{8, 8}:  8,
		{9, 8}:  16,
		{15, 8}: 16,
		{16, 8}: 16,
	}
	for in, want := range cases {
		if got := alignUp(in[0], in[1]); got != want {
			t.Errorf("alignUp(%d,%d) = %d, want %d", in[0], in[1], got, want)
		}
	}
}

func TestHeaderFooterNeighbors(t *testing.T) {
	a := newTestAllocator(t)

	p, err := a.Malloc(64)
	if err != nil {
		t.Fatal(err)
	}

	h := header(p)
	ft := footer(p)
	if sizeOf(h) != sizeOf(ft) || allocOf(h) != allocOf(ft) {
		t.Fatal("header and footer disagree")
	}

	next := nextBlock(p)
	if prevBlock(next) != p {
		t.Fatalf("prevBlock(nextBlock(p)) = %p, want %p", prevBlock(next), p)
	}
}
