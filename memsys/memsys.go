// Copyright 2026 The Malloclab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memsys is the host memory system collaborator: it reserves one
// large, contiguous region of address space up front and hands the malloc
// package a simulated sbrk over it.
//
// A real sbrk grows a process's data segment in place; Go gives no such
// primitive, and the Go runtime's own heap is free to move object backing
// arrays around under GC. So instead of asking the OS for bytes a little at
// a time, System reserves its whole capacity with a single anonymous mmap
// and exposes Sbrk as a break pointer walking through that fixed
// reservation. The result is
// the same guarantee sbrk gives: every byte ever handed out stays at the
// same address until Close.
package memsys

import (
	"fmt"
	"os"
	"unsafe"
)

var (
	pageSize   = os.Getpagesize()
	osPageMask = pageSize - 1
)

// System is a fixed-capacity simulated heap. Its zero value is not usable;
// construct one with New.
type System struct {
	region   mapping
	brk      int // offset of the current break within region
	capacity int
}

// New reserves capacity bytes of anonymous memory and returns a System whose
// break starts at offset zero of that reservation.
func New(capacity int) (*System, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("memsys: capacity must be positive, got %d", capacity)
	}

	m, err := newMapping(capacity)
	if err != nil {
		return nil, fmt.Errorf("memsys: reserve %d bytes: %w", capacity, err)
	}

	return &System{region: m, capacity: capacity}, nil
}

// Sbrk extends the simulated heap by n bytes and returns the address of the
// first new byte. It fails once the reservation made by New is exhausted;
// that failure is this module's only source of out-of-memory.
func (s *System) Sbrk(n int) (unsafe.Pointer, error) {
	if n < 0 {
		return nil, fmt.Errorf("memsys: negative sbrk increment %d", n)
	}

	if s.brk+n > s.capacity {
		return nil, fmt.Errorf("memsys: out of memory: brk %d + %d exceeds capacity %d", s.brk, n, s.capacity)
	}

	p := unsafe.Pointer(&s.region.bytes()[s.brk])
	s.brk += n
	return p, nil
}

// HeapLo returns the address of the first byte of the simulated heap. The
// malloc package calls it once, in Init, as the base for its free-list link
// offsets.
func (s *System) HeapLo() unsafe.Pointer {
	b := s.region.bytes()
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

// HeapHi returns the address of the last byte currently below the break.
// Diagnostic only; the malloc package never calls it.
func (s *System) HeapHi() unsafe.Pointer {
	if s.brk == 0 {
		return nil
	}
	return unsafe.Pointer(&s.region.bytes()[s.brk-1])
}

// Size reports the number of bytes currently below the break.
func (s *System) Size() int { return s.brk }

// Close releases the reservation by delegating to the platform mapping's
// own close. It is not necessary to Close a System before process exit.
func (s *System) Close() error {
	err := s.region.close()
	*s = System{}
	return err
}
