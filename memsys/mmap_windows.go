// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

// Modifications (c) 2026 The Malloclab Authors.

package memsys

import (
	"os"
	"reflect"
	"syscall"
	"unsafe"
)

// mapping is the memory reservation backing a System on Windows. Acquiring
// one is a two-step CreateFileMapping/MapViewOfFile dance, and releasing it
// needs the handle CreateFileMapping produced; that handle travels with the
// mapping itself rather than living in a package-level table keyed by
// address, so close has everything it needs without a lookup.
type mapping struct {
	b []byte
	h syscall.Handle
}

func newMapping(size int) (mapping, error) {
	flProtect := uint32(syscall.PAGE_READWRITE)
	dwDesiredAccess := uint32(syscall.FILE_MAP_WRITE)

	// The maximum size is the area of the file, starting from 0,
	// that we wish to allow to be mappable. It is the sum of
	// the length the user requested, plus the offset where that length
	// is starting from. This does not map the data into memory.
	maxSizeHigh := uint32(int64(size) >> 32)
	maxSizeLow := uint32(int64(size) & 0xFFFFFFFF)
	h, errno := syscall.CreateFileMapping(syscall.Handle(^uintptr(0)), nil, flProtect, maxSizeHigh, maxSizeLow, nil)
	if h == 0 {
		return mapping{}, os.NewSyscallError("CreateFileMapping", errno)
	}

	// Actually map a view of the data into memory. The view's size
	// is the length the user requested.
	addr, errno := syscall.MapViewOfFile(h, dwDesiredAccess, 0, 0, uintptr(size))
	if addr == 0 {
		syscall.CloseHandle(h)
		return mapping{}, os.NewSyscallError("MapViewOfFile", errno)
	}

	if addr&uintptr(osPageMask) != 0 {
		panic("internal error")
	}

	var b []byte
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	sh.Data = addr
	sh.Len = size
	sh.Cap = size
	return mapping{b: b, h: h}, nil
}

func (m mapping) bytes() []byte { return m.b }

func (m mapping) close() error {
	if len(m.b) == 0 {
		return nil
	}
	if err := syscall.UnmapViewOfFile(uintptr(unsafe.Pointer(&m.b[0]))); err != nil {
		return err
	}

	return os.NewSyscallError("CloseHandle", syscall.CloseHandle(m.h))
}
