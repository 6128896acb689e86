// Copyright 2026 The Malloclab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package malloc implements a single-threaded dynamic memory allocator over
// a contiguous, monotonically-growing heap region supplied by a host memory
// system (see package memsys).
//
// The allocator encodes block metadata as boundary tags: a 4-byte header
// and a 4-byte footer at each block's edges, giving O(1) access to a
// block's physically-adjacent neighbors without any auxiliary map. Free
// blocks are indexed by a fixed array of segregated size-class lists so
// that a fit search only ever walks blocks in a narrow size range instead
// of the whole heap. Freed blocks are coalesced with free physical
// neighbors immediately, and malloc's fit search is size-class-bucketed
// best fit: requests within a bucket are matched to the smallest block
// that is still large enough.
//
// The zero value of Allocator is not ready for use; call Init first.
//
// Allocator is not safe for concurrent use and carries no internal
// synchronization, by design: the workload this allocator targets is a
// single-threaded request/response loop, and the locking that would be
// needed to make it concurrency-safe would dominate the cost of the fast
// paths it exists to keep cheap.
package malloc
