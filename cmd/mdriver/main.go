// Copyright 2026 The Malloclab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command mdriver replays an allocation trace against the malloc package
// and reports throughput and utilization, the same two adversarial metrics
// the allocator is tuned for.
//
// A trace is a text file, one operation per line:
//
//	a <id> <size>   allocate size bytes, remember the result under id
//	r <id> <size>   reallocate the block stored under id to size bytes
//	f <id>          free the block stored under id
//
// Blank lines and lines starting with # are ignored.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unsafe"

	"github.com/cznic/malloclab/malloc"
	"github.com/cznic/malloclab/memsys"
	"github.com/cznic/malloclab/team"
)

const defaultHeapCapacity = 64 << 20 // 64MiB simulated heap

func main() {
	heapCap := flag.Int("heap", defaultHeapCapacity, "capacity in bytes of the simulated heap")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mdriver [-heap bytes] <trace-file>")
		os.Exit(2)
	}

	fmt.Println(team.Info{Name: "malloclab"}.String())

	if err := run(flag.Arg(0), *heapCap); err != nil {
		fmt.Fprintln(os.Stderr, "mdriver:", err)
		os.Exit(1)
	}
}

func run(path string, heapCap int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sys, err := memsys.New(heapCap)
	if err != nil {
		return fmt.Errorf("creating memory system: %w", err)
	}
	defer sys.Close()

	a := malloc.NewAllocator(sys)
	if err := a.Init(); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	blocks := map[string]unsafe.Pointer{}
	var ops, payloadBytes int
	start := time.Now()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "a":
			id, size, err := idAndSize(fields)
			if err != nil {
				return err
			}
			p, err := a.Malloc(size)
			if err != nil {
				return fmt.Errorf("malloc(%d): %w", size, err)
			}
			blocks[id] = p
			payloadBytes += size
			ops++

		case "r":
			id, size, err := idAndSize(fields)
			if err != nil {
				return err
			}
			p, err := a.Realloc(blocks[id], size)
			if err != nil {
				return fmt.Errorf("realloc(%s, %d): %w", id, size, err)
			}
			blocks[id] = p
			ops++

		case "f":
			if len(fields) != 2 {
				return fmt.Errorf("malformed free line: %q", line)
			}
			a.Free(blocks[fields[1]])
			delete(blocks, fields[1])
			ops++

		default:
			return fmt.Errorf("unknown op %q", fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	fmt.Printf("ops=%d elapsed=%s payload_bytes=%d heap_bytes=%d\n", ops, elapsed, payloadBytes, sys.Size())
	return nil
}

func idAndSize(fields []string) (id string, size int, err error) {
	if len(fields) != 3 {
		return "", 0, fmt.Errorf("malformed line: %q", strings.Join(fields, " "))
	}
	size, err = strconv.Atoi(fields[2])
	if err != nil {
		return "", 0, fmt.Errorf("bad size %q: %w", fields[2], err)
	}
	return fields[1], size, nil
}
