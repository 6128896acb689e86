// Copyright 2026 The Malloclab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package team holds the identity record an embedding program publishes
// alongside its allocator. It is entirely outside the allocator's
// behavior.
package team

import "fmt"

// Info identifies the authors of an allocator submission.
type Info struct {
	Name    string
	Members []Member
}

// Member is one contributor.
type Member struct {
	Name  string
	Email string
	ID    string
}

// String renders Info for a banner or log line.
func (i Info) String() string {
	s := i.Name
	for _, m := range i.Members {
		s += fmt.Sprintf("\n  %s <%s> (%s)", m.Name, m.Email, m.ID)
	}
	return s
}
