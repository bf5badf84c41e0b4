// Package ident allocates the numeric identities of resources and tasks.
//
// Identities are handed out by an Allocator owned by whoever builds the
// graph (normally a graph.Graph arena). There is no process-wide counter:
// two arenas never share ids unless they explicitly share an Allocator.
package ident

import (
	"strconv"
	"sync/atomic"
)

// ID is the identity of a resource or task. It is assigned once and never
// reused by the Allocator that produced it.
type ID uint64

// None is the identity of the NoTask sentinel. It is never allocated.
const None ID = 0

// IsNone reports whether id is the NoTask identity.
func (id ID) IsNone() bool {
	return id == None
}

// String implements fmt.Stringer.
func (id ID) String() string {
	if id == None {
		return "none"
	}
	return "#" + strconv.FormatUint(uint64(id), 10)
}

// Allocator is a monotonically increasing id counter. The zero value is
// ready to use. It is safe for concurrent use.
type Allocator struct {
	last atomic.Uint64
}

// NewAllocator creates an allocator whose first id is 1.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next returns a fresh id.
func (a *Allocator) Next() ID {
	return ID(a.last.Add(1))
}

// Last returns the most recently allocated id, or None.
func (a *Allocator) Last() ID {
	return ID(a.last.Load())
}

// Reset rewinds the counter so the next id is 1 again. Only tests should
// need this; ids handed out before the reset will be issued again.
func (a *Allocator) Reset() {
	a.last.Store(0)
}
