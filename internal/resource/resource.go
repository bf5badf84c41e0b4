package resource

import (
	"fmt"

	"github.com/specialistvlad/taskflow/internal/ident"
)

// Resource is a named, identifiable object that can be flagged busy.
type Resource struct {
	id          ident.ID
	name        string
	description string
	busy        bool
	pinned      bool
}

// Option configures a Resource at construction time.
type Option func(*Resource)

// WithID pins the resource id instead of allocating one.
func WithID(id ident.ID) Option {
	return func(r *Resource) {
		r.id = id
		r.pinned = true
	}
}

// WithName sets the display name.
func WithName(name string) Option {
	return func(r *Resource) {
		r.name = name
	}
}

// WithDescription sets a free-form description.
func WithDescription(description string) Option {
	return func(r *Resource) {
		r.description = description
	}
}

// New creates a resource. An id is drawn from ids unless WithID supplied
// one; the name defaults to "Resource<id>".
func New(ids *ident.Allocator, opts ...Option) *Resource {
	r := &Resource{}
	Init(r, ids, opts...)
	return r
}

// Init initializes a Resource embedded by value in another type.
func Init(r *Resource, ids *ident.Allocator, opts ...Option) {
	for _, opt := range opts {
		opt(r)
	}
	if !r.pinned {
		r.id = ids.Next()
	}
	if r.name == "" {
		r.name = fmt.Sprintf("Resource%d", uint64(r.id))
	}
}

// ID returns the resource identity.
func (r *Resource) ID() ident.ID { return r.id }

// Name returns the display name.
func (r *Resource) Name() string { return r.name }

// Description returns the free-form description.
func (r *Resource) Description() string { return r.description }

// Lock marks the resource busy.
func (r *Resource) Lock() { r.busy = true }

// Unlock clears the busy flag.
func (r *Resource) Unlock() { r.busy = false }

// Busy reports whether the resource is locked.
func (r *Resource) Busy() bool { return r.busy }

// Available reports whether the resource is not busy.
func (r *Resource) Available() bool { return !r.busy }

// String implements fmt.Stringer.
func (r *Resource) String() string {
	return fmt.Sprintf("%s(%s)", r.name, r.id)
}
