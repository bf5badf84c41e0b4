package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/specialistvlad/taskflow/internal/graph"
	"github.com/specialistvlad/taskflow/internal/task"
)

// ErrUnknownKind is returned when no factory is registered for a kind.
var ErrUnknownKind = errors.New("unknown task kind")

// Kind names a constructible task type, e.g. "add".
type Kind string

// Factory builds a fresh instance of a kind inside g. The returned task
// and everything it is wired to must live in g.
type Factory func(g *graph.Graph) (task.Task, error)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

type entry struct {
	description string
	factory     Factory
}

// Registry holds the factories of a single application instance.
type Registry struct {
	entries map[Kind]entry
}

// New creates an empty Registry and registers the given modules.
func New(modules ...Module) *Registry {
	r := &Registry{entries: make(map[Kind]entry)}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// Register adds a factory for kind. It panics if kind is already taken.
func (r *Registry) Register(kind Kind, description string, factory Factory) {
	if _, exists := r.entries[kind]; exists {
		panic(fmt.Sprintf("task kind '%s' already registered", kind))
	}
	if factory == nil {
		panic(fmt.Sprintf("task kind '%s' registered without a factory", kind))
	}
	slog.Debug("Registering task kind.", "kind", kind)
	r.entries[kind] = entry{description: description, factory: factory}
}

// New builds an instance of kind inside g.
func (r *Registry) New(kind Kind, g *graph.Graph) (task.Task, error) {
	e, ok := r.entries[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	t, err := e.factory(g)
	if err != nil {
		return nil, fmt.Errorf("failed to build %q: %w", kind, err)
	}
	return t, nil
}

// Kinds lists the registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.entries))
	for k := range r.entries {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Description returns the help text registered with kind.
func (r *Registry) Description(kind Kind) string {
	return r.entries[kind].description
}
