package graph

import (
	"fmt"

	"github.com/specialistvlad/taskflow/internal/ident"
	"github.com/specialistvlad/taskflow/internal/task"
)

// Endpoint addresses one port of one task in the arena.
type Endpoint struct {
	Task ident.ID
	Port string
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s.%s", e.Task, e.Port)
}

// At is shorthand for building an endpoint from a task.
func At(t task.Task, port string) Endpoint {
	return Endpoint{Task: t.ID(), Port: port}
}

// Edge is a directed connector from an output port to an input port.
type Edge struct {
	From Endpoint
	To   Endpoint
	Kind task.Kind
}

// Graph is the arena owning tasks and connectors.
type Graph struct {
	ids   *ident.Allocator
	tasks []task.Task
	index map[ident.ID]int

	edges []Edge
	out   map[Endpoint][]int
	in    map[Endpoint][]int
}

// New creates an empty arena with its own allocator.
func New() *Graph {
	return NewWithAllocator(ident.NewAllocator())
}

// NewWithAllocator creates an empty arena drawing ids from ids.
func NewWithAllocator(ids *ident.Allocator) *Graph {
	return &Graph{
		ids:   ids,
		index: make(map[ident.ID]int),
		out:   make(map[Endpoint][]int),
		in:    make(map[Endpoint][]int),
	}
}

// Subgraph creates an empty arena sharing this graph's allocator, so that
// tasks of both arenas (including a workflow built on the subgraph) have
// distinct ids.
func (g *Graph) Subgraph() *Graph {
	return NewWithAllocator(g.ids)
}

// IDs returns the allocator task constructors draw from.
func (g *Graph) IDs() *ident.Allocator {
	return g.ids
}

// Add registers t in the arena. Adding the same task twice does nothing;
// adding a different task under an existing id, or the NoTask id, panics.
func (g *Graph) Add(t task.Task) {
	id := t.ID()
	if id.IsNone() {
		panic(fmt.Sprintf("graph: task %q has no id", t.Name()))
	}
	if i, ok := g.index[id]; ok {
		if g.tasks[i] != t {
			panic(fmt.Sprintf("graph: id %s already used by task %q", id, g.tasks[i].Name()))
		}
		return
	}
	g.index[id] = len(g.tasks)
	g.tasks = append(g.tasks, t)
}

// Task looks up a task by id.
func (g *Graph) Task(id ident.ID) (task.Task, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.tasks[i], true
}

// Tasks returns all tasks in insertion order.
func (g *Graph) Tasks() []task.Task {
	out := make([]task.Task, len(g.tasks))
	copy(out, g.tasks)
	return out
}

// Len returns the number of tasks in the arena.
func (g *Graph) Len() int {
	return len(g.tasks)
}

// Edges returns all connectors in declaration order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

func (g *Graph) port(ep Endpoint, dir task.Direction) (*task.Port, error) {
	t, ok := g.Task(ep.Task)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, ep.Task)
	}
	p, ok := t.Ports().Lookup(dir, ep.Port)
	if !ok {
		return nil, fmt.Errorf("%w: task %q has no %s %q", ErrUnknownPort, t.Name(), dir, ep.Port)
	}
	return p, nil
}

// Connect wires the output port at from to the input port at to.
func (g *Graph) Connect(from, to Endpoint) error {
	if from.Task == to.Task {
		return fmt.Errorf("%w: %s -> %s", ErrSelfEdge, from, to)
	}
	src, err := g.port(from, task.Output)
	if err != nil {
		return fmt.Errorf("source %s: %w", from, err)
	}
	dst, err := g.port(to, task.Input)
	if err != nil {
		return fmt.Errorf("destination %s: %w", to, err)
	}
	if src.Kind() != dst.Kind() {
		return fmt.Errorf("%w: %s is %s, %s is %s", ErrKindMismatch, from, src.Kind(), to, dst.Kind())
	}

	for _, i := range g.in[to] {
		if g.edges[i].From == from {
			return nil
		}
	}
	if dst.Kind() == task.Data && len(g.in[to]) > 0 {
		existing := g.edges[g.in[to][0]].From
		return fmt.Errorf("%w: %s is fed by %s, cannot add %s", ErrMultipleProducers, to, existing, from)
	}

	g.edges = append(g.edges, Edge{From: from, To: to, Kind: src.Kind()})
	i := len(g.edges) - 1
	g.out[from] = append(g.out[from], i)
	g.in[to] = append(g.in[to], i)
	dst.Unbind()
	return nil
}

// Producers returns the output endpoints feeding the input at ep.
func (g *Graph) Producers(ep Endpoint) []Endpoint {
	idx := g.in[ep]
	out := make([]Endpoint, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.edges[i].From)
	}
	return out
}

// Consumers returns the input endpoints fed by the output at ep.
func (g *Graph) Consumers(ep Endpoint) []Endpoint {
	idx := g.out[ep]
	out := make([]Endpoint, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.edges[i].To)
	}
	return out
}

// PrevTaskIDs returns the ids of the tasks producing t's inputs, in port
// order and without duplicates. An unconnected, non-constant data input
// contributes ident.None, the NoTask id.
func (g *Graph) PrevTaskIDs(t task.Task) []ident.ID {
	var ids []ident.ID
	seen := make(map[ident.ID]struct{})
	for _, p := range t.Ports().All() {
		if p.Direction() != task.Input {
			continue
		}
		producers := g.Producers(Endpoint{Task: t.ID(), Port: p.Name()})
		if len(producers) == 0 && p.Kind() == task.Data && !p.Constant() {
			producers = []Endpoint{{Task: ident.None}}
		}
		for _, ep := range producers {
			if _, dup := seen[ep.Task]; dup {
				continue
			}
			seen[ep.Task] = struct{}{}
			ids = append(ids, ep.Task)
		}
	}
	return ids
}

// NextTaskIDs returns the ids of the tasks consuming t's outputs, data and
// control, in port and edge order and without duplicates.
func (g *Graph) NextTaskIDs(t task.Task) []ident.ID {
	var ids []ident.ID
	seen := make(map[ident.ID]struct{})
	for _, p := range t.Ports().All() {
		if p.Direction() != task.Output {
			continue
		}
		for _, ep := range g.Consumers(Endpoint{Task: t.ID(), Port: p.Name()}) {
			if _, dup := seen[ep.Task]; dup {
				continue
			}
			seen[ep.Task] = struct{}{}
			ids = append(ids, ep.Task)
		}
	}
	return ids
}
