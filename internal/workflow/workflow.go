package workflow

import (
	"fmt"

	"github.com/specialistvlad/taskflow/internal/builtin"
	"github.com/specialistvlad/taskflow/internal/graph"
	"github.com/specialistvlad/taskflow/internal/ident"
	"github.com/specialistvlad/taskflow/internal/resource"
	"github.com/specialistvlad/taskflow/internal/task"
	"github.com/zclconf/go-cty/cty"
)

// Workflow is a composite task over a connected set of member tasks.
type Workflow struct {
	*task.Base
	g       *graph.Graph
	members []task.Task
	index   map[ident.ID]int
	start   *builtin.Empty
	final   *builtin.Empty
	dirty   bool
}

// New creates a workflow over the component of g reachable from seed.
// The workflow itself is not added to g; add it to an enclosing graph that
// shares g's allocator to nest it.
func New(g *graph.Graph, name string, seed task.Task, opts ...resource.Option) (*Workflow, error) {
	w := &Workflow{
		Base:  task.NewBase(g.IDs(), name, opts...),
		g:     g,
		index: make(map[ident.ID]int),
	}
	w.start = builtin.NewSentinel(g, name+".start")
	w.final = builtin.NewSentinel(g, name+".final")
	if err := w.Add(seed); err != nil {
		return nil, err
	}
	return w, nil
}

// Graph returns the arena the members live in.
func (w *Workflow) Graph() *graph.Graph { return w.g }

// Members returns the member tasks in discovery order.
func (w *Workflow) Members() []task.Task {
	out := make([]task.Task, len(w.members))
	copy(out, w.members)
	return out
}

// Has reports whether id belongs to a member.
func (w *Workflow) Has(id ident.ID) bool {
	_, ok := w.index[id]
	return ok
}

// Inputs returns the workflow's data inputs in lifting order.
func (w *Workflow) Inputs() []*task.Port {
	return w.Ports().Inputs(task.Data)
}

// Outputs returns the values of the outputs produced by the last run.
func (w *Workflow) Outputs() map[string]cty.Value {
	out := make(map[string]cty.Value)
	for _, p := range w.Ports().Outputs(task.Data) {
		if p.Ready() && p.Value() != cty.NilVal {
			out[p.Name()] = p.Value()
		}
	}
	return out
}

// Add registers t and everything connected to it, then lifts unconnected
// inputs and routes unconsumed outputs. Adding a member again is a no-op.
// The workflow is left unchanged when Add fails.
func (w *Workflow) Add(t task.Task) error {
	stored, ok := w.g.Task(t.ID())
	if !ok {
		return fmt.Errorf("workflow %s: %w: %s (%s)", w.Name(), graph.ErrUnknownTask, t.Name(), t.ID())
	}
	found := w.discover(stored)
	if len(found) == 0 {
		return nil
	}
	if err := w.validate(found); err != nil {
		return fmt.Errorf("workflow %s: %w", w.Name(), err)
	}

	for _, m := range found {
		w.index[m.ID()] = len(w.members)
		w.members = append(w.members, m)
	}
	if err := w.lift(); err != nil {
		return fmt.Errorf("workflow %s: %w", w.Name(), err)
	}
	if err := w.route(); err != nil {
		return fmt.Errorf("workflow %s: %w", w.Name(), err)
	}
	return nil
}

func (w *Workflow) skip(t task.Task) bool {
	if t.ID().IsNone() || t.ID() == w.ID() {
		return true
	}
	return sentinel(t)
}

func sentinel(t task.Task) bool {
	s, ok := t.(interface{ Sentinel() bool })
	return ok && s.Sentinel()
}

// discover returns the tasks connected to t that are not members yet, in
// depth-first order.
func (w *Workflow) discover(t task.Task) []task.Task {
	var found []task.Task
	seen := make(map[ident.ID]bool)
	var walk func(task.Task)
	walk = func(t task.Task) {
		if w.skip(t) || w.Has(t.ID()) || seen[t.ID()] {
			return
		}
		seen[t.ID()] = true
		found = append(found, t)

		neighbours := append(w.g.PrevTaskIDs(t), w.g.NextTaskIDs(t)...)
		for _, id := range neighbours {
			if id.IsNone() {
				continue
			}
			if next, ok := w.g.Task(id); ok {
				walk(next)
			}
		}
	}
	walk(t)
	return found
}

// validate checks the candidate members before any of them is committed.
func (w *Workflow) validate(found []task.Task) error {
	ids := make([]ident.ID, 0, len(w.members)+len(found))
	for _, m := range w.members {
		ids = append(ids, m.ID())
	}
	for _, m := range found {
		ids = append(ids, m.ID())
	}
	if err := w.g.DetectCyclesAmong(ids); err != nil {
		return err
	}

	owners := make(map[string]string)
	for _, m := range found {
		for _, p := range m.Ports().Inputs(task.Data) {
			if err := w.foreign(m, p, w.g.Producers(graph.At(m, p.Name()))); err != nil {
				return err
			}
		}
		for _, p := range m.Ports().Outputs(task.Data) {
			consumers := w.g.Consumers(graph.At(m, p.Name()))
			if err := w.foreign(m, p, consumers); err != nil {
				return err
			}
			if len(consumers) > 0 {
				continue
			}
			owner, ok := owners[p.Name()]
			if !ok {
				owner, ok = w.outputOwner(p.Name())
			}
			if ok {
				return fmt.Errorf("%w: %q is produced by both %s and %s", ErrDuplicateOutput, p.Name(), owner, m.Name())
			}
			owners[p.Name()] = m.Name()
		}
	}
	return nil
}

// foreign rejects a port wired to a sentinel of another workflow.
func (w *Workflow) foreign(m task.Task, p *task.Port, peers []graph.Endpoint) error {
	for _, ep := range peers {
		if ep.Task == w.start.ID() || ep.Task == w.final.ID() {
			continue
		}
		if t, ok := w.g.Task(ep.Task); ok && sentinel(t) {
			return fmt.Errorf("%w: %s.%s is wired to %s", ErrForeignWorkflow, m.Name(), p.Name(), t.Name())
		}
	}
	return nil
}

// outputOwner returns the name of the member already routed to the workflow
// output called name.
func (w *Workflow) outputOwner(name string) (string, bool) {
	if _, ok := w.final.Ports().Input(name); !ok {
		return "", false
	}
	for _, ep := range w.g.Producers(graph.At(w.final, name)) {
		if t, ok := w.g.Task(ep.Task); ok {
			return t.Name(), true
		}
	}
	return "unknown", true
}

// lift turns every unconnected, non-constant data input into a workflow
// input fed by the start sentinel. Inputs sharing a name share the
// workflow input; the first one lifted decides whether it is optional.
func (w *Workflow) lift() error {
	for _, m := range w.members {
		for _, p := range m.Ports().Inputs(task.Data) {
			if p.Constant() || len(w.g.Producers(graph.At(m, p.Name()))) > 0 {
				continue
			}
			if _, ok := w.start.Ports().Output(p.Name()); !ok {
				opts := []task.PortOption{task.Describe(p.Description())}
				if p.Optional() {
					opts = append(opts, task.Optional(p.Default()))
				}
				w.DeclareInput(p.Name(), opts...)
				w.start.DeclareOutput(p.Name())
			}
			if err := w.g.Connect(graph.At(w.start, p.Name()), graph.At(m, p.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// route sends every unconsumed data output into the final sentinel and
// exposes it as a workflow output of the same name.
func (w *Workflow) route() error {
	for _, m := range w.members {
		for _, p := range m.Ports().Outputs(task.Data) {
			from := graph.At(m, p.Name())
			if len(w.g.Consumers(from)) > 0 {
				continue
			}
			if owner, ok := w.outputOwner(p.Name()); ok {
				return fmt.Errorf("%w: %q is produced by both %s and %s", ErrDuplicateOutput, p.Name(), owner, m.Name())
			}
			w.final.DeclareInput(p.Name())
			w.DeclareOutput(p.Name(), task.Describe(p.Description()))
			if err := w.g.Connect(from, graph.At(w.final, p.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// Reset clears the run state of the members, the sentinels and the
// workflow's own ports so that it can run again.
func (w *Workflow) Reset() {
	for _, m := range w.members {
		m.Reset()
	}
	w.start.Reset()
	w.final.Reset()
	w.Base.Reset()
	w.dirty = false
}
