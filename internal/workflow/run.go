package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/specialistvlad/taskflow/internal/ctxlog"
	"github.com/specialistvlad/taskflow/internal/ident"
	"github.com/specialistvlad/taskflow/internal/task"
	"github.com/zclconf/go-cty/cty"
)

// Result is the report of one run.
type Result struct {
	RunID   string
	Outputs map[string]cty.Value
	// Invoked lists the members in invocation order.
	Invoked []ident.ID
	// Stalled lists the members that never ran, in discovery order.
	Stalled []ident.ID
}

// runState is the ephemeral bookkeeping of one Run call.
type runState struct {
	queued  map[ident.ID]bool
	queue   []task.Task
	waiting []task.Task
	parked  map[ident.ID]bool
}

func newRunState() *runState {
	return &runState{
		queued: make(map[ident.ID]bool),
		parked: make(map[ident.ID]bool),
	}
}

func (s *runState) enqueue(t task.Task) {
	s.queued[t.ID()] = true
	s.queue = append(s.queue, t)
}

func (s *runState) park(t task.Task) {
	if s.parked[t.ID()] {
		return
	}
	s.parked[t.ID()] = true
	s.waiting = append(s.waiting, t)
}

// promote moves every ready waiting task that is not queued yet into the
// queue, keeping insertion order for both collections.
func (s *runState) promote(ready func(task.Task) bool) {
	kept := s.waiting[:0]
	for _, t := range s.waiting {
		if s.queued[t.ID()] {
			delete(s.parked, t.ID())
			continue
		}
		if ready(t) {
			delete(s.parked, t.ID())
			s.enqueue(t)
			continue
		}
		kept = append(kept, t)
	}
	s.waiting = kept
}

// Execute implements task.Task.
func (w *Workflow) Execute(ctx context.Context) error {
	_, err := w.Run(ctx)
	return err
}

// Run executes the members in dependency order and returns the report of
// the run.
func (w *Workflow) Run(ctx context.Context) (*Result, error) {
	if w.dirty {
		return nil, fmt.Errorf("workflow %s: %w", w.Name(), ErrNotReset)
	}
	if err := w.seed(); err != nil {
		return nil, fmt.Errorf("workflow %s: %w", w.Name(), err)
	}
	w.dirty = true

	res := &Result{RunID: uuid.NewString()}
	ctx = ctxlog.With(ctx, "workflow", w.Name(), "run_id", res.RunID)
	logger := ctxlog.FromContext(ctx)
	logger.Info("▶️ Starting workflow run", "members", len(w.members))

	invoked := make(map[ident.ID]bool, len(w.members))
	s := newRunState()
	s.enqueue(w.start)

	for len(s.queue) > 0 || len(s.waiting) > 0 {
		s.promote(w.g.Ready)
		if len(s.queue) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("workflow %s: %w", w.Name(), err)
		}

		t := s.queue[0]
		s.queue = s.queue[1:]

		if err := w.g.Pull(t); err != nil {
			return nil, w.fail(t, err)
		}
		logger.Debug("Invoking task.", "task", t.Name(), "id", t.ID())
		if err := task.Invoke(ctx, t); err != nil {
			return nil, w.fail(t, err)
		}
		if w.Has(t.ID()) {
			invoked[t.ID()] = true
			res.Invoked = append(res.Invoked, t.ID())
		}

		for _, next := range w.successors(t) {
			if s.queued[next.ID()] {
				continue
			}
			if w.g.Ready(next) {
				s.enqueue(next)
			} else {
				s.park(next)
			}
		}
	}

	w.collect()
	res.Outputs = w.Outputs()
	for _, m := range w.members {
		if !invoked[m.ID()] {
			res.Stalled = append(res.Stalled, m.ID())
			logger.Debug("Task was not invoked.", "task", m.Name(), "id", m.ID())
		}
	}
	logger.Info("✅ Finished workflow run", "invoked", len(res.Invoked), "stalled", len(res.Stalled))
	return res, nil
}

func (w *Workflow) fail(t task.Task, err error) error {
	return &TaskError{TaskID: t.ID(), TaskName: t.Name(), Err: err}
}

// seed copies the workflow inputs onto the start sentinel's outputs.
func (w *Workflow) seed() error {
	for _, p := range w.Inputs() {
		v := p.Value()
		if !p.Constant() && !p.Ready() {
			if !p.Optional() {
				return fmt.Errorf("%w: %q", ErrUnboundInput, p.Name())
			}
			v = p.Default()
		}
		if v == cty.NilVal && p.Optional() {
			v = p.Default()
		}
		if err := w.start.SetOutput(p.Name(), v); err != nil {
			return err
		}
	}
	return nil
}

// successors returns the consumers of t. The start sentinel is also
// followed by every member that has no producer at all, so that source
// tasks with only constant inputs are scheduled too.
func (w *Workflow) successors(t task.Task) []task.Task {
	var out []task.Task
	seen := make(map[ident.ID]bool)
	add := func(id ident.ID) {
		if seen[id] {
			return
		}
		if next, ok := w.g.Task(id); ok {
			seen[id] = true
			out = append(out, next)
		}
	}
	for _, id := range w.g.NextTaskIDs(t) {
		add(id)
	}
	if t.ID() == w.start.ID() {
		for _, m := range w.members {
			if w.source(m) {
				add(m.ID())
			}
		}
	}
	return out
}

func (w *Workflow) source(t task.Task) bool {
	for _, id := range w.g.PrevTaskIDs(t) {
		if !id.IsNone() {
			return false
		}
	}
	return true
}

// collect copies every ready final input into the workflow outputs.
func (w *Workflow) collect() {
	_ = w.g.Pull(w.final)
	for _, in := range w.final.Ports().Inputs(task.Data) {
		if !in.Ready() {
			continue
		}
		out, ok := w.Ports().Output(in.Name())
		if !ok {
			continue
		}
		_ = out.Set(in.Value())
		out.SetReady()
	}
}
