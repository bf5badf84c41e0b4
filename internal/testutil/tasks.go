package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/specialistvlad/taskflow/internal/graph"
	"github.com/specialistvlad/taskflow/internal/task"
	"github.com/zclconf/go-cty/cty"
)

// ErrProbe is the error returned by a probe built with Fail.
var ErrProbe = errors.New("probe failed")

// Recorder keeps the order in which probes were executed.
type Recorder struct {
	mu    sync.Mutex
	names []string
}

func (r *Recorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
}

// Names returns the executed probe names in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Count returns how many times the named probe ran.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, got := range r.Names() {
		if got == name {
			n++
		}
	}
	return n
}

// Probe is a configurable task that records each execution. By default
// every data output receives the probe's first data input value, or the
// probe's name as a string when it has no inputs.
type Probe struct {
	*task.Base
	rec *Recorder
	// Fn replaces the default computation when set.
	Fn func(p *Probe) error
}

// ProbeOption configures a Probe.
type ProbeOption func(*Probe)

// Inputs declares data inputs.
func Inputs(names ...string) ProbeOption {
	return func(p *Probe) {
		for _, n := range names {
			p.DeclareInput(n)
		}
	}
}

// Outputs declares data outputs.
func Outputs(names ...string) ProbeOption {
	return func(p *Probe) {
		for _, n := range names {
			p.DeclareOutput(n)
		}
	}
}

// Bind declares a data input holding a constant.
func Bind(name string, v cty.Value) ProbeOption {
	return func(p *Probe) {
		p.DeclareInput(name, task.Constant(v))
	}
}

// Fail makes the probe return ErrProbe.
func Fail() ProbeOption {
	return func(p *Probe) {
		p.Fn = func(*Probe) error { return ErrProbe }
	}
}

// NewProbe creates a probe and adds it to g.
func NewProbe(g *graph.Graph, rec *Recorder, name string, opts ...ProbeOption) *Probe {
	p := &Probe{Base: task.NewBase(g.IDs(), name), rec: rec}
	for _, opt := range opts {
		opt(p)
	}
	g.Add(p)
	return p
}

// Execute implements task.Task.
func (p *Probe) Execute(context.Context) error {
	if p.rec != nil {
		p.rec.record(p.Name())
	}
	if p.Fn != nil {
		return p.Fn(p)
	}
	v := cty.StringVal(p.Name())
	if in := p.Ports().Inputs(task.Data); len(in) > 0 {
		v = p.Input(in[0].Name())
	}
	for _, out := range p.Ports().Outputs(task.Data) {
		if err := p.SetOutput(out.Name(), v); err != nil {
			return err
		}
	}
	return nil
}
