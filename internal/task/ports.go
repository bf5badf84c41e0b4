package task

import (
	"fmt"
)

// Ports is the explicit name→Port mapping of a task. Inputs (data and
// control) share one namespace and outputs share another, so a task may
// have an input and an output with the same name.
type Ports struct {
	inputs   []*Port
	outputs  []*Port
	byInput  map[string]*Port
	byOutput map[string]*Port
}

func newPorts() Ports {
	return Ports{
		byInput:  make(map[string]*Port),
		byOutput: make(map[string]*Port),
	}
}

// declare adds a port, or returns the existing one if the name and kind
// already match. Redeclaring a name with another kind is an error.
func (ps *Ports) declare(name string, kind Kind, dir Direction, opts []PortOption) (*Port, error) {
	index, list := ps.byInput, &ps.inputs
	if dir == Output {
		index, list = ps.byOutput, &ps.outputs
	}
	if existing, ok := index[name]; ok {
		if existing.kind != kind {
			return nil, fmt.Errorf("port %q already declared as %s %s", name, existing.kind, existing.dir)
		}
		for _, opt := range opts {
			opt(existing)
		}
		return existing, nil
	}
	p := &Port{name: name, kind: kind, dir: dir}
	for _, opt := range opts {
		opt(p)
	}
	index[name] = p
	*list = append(*list, p)
	return p, nil
}

// Input looks up an input port by name.
func (ps *Ports) Input(name string) (*Port, bool) {
	p, ok := ps.byInput[name]
	return p, ok
}

// Output looks up an output port by name.
func (ps *Ports) Output(name string) (*Port, bool) {
	p, ok := ps.byOutput[name]
	return p, ok
}

// Lookup finds a port by direction and name.
func (ps *Ports) Lookup(dir Direction, name string) (*Port, bool) {
	if dir == Input {
		return ps.Input(name)
	}
	return ps.Output(name)
}

// Inputs returns the input ports of the given kind in declaration order.
func (ps *Ports) Inputs(kind Kind) []*Port {
	return filter(ps.inputs, kind)
}

// Outputs returns the output ports of the given kind in declaration order.
func (ps *Ports) Outputs(kind Kind) []*Port {
	return filter(ps.outputs, kind)
}

// All returns every port, inputs first, in declaration order.
func (ps *Ports) All() []*Port {
	all := make([]*Port, 0, len(ps.inputs)+len(ps.outputs))
	all = append(all, ps.inputs...)
	return append(all, ps.outputs...)
}

func filter(ports []*Port, kind Kind) []*Port {
	out := make([]*Port, 0, len(ports))
	for _, p := range ports {
		if p.kind == kind {
			out = append(out, p)
		}
	}
	return out
}
