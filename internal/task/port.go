package task

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Kind distinguishes data ports from control ports.
type Kind int

const (
	// Data ports carry a value.
	Data Kind = iota
	// Control ports carry only a readiness signal.
	Control
)

func (k Kind) String() string {
	switch k {
	case Data:
		return "data"
	case Control:
		return "control"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Direction says whether a port is consumed or produced by its task.
type Direction int

const (
	// Input ports are read by the owning task.
	Input Direction = iota
	// Output ports are written by the owning task.
	Output
)

func (d Direction) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// Port is a named attachment point on a task.
type Port struct {
	name        string
	kind        Kind
	dir         Direction
	description string

	value    cty.Value
	ready    bool
	constant bool

	optional bool
	def      cty.Value
}

// PortOption configures a port when it is declared.
type PortOption func(*Port)

// Constant binds a caller-supplied value to an input port. A constant input
// is always ready and never lifted into a workflow input.
func Constant(v cty.Value) PortOption {
	return func(p *Port) {
		p.value = v
		p.constant = true
	}
}

// Optional marks an input as optional with a default used when nothing is
// bound to it.
func Optional(def cty.Value) PortOption {
	return func(p *Port) {
		p.optional = true
		p.def = def
	}
}

// Describe attaches a description, used for CLI help text.
func Describe(text string) PortOption {
	return func(p *Port) {
		p.description = text
	}
}

// Name returns the port name.
func (p *Port) Name() string { return p.name }

// Kind returns the port kind.
func (p *Port) Kind() Kind { return p.kind }

// Direction returns the port direction.
func (p *Port) Direction() Direction { return p.dir }

// Description returns the help text of the port.
func (p *Port) Description() string { return p.description }

// Value returns the current value; cty.NilVal when unset or for control ports.
func (p *Port) Value() cty.Value { return p.value }

// Ready reports whether the port holds a consumable value or signal.
// Constant inputs are always ready.
func (p *Port) Ready() bool { return p.ready || p.constant }

// Constant reports whether the input is caller-supplied.
func (p *Port) Constant() bool { return p.constant }

// Optional reports whether the input may stay unbound.
func (p *Port) Optional() bool { return p.optional }

// Default returns the default of an optional input.
func (p *Port) Default() cty.Value { return p.def }

// SetReady marks the port ready.
func (p *Port) SetReady() { p.ready = true }

// Reset clears readiness. Constant values survive.
func (p *Port) Reset() { p.ready = false }

// Set stores a value. Control ports reject values.
func (p *Port) Set(v cty.Value) error {
	if p.kind == Control {
		return fmt.Errorf("port %q: control ports carry no value", p.name)
	}
	p.value = v
	return nil
}

// Bind stores v and marks the input constant.
func (p *Port) Bind(v cty.Value) error {
	if err := p.Set(v); err != nil {
		return err
	}
	p.constant = true
	return nil
}

// Unbind drops the constant flag, making the port depend on its producer.
func (p *Port) Unbind() {
	p.constant = false
}

func (p *Port) String() string {
	return fmt.Sprintf("%s %s %q", p.kind, p.dir, p.name)
}
