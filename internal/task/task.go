package task

import (
	"context"
	"fmt"

	"github.com/specialistvlad/taskflow/internal/ident"
	"github.com/specialistvlad/taskflow/internal/resource"
	"github.com/zclconf/go-cty/cty"
)

// Task is an atomic unit of computation with declared ports.
type Task interface {
	ID() ident.ID
	Name() string
	// Ports exposes the task's name→Port mapping.
	Ports() *Ports
	// Execute reads bound inputs and writes outputs. It is called by Invoke.
	Execute(ctx context.Context) error
	// Reset clears readiness of the task's own ports for re-invocation.
	Reset()
}

// Brancher is implemented by tasks that activate only one of their control
// outputs per invocation.
type Brancher interface {
	// SelectedBranch names the control output chosen by the last Execute.
	SelectedBranch() (string, bool)
}

// Base carries identity and ports; concrete tasks embed *Base.
type Base struct {
	resource.Resource
	ports    Ports
	sentinel bool
}

// NewBase creates a task base with an id from ids.
func NewBase(ids *ident.Allocator, name string, opts ...resource.Option) *Base {
	b := &Base{ports: newPorts()}
	if name != "" {
		opts = append([]resource.Option{resource.WithName(name)}, opts...)
	}
	resource.Init(&b.Resource, ids, opts...)
	return b
}

// NewSentinel creates a base flagged as a workflow start/final sentinel.
func NewSentinel(ids *ident.Allocator, name string) *Base {
	b := NewBase(ids, name)
	b.sentinel = true
	return b
}

// Sentinel reports whether the task is a workflow start/final sentinel.
func (b *Base) Sentinel() bool { return b.sentinel }

// Ports implements Task.
func (b *Base) Ports() *Ports { return &b.ports }

// DeclareInput declares a data input.
func (b *Base) DeclareInput(name string, opts ...PortOption) *Port {
	return b.mustDeclare(name, Data, Input, opts)
}

// DeclareOutput declares a data output.
func (b *Base) DeclareOutput(name string, opts ...PortOption) *Port {
	return b.mustDeclare(name, Data, Output, opts)
}

// DeclareControlInput declares a control input.
func (b *Base) DeclareControlInput(name string, opts ...PortOption) *Port {
	return b.mustDeclare(name, Control, Input, opts)
}

// DeclareControlOutput declares a control output.
func (b *Base) DeclareControlOutput(name string, opts ...PortOption) *Port {
	return b.mustDeclare(name, Control, Output, opts)
}

// Declare adds a port and reports a kind conflict instead of panicking.
func (b *Base) Declare(name string, kind Kind, dir Direction, opts ...PortOption) (*Port, error) {
	return b.ports.declare(name, kind, dir, opts)
}

func (b *Base) mustDeclare(name string, kind Kind, dir Direction, opts []PortOption) *Port {
	p, err := b.ports.declare(name, kind, dir, opts)
	if err != nil {
		panic(fmt.Sprintf("task %s: %v", b.Name(), err))
	}
	return p
}

// Input returns the value bound to a data input, falling back to the
// default of an optional input. Unknown names yield cty.NilVal.
func (b *Base) Input(name string) cty.Value {
	p, ok := b.ports.Input(name)
	if !ok {
		return cty.NilVal
	}
	if p.value == cty.NilVal && p.optional {
		return p.def
	}
	return p.value
}

// SetInput binds a constant value to a declared data input.
func (b *Base) SetInput(name string, v cty.Value) error {
	p, ok := b.ports.Input(name)
	if !ok {
		return fmt.Errorf("task %s has no input %q", b.Name(), name)
	}
	return p.Bind(v)
}

// Output returns the value of a data output.
func (b *Base) Output(name string) cty.Value {
	p, ok := b.ports.Output(name)
	if !ok {
		return cty.NilVal
	}
	return p.value
}

// SetOutput writes a value to a declared data output.
func (b *Base) SetOutput(name string, v cty.Value) error {
	p, ok := b.ports.Output(name)
	if !ok {
		return fmt.Errorf("task %s has no output %q", b.Name(), name)
	}
	return p.Set(v)
}

// Reset implements Task.
func (b *Base) Reset() {
	for _, p := range b.ports.All() {
		p.Reset()
	}
}

// Execute is a no-op so that sentinel and marker tasks can use Base as is.
func (b *Base) Execute(context.Context) error { return nil }

// Invoke runs t the way the scheduler does: Execute under the advisory
// lock, then publish readiness on the outputs.
func Invoke(ctx context.Context, t Task) error {
	if locker, ok := t.(interface {
		Lock()
		Unlock()
	}); ok {
		locker.Lock()
		defer locker.Unlock()
	}

	if err := t.Execute(ctx); err != nil {
		return err
	}

	ports := t.Ports()
	for _, p := range ports.Outputs(Data) {
		p.SetReady()
	}

	controls := ports.Outputs(Control)
	if br, ok := t.(Brancher); ok {
		selected, _ := br.SelectedBranch()
		for _, p := range controls {
			if p.Name() == selected {
				p.SetReady()
			} else {
				p.Reset()
			}
		}
		return nil
	}
	for _, p := range controls {
		p.SetReady()
	}
	return nil
}

// SetOptions binds an option bag onto the data inputs of t by name.
// Names without a matching input are skipped silently.
func SetOptions(t Task, options map[string]cty.Value) error {
	if setter, ok := t.(interface {
		SetOptions(map[string]cty.Value) error
	}); ok {
		return setter.SetOptions(options)
	}
	return BindOptions(t.Ports(), options)
}

// BindOptions binds matching option values onto the data inputs in ports.
func BindOptions(ports *Ports, options map[string]cty.Value) error {
	for _, p := range ports.Inputs(Data) {
		v, ok := options[p.Name()]
		if !ok {
			continue
		}
		if err := p.Bind(v); err != nil {
			return err
		}
	}
	return nil
}
