package builtin

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/taskflow/internal/graph"
	"github.com/specialistvlad/taskflow/internal/task"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ErrUnresolvedBranch is returned when a switch value matches no branch.
var ErrUnresolvedBranch = errors.New("unresolved branch")

// ErrInvalidBranch is returned by AddBranch for keys that cannot name a
// branch port.
var ErrInvalidBranch = errors.New("invalid branch")

type branch struct {
	key  cty.Value
	port string
}

// Switch activates exactly one of its control outputs per invocation, the
// one whose key equals the input value. Targets are gated by a control
// input of the same name, so unselected branches never become ready.
type Switch struct {
	*task.Base
	g        *graph.Graph
	input    string
	branches []branch
	selected string
}

// NewSwitch creates a switch over the data input "value" and adds it to g.
// A cty.NilVal value leaves the input unbound.
func NewSwitch(g *graph.Graph, name string, value cty.Value) *Switch {
	s := newSwitch(g, name, "value", value)
	g.Add(s)
	return s
}

func newSwitch(g *graph.Graph, name, input string, value cty.Value) *Switch {
	s := &Switch{Base: task.NewBase(g.IDs(), name), g: g, input: input}
	s.DeclareInput(input, bound(value, task.Describe("Value compared against the branch keys."))...)
	return s
}

// BranchPort returns the name of the control port carrying key's branch.
func BranchPort(key cty.Value) (string, error) {
	if key == cty.NilVal || key.IsNull() || !key.IsKnown() {
		return "", fmt.Errorf("%w: key must be a known, non-null value", ErrInvalidBranch)
	}
	switch key.Type() {
	case cty.String:
		return "case_" + key.AsString(), nil
	case cty.Bool:
		if key.True() {
			return "case_true", nil
		}
		return "case_false", nil
	case cty.Number:
		return "case_" + key.AsBigFloat().Text('f', -1), nil
	}
	return "", fmt.Errorf("%w: key of type %s", ErrInvalidBranch, key.Type().FriendlyName())
}

// AddBranch routes key to target. The switch gains the control output
// case_<key>, target gains the control input of the same name, and the two
// are connected. Several targets may share a key.
func (s *Switch) AddBranch(key cty.Value, target task.Task) error {
	name, err := BranchPort(key)
	if err != nil {
		return err
	}
	if _, ok := s.Ports().Output(name); !ok {
		s.DeclareControlOutput(name)
		s.branches = append(s.branches, branch{key: key, port: name})
	}

	if p, ok := target.Ports().Input(name); ok {
		if p.Kind() != task.Control {
			return fmt.Errorf("%w: %s already has data input %q", ErrInvalidBranch, target.Name(), name)
		}
	} else {
		declarer, ok := target.(interface {
			Declare(string, task.Kind, task.Direction, ...task.PortOption) (*task.Port, error)
		})
		if !ok {
			return fmt.Errorf("%w: cannot declare control input %q on %s", ErrInvalidBranch, name, target.Name())
		}
		if _, err := declarer.Declare(name, task.Control, task.Input); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBranch, err)
		}
	}
	return s.g.Connect(graph.At(s, name), graph.At(target, name))
}

// Execute implements task.Task.
func (s *Switch) Execute(context.Context) error {
	s.selected = ""
	v := s.Input(s.input)
	if v == cty.NilVal || v.IsNull() {
		return fmt.Errorf("%s: %w: %s is null", s.Name(), ErrUnresolvedBranch, s.input)
	}
	for _, b := range s.branches {
		converted, err := convert.Convert(v, b.key.Type())
		if err != nil {
			continue
		}
		eq := converted.Equals(b.key)
		if eq.IsKnown() && eq.True() {
			s.selected = b.port
			return nil
		}
	}
	return fmt.Errorf("%s: %w: no branch for %s", s.Name(), ErrUnresolvedBranch, v.GoString())
}

// SelectedBranch implements task.Brancher.
func (s *Switch) SelectedBranch() (string, bool) {
	return s.selected, s.selected != ""
}

// Reset implements task.Task.
func (s *Switch) Reset() {
	s.Base.Reset()
	s.selected = ""
}

// IfThen is a switch over a boolean condition.
type IfThen struct {
	*Switch
}

// NewIfThen creates a two-way branch over the data input "condition".
func NewIfThen(g *graph.Graph, name string, condition cty.Value) *IfThen {
	it := &IfThen{Switch: newSwitch(g, name, "condition", condition)}
	g.Add(it)
	return it
}

// AddBranch routes a boolean key to target. Keys of any other type are
// rejected with ErrInvalidBranch.
func (it *IfThen) AddBranch(key cty.Value, target task.Task) error {
	if key == cty.NilVal || !key.Type().Equals(cty.Bool) {
		return fmt.Errorf("%w: %s accepts only boolean keys", ErrInvalidBranch, it.Name())
	}
	return it.Switch.AddBranch(key, target)
}

// Then gates target on a true condition.
func (it *IfThen) Then(target task.Task) error {
	return it.AddBranch(cty.True, target)
}

// Else gates target on a false condition.
func (it *IfThen) Else(target task.Task) error {
	return it.AddBranch(cty.False, target)
}
