package math

import (
	"github.com/specialistvlad/taskflow/internal/builtin"
	"github.com/specialistvlad/taskflow/internal/graph"
	"github.com/specialistvlad/taskflow/internal/registry"
	"github.com/specialistvlad/taskflow/internal/resource"
	"github.com/specialistvlad/taskflow/internal/task"
	"github.com/specialistvlad/taskflow/internal/workflow"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the "add" and "calc" kinds.
func (m *Module) Register(r *registry.Registry) {
	r.Register("add", "Add two numbers.", func(g *graph.Graph) (task.Task, error) {
		return NewAdd(g, "add"), nil
	})
	r.Register("calc", "Multiply a and b when condition is true, add them otherwise.", NewCalc)
}

// NewCalc builds a workflow that branches on its condition input between
// multiplying and adding its a and b inputs.
func NewCalc(g *graph.Graph) (task.Task, error) {
	choose := builtin.NewIfThen(g, "choose", cty.NilVal)
	mul := NewMultiply(g, "multiply")
	add := NewAdd(g, "add")
	if err := choose.Then(mul); err != nil {
		return nil, err
	}
	if err := choose.Else(add); err != nil {
		return nil, err
	}
	return workflow.New(g, "calc", choose, resource.WithDescription("Multiply or add two numbers."))
}
