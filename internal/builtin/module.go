package builtin

import (
	"github.com/specialistvlad/taskflow/internal/graph"
	"github.com/specialistvlad/taskflow/internal/registry"
	"github.com/specialistvlad/taskflow/internal/task"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the "select" kind.
func (m *Module) Register(r *registry.Registry) {
	r.Register("select", "Select one element of a list, tuple, map or object.", func(g *graph.Graph) (task.Task, error) {
		return NewSelection(g, "select", cty.NilVal, cty.NilVal), nil
	})
}
