// Package print provides a task that writes values to an output stream.
package print

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/taskflow/internal/ctxlog"
	"github.com/specialistvlad/taskflow/internal/graph"
	"github.com/specialistvlad/taskflow/internal/registry"
	"github.com/specialistvlad/taskflow/internal/task"
	"github.com/specialistvlad/taskflow/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed lines. Defaults to os.Stdout.
	Out io.Writer
}

// Print writes its "value" input, optionally prefixed by "label", and
// passes the rendered line on as the "text" output.
type Print struct {
	*task.Base
	out io.Writer
}

// NewPrint creates a print task writing to out and adds it to g.
func NewPrint(g *graph.Graph, name string, out io.Writer) *Print {
	if out == nil {
		out = os.Stdout
	}
	p := &Print{Base: task.NewBase(g.IDs(), name), out: out}
	p.DeclareInput("value", task.Describe("Value to print."))
	p.DeclareInput("label", task.Optional(cty.StringVal("")), task.Describe("Text printed before the value."))
	p.DeclareOutput("text", task.Describe("The printed line."))
	g.Add(p)
	return p
}

// Execute implements task.Task.
func (p *Print) Execute(ctx context.Context) error {
	ctxlog.FromContext(ctx).Info("Printing input")

	line := "(null)"
	if v := p.Input("value"); v != cty.NilVal {
		line = value.Render(v)
	}
	if label := p.Input("label"); label != cty.NilVal && !label.IsNull() && label.Type() == cty.String && label.AsString() != "" {
		line = label.AsString() + ": " + line
	}
	if _, err := fmt.Fprintln(p.out, line); err != nil {
		return fmt.Errorf("%s: %w", p.Name(), err)
	}
	return p.SetOutput("text", cty.StringVal(line))
}

// Register registers the "echo" kind.
func (m *Module) Register(r *registry.Registry) {
	r.Register("echo", "Print a value.", func(g *graph.Graph) (task.Task, error) {
		return NewPrint(g, "echo", m.Out), nil
	})
}
