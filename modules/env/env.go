// Package env exposes the process environment to a task graph.
package env

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/specialistvlad/taskflow/internal/builtin"
	"github.com/specialistvlad/taskflow/internal/ctxlog"
	"github.com/specialistvlad/taskflow/internal/graph"
	"github.com/specialistvlad/taskflow/internal/registry"
	"github.com/specialistvlad/taskflow/internal/task"
	"github.com/specialistvlad/taskflow/internal/value"
	"github.com/specialistvlad/taskflow/internal/workflow"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Environ replaces os.Environ when set.
	Environ func() []string
}

// Output defines the data structure published by the task.
type Output struct {
	All map[string]string `cty:"all"`
}

// Env publishes the environment variables as the map output "all".
// The optional "prefix" input keeps only the variables starting with it.
type Env struct {
	*task.Base
	environ func() []string
}

// NewEnv creates an environment task and adds it to g. A nil environ reads
// the process environment.
func NewEnv(g *graph.Graph, name string, environ func() []string) *Env {
	if environ == nil {
		environ = os.Environ
	}
	e := &Env{Base: task.NewBase(g.IDs(), name), environ: environ}
	e.DeclareInput("prefix",
		task.Optional(cty.StringVal("")),
		task.Describe("Only keep variables whose name starts with this prefix."))
	e.DeclareOutput("all", task.Describe("Environment variables by name."))
	g.Add(e)
	return e
}

// Execute implements task.Task.
func (e *Env) Execute(ctx context.Context) error {
	prefix := ""
	if p := e.Input("prefix"); p != cty.NilVal && !p.IsNull() {
		if p.Type() != cty.String {
			return fmt.Errorf("%s: prefix must be a string, got %s", e.Name(), p.Type().FriendlyName())
		}
		prefix = p.AsString()
	}

	out := Output{All: make(map[string]string)}
	for _, kv := range e.environ() {
		pair := strings.SplitN(kv, "=", 2)
		if len(pair) == 2 && strings.HasPrefix(pair[0], prefix) {
			out.All[pair[0]] = pair[1]
		}
	}
	ctxlog.FromContext(ctx).Debug("Collected environment variables.", "count", len(out.All), "prefix", prefix)

	converted, err := value.FromGo(out)
	if err != nil {
		return fmt.Errorf("%s: %w", e.Name(), err)
	}
	return e.SetOutput("all", converted.GetAttr("all"))
}

// Register registers the "getenv" kind: the environment piped into a
// selection, so that --index NAME prints one variable.
func (m *Module) Register(r *registry.Registry) {
	r.Register("getenv", "Print one environment variable.", func(g *graph.Graph) (task.Task, error) {
		env := NewEnv(g, "env", m.Environ)
		pick := builtin.NewSelection(g, "pick", cty.NilVal, cty.NilVal)
		if err := g.Connect(graph.At(env, "all"), graph.At(pick, "data")); err != nil {
			return nil, err
		}
		return workflow.New(g, "getenv", pick)
	})
}
