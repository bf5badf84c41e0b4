// Package exec provides a task that runs an external program.
package exec

import (
	"context"
	"errors"
	"fmt"
	"io"
	osexec "os/exec"

	"github.com/specialistvlad/taskflow/internal/ctxlog"
	"github.com/specialistvlad/taskflow/internal/graph"
	"github.com/specialistvlad/taskflow/internal/ident"
	"github.com/specialistvlad/taskflow/internal/registry"
	"github.com/specialistvlad/taskflow/internal/resource"
	"github.com/specialistvlad/taskflow/internal/task"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the program output when no logfile is given.
	Out io.Writer
	// Resolver and Spawner replace the defaults when set.
	Resolver resource.Resolver
	Spawner  resource.Spawner
}

// Exec runs "program" with "args" through an ExecutableResource and
// publishes the exit code. A non-zero exit is a result, not a failure;
// failing to start the program is.
type Exec struct {
	*task.Base
	ids  *ident.Allocator
	opts []resource.ExecutableOption
	last *resource.ExecutableResource
}

// NewExec creates an exec task and adds it to g. The options are applied to
// the executable resource created on each invocation.
func NewExec(g *graph.Graph, name string, opts ...resource.ExecutableOption) *Exec {
	e := &Exec{Base: task.NewBase(g.IDs(), name), ids: g.IDs(), opts: opts}
	e.DeclareInput("program", task.Describe("Program name or path."))
	e.DeclareInput("args",
		task.Optional(cty.ListValEmpty(cty.String)),
		task.Describe("Arguments passed to the program."))
	e.DeclareInput("logfile",
		task.Optional(cty.StringVal("")),
		task.Describe("File receiving stdout and stderr instead of the terminal."))
	e.DeclareOutput("exit_code", task.Describe("Exit status of the program."))
	g.Add(e)
	return e
}

// Executable returns the executable resource of the last invocation.
func (e *Exec) Executable() *resource.ExecutableResource { return e.last }

// Execute implements task.Task.
func (e *Exec) Execute(ctx context.Context) error {
	program, err := stringInput(e.Input("program"))
	if err != nil || program == "" {
		return fmt.Errorf("%s: program must be a non-empty string", e.Name())
	}
	args, err := stringList(e.Input("args"))
	if err != nil {
		return fmt.Errorf("%s: args: %w", e.Name(), err)
	}
	logpath, err := stringInput(e.Input("logfile"))
	if err != nil {
		return fmt.Errorf("%s: logfile: %w", e.Name(), err)
	}

	e.last = resource.NewExecutable(e.ids, program, e.opts...)
	var logfile *resource.FileResource
	if logpath != "" {
		logfile = resource.NewFile(e.ids, logpath)
	}

	code := 0
	if err := e.last.Run(ctx, args, logfile); err != nil {
		var exitErr *osexec.ExitError
		if !errors.As(err, &exitErr) {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
		code = exitErr.ExitCode()
		ctxlog.FromContext(ctx).Warn("Program exited with non-zero status.", "program", program, "exit_code", code)
	}
	return e.SetOutput("exit_code", cty.NumberIntVal(int64(code)))
}

func stringInput(v cty.Value) (string, error) {
	if v == cty.NilVal || v.IsNull() {
		return "", nil
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", err
	}
	return s.AsString(), nil
}

func stringList(v cty.Value) ([]string, error) {
	if v == cty.NilVal || v.IsNull() {
		return nil, nil
	}
	if v.Type().IsPrimitiveType() {
		s, err := stringInput(v)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
	list, err := convert.Convert(v, cty.List(cty.String))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, list.LengthInt())
	for it := list.ElementIterator(); it.Next(); {
		_, el := it.Element()
		if el.IsNull() {
			return nil, fmt.Errorf("null element")
		}
		out = append(out, el.AsString())
	}
	return out, nil
}

// Register registers the "exec" kind.
func (m *Module) Register(r *registry.Registry) {
	r.Register("exec", "Run an external program.", func(g *graph.Graph) (task.Task, error) {
		var opts []resource.ExecutableOption
		if m.Out != nil {
			opts = append(opts, resource.WithOutput(m.Out))
		}
		if m.Resolver != nil {
			opts = append(opts, resource.WithResolver(m.Resolver))
		}
		if m.Spawner != nil {
			opts = append(opts, resource.WithSpawner(m.Spawner))
		}
		return NewExec(g, "exec", opts...), nil
	})
}
