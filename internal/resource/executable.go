package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"sync"

	"github.com/specialistvlad/taskflow/internal/ctxlog"
	"github.com/specialistvlad/taskflow/internal/ident"
)

// ErrNotFound is returned when an executable cannot be resolved to a path.
// It wraps fs.ErrNotExist so callers can treat it as an I/O error.
var ErrNotFound = fmt.Errorf("executable not found: %w", fs.ErrNotExist)

// Resolver maps program names to filesystem paths.
type Resolver interface {
	// Register announces a program name, optionally pinned to a path.
	Register(name, path string)
	// Resolve returns the path of a program, or an error wrapping ErrNotFound.
	Resolve(name string) (string, error)
}

// PathResolver resolves programs from explicit registrations first and the
// PATH environment variable otherwise.
type PathResolver struct {
	mu    sync.RWMutex
	paths map[string]string
}

// NewPathResolver creates an empty resolver.
func NewPathResolver() *PathResolver {
	return &PathResolver{paths: make(map[string]string)}
}

// Register implements Resolver. An empty path leaves the name to PATH lookup.
func (r *PathResolver) Register(name, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if path == "" {
		if _, ok := r.paths[name]; ok {
			return
		}
	}
	r.paths[name] = path
}

// Resolve implements Resolver.
func (r *PathResolver) Resolve(name string) (string, error) {
	r.mu.RLock()
	pinned := r.paths[name]
	r.mu.RUnlock()

	candidate := name
	if pinned != "" {
		candidate = pinned
	}
	path, err := exec.LookPath(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w (%v)", name, ErrNotFound, err)
	}
	return path, nil
}

// Command is a fully resolved process invocation.
type Command struct {
	Path   string
	Args   []string
	Stdout io.Writer
	Stderr io.Writer
}

// Spawner runs a command line to completion.
type Spawner interface {
	Spawn(ctx context.Context, cmd Command) error
}

// ProcessSpawner runs commands as child processes.
type ProcessSpawner struct{}

// Spawn implements Spawner.
func (ProcessSpawner) Spawn(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", c.Path, err)
	}
	return nil
}

// ExecutableResource is a resource standing for an external program.
type ExecutableResource struct {
	Resource
	program    string
	executable string
	resolver   Resolver
	spawner    Spawner
	output     io.Writer
	ropts      []Option
}

// ExecutableOption configures an ExecutableResource.
type ExecutableOption func(*ExecutableResource)

// WithResolver replaces the default PATH-based resolver.
func WithResolver(r Resolver) ExecutableOption {
	return func(e *ExecutableResource) { e.resolver = r }
}

// WithSpawner replaces the default process spawner.
func WithSpawner(s Spawner) ExecutableOption {
	return func(e *ExecutableResource) { e.spawner = s }
}

// WithExecutable pins the program to an explicit path.
func WithExecutable(path string) ExecutableOption {
	return func(e *ExecutableResource) { e.executable = path }
}

// WithResourceOptions applies generic resource options (id, name, description).
func WithResourceOptions(opts ...Option) ExecutableOption {
	return func(e *ExecutableResource) { e.ropts = append(e.ropts, opts...) }
}

// WithOutput sets where output goes when Run is given no logfile.
func WithOutput(w io.Writer) ExecutableOption {
	return func(e *ExecutableResource) { e.output = w }
}

// NewExecutable creates a resource for program name and registers the
// program with the resolver straight away.
func NewExecutable(ids *ident.Allocator, name string, opts ...ExecutableOption) *ExecutableResource {
	e := &ExecutableResource{
		program: name,
		output:  os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = NewPathResolver()
	}
	if e.spawner == nil {
		e.spawner = ProcessSpawner{}
	}
	Init(&e.Resource, ids, append([]Option{WithName(name)}, e.ropts...)...)
	e.ropts = nil
	e.resolver.Register(name, e.executable)
	return e
}

// Program returns the program name the resource was created for.
func (e *ExecutableResource) Program() string { return e.program }

// Path resolves the program path.
func (e *ExecutableResource) Path() (string, error) {
	return e.resolver.Resolve(e.program)
}

// Available reports whether the program currently resolves.
func (e *ExecutableResource) Available() bool {
	_, err := e.Path()
	return err == nil
}

// Run resolves the program and runs it with args. When logfile is non-nil
// both stdout and stderr are written to it.
func (e *ExecutableResource) Run(ctx context.Context, args []string, logfile *FileResource) (err error) {
	logger := ctxlog.FromContext(ctx).With("resource", e.name, "program", e.program)

	path, err := e.Path()
	if err != nil {
		return err
	}

	var out io.Writer = e.output
	if logfile != nil {
		fh, createErr := logfile.Create()
		if createErr != nil {
			return createErr
		}
		defer func() {
			err = errors.Join(err, fh.Close())
		}()
		out = fh
		logger = logger.With("logfile", logfile.Path())
	}

	e.Lock()
	defer e.Unlock()

	logger.Debug("Spawning executable.", "path", path, "args", args)
	return e.spawner.Spawn(ctx, Command{Path: path, Args: args, Stdout: out, Stderr: out})
}
