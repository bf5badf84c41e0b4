package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/specialistvlad/taskflow/internal/app"
	"github.com/specialistvlad/taskflow/internal/graph"
	"github.com/specialistvlad/taskflow/internal/registry"
	"github.com/specialistvlad/taskflow/internal/value"
	"github.com/specialistvlad/taskflow/internal/workflow"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes the environment variables that supply defaults for the
// global flags, e.g. TASKFLOW_LOG_LEVEL for --log-level.
const EnvPrefix = "TASKFLOW_"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// NewRootCommand builds the taskflow command with one subcommand per kind
// in reg. Results go to outW, logs and usage to errW.
func NewRootCommand(outW, errW io.Writer, reg *registry.Registry) (*cobra.Command, error) {
	var (
		flags  app.Flags
		config *app.Config
	)

	root := &cobra.Command{
		Use:           "taskflow",
		Short:         "Run task graphs from the command line.",
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loadEnv(cmd.Root().PersistentFlags())
			cfg, err := app.NewConfig(flags)
			if err != nil {
				return &ExitError{Code: 2, Message: err.Error()}
			}
			config = cfg
			return nil
		},
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&flags.LogLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&flags.LogFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVarP(&flags.Output, "output", "o", string(value.FormatText), "Result format. Options: 'text', 'json' or 'yaml'.")
	pf.StringVar(&flags.OptionsFile, "options-file", "", "HCL file of name = value input assignments.")

	for _, kind := range reg.Kinds() {
		cmd, err := newKindCommand(outW, errW, reg, kind, func() *app.Config { return config })
		if err != nil {
			return nil, err
		}
		root.AddCommand(cmd)
	}
	return root, nil
}

// newKindCommand builds an instance of kind in its own graph and exposes
// the inputs of its workflow as flags.
func newKindCommand(outW, errW io.Writer, reg *registry.Registry, kind registry.Kind, config func() *app.Config) (*cobra.Command, error) {
	g := graph.New()
	t, err := reg.New(kind, g)
	if err != nil {
		return nil, err
	}
	w, ok := t.(*workflow.Workflow)
	if !ok {
		if w, err = workflow.New(g, string(kind), t); err != nil {
			return nil, fmt.Errorf("failed to wrap %q in a workflow: %w", kind, err)
		}
	}

	cmd := &cobra.Command{
		Use:   string(kind),
		Short: reg.Description(kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			options, err := w.FlagOptions(cmd.Flags())
			if err != nil {
				return &ExitError{Code: 2, Message: err.Error()}
			}
			return app.NewApp(outW, errW, config()).Run(cmd.Context(), w, options)
		},
	}
	w.DeclareFlags(cmd.Flags())
	return cmd, nil
}

// loadEnv fills every flag not set on the command line from its
// TASKFLOW_<FLAG_NAME> environment variable.
func loadEnv(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		name := EnvPrefix + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if val, ok := os.LookupEnv(name); ok {
			_ = f.Value.Set(val)
		}
	})
}
