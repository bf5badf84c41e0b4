package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"

	"github.com/specialistvlad/taskflow/internal/ctxlog"
	"github.com/specialistvlad/taskflow/internal/task"
	"github.com/specialistvlad/taskflow/internal/value"
	"github.com/specialistvlad/taskflow/internal/workflow"
	"github.com/zclconf/go-cty/cty"
)

// App runs workflows with one configuration, logger and output stream.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp creates an App printing results to outW and logging to logW.
func NewApp(outW, logW io.Writer, config *Config) *App {
	logger := NewLogger(config, logW)
	logger.Debug("Logger configured successfully.")
	return &App{outW: outW, logger: logger, config: config}
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Options merges the option file, when configured, with the given options.
// The given options win over file values.
func (a *App) Options(ctx context.Context, options map[string]cty.Value) (map[string]cty.Value, error) {
	merged := make(map[string]cty.Value)
	if a.config.OptionsFile != "" {
		fromFile, err := value.LoadFile(ctx, a.config.OptionsFile)
		if err != nil {
			return nil, err
		}
		maps.Copy(merged, fromFile)
	}
	maps.Copy(merged, options)
	return merged, nil
}

// Run binds options onto w, invokes it and prints its outputs.
func (a *App) Run(ctx context.Context, w *workflow.Workflow, options map[string]cty.Value) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "workflow", w.Name())

	options, err := a.Options(ctx, options)
	if err != nil {
		return err
	}
	if err := task.SetOptions(w, options); err != nil {
		return fmt.Errorf("failed to bind options: %w", err)
	}

	a.logger.Info("🚀 Starting execution...", "workflow", w.Name(), "members", len(w.Members()))
	if err := task.Invoke(ctx, w); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Execution finished.", "workflow", w.Name())

	return value.Encode(a.outW, a.config.Output, w.Outputs())
}
