package workflow

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/taskflow/internal/graph"
	"github.com/specialistvlad/taskflow/internal/ident"
)

var (
	// ErrDuplicateOutput reports two members exposing the same unconsumed
	// output name.
	ErrDuplicateOutput = errors.New("duplicate workflow output")
	// ErrForeignWorkflow reports a member already wired to the start or
	// final sentinel of another workflow.
	ErrForeignWorkflow = errors.New("task belongs to another workflow")
	// ErrCycle reports a dependency loop among the members.
	ErrCycle = graph.ErrCycle
	// ErrUnboundInput reports a workflow input with no value and no default.
	ErrUnboundInput = errors.New("unbound workflow input")
	// ErrNotReset reports a second run without an intervening Reset.
	ErrNotReset = errors.New("workflow must be reset before it runs again")
)

// TaskError wraps the error returned by a member task.
type TaskError struct {
	TaskID   ident.ID
	TaskName string
	Err      error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %q (%s) failed: %v", e.TaskName, e.TaskID, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }
