package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedEdge is the parent of every connector validation failure.
	ErrMalformedEdge = errors.New("malformed edge")
	// ErrUnknownTask reports an endpoint whose task is not in the arena.
	ErrUnknownTask = fmt.Errorf("%w: unknown task", ErrMalformedEdge)
	// ErrUnknownPort reports an endpoint naming a port the task lacks.
	ErrUnknownPort = fmt.Errorf("%w: unknown port", ErrMalformedEdge)
	// ErrKindMismatch reports a data port wired to a control port.
	ErrKindMismatch = fmt.Errorf("%w: port kind mismatch", ErrMalformedEdge)
	// ErrSelfEdge reports a task wired to itself.
	ErrSelfEdge = fmt.Errorf("%w: self-referential edge", ErrMalformedEdge)
	// ErrMultipleProducers reports a second producer for one data input.
	ErrMultipleProducers = fmt.Errorf("%w: data input already has a producer", ErrMalformedEdge)
	// ErrCycle reports a dependency loop between tasks.
	ErrCycle = errors.New("cycle detected")
)

// CycleError lists the task names forming a dependency loop.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCycle, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }
