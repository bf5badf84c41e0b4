package builtin

import (
	"github.com/specialistvlad/taskflow/internal/graph"
	"github.com/specialistvlad/taskflow/internal/ident"
	"github.com/specialistvlad/taskflow/internal/resource"
	"github.com/specialistvlad/taskflow/internal/task"
)

// Empty is a task that computes nothing. Its ports are declared by whoever
// uses it; workflows use it for their start and final sentinels.
type Empty struct {
	*task.Base
}

// NewEmpty creates an empty task and adds it to g.
func NewEmpty(g *graph.Graph, name string) *Empty {
	e := &Empty{Base: task.NewBase(g.IDs(), name)}
	g.Add(e)
	return e
}

// NewSentinel creates an empty task flagged as a workflow sentinel.
func NewSentinel(g *graph.Graph, name string) *Empty {
	e := &Empty{Base: task.NewSentinel(g.IDs(), name)}
	g.Add(e)
	return e
}

// NoTask is the placeholder standing for "no producer". Its id is
// ident.None; it is never stored in a graph.
var NoTask task.Task = &Empty{Base: task.NewBase(ident.NewAllocator(), "NoTask", resource.WithID(ident.None))}
