// Package math provides arithmetic tasks and the "add" and "calc" kinds.
package math

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/taskflow/internal/graph"
	"github.com/specialistvlad/taskflow/internal/task"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ErrNotNumber is returned when an operand does not convert to a number.
var ErrNotNumber = errors.New("operand is not a number")

// Const publishes a fixed value on its "value" output.
type Const struct {
	*task.Base
}

// NewConst creates a constant task and adds it to g.
func NewConst(g *graph.Graph, name string, v cty.Value) *Const {
	c := &Const{Base: task.NewBase(g.IDs(), name)}
	c.DeclareInput("value", task.Constant(v))
	c.DeclareOutput("value")
	g.Add(c)
	return c
}

// Execute implements task.Task.
func (c *Const) Execute(context.Context) error {
	return c.SetOutput("value", c.Input("value"))
}

// Operation is a task with two numeric operands a and b and one result.
type Operation struct {
	*task.Base
	result string
	op     func(a, b cty.Value) cty.Value
}

func newOperation(g *graph.Graph, name, result, description string, op func(a, b cty.Value) cty.Value) *Operation {
	t := &Operation{Base: task.NewBase(g.IDs(), name), result: result, op: op}
	t.DeclareInput("a", task.Describe("First operand."))
	t.DeclareInput("b", task.Describe("Second operand."))
	t.DeclareOutput(result, task.Describe(description))
	g.Add(t)
	return t
}

// NewAdd creates a task computing sum = a + b and adds it to g.
func NewAdd(g *graph.Graph, name string) *Operation {
	return newOperation(g, name, "sum", "a + b", cty.Value.Add)
}

// NewMultiply creates a task computing product = a * b and adds it to g.
func NewMultiply(g *graph.Graph, name string) *Operation {
	return newOperation(g, name, "product", "a * b", cty.Value.Multiply)
}

// Result names the output port of the operation.
func (t *Operation) Result() string { return t.result }

// Execute implements task.Task.
func (t *Operation) Execute(context.Context) error {
	a, err := number(t.Input("a"))
	if err != nil {
		return fmt.Errorf("%s: input a: %w", t.Name(), err)
	}
	b, err := number(t.Input("b"))
	if err != nil {
		return fmt.Errorf("%s: input b: %w", t.Name(), err)
	}
	return t.SetOutput(t.result, t.op(a, b))
}

func number(v cty.Value) (cty.Value, error) {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return cty.NilVal, fmt.Errorf("%w: value is not set", ErrNotNumber)
	}
	n, err := convert.Convert(v, cty.Number)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%w: %v", ErrNotNumber, err)
	}
	return n, nil
}
