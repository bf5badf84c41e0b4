package builtin

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/specialistvlad/taskflow/internal/graph"
	"github.com/specialistvlad/taskflow/internal/task"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ErrSelection is returned when an index does not address an element.
var ErrSelection = errors.New("selection failed")

// Selection outputs data[index]. Lists and tuples take a whole-number
// index; maps and objects take a string key.
type Selection struct {
	*task.Base
}

// NewSelection creates a selection task and adds it to g. Inputs left as
// cty.NilVal stay unbound and must be wired or lifted.
func NewSelection(g *graph.Graph, name string, index, data cty.Value) *Selection {
	s := &Selection{Base: task.NewBase(g.IDs(), name)}
	s.DeclareInput("index", bound(index, task.Describe("Position or key of the element to select."))...)
	s.DeclareInput("data", bound(data, task.Describe("Collection to select from."))...)
	s.DeclareOutput("selection")
	g.Add(s)
	return s
}

// bound adds a constant binding to opts unless v is cty.NilVal.
func bound(v cty.Value, opts ...task.PortOption) []task.PortOption {
	if v != cty.NilVal {
		opts = append(opts, task.Constant(v))
	}
	return opts
}

// Execute implements task.Task.
func (s *Selection) Execute(context.Context) error {
	v, err := Select(s.Input("data"), s.Input("index"))
	if err != nil {
		return fmt.Errorf("%s: %w", s.Name(), err)
	}
	return s.SetOutput("selection", v)
}

// Select returns the element of data addressed by index.
func Select(data, index cty.Value) (cty.Value, error) {
	if data == cty.NilVal || data.IsNull() {
		return cty.NilVal, fmt.Errorf("%w: data is null", ErrSelection)
	}
	if index == cty.NilVal || index.IsNull() {
		return cty.NilVal, fmt.Errorf("%w: index is null", ErrSelection)
	}
	if !data.IsWhollyKnown() || !index.IsKnown() {
		return cty.NilVal, fmt.Errorf("%w: unknown value", ErrSelection)
	}

	ty := data.Type()
	switch {
	case ty.IsListType() || ty.IsTupleType():
		num, err := convert.Convert(index, cty.Number)
		if err != nil {
			return cty.NilVal, fmt.Errorf("%w: index must be a number: %v", ErrSelection, err)
		}
		i, acc := num.AsBigFloat().Int64()
		if acc != big.Exact {
			return cty.NilVal, fmt.Errorf("%w: index %s is not a whole number", ErrSelection, num.AsBigFloat().Text('f', -1))
		}
		if i < 0 || i >= int64(data.LengthInt()) {
			return cty.NilVal, fmt.Errorf("%w: index %d out of range [0, %d)", ErrSelection, i, data.LengthInt())
		}
		return data.Index(cty.NumberIntVal(i)), nil

	case ty.IsMapType() || ty.IsObjectType():
		key, err := convert.Convert(index, cty.String)
		if err != nil {
			return cty.NilVal, fmt.Errorf("%w: key must be a string: %v", ErrSelection, err)
		}
		name := key.AsString()
		if ty.IsObjectType() {
			if !ty.HasAttribute(name) {
				return cty.NilVal, fmt.Errorf("%w: no attribute %q", ErrSelection, name)
			}
			return data.GetAttr(name), nil
		}
		if data.HasIndex(key).False() {
			return cty.NilVal, fmt.Errorf("%w: no key %q", ErrSelection, name)
		}
		return data.Index(key), nil
	}
	return cty.NilVal, fmt.Errorf("%w: cannot index %s", ErrSelection, ty.FriendlyName())
}
