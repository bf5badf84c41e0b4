package math

import (
	"context"
	"testing"

	"github.com/specialistvlad/taskflow/internal/graph"
	"github.com/specialistvlad/taskflow/internal/registry"
	"github.com/specialistvlad/taskflow/internal/task"
	"github.com/specialistvlad/taskflow/internal/testutil"
	"github.com/specialistvlad/taskflow/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestOperations(t *testing.T) {
	cases := []struct {
		name string
		new  func(g *graph.Graph, name string) *Operation
		a, b cty.Value
		want cty.Value
	}{
		{"Add", NewAdd, cty.NumberIntVal(5), cty.NumberIntVal(3), cty.NumberIntVal(8)},
		{"AddStrings", NewAdd, cty.StringVal("1.5"), cty.StringVal("2"), cty.NumberFloatVal(3.5)},
		{"Multiply", NewMultiply, cty.NumberIntVal(6), cty.NumberIntVal(7), cty.NumberIntVal(42)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := graph.New()
			op := tc.new(g, "op")
			require.NoError(t, op.SetInput("a", tc.a))
			require.NoError(t, op.SetInput("b", tc.b))
			require.NoError(t, task.Invoke(context.Background(), op))
			got := op.Output(op.Result())
			assert.True(t, got.Equals(tc.want).True(), "got %s", got.GoString())
		})
	}

	t.Run("NotANumber", func(t *testing.T) {
		g := graph.New()
		op := NewAdd(g, "op")
		require.NoError(t, op.SetInput("a", cty.StringVal("five")))
		require.NoError(t, op.SetInput("b", cty.NumberIntVal(1)))
		assert.ErrorIs(t, task.Invoke(context.Background(), op), ErrNotNumber)
	})

	t.Run("Unset", func(t *testing.T) {
		g := graph.New()
		op := NewMultiply(g, "op")
		assert.ErrorIs(t, op.Execute(context.Background()), ErrNotNumber)
	})
}

func TestAdd_ConstantsIntoWorkflow(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := graph.New()
	x := NewConst(g, "X", cty.NumberIntVal(5))
	y := NewConst(g, "Y", cty.NumberIntVal(3))
	add := NewAdd(g, "Add")
	require.NoError(t, g.Connect(graph.At(x, "value"), graph.At(add, "a")))
	require.NoError(t, g.Connect(graph.At(y, "value"), graph.At(add, "b")))

	w, err := workflow.New(g, "sum", add)
	require.NoError(t, err)
	require.NoError(t, task.Invoke(ctx, w))

	out := w.Outputs()
	require.Len(t, out, 1)
	assert.True(t, out["sum"].Equals(cty.NumberIntVal(8)).True())
}

func TestCalc(t *testing.T) {
	for _, tc := range []struct {
		condition cty.Value
		output    string
		want      int64
	}{
		{cty.True, "product", 12},
		{cty.False, "sum", 7},
	} {
		t.Run(tc.output, func(t *testing.T) {
			ctx, _ := testutil.Context(t)
			r := registry.New(&Module{})
			built, err := r.New("calc", graph.New())
			require.NoError(t, err)
			w := built.(*workflow.Workflow)

			var inputs []string
			for _, p := range w.Inputs() {
				inputs = append(inputs, p.Name())
			}
			assert.ElementsMatch(t, []string{"condition", "a", "b"}, inputs)

			require.NoError(t, task.SetOptions(w, map[string]cty.Value{
				"condition": tc.condition,
				"a":         cty.NumberIntVal(3),
				"b":         cty.NumberIntVal(4),
			}))
			res, err := w.Run(ctx)
			require.NoError(t, err)
			require.Len(t, res.Outputs, 1)
			assert.True(t, res.Outputs[tc.output].Equals(cty.NumberIntVal(tc.want)).True())
			assert.Len(t, res.Stalled, 1)
		})
	}
}
