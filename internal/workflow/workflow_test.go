package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/taskflow/internal/builtin"
	"github.com/specialistvlad/taskflow/internal/graph"
	"github.com/specialistvlad/taskflow/internal/ident"
	"github.com/specialistvlad/taskflow/internal/task"
	"github.com/specialistvlad/taskflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func num(n int64) cty.Value { return cty.NumberIntVal(n) }

func names(g *graph.Graph, ids []ident.ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if t, ok := g.Task(id); ok {
			out = append(out, t.Name())
		}
	}
	return out
}

func index(list []string, name string) int {
	for i, n := range list {
		if n == name {
			return i
		}
	}
	return -1
}

func connect(t *testing.T, g *graph.Graph, from task.Task, out string, to task.Task, in string) {
	t.Helper()
	require.NoError(t, g.Connect(graph.At(from, out), graph.At(to, in)))
}

// newAdder is a probe computing sum = a + b.
func newAdder(g *graph.Graph, rec *testutil.Recorder, name string) *testutil.Probe {
	p := testutil.NewProbe(g, rec, name, testutil.Inputs("a", "b"), testutil.Outputs("sum"))
	p.Fn = func(p *testutil.Probe) error {
		return p.SetOutput("sum", p.Input("a").Add(p.Input("b")))
	}
	return p
}

func TestRun_AddTwoConstants(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := graph.New()
	rec := &testutil.Recorder{}
	x := testutil.NewProbe(g, rec, "X", testutil.Bind("v", num(5)), testutil.Outputs("x"))
	y := testutil.NewProbe(g, rec, "Y", testutil.Bind("v", num(3)), testutil.Outputs("y"))
	add := newAdder(g, rec, "Add")
	connect(t, g, x, "x", add, "a")
	connect(t, g, y, "y", add, "b")

	w, err := New(g, "sum", add)
	require.NoError(t, err)
	assert.Len(t, w.Members(), 3)
	assert.Empty(t, w.Inputs())

	res, err := w.Run(ctx)
	require.NoError(t, err)
	require.Contains(t, res.Outputs, "sum")
	assert.True(t, res.Outputs["sum"].Equals(num(8)).True())
	assert.NotEmpty(t, res.RunID)
	assert.Empty(t, res.Stalled)
	assert.Equal(t, []string{"X", "Y", "Add"}, rec.Names())
}

func TestRun_UnselectedBranchNeverRuns(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := graph.New()
	rec := &testutil.Recorder{}
	sw := builtin.NewSwitch(g, "switch", num(1))
	taskA := testutil.NewProbe(g, rec, "TaskA", testutil.Fail())
	taskB := testutil.NewProbe(g, rec, "TaskB")
	require.NoError(t, sw.AddBranch(num(0), taskA))
	require.NoError(t, sw.AddBranch(num(1), taskB))

	w, err := New(g, "branch", sw)
	require.NoError(t, err)
	assert.Len(t, w.Members(), 3)

	res, err := w.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"TaskB"}, rec.Names())
	assert.Equal(t, []string{"TaskA"}, names(g, res.Stalled))
}

func TestRun_UnmatchedSwitchAborts(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := graph.New()
	rec := &testutil.Recorder{}
	sw := builtin.NewSwitch(g, "switch", num(7))
	require.NoError(t, sw.AddBranch(num(0), testutil.NewProbe(g, rec, "zero")))

	w, err := New(g, "wf", sw)
	require.NoError(t, err)

	_, err = w.Run(ctx)
	require.ErrorIs(t, err, builtin.ErrUnresolvedBranch)
	var taskErr *TaskError
	require.True(t, errors.As(err, &taskErr))
	assert.Equal(t, sw.ID(), taskErr.TaskID)
	assert.Empty(t, rec.Names())
}

func TestRun_TopologicalOrderAndExactlyOnce(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := graph.New()
	rec := &testutil.Recorder{}

	// a -> b -> d, a -> c -> d, and a slow path c -> e -> d.
	a := testutil.NewProbe(g, rec, "a", testutil.Bind("v", num(1)), testutil.Outputs("out"))
	b := testutil.NewProbe(g, rec, "b", testutil.Inputs("in"), testutil.Outputs("out"))
	c := testutil.NewProbe(g, rec, "c", testutil.Inputs("in"), testutil.Outputs("out", "aux"))
	e := testutil.NewProbe(g, rec, "e", testutil.Inputs("in"), testutil.Outputs("out"))
	d := testutil.NewProbe(g, rec, "d", testutil.Inputs("x", "y", "z"), testutil.Outputs("out"))
	connect(t, g, a, "out", b, "in")
	connect(t, g, a, "out", c, "in")
	connect(t, g, b, "out", d, "x")
	connect(t, g, c, "out", d, "y")
	connect(t, g, c, "aux", e, "in")
	connect(t, g, e, "out", d, "z")

	w, err := New(g, "wf", d)
	require.NoError(t, err)
	_, err = w.Run(ctx)
	require.NoError(t, err)

	order := rec.Names()
	require.Len(t, order, 5)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		assert.Equal(t, 1, rec.Count(name), name)
	}
	for _, edge := range [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}, {"c", "e"}, {"e", "d"}} {
		assert.Less(t, index(order, edge[0]), index(order, edge[1]), "%s must run before %s", edge[0], edge[1])
	}
}

func TestRun_FanOutDeliversSameValue(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := graph.New()
	src := testutil.NewProbe(g, nil, "src", testutil.Bind("v", cty.StringVal("payload")), testutil.Outputs("out"))
	var sinks []*testutil.Probe
	for _, name := range []string{"s1", "s2", "s3"} {
		s := testutil.NewProbe(g, nil, name, testutil.Inputs("in"), testutil.Outputs(name))
		connect(t, g, src, "out", s, "in")
		sinks = append(sinks, s)
	}

	w, err := New(g, "wf", src)
	require.NoError(t, err)
	res, err := w.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, res.Invoked, 4)
	for _, s := range sinks {
		assert.Equal(t, "payload", s.Input("in").AsString())
		assert.Equal(t, "payload", res.Outputs[s.Name()].AsString())
	}
}

func TestRun_ResetIdempotence(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := graph.New()
	rec := &testutil.Recorder{}
	p := testutil.NewProbe(g, rec, "echo", testutil.Inputs("in"), testutil.Outputs("out"))
	w, err := New(g, "wf", p)
	require.NoError(t, err)
	require.NoError(t, task.SetOptions(w, map[string]cty.Value{"in": cty.StringVal("hi")}))

	first, err := w.Run(ctx)
	require.NoError(t, err)

	_, err = w.Run(ctx)
	require.ErrorIs(t, err, ErrNotReset)

	w.Reset()
	assert.Empty(t, w.Outputs())
	second, err := w.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.Outputs, second.Outputs)
	assert.Equal(t, first.Invoked, second.Invoked)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, 2, rec.Count("echo"))
}

func TestAdd_LiftsUnconnectedInputs(t *testing.T) {
	g := graph.New()
	p1 := testutil.NewProbe(g, nil, "p1", testutil.Inputs("n", "m"), testutil.Outputs("o1"))
	p2 := testutil.NewProbe(g, nil, "p2", testutil.Inputs("n", "in"), testutil.Outputs("o2"))
	connect(t, g, p1, "o1", p2, "in")

	w, err := New(g, "wf", p1)
	require.NoError(t, err)

	var lifted []string
	for _, p := range w.Inputs() {
		lifted = append(lifted, p.Name())
	}
	assert.Equal(t, []string{"n", "m"}, lifted)

	outputs := w.Ports().Outputs(task.Data)
	require.Len(t, outputs, 1)
	assert.Equal(t, "o2", outputs[0].Name())

	// Adding again changes nothing.
	require.NoError(t, w.Add(p2))
	assert.Len(t, w.Inputs(), 2)
	assert.Len(t, w.Members(), 2)
	assert.Len(t, g.Producers(graph.At(p1, "n")), 1)
}

func TestNew_RejectsComponentOfAnotherWorkflow(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := graph.New()
	x := testutil.NewProbe(g, nil, "X", testutil.Bind("v", num(5)), testutil.Outputs("x"))
	y := testutil.NewProbe(g, nil, "Y", testutil.Bind("v", num(3)), testutil.Outputs("y"))
	add := newAdder(g, nil, "Add")
	connect(t, g, x, "x", add, "a")
	connect(t, g, y, "y", add, "b")

	w1, err := New(g, "first", add)
	require.NoError(t, err)

	_, err = New(g, "second", add)
	require.ErrorIs(t, err, ErrForeignWorkflow)
	assert.Contains(t, err.Error(), "first.final")

	res, err := w1.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Outputs["sum"].Equals(num(8)).True())

	t.Run("LiftedInput", func(t *testing.T) {
		g := graph.New()
		p := testutil.NewProbe(g, nil, "p", testutil.Inputs("in"), testutil.Outputs("out"))
		_, err := New(g, "first", p)
		require.NoError(t, err)
		next := testutil.NewProbe(g, nil, "next", testutil.Inputs("in"))
		connect(t, g, p, "out", next, "in")

		_, err = New(g, "second", next)
		require.ErrorIs(t, err, ErrForeignWorkflow)
	})
}

func TestAdd_FailureLeavesWorkflowUnchanged(t *testing.T) {
	g := graph.New()
	a := testutil.NewProbe(g, nil, "a", testutil.Bind("v", num(1)), testutil.Outputs("out"))
	b := testutil.NewProbe(g, nil, "b", testutil.Inputs("in"), testutil.Outputs("out"))

	w, err := New(g, "wf", a)
	require.NoError(t, err)
	require.Len(t, w.Members(), 1)
	require.Empty(t, w.Inputs())

	err = w.Add(b)
	require.ErrorIs(t, err, ErrDuplicateOutput)
	assert.Len(t, w.Members(), 1)
	assert.False(t, w.Has(b.ID()))
	assert.Empty(t, w.Inputs())
	assert.Empty(t, g.Producers(graph.At(b, "in")))
	assert.Len(t, w.Ports().Outputs(task.Data), 1)
}

func TestRun_UnboundAndOptionalInputs(t *testing.T) {
	t.Run("Unbound", func(t *testing.T) {
		ctx, _ := testutil.Context(t)
		g := graph.New()
		p := testutil.NewProbe(g, nil, "p", testutil.Inputs("in"), testutil.Outputs("out"))
		w, err := New(g, "wf", p)
		require.NoError(t, err)

		_, err = w.Run(ctx)
		require.ErrorIs(t, err, ErrUnboundInput)

		// A refused run does not need a reset.
		require.NoError(t, task.SetOptions(w, map[string]cty.Value{"in": num(1), "unknown": num(2)}))
		_, err = w.Run(ctx)
		require.NoError(t, err)
	})

	t.Run("OptionalDefault", func(t *testing.T) {
		ctx, _ := testutil.Context(t)
		g := graph.New()
		p := testutil.NewProbe(g, nil, "p", testutil.Outputs("out"))
		p.DeclareInput("in", task.Optional(cty.StringVal("fallback")))
		p.Fn = func(p *testutil.Probe) error {
			return p.SetOutput("out", p.Input("in"))
		}
		w, err := New(g, "wf", p)
		require.NoError(t, err)
		require.Len(t, w.Inputs(), 1)
		assert.True(t, w.Inputs()[0].Optional())

		res, err := w.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, "fallback", res.Outputs["out"].AsString())
	})
}

func TestAdd_DuplicateOutput(t *testing.T) {
	g := graph.New()
	src := testutil.NewProbe(g, nil, "src", testutil.Bind("v", num(1)), testutil.Outputs("x"))
	left := testutil.NewProbe(g, nil, "left", testutil.Inputs("x"), testutil.Outputs("result"))
	right := testutil.NewProbe(g, nil, "right", testutil.Inputs("x"), testutil.Outputs("result"))
	connect(t, g, src, "x", left, "x")
	connect(t, g, src, "x", right, "x")

	_, err := New(g, "wf", src)
	require.ErrorIs(t, err, ErrDuplicateOutput)
	assert.Contains(t, err.Error(), "left")
	assert.Contains(t, err.Error(), "right")
}

func TestAdd_RejectsCycles(t *testing.T) {
	g := graph.New()
	a := testutil.NewProbe(g, nil, "a", testutil.Inputs("in"), testutil.Outputs("out"))
	b := testutil.NewProbe(g, nil, "b", testutil.Inputs("in"), testutil.Outputs("out"))
	connect(t, g, a, "out", b, "in")
	connect(t, g, b, "out", a, "in")

	_, err := New(g, "wf", a)
	require.ErrorIs(t, err, ErrCycle)
	var cycle *graph.CycleError
	require.True(t, errors.As(err, &cycle))
	assert.Len(t, cycle.Path, 3)
}

func TestAdd_UnknownSeed(t *testing.T) {
	other := graph.New()
	p := testutil.NewProbe(other, nil, "elsewhere")
	_, err := New(graph.New(), "wf", p)
	assert.ErrorIs(t, err, graph.ErrUnknownTask)
}

func TestRun_TaskErrorAborts(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := graph.New()
	rec := &testutil.Recorder{}
	bad := testutil.NewProbe(g, rec, "bad", testutil.Bind("v", num(1)), testutil.Outputs("out"), testutil.Fail())
	after := testutil.NewProbe(g, rec, "after", testutil.Inputs("in"), testutil.Outputs("out"))
	connect(t, g, bad, "out", after, "in")

	w, err := New(g, "wf", bad)
	require.NoError(t, err)
	_, err = w.Run(ctx)
	require.ErrorIs(t, err, testutil.ErrProbe)

	var taskErr *TaskError
	require.True(t, errors.As(err, &taskErr))
	assert.Equal(t, "bad", taskErr.TaskName)
	assert.Equal(t, []string{"bad"}, rec.Names())
}

func TestRun_ControlEdgesOrderTasks(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := graph.New()
	rec := &testutil.Recorder{}
	second := testutil.NewProbe(g, rec, "second")
	second.DeclareControlInput("after")
	first := testutil.NewProbe(g, rec, "first")
	first.DeclareControlOutput("done")
	connect(t, g, first, "done", second, "after")

	w, err := New(g, "wf", second)
	require.NoError(t, err)
	_, err = w.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, rec.Names())
}

func TestRun_DiamondAfterSwitchIsSkipped(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := graph.New()
	rec := &testutil.Recorder{}
	it := builtin.NewIfThen(g, "if", cty.True)
	yes := testutil.NewProbe(g, rec, "yes", testutil.Bind("v", num(1)), testutil.Outputs("out"))
	no := testutil.NewProbe(g, rec, "no", testutil.Bind("v", num(2)), testutil.Outputs("out"))
	join := testutil.NewProbe(g, rec, "join", testutil.Inputs("a", "b"), testutil.Outputs("joined"))
	require.NoError(t, it.Then(yes))
	require.NoError(t, it.Else(no))
	connect(t, g, yes, "out", join, "a")
	connect(t, g, no, "out", join, "b")

	w, err := New(g, "wf", join)
	require.NoError(t, err)
	res, err := w.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"yes"}, rec.Names())
	assert.ElementsMatch(t, []string{"no", "join"}, names(g, res.Stalled))
	assert.NotContains(t, res.Outputs, "joined")
}

func TestRun_NestedWorkflow(t *testing.T) {
	ctx, _ := testutil.Context(t)
	outer := graph.New()
	inner := outer.Subgraph()

	rec := &testutil.Recorder{}
	adder := newAdder(inner, rec, "inner_add")
	child, err := New(inner, "child", adder)
	require.NoError(t, err)
	require.Len(t, child.Inputs(), 2)

	outer.Add(child)
	x := testutil.NewProbe(outer, rec, "x", testutil.Bind("v", num(40)), testutil.Outputs("out"))
	connect(t, outer, x, "out", child, "a")
	require.NoError(t, child.SetInput("b", num(2)))

	parent, err := New(outer, "parent", x)
	require.NoError(t, err)
	res, err := parent.Run(ctx)
	require.NoError(t, err)

	require.Contains(t, res.Outputs, "sum")
	assert.True(t, res.Outputs["sum"].Equals(num(42)).True())
	assert.Equal(t, []string{"x", "inner_add"}, rec.Names())

	parent.Reset()
	res, err = parent.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Outputs["sum"].Equals(num(42)).True())
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := graph.New()
	p := testutil.NewProbe(g, nil, "p", testutil.Bind("v", num(1)), testutil.Outputs("out"))
	w, err := New(g, "wf", p)
	require.NoError(t, err)

	_, err = w.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
