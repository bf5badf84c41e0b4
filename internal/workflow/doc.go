// Package workflow implements the composite task that owns a connected set
// of tasks and runs them in dependency order.
//
// # Membership
//
// A Workflow is seeded with one task. Add walks the graph from the seed in
// both directions (producers of every input, consumers of every output) and
// registers everything it reaches. NoTask and sentinel tasks end the walk.
// After discovery, every unconnected non-constant data input is lifted to a
// workflow input fed by the start sentinel, and every unconsumed data
// output is routed into the final sentinel and re-exposed as a workflow
// output.
//
// # Scheduling
//
// Run is a single-threaded readiness loop:
//
//  1. The queue starts with the start sentinel.
//  2. While the queue or the waiting set holds tasks, waiting tasks that have
//     become ready are promoted in insertion order; the front of the queue is
//     popped, its inputs are pulled from their producers, and it is invoked.
//     Each consumer is then enqueued if ready or parked in the waiting set.
//  3. When the queue runs dry the loop stops, even if tasks are still
//     waiting. This is how unselected branches are skipped; the tasks left
//     behind are reported in Result.Stalled.
//
// A task error aborts the run. A Workflow must be Reset before it can run
// again.
package workflow
