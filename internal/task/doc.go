// Package task defines the unit of computation of the engine and the ports
// it exposes.
//
// A Task declares named ports in its constructor: data ports carry a
// cty.Value, control ports carry only a readiness signal. Ports are held in
// an explicit name→Port mapping (Ports); tasks never hold references to the
// tasks they are wired to. Wiring lives in the graph package, which owns
// tasks in an arena and stores connectors as (task id, port name) pairs.
//
// The scheduler never calls Execute directly. It calls Invoke, which runs
// Execute under the task's advisory lock and then publishes readiness on
// the task's outputs:
//
//	data outputs     -> always ready after a successful Execute
//	control outputs  -> all ready, or for a Brancher only the selected one
package task
