// Package graph is the arena that owns tasks and the connectors between
// them.
//
// # Why an arena
//
// Tasks never point at each other. A Graph stores every task in a slice
// (indexed through an id→index map) and every connector as an Edge between
// two Endpoints, each a (task id, port name) pair. This removes the
// Task → Port → Connector → Task reference cycle and makes iteration over
// the structure deterministic: edges are kept in declaration order, and
// every query derived from them (producers, consumers, previous and next
// task ids) preserves that order.
//
// # Responsibilities
//
//   - Identity: the Graph owns the ident.Allocator used by task constructors.
//   - Wiring: Connect validates and records edges; redeclaring an edge is a no-op.
//   - Readiness: Ready evaluates the readiness rules of a task from the
//     state of the ports it depends on.
//   - Transport: Pull copies producer values into a task's inputs right
//     before it is invoked.
//   - Validation: DetectCycles finds dependency loops between tasks.
//
// A Graph is not safe for concurrent mutation. The scheduler that drives it
// is single-threaded.
package graph
