package graph

import (
	"github.com/specialistvlad/taskflow/internal/task"
)

// InputReady reports whether the input port p of t can be consumed.
//
// A constant data input is always ready. Otherwise the input needs at least
// one producer and every producing output port must be ready.
func (g *Graph) InputReady(t task.Task, p *task.Port) bool {
	if p.Kind() == task.Data && p.Constant() {
		return true
	}
	producers := g.Producers(Endpoint{Task: t.ID(), Port: p.Name()})
	if len(producers) == 0 {
		return false
	}
	for _, ep := range producers {
		src, err := g.port(ep, task.Output)
		if err != nil || !src.Ready() {
			return false
		}
	}
	return true
}

// Ready reports whether t may be invoked: every non-constant data input and
// every control input is ready.
func (g *Graph) Ready(t task.Task) bool {
	for _, p := range t.Ports().All() {
		if p.Direction() != task.Input {
			continue
		}
		if !g.InputReady(t, p) {
			return false
		}
	}
	return true
}

// Pull copies the values of ready producers into t's inputs and marks those
// inputs ready. Constant inputs are left alone.
func (g *Graph) Pull(t task.Task) error {
	for _, p := range t.Ports().All() {
		if p.Direction() != task.Input || (p.Kind() == task.Data && p.Constant()) {
			continue
		}
		if !g.InputReady(t, p) {
			continue
		}
		if p.Kind() == task.Data {
			producers := g.Producers(Endpoint{Task: t.ID(), Port: p.Name()})
			src, err := g.port(producers[0], task.Output)
			if err != nil {
				return err
			}
			if err := p.Set(src.Value()); err != nil {
				return err
			}
		}
		p.SetReady()
	}
	return nil
}
