package graph

import (
	"github.com/specialistvlad/taskflow/internal/ident"
)

// DetectCycles checks the whole arena for dependency loops.
func (g *Graph) DetectCycles() error {
	ids := make([]ident.ID, 0, len(g.tasks))
	for _, t := range g.tasks {
		ids = append(ids, t.ID())
	}
	return g.DetectCyclesAmong(ids)
}

// DetectCyclesAmong checks the sub-graph induced by ids for dependency
// loops and returns a *CycleError naming the tasks of the first one found.
func (g *Graph) DetectCyclesAmong(ids []ident.ID) error {
	members := make(map[ident.ID]struct{}, len(ids))
	for _, id := range ids {
		members[id] = struct{}{}
	}

	// Classic three-colour depth-first search:
	// permanent: fully visited and not part of a cycle.
	// temporary: on the current recursion stack.
	permanent := make(map[ident.ID]bool)
	temporary := make(map[ident.ID]bool)
	var stack []ident.ID

	var visit func(id ident.ID) error
	visit = func(id ident.ID) error {
		if permanent[id] {
			return nil
		}
		if temporary[id] {
			return g.cycleFrom(stack, id)
		}
		temporary[id] = true
		stack = append(stack, id)

		t, _ := g.Task(id)
		for _, next := range g.NextTaskIDs(t) {
			if _, ok := members[next]; !ok {
				continue
			}
			if err := visit(next); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		delete(temporary, id)
		permanent[id] = true
		return nil
	}

	for _, id := range ids {
		if _, ok := g.Task(id); !ok {
			continue
		}
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) cycleFrom(stack []ident.ID, start ident.ID) error {
	var path []string
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == start {
			for _, id := range stack[i:] {
				t, _ := g.Task(id)
				path = append(path, t.Name())
			}
			break
		}
	}
	t, _ := g.Task(start)
	path = append(path, t.Name())
	return &CycleError{Path: path}
}
