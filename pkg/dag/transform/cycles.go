package transform

import "github.com/matzehuels/stackpkg/pkg/dag"

// BreakCycles removes back edges until the graph is acyclic and returns the
// removed edges in discovery order. The depth-first search starts from
// sources in insertion order and then from any node not yet reached, so the
// same graph always loses the same edges. The search keeps an explicit
// stack; long dependency chains do not grow the goroutine stack.
func BreakCycles(g *dag.DAG) []dag.Edge {
	const (
		unvisited = iota
		onStack
		done
	)

	type frame struct {
		id   string
		next int // index of the next child to visit
	}

	state := make(map[string]int, g.NodeCount())
	var back [][2]string

	visit := func(root string) {
		stack := []frame{{id: root}}
		state[root] = onStack
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.Children(top.id)
			if top.next == len(children) {
				state[top.id] = done
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++
			switch state[child] {
			case unvisited:
				state[child] = onStack
				stack = append(stack, frame{id: child})
			case onStack:
				back = append(back, [2]string{top.id, child})
			}
		}
	}

	for _, n := range g.Sources() {
		if state[n.ID] == unvisited {
			visit(n.ID)
		}
	}
	for _, id := range g.IDs() {
		if state[id] == unvisited {
			visit(id)
		}
	}
	if len(back) == 0 {
		return nil
	}

	byEnds := make(map[[2]string]dag.Edge, g.EdgeCount())
	for _, e := range g.Edges() {
		byEnds[[2]string{e.From, e.To}] = e
	}
	removed := make([]dag.Edge, 0, len(back))
	for _, ends := range back {
		removed = append(removed, byEnds[ends])
		g.RemoveEdge(ends[0], ends[1])
	}
	return removed
}
