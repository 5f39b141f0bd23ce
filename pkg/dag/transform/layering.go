package transform

import "github.com/matzehuels/stackpkg/pkg/dag"

// TopologicalOrder returns node IDs so that every node precedes all of its
// children (dependents before dependencies). It is Kahn's algorithm seeded
// with sources in insertion order; children are released in edge order.
//
// Nodes on a cycle never reach zero in-degree and are appended at the end in
// insertion order. Run [BreakCycles] first for a true topological order.
func TopologicalOrder(g *dag.DAG) []string {
	ids := g.IDs()
	inDegree := make(map[string]int, len(ids))
	queue := make([]string, 0, len(ids))

	for _, id := range ids {
		degree := g.InDegree(id)
		inDegree[id] = degree
		if degree == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(ids))
	placed := make(map[string]bool, len(ids))
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		order = append(order, curr)
		placed[curr] = true

		for _, child := range g.Children(curr) {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	for _, id := range ids {
		if !placed[id] {
			order = append(order, id)
		}
	}
	return order
}

// ReverseTopologicalOrder returns dependencies before their dependents.
func ReverseTopologicalOrder(g *dag.DAG) []string {
	order := TopologicalOrder(g)
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// AssignLayers places every node one row below its deepest parent, with
// sources at row 0. Existing rows are overwritten. The graph should be
// acyclic; nodes on a cycle stay at row 0.
func AssignLayers(g *dag.DAG) {
	rows := make(map[string]int, g.NodeCount())
	for _, id := range TopologicalOrder(g) {
		for _, child := range g.Children(id) {
			if row := rows[id] + 1; row > rows[child] {
				rows[child] = row
			}
		}
	}
	g.SetRows(rows)
}
