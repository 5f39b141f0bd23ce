package dag_test

import (
	"fmt"

	"github.com/matzehuels/stackpkg/pkg/dag"
)

func Example() {
	g := dag.New(nil)
	g.AddNode(dag.Node{ID: "app-1.0", Meta: dag.Metadata{"version": "1.0"}})
	g.AddNode(dag.Node{ID: "lib-2.1"})
	g.AddNode(dag.Node{ID: "base-0.3"})
	g.AddEdge(dag.Edge{From: "app-1.0", To: "lib-2.1"})
	g.AddEdge(dag.Edge{From: "lib-2.1", To: "base-0.3"})

	fmt.Println("nodes:", g.NodeCount())
	fmt.Println("deps of app:", g.Children("app-1.0"))
	fmt.Println("dependents of base:", g.Parents("base-0.3"))
	for _, n := range g.Sources() {
		fmt.Println("root:", n.ID)
	}
	// Output:
	// nodes: 3
	// deps of app: [lib-2.1]
	// dependents of base: [lib-2.1]
	// root: app-1.0
}
