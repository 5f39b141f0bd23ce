package transform

import (
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/stackpkg/pkg/dag"
)

// build creates a graph from "from>to" edge specs. Nodes are added in the
// order they first appear.
func build(edges ...string) *dag.DAG {
	g := dag.New(nil)
	add := func(id string) {
		if _, ok := g.Node(id); !ok {
			_ = g.AddNode(dag.Node{ID: id})
		}
	}
	for _, e := range edges {
		from, to, _ := strings.Cut(e, ">")
		add(from)
		add(to)
		_ = g.AddEdge(dag.Edge{From: from, To: to, Meta: dag.Metadata{"requirement": ">= 0"}})
	}
	return g
}

func ends(edges []dag.Edge) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.From + ">" + e.To
	}
	return out
}

func TestBreakCycles(t *testing.T) {
	tests := []struct {
		name      string
		edges     []string
		wantCut   []string
		wantEdges int
	}{
		{"no cycles", []string{"a>b", "b>c"}, nil, 2},
		{"simple cycle", []string{"a>b", "b>a"}, []string{"b>a"}, 1},
		{"triangle", []string{"a>b", "b>c", "c>a"}, []string{"c>a"}, 2},
		{"two cycles", []string{"a>b", "b>a", "c>d", "d>c"}, []string{"b>a", "d>c"}, 2},
		{"diamond", []string{"a>b", "a>c", "b>d", "c>d"}, nil, 4},
		{"cycle below a source", []string{"app>b", "b>c", "c>d", "d>b"}, []string{"d>b"}, 3},
		{"ring without sources", []string{"x>y", "y>z", "z>x"}, []string{"z>x"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(tt.edges...)
			cut := BreakCycles(g)

			if fmt.Sprint(ends(cut)) != fmt.Sprint(tt.wantCut) {
				t.Errorf("removed %v, want %v", ends(cut), tt.wantCut)
			}
			if g.EdgeCount() != tt.wantEdges {
				t.Errorf("EdgeCount() = %d, want %d", g.EdgeCount(), tt.wantEdges)
			}
			if again := BreakCycles(g); len(again) != 0 {
				t.Errorf("second pass removed %v", ends(again))
			}
		})
	}
}

func TestBreakCycles_KeepsEdgeMetadata(t *testing.T) {
	g := build("a>b", "b>a")
	cut := BreakCycles(g)
	if len(cut) != 1 || cut[0].Meta["requirement"] != ">= 0" {
		t.Fatalf("removed %+v, want b>a with its metadata", cut)
	}
}

func TestBreakCycles_Deterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		g := build("a>b", "b>c", "c>b")
		BreakCycles(g)
		if len(g.Children("c")) != 0 {
			t.Fatalf("run %d: c -> b should be removed, children(c) = %v", i, g.Children("c"))
		}
	}
}

func TestBreakCycles_LongChain(t *testing.T) {
	g := dag.New(nil)
	const n = 100000
	for i := 0; i < n; i++ {
		_ = g.AddNode(dag.Node{ID: fmt.Sprint(i)})
		if i > 0 {
			_ = g.AddEdge(dag.Edge{From: fmt.Sprint(i - 1), To: fmt.Sprint(i)})
		}
	}
	_ = g.AddEdge(dag.Edge{From: fmt.Sprint(n - 1), To: "0"})

	if cut := BreakCycles(g); len(cut) != 1 {
		t.Fatalf("removed %d edges, want 1", len(cut))
	}
}

func TestBreakCycles_Empty(t *testing.T) {
	if cut := BreakCycles(dag.New(nil)); cut != nil {
		t.Errorf("empty graph: removed %v", cut)
	}
	g := build()
	_ = g.AddNode(dag.Node{ID: "a"})
	if cut := BreakCycles(g); cut != nil {
		t.Errorf("single node: removed %v", cut)
	}
}
