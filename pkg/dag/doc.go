// Package dag provides the directed graph underlying dependency resolution
// and graph export.
//
// # Overview
//
// Nodes are concrete packages identified by their full name; an edge points
// from a dependent to one of its dependencies. Unlike a plain adjacency map,
// [DAG] remembers insertion order and every traversal honours it, which makes
// install plans reproducible across runs with identical inputs.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "app-1.0"})
//	g.AddNode(dag.Node{ID: "lib-2.1"})
//	g.AddEdge(dag.Edge{From: "app-1.0", To: "lib-2.1"})
//
// Query the structure with [DAG.Children], [DAG.Parents] and [DAG.Sources].
//
// # Transformations
//
// The transform subpackage breaks cycles, computes topological orders and
// assigns layers (rows) used when exporting the graph.
package dag
