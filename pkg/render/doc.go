// Package render exports resolved dependency graphs as node-link diagrams.
//
// [ToDOT] converts a [dag.DAG] built by the dependency graph into Graphviz
// DOT source, one rank per dependency layer. [RenderSVG] lays it out in
// process with [github.com/goccy/go-graphviz]:
//
//	dot := render.ToDOT(res.Graph.DAG(), render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// [WriteFile] picks the format from the file extension (.dot or .svg).
package render
