// Package transform provides graph algorithms used by dependency resolution
// and graph export.
//
// [BreakCycles] removes back edges so that mutually dependent packages can
// still be ordered. [TopologicalOrder] and [ReverseTopologicalOrder] emit
// deterministic orders that honour insertion order for independent nodes.
// [AssignLayers] computes rows for exporting the graph rank by rank.
package transform
