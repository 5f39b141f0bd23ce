// Package depgraph holds the working set of a dependency resolution.
//
// A [Graph] collects the specs believed necessary for an install together
// with, per package name, the merged requirement every requester placed on
// that name. Specs are inserted speculatively while the resolver walks the
// dependency frontier; [Graph.PruneUnsatisfied] drops those that turn out to
// violate the final accumulated requirement, and [Graph.OK] reports whether
// every requirement is still met.
//
// [Graph.InstallOrder] emits a dependencies-first order. Independent specs
// keep their discovery order so that identical inputs always produce the
// same plan.
package depgraph
