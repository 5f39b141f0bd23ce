// Package registry is the client side of the package registry protocol.
//
// # Protocol
//
// A registry source is an HTTP base URI serving two endpoints:
//
//	GET {source}/api/v1/versions/{name}.json   JSON array of version records
//	GET {source}/packages/{full-name}.pkg      package archive
//
// A 404 on the versions endpoint means the source knows no versions of the
// package, which is not an error.
//
// # Searching
//
// [Registry.Search] queries every configured source in order and merges the
// results. A failing source produces a TRANSPORT error in the returned error
// list but does not hide results from the other sources. Non-specific
// requirements (">= x") only return the newest matching version per
// platform and source.
//
// Version listings are cached through a [cache.Cache] keyed per source and
// name; Options.Refresh bypasses the cache.
//
// # Fetching
//
// [Registry.Fetch] places the archive of a candidate in a destination
// directory, copying local archives and downloading remote ones with retry.
package registry
