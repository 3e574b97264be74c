// Package kunai ingests a Ninja/CMake build directory into a typed
// dependency graph and answers reachability and statistics queries over
// it.
//
// A Loader drives the ingestion: it parses build.ninja (and, if present,
// .ninja_deps and a CMake File API reply directory), persists the result
// into a SQLite-backed GraphStore, and skips the work entirely when the
// inputs haven't changed since the last load. Once loaded, AllOfKind,
// ReachableReverse and Stats answer queries against the store.
package kunai
