package graph

// BuildWriter receives build statements decoded by the Ninja build parser.
// Implementations own classification and persistence; the parser never
// looks at the store.
type BuildWriter interface {
	InsertBuildLink(link BuildLink) error
}

// DepsWriter receives deps entries decoded from a `.ninja_deps` log.
type DepsWriter interface {
	InsertDepsEntry(entry DepsEntry) error
}

// CMakeTargetWriter receives targets decoded from a CMake File API reply,
// and exposes the writer's extension table for registering and classifying
// paths. The CMake parser itself only calls InsertCMakeTarget; sources are
// classified by the writer when the target is inserted.
type CMakeTargetWriter interface {
	InsertCMakeTarget(target CMakeTarget) error
	RegisterExtension(ext string, kind Kind)
	ClassifyExtension(path string) Kind
}
