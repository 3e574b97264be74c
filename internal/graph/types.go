package graph

// BuildLink is one `build outputs: rule inputs` statement decoded from a
// Ninja file, ready to hand to a BuildWriter.
type BuildLink struct {
	Rule      string
	Target    string // Outputs[0]; empty if the statement had no outputs.
	Outputs   []string
	Explicit  []string
	Implicit  []string
	OrderOnly []string
}

// DepsEntry is one record decoded from a `.ninja_deps` log: an output and
// the header paths the compiler reported it depends on.
type DepsEntry struct {
	Target string
	MTime  uint64
	Deps   []string
}

// CMakeTarget is one target decoded from a CMake File API codemodel-v2
// reply, ready to hand to a CMakeTargetWriter.
type CMakeTarget struct {
	ID      string
	Name    string
	Kind    string // raw CMake type string, e.g. "EXECUTABLE", "STATIC_LIBRARY"
	Sources []string
}

// Counters holds node counts per kind, mirroring the original's
// DataBase::Stats::Counter layout.
type Counters struct {
	Deps      int64
	Sources   int64
	Headers   int64
	Objects   int64
	Libraries int64
	Binaries  int64
	Inputs    int64
}

// Timings holds the three perf metadata values, in milliseconds.
type Timings struct {
	DBFilling float64
	DBLoading float64
	Query     float64
}

// Stats is the store's derived, never-cached summary.
type Stats struct {
	Counters Counters
	Timings  Timings
}
