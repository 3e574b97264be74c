// Package classify implements kunai's ExtensionClassifier: the mapping from
// a file path's extension to an entity kind, seeded from a built-in table
// and overridable at runtime.
//
// Grounded on original_source/src/app/headers/defs.hpp's SOURCE_FILE_EXTS/
// HEADER_FILE_EXTS/LIBRARY_FILE_EXTS tables, trimmed to the exact sets
// spec.md §4.1 requires (the original's broader, revision-drifted sets are
// deliberately not carried forward).
package classify

import (
	"strings"

	"github.com/jward/kunai/internal/graph"
)

// DefaultSources, DefaultHeaders, DefaultLibraries and DefaultInputs are the
// seeded extension sets. Order is insignificant; kept here purely as the
// literal defaults spec.md §4.1 names.
var (
	DefaultSources   = []string{".c", ".cc", ".cpp", ".cxx", ".inl"}
	DefaultHeaders   = []string{".h", ".hh", ".hpp", ".hxx", ".tpp", ".inc"}
	DefaultLibraries = []string{".a", ".so", ".dylib", ".lib", ".dll", ".dll.a", ".framework"}
	DefaultInputs    = []string{".ini", ".log", ".txt", ".xml", ".csv", ".bin"}
)

// Classifier is a mutable set of (extension, kind) pairs. It is not
// goroutine-safe; kunai's core is single-threaded (spec.md §5).
type Classifier struct {
	byExt map[string]graph.Kind
}

// New returns a Classifier seeded with the built-in defaults.
func New() *Classifier {
	c := &Classifier{byExt: make(map[string]graph.Kind)}
	c.seed(DefaultSources, graph.Source)
	c.seed(DefaultHeaders, graph.Header)
	c.seed(DefaultLibraries, graph.Library)
	c.seed(DefaultInputs, graph.Input)
	return c
}

func (c *Classifier) seed(exts []string, kind graph.Kind) {
	for _, ext := range exts {
		c.Register(ext, kind)
	}
}

// Register adds ext -> kind to the table. Idempotent; rejects kinds outside
// the admissible set (SOURCE, HEADER, LIBRARY, INPUT) by silently ignoring
// them, per spec.md §3's extension table invariant.
func (c *Classifier) Register(ext string, kind graph.Kind) {
	if !kind.Extensible() {
		return
	}
	c.byExt[ext] = kind
}

// Classify returns the kind registered for path's extension, or
// graph.Unsupported if none matches. Matching is case-sensitive and looks
// at the substring starting at the final '.' in the basename; if no '.'
// is present, the result is always Unsupported.
//
// The ".dll.a" default is two-segment, so an exact-suffix check is tried
// first (longest match wins is unnecessary here since only one registered
// extension can be a suffix of another in the default tables: ".a" and
// ".dll.a"). Suffix matching is checked before falling back to
// last-dot extraction so ".dll.a" resolves to LIBRARY rather than the
// ".a" entry also matching -- both currently agree, but this keeps the
// two-segment extension meaningful if it's ever overridden separately.
func (c *Classifier) Classify(path string) graph.Kind {
	for ext, kind := range c.byExt {
		if strings.Contains(ext, ".") && strings.Count(ext, ".") > 1 && strings.HasSuffix(path, ext) {
			return kind
		}
	}

	dot := strings.LastIndexByte(basename(path), '.')
	if dot < 0 {
		return graph.Unsupported
	}
	ext := basename(path)[dot:]
	if kind, ok := c.byExt[ext]; ok {
		return kind
	}
	return graph.Unsupported
}

func basename(path string) string {
	if i := strings.LastIndexAny(path, "/\\"); i >= 0 {
		return path[i+1:]
	}
	return path
}
