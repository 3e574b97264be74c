package kunai

import (
	"github.com/jward/kunai/internal/graph"
)

// Kind is the entity kind a target node can carry.
type Kind = graph.Kind

// The kinds a target node can be classified as.
const (
	Unsupported = graph.Unsupported
	Source      = graph.Source
	Header      = graph.Header
	Object      = graph.Object
	Library     = graph.Library
	Binary      = graph.Binary
	Input       = graph.Input
)

// Stats, Counters and Timings mirror the store's derived summary.
type (
	Stats    = graph.Stats
	Counters = graph.Counters
	Timings  = graph.Timings
)

// ErrNotFound and ErrFormat are sentinel errors a caller can match with
// errors.Is.
var (
	ErrNotFound = graph.ErrNotFound
	ErrFormat   = graph.ErrFormat
)
