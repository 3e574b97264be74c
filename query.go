package kunai

import (
	"time"

	"github.com/jward/kunai/internal/store"
)

// Query wraps an already-loaded store with the perf_query_ms bookkeeping
// quirk the original's getAllTargetsByType/getPointedTargetsByType share:
// the timing metadata is only written when the query actually returned
// something, so an empty result never overwrites a prior "last query"
// timing with a near-zero one.
type Query struct {
	store *store.Store
}

// NewQuery wraps st for querying.
func NewQuery(st *store.Store) *Query {
	return &Query{store: st}
}

// AllOfKind returns every target path currently classified as kind.
func (q *Query) AllOfKind(kind Kind) ([]string, error) {
	start := time.Now()
	paths, err := q.store.AllOfKind(kind)
	if err != nil {
		return nil, err
	}
	if len(paths) > 0 {
		if err := q.store.SetMetadataFloat("perf_query_ms", msSince(start)); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// ReachableReverse returns every path of kind reachable, via reversed
// dependency edges, from the reflexive-transitive closure of seeds.
func (q *Query) ReachableReverse(seeds []string, kind Kind) ([]string, error) {
	start := time.Now()
	paths, err := q.store.ReachableReverse(seeds, kind)
	if err != nil {
		return nil, err
	}
	if len(paths) > 0 {
		if err := q.store.SetMetadataFloat("perf_query_ms", msSince(start)); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// Stats returns the current per-kind counters and perf timings.
func (q *Query) Stats() (Stats, error) {
	return q.store.Stats()
}
