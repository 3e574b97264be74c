// Read queries over the target graph. ReachableReverse is grounded on
// original_source/src/app/model/model.cpp's getPointedTargetsByType
// recursive CTE, which spec.md §9 names as the primary reachability
// strategy (an in-memory BFS, as the teacher's internal/store did for
// TransitiveCallers, is the sanctioned alternative but isn't needed here:
// the CTE already matches the original's own approach one-for-one).
package store

import (
	"database/sql"
	"fmt"

	"github.com/jward/kunai/internal/graph"
)

// AllOfKind returns every distinct target path currently classified as
// kind, implementing getAllTargetsByType.
func (s *Store) AllOfKind(kind graph.Kind) ([]string, error) {
	rows, err := s.db.Query(`SELECT path FROM targets WHERE type = ? ORDER BY path`, int(kind))
	if err != nil {
		return nil, fmt.Errorf("query targets by kind: %w", err)
	}
	defer rows.Close()
	return scanPaths(rows)
}

// ReachableReverse computes the reflexive-transitive closure of "depends
// on" edges traversed backwards from a seed set, then filters to kind.
// A node seeds the closure if its path equals any seed or contains any
// seed as a substring, matching getPointedTargetsByType's `path = ? OR
// path LIKE ?` seed clause. SQLite's default LIKE is ASCII
// case-insensitive; this uses GLOB instead so the substring match stays
// case-sensitive at the store level, leaving the CLI's own
// case-insensitive --match filter as a separate, later layer (spec.md §6).
func (s *Store) ReachableReverse(seeds []string, kind graph.Kind) ([]string, error) {
	if len(seeds) == 0 {
		return nil, nil
	}

	seedClauses := make([]string, 0, len(seeds))
	args := make([]any, 0, len(seeds)*2)
	for _, seed := range seeds {
		seedClauses = append(seedClauses, "path = ? OR path GLOB ?")
		args = append(args, seed, "*"+globEscape(seed)+"*")
	}

	query := fmt.Sprintf(`
WITH RECURSIVE pointed(id) AS (
  SELECT id FROM targets WHERE %s
  UNION
  SELECT l.from_id FROM links l JOIN pointed p ON l.to_id = p.id
)
SELECT DISTINCT path FROM targets
WHERE id IN (SELECT id FROM pointed) AND type = ?
ORDER BY path`, joinOr(seedClauses))

	args = append(args, int(kind))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reachable targets: %w", err)
	}
	defer rows.Close()
	return scanPaths(rows)
}

func joinOr(clauses []string) string {
	out := ""
	for i, c := range clauses {
		if i > 0 {
			out += " OR "
		}
		out += "(" + c + ")"
	}
	return out
}

// globEscape neutralizes SQLite GLOB's own wildcard characters in a seed
// string before it's wrapped in "*...*", so a seed containing a literal
// '*' or '?' is matched as a literal substring rather than as a pattern.
func globEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']':
			out = append(out, '[', s[i], ']')
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}

func scanPaths(rows *sql.Rows) ([]string, error) {
	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// Stats returns the six per-kind counters plus the three perf metadata
// values, implementing getStats.
func (s *Store) Stats() (graph.Stats, error) {
	var stats graph.Stats
	row := s.db.QueryRow(`
SELECT
  (SELECT COUNT(*) FROM links),
  (SELECT COUNT(*) FROM targets WHERE type = ?),
  (SELECT COUNT(*) FROM targets WHERE type = ?),
  (SELECT COUNT(*) FROM targets WHERE type = ?),
  (SELECT COUNT(*) FROM targets WHERE type = ?),
  (SELECT COUNT(*) FROM targets WHERE type = ?),
  (SELECT COUNT(*) FROM targets WHERE type = ?)
`, int(graph.Source), int(graph.Header), int(graph.Object), int(graph.Library), int(graph.Binary), int(graph.Input))

	if err := row.Scan(
		&stats.Counters.Deps,
		&stats.Counters.Sources,
		&stats.Counters.Headers,
		&stats.Counters.Objects,
		&stats.Counters.Libraries,
		&stats.Counters.Binaries,
		&stats.Counters.Inputs,
	); err != nil {
		return graph.Stats{}, fmt.Errorf("query stats: %w", err)
	}

	stats.Timings.DBFilling, _ = s.getMetadataFloat("perf_db_filling_ms")
	stats.Timings.DBLoading, _ = s.getMetadataFloat("perf_db_loading_ms")
	stats.Timings.Query, _ = s.getMetadataFloat("perf_query_ms")
	return stats, nil
}
