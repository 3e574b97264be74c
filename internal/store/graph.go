// Node/edge persistence and the three graph.*Writer implementations.
// Grounded on original_source/src/app/model/model.cpp: insertNinjaBuildLink,
// insertNinjaDepsEntry, insertCMakeTarget, m_getTargetType,
// m_getOrCreateNode and m_insertLink.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jward/kunai/internal/graph"
)

// classifyRule implements spec.md §3's rule-based classification step: an
// uppercased rule name containing EXECUTABLE, MODULE or LIBRARY overrides
// path-extension classification. Checked in the order the original's
// m_getTargetType uses (MODULE, then LIBRARY, then EXECUTABLE) rather than
// the prose order in which spec.md §3 lists them; the two orders differ only
// for a rule name that contains EXECUTABLE together with MODULE or LIBRARY,
// which CMake-generated rule names do not. Returns
// graph.Unsupported if the rule name doesn't decide it.
func classifyRule(rule string) graph.Kind {
	if rule == "" {
		return graph.Unsupported
	}
	upper := strings.ToUpper(rule)
	if upper == "CUSTOM_COMMAND" {
		return graph.Unsupported
	}
	switch {
	case strings.Contains(upper, "MODULE"):
		return graph.Library
	case strings.Contains(upper, "LIBRARY"):
		return graph.Library
	case strings.Contains(upper, "EXECUTABLE"):
		return graph.Binary
	default:
		return graph.Unsupported
	}
}

// classifyPath implements the path-extension fallback: ".o" is always
// OBJECT, everything else goes through the extension table, anything
// unmatched is UNSUPPORTED.
func (s *Store) classifyPath(path string) graph.Kind {
	if strings.HasSuffix(path, ".o") {
		return graph.Object
	}
	return s.classifier.Classify(path)
}

// classify applies spec.md §3's two-step rule: rule name first, path
// extension fallback second.
func (s *Store) classify(rule, path string) graph.Kind {
	if kind := classifyRule(rule); kind != graph.Unsupported {
		return kind
	}
	return s.classifyPath(path)
}

// upsertNode implements m_getOrCreateNode: select-or-insert by path, with
// the node's kind only ever overwritten by a concrete (non-UNSUPPORTED)
// classification; the last concrete write wins.
func (s *Store) upsertNode(tx *sql.Tx, path string, kind graph.Kind) (int64, error) {
	if id, ok := s.nodeCache.Get(path); ok {
		if kind != graph.Unsupported {
			if _, err := tx.Exec(`UPDATE targets SET type = ? WHERE id = ?`, int(kind), id); err != nil {
				return 0, fmt.Errorf("update node type: %w", err)
			}
		}
		return id, nil
	}

	var id int64
	var existingType int
	err := tx.QueryRow(`SELECT id, type FROM targets WHERE path = ?`, path).Scan(&id, &existingType)
	switch {
	case err == sql.ErrNoRows:
		res, err := tx.Exec(`INSERT INTO targets (path, type) VALUES (?, ?)`, path, int(kind))
		if err != nil {
			return 0, fmt.Errorf("insert node %q: %w", path, err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("insert node %q: %w", path, err)
		}
	case err != nil:
		return 0, fmt.Errorf("lookup node %q: %w", path, err)
	default:
		if kind != graph.Unsupported && int(kind) != existingType {
			if _, err := tx.Exec(`UPDATE targets SET type = ? WHERE id = ?`, int(kind), id); err != nil {
				return 0, fmt.Errorf("update node type: %w", err)
			}
		}
	}

	s.nodeCache.Add(path, id)
	return id, nil
}

// insertEdge implements m_insertLink: INSERT OR IGNORE, so re-inserting the
// same (from, to) pair and self-loops are both tolerated per spec.md §3.
func (s *Store) insertEdge(tx *sql.Tx, fromID, toID int64) error {
	_, err := tx.Exec(`INSERT OR IGNORE INTO links (from_id, to_id) VALUES (?, ?)`, fromID, toID)
	if err != nil {
		return fmt.Errorf("insert edge: %w", err)
	}
	return nil
}

// InsertBuildLink implements graph.BuildWriter. A build statement's
// outputs beyond the first are never added as nodes here: only
// link.Target (the first output) is classified and upserted, matching
// original_source/src/app/model/model.cpp's insertNinjaBuildLink, which
// only ever touches link.target, never link.targets. If the primary
// output doesn't classify to a concrete kind, the whole statement is
// skipped: no node, no edges.
func (s *Store) InsertBuildLink(link graph.BuildLink) error {
	kind := s.classify(link.Rule, link.Target)
	if kind == graph.Unsupported {
		return nil
	}
	return s.withTx(func(tx *sql.Tx) error {
		outID, err := s.upsertNode(tx, link.Target, kind)
		if err != nil {
			return err
		}
		for _, in := range allInputs(link) {
			inID, err := s.upsertNode(tx, in, s.classifyPath(in))
			if err != nil {
				return err
			}
			if err := s.insertEdge(tx, outID, inID); err != nil {
				return err
			}
		}
		return nil
	})
}

func allInputs(link graph.BuildLink) []string {
	inputs := make([]string, 0, len(link.Explicit)+len(link.Implicit)+len(link.OrderOnly))
	inputs = append(inputs, link.Explicit...)
	inputs = append(inputs, link.Implicit...)
	inputs = append(inputs, link.OrderOnly...)
	return inputs
}

// InsertDepsEntry implements graph.DepsWriter. The target is classified
// path-only: a `.ninja_deps` record never carries a rule name.
func (s *Store) InsertDepsEntry(entry graph.DepsEntry) error {
	return s.withTx(func(tx *sql.Tx) error {
		targetID, err := s.upsertNode(tx, entry.Target, s.classifyPath(entry.Target))
		if err != nil {
			return err
		}
		for _, dep := range entry.Deps {
			depID, err := s.upsertNode(tx, dep, s.classifyPath(dep))
			if err != nil {
				return err
			}
			if err := s.insertEdge(tx, targetID, depID); err != nil {
				return err
			}
		}
		return nil
	})
}

// InsertCMakeTarget implements graph.CMakeTargetWriter. Unlike a Ninja build
// link, a CMake target node takes its kind directly from the reply
// document's own type string rather than being reclassified, matching the
// original's insertCMakeTarget.
func (s *Store) InsertCMakeTarget(target graph.CMakeTarget) error {
	return s.withTx(func(tx *sql.Tx) error {
		targetID, err := s.upsertNode(tx, target.Name, cmakeKind(target.Kind))
		if err != nil {
			return err
		}
		for _, src := range target.Sources {
			srcID, err := s.upsertNode(tx, src, s.classifyPath(src))
			if err != nil {
				return err
			}
			if err := s.insertEdge(tx, targetID, srcID); err != nil {
				return err
			}
		}
		return nil
	})
}

// cmakeKind maps a CMake File API target "type" string to a Kind. CMake's
// own vocabulary ("EXECUTABLE", "STATIC_LIBRARY", "SHARED_LIBRARY",
// "MODULE_LIBRARY", "OBJECT_LIBRARY", "INTERFACE_LIBRARY") is narrower and
// differently spelled than Ninja rule names, so it gets its own mapping
// rather than reusing classifyRule.
func cmakeKind(rawType string) graph.Kind {
	upper := strings.ToUpper(rawType)
	switch {
	case strings.Contains(upper, "EXECUTABLE"):
		return graph.Binary
	case strings.Contains(upper, "LIBRARY"):
		return graph.Library
	default:
		return graph.Unsupported
	}
}

// RegisterExtension implements graph.CMakeTargetWriter, persisting the
// override to file_extensions and updating the in-memory classifier it
// consults for path fallback. Non-extensible kinds are rejected the same
// way the in-memory classifier rejects them: silently.
func (s *Store) RegisterExtension(ext string, kind graph.Kind) {
	if !kind.Extensible() {
		return
	}
	s.classifier.Register(ext, kind)
	_ = s.persistExtension(ext, kind)
}

func (s *Store) persistExtension(ext string, kind graph.Kind) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO file_extensions (ext, type) VALUES (?, ?)`, ext, int(kind))
	if err != nil {
		return fmt.Errorf("register extension %q: %w", ext, err)
	}
	return nil
}

// ClassifyExtension implements graph.CMakeTargetWriter, exposing the store's
// path classification (the ".o" rule plus the extension table) to callers
// that need to classify a path without going through an insert.
func (s *Store) ClassifyExtension(path string) graph.Kind {
	return s.classifyPath(path)
}

// Clear removes all targets, links and metadata, but not the extension
// table -- matching DataBase::clear()'s explicit preservation of
// file_extensions across a rebuild.
func (s *Store) Clear() error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM links`); err != nil {
			return fmt.Errorf("clear links: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM targets`); err != nil {
			return fmt.Errorf("clear targets: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM metadata`); err != nil {
			return fmt.Errorf("clear metadata: %w", err)
		}
		s.nodeCache.Purge()
		return nil
	})
}

// withTx runs fn against the caller-managed transaction set up by Batch, if
// one is active, so a whole Loader ingestion commits or rolls back as one
// unit; otherwise it opens and commits its own, for standalone calls (as
// the parser tests make).
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		s.nodeCache.Purge()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Batch runs fn with all writer-interface calls (InsertBuildLink,
// InsertDepsEntry, InsertCMakeTarget, Clear) joined into a single
// transaction, committed if fn returns nil and rolled back otherwise. This
// is how Loader gets the clear-then-reinsert-then-commit atomicity spec.md
// §4.6 describes.
func (s *Store) Batch(fn func() error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.tx = tx
	defer func() { s.tx = nil }()

	if err := fn(); err != nil {
		_ = tx.Rollback()
		s.nodeCache.Purge()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
