package store

import (
	"database/sql"
	"fmt"
	"strconv"
)

// SetMetadata upserts a single key/value pair, matching setMetadata's
// INSERT OR REPLACE semantics.
func (s *Store) SetMetadata(key, value string) error {
	exec := s.db.Exec
	if s.tx != nil {
		exec = s.tx.Exec
	}
	if _, err := exec(`INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)`, key, value); err != nil {
		return fmt.Errorf("set metadata %q: %w", key, err)
	}
	return nil
}

// SetMetadataFloat stores a float64 value, for the perf_* timing keys.
func (s *Store) SetMetadataFloat(key string, value float64) error {
	return s.SetMetadata(key, strconv.FormatFloat(value, 'f', -1, 64))
}

// GetMetadata returns the stored value for key, or "" if absent, matching
// getMetadata's select-or-empty-string semantics.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	switch {
	case err == sql.ErrNoRows:
		return "", nil
	case err != nil:
		return "", fmt.Errorf("get metadata %q: %w", key, err)
	default:
		return value, nil
	}
}

func (s *Store) getMetadataFloat(key string) (float64, error) {
	raw, err := s.GetMetadata(key)
	if err != nil || raw == "" {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, nil
	}
	return v, nil
}
