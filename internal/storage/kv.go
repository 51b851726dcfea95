package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SetValues writes every key/value pair in one transaction, replacing
// existing values.
func (s *Store) SetValues(values map[string]string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	return s.withTx(func(tx *sql.Tx) error {
		for k, v := range values {
			if _, err := tx.Exec(`
				INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
				k, v, now); err != nil {
				return fmt.Errorf("setting %s: %w", k, err)
			}
		}
		return nil
	})
}

// GetValue returns the value stored under key, or ErrNotFound.
func (s *Store) GetValue(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}
