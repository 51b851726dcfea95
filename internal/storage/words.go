package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// prefixUpperBound sorts after every valid UTF-8 continuation of a prefix.
const prefixUpperBound = "\U0010FFFF"

// HasWords reports whether the word index holds at least one row.
func (s *Store) HasWords() (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM words LIMIT 1").Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertWords bulk-inserts lowercased words into the index in one transaction.
// Words already present are left untouched. Returns the number of new rows.
func (s *Store) InsertWords(words []string) (int, error) {
	var inserted int
	err := s.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare("INSERT OR IGNORE INTO words (word) VALUES (?)")
		if err != nil {
			return fmt.Errorf("preparing word insert: %w", err)
		}
		defer stmt.Close()

		inserted, err = insertWordsStmt(stmt, words)
		return err
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ImportWords inserts every chunk received on chunks in a single transaction
// and commits once chunks is closed. If ctx is done first the whole import is
// rolled back, leaving the index as it was.
func (s *Store) ImportWords(ctx context.Context, chunks <-chan []string) (int, error) {
	var inserted int
	err := s.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare("INSERT OR IGNORE INTO words (word) VALUES (?)")
		if err != nil {
			return fmt.Errorf("preparing word insert: %w", err)
		}
		defer stmt.Close()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case chunk, ok := <-chunks:
				if !ok {
					return ctx.Err()
				}
				n, err := insertWordsStmt(stmt, chunk)
				if err != nil {
					return err
				}
				inserted += n
			}
		}
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func insertWordsStmt(stmt *sql.Stmt, words []string) (int, error) {
	var inserted int
	for _, w := range words {
		w = NormalizeWord(w)
		if w == "" {
			continue
		}
		res, err := stmt.Exec(w)
		if err != nil {
			return inserted, fmt.Errorf("inserting word %q: %w", w, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, err
		}
		inserted += int(n)
	}
	return inserted, nil
}

// SearchWords returns up to limit index words starting with prefix, in
// primary-key order. The range scan keeps the lookup on the primary key index.
func (s *Store) SearchWords(prefix string, limit int) ([]string, error) {
	prefix = NormalizeWord(prefix)

	var (
		rows *sql.Rows
		err  error
	)
	if prefix == "" {
		rows, err = s.db.Query("SELECT word FROM words ORDER BY word LIMIT ?", limit)
	} else {
		rows, err = s.db.Query("SELECT word FROM words WHERE word >= ? AND word < ? ORDER BY word LIMIT ?",
			prefix, prefix+prefixUpperBound, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// CountWords returns the number of rows in the word index.
func (s *Store) CountWords() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM words").Scan(&n)
	return n, err
}

// NormalizeWord trims and lowercases a word for the index.
func NormalizeWord(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}
