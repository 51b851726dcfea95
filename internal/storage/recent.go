package storage

import "time"

// AddRecentWord records word at the given time. An existing row for the same
// word is replaced, which refreshes its timestamp.
func (s *Store) AddRecentWord(word string, at time.Time) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO recent_words (word, timestamp) VALUES (?, ?)`,
		word, at.UnixMilli())
	return err
}

// RecentWords returns history entries starting with prefix (case-insensitive),
// newest first. Ties on timestamp resolve to the most recently written row.
func (s *Store) RecentWords(prefix string) ([]RecentWord, error) {
	rows, err := s.db.Query(`SELECT word, timestamp FROM recent_words
		WHERE LOWER(word) LIKE LOWER(?) || '%' ESCAPE '\'
		ORDER BY timestamp DESC, rowid DESC`, escapeLike(prefix))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecentWord
	for rows.Next() {
		var rw RecentWord
		var ms int64
		if err := rows.Scan(&rw.Word, &ms); err != nil {
			return nil, err
		}
		rw.Timestamp = time.UnixMilli(ms).UTC()
		out = append(out, rw)
	}
	return out, rows.Err()
}

// DeleteRecentWord removes word from the history. Removing a missing word is not an error.
func (s *Store) DeleteRecentWord(word string) error {
	_, err := s.db.Exec(`DELETE FROM recent_words WHERE word = ?`, word)
	return err
}

// ClearRecentWords removes the whole history.
func (s *Store) ClearRecentWords() error {
	_, err := s.db.Exec(`DELETE FROM recent_words`)
	return err
}
