package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kalambet/lexis/internal/model"
)

// SaveWordInfos stores favorited entries with all their meanings and
// definitions in one transaction. An entry whose id already exists is
// replaced together with its children.
func (s *Store) SaveWordInfos(infos []model.WordInfo) error {
	now := time.Now().UTC().Format(time.RFC3339)
	return s.withTx(func(tx *sql.Tx) error {
		for _, wi := range infos {
			if wi.ID == "" {
				return fmt.Errorf("word info %q has no id", wi.Word)
			}
			if err := deleteWordInfoTx(tx, wi.ID); err != nil {
				return err
			}
			if _, err := tx.Exec(`INSERT INTO word_infos (id, word, phonetic, audio_url, created_at) VALUES (?, ?, ?, ?, ?)`,
				wi.ID, wi.Word, wi.Phonetic, wi.AudioURL, now); err != nil {
				return fmt.Errorf("inserting word info %s: %w", wi.ID, err)
			}
			for mi, m := range wi.Meanings {
				if m.ID == "" {
					return fmt.Errorf("meaning %d of %q has no id", mi, wi.Word)
				}
				syn, err := marshalStrings(m.Synonyms)
				if err != nil {
					return err
				}
				ant, err := marshalStrings(m.Antonyms)
				if err != nil {
					return err
				}
				if _, err := tx.Exec(`INSERT INTO meanings (id, word_info_id, position, part_of_speech, synonyms, antonyms) VALUES (?, ?, ?, ?, ?, ?)`,
					m.ID, wi.ID, mi, m.PartOfSpeech, syn, ant); err != nil {
					return fmt.Errorf("inserting meaning %s: %w", m.ID, err)
				}
				for di, d := range m.Definitions {
					if _, err := tx.Exec(`INSERT INTO definitions (meaning_id, position, text, example) VALUES (?, ?, ?, ?)`,
						m.ID, di, d.Text, d.Example); err != nil {
						return fmt.Errorf("inserting definition %d of meaning %s: %w", di, m.ID, err)
					}
				}
			}
		}
		return nil
	})
}

// DeleteFavorites removes every favorited entry whose word matches one of
// words (case-insensitive), with their meanings and definitions, in one
// transaction. Returns the number of entries removed.
func (s *Store) DeleteFavorites(words []string) (int, error) {
	var removed int
	err := s.withTx(func(tx *sql.Tx) error {
		for _, w := range words {
			ids, err := queryStrings(tx, "SELECT id FROM word_infos WHERE LOWER(word) = LOWER(?)", w)
			if err != nil {
				return fmt.Errorf("finding favorites for %q: %w", w, err)
			}
			for _, id := range ids {
				if err := deleteWordInfoTx(tx, id); err != nil {
					return err
				}
				removed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// deleteWordInfoTx deletes definitions, meanings and the word info explicitly,
// children first, so the cascade does not depend on the foreign_keys pragma.
func deleteWordInfoTx(tx *sql.Tx, id string) error {
	if _, err := tx.Exec(`DELETE FROM definitions WHERE meaning_id IN (SELECT id FROM meanings WHERE word_info_id = ?)`, id); err != nil {
		return fmt.Errorf("deleting definitions of %s: %w", id, err)
	}
	if _, err := tx.Exec(`DELETE FROM meanings WHERE word_info_id = ?`, id); err != nil {
		return fmt.Errorf("deleting meanings of %s: %w", id, err)
	}
	if _, err := tx.Exec(`DELETE FROM word_infos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting word info %s: %w", id, err)
	}
	return nil
}

// FavoritesByPrefix returns favorited entries whose word starts with prefix
// (case-insensitive), fully populated and marked as liked.
func (s *Store) FavoritesByPrefix(prefix string) ([]model.WordInfo, error) {
	rows, err := s.db.Query(`SELECT id, word, phonetic, audio_url FROM word_infos
		WHERE LOWER(word) LIKE LOWER(?) || '%' ESCAPE '\'
		ORDER BY word, created_at, id`, escapeLike(prefix))
	if err != nil {
		return nil, err
	}
	var infos []model.WordInfo
	for rows.Next() {
		wi := model.WordInfo{Liked: true}
		if err := rows.Scan(&wi.ID, &wi.Word, &wi.Phonetic, &wi.AudioURL); err != nil {
			rows.Close()
			return nil, err
		}
		infos = append(infos, wi)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(infos) == 0 {
		return nil, nil
	}
	if err := s.loadMeanings(infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// loadMeanings fills Meanings for infos. Rows are fully read before the next
// query because the store runs on a single connection.
func (s *Store) loadMeanings(infos []model.WordInfo) error {
	ids := make([]any, len(infos))
	byID := make(map[string]int, len(infos))
	for i, wi := range infos {
		ids[i] = wi.ID
		byID[wi.ID] = i
	}

	rows, err := s.db.Query(`SELECT id, word_info_id, part_of_speech, synonyms, antonyms FROM meanings
		WHERE word_info_id IN (`+placeholders(len(ids))+`) ORDER BY word_info_id, position`, ids...)
	if err != nil {
		return fmt.Errorf("querying meanings: %w", err)
	}
	var meanings []model.Meaning
	for rows.Next() {
		var m model.Meaning
		var syn, ant string
		if err := rows.Scan(&m.ID, &m.WordInfoID, &m.PartOfSpeech, &syn, &ant); err != nil {
			rows.Close()
			return err
		}
		if m.Synonyms, err = unmarshalStrings(syn); err != nil {
			rows.Close()
			return fmt.Errorf("parsing synonyms of %s: %w", m.ID, err)
		}
		if m.Antonyms, err = unmarshalStrings(ant); err != nil {
			rows.Close()
			return fmt.Errorf("parsing antonyms of %s: %w", m.ID, err)
		}
		meanings = append(meanings, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	if len(meanings) == 0 {
		return nil
	}

	meaningIDs := make([]any, len(meanings))
	meaningIdx := make(map[string]int, len(meanings))
	for i, m := range meanings {
		meaningIDs[i] = m.ID
		meaningIdx[m.ID] = i
	}

	rows, err = s.db.Query(`SELECT meaning_id, text, example FROM definitions
		WHERE meaning_id IN (`+placeholders(len(meaningIDs))+`) ORDER BY meaning_id, position`, meaningIDs...)
	if err != nil {
		return fmt.Errorf("querying definitions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var meaningID string
		var d model.Definition
		if err := rows.Scan(&meaningID, &d.Text, &d.Example); err != nil {
			return err
		}
		i := meaningIdx[meaningID]
		meanings[i].Definitions = append(meanings[i].Definitions, d)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range meanings {
		i := byID[m.WordInfoID]
		infos[i].Meanings = append(infos[i].Meanings, m)
	}
	return nil
}

// FavoriteWords returns the distinct favorited words starting with prefix
// (case-insensitive), sorted.
func (s *Store) FavoriteWords(prefix string) ([]string, error) {
	return queryStrings(s.db, `SELECT DISTINCT word FROM word_infos
		WHERE LOWER(word) LIKE LOWER(?) || '%' ESCAPE '\'
		ORDER BY word`, escapeLike(prefix))
}

// CountFavorites returns the number of stored word infos, meanings and definitions.
func (s *Store) CountFavorites() (infos, meanings, definitions int, err error) {
	err = s.db.QueryRow(`SELECT
		(SELECT COUNT(*) FROM word_infos),
		(SELECT COUNT(*) FROM meanings),
		(SELECT COUNT(*) FROM definitions)`).Scan(&infos, &meanings, &definitions)
	return infos, meanings, definitions, err
}

type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

func queryStrings(q queryer, query string, args ...any) ([]string, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func marshalStrings(v []string) (string, error) {
	if len(v) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshalling list: %w", err)
	}
	return string(b), nil
}

func unmarshalStrings(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "[]" {
		return nil, nil
	}
	var v []string
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}
