package model

// Definition is a single sense of a Meaning.
type Definition struct {
	Text    string `json:"definition"`
	Example string `json:"example"`
}

// Meaning groups the definitions of a word for one part of speech.
// WordInfoID is a back-reference to the owning WordInfo.
type Meaning struct {
	ID           string       `json:"id"`
	WordInfoID   string       `json:"word_info_id"`
	PartOfSpeech string       `json:"part_of_speech"`
	Synonyms     []string     `json:"synonyms"`
	Antonyms     []string     `json:"antonyms"`
	Definitions  []Definition `json:"definitions"`
}

// WordInfo is one resolved dictionary entry. A word may resolve to several
// of these (homographs).
type WordInfo struct {
	ID       string    `json:"id"`
	Word     string    `json:"word"`
	Phonetic string    `json:"phonetic"`
	AudioURL string    `json:"audio_url"`
	Meanings []Meaning `json:"meanings"`
	Liked    bool      `json:"liked"`
}

// FirstDefinition returns the text of the first definition of the first
// meaning, or "" when the entry has none.
func (w WordInfo) FirstDefinition() string {
	for _, m := range w.Meanings {
		for _, d := range m.Definitions {
			return d.Text
		}
	}
	return ""
}

// Words returns the word strings of infos in order, without duplicates.
func Words(infos []WordInfo) []string {
	seen := make(map[string]bool, len(infos))
	var out []string
	for _, wi := range infos {
		if seen[wi.Word] {
			continue
		}
		seen[wi.Word] = true
		out = append(out, wi.Word)
	}
	return out
}
