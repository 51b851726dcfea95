package dictionary

import (
	"strings"

	"github.com/google/uuid"

	"github.com/kalambet/lexis/internal/model"
)

// Placeholders for fields the lookup service left out.
const (
	MissingWord         = "No definitions found, please check your spelling"
	MissingPartOfSpeech = "Part of speech unavailable"
	MissingDefinition   = "No definition available"
)

// ToWordInfos maps lookup entries to WordInfo values with fresh ids.
// It never fails on missing optional fields.
func ToWordInfos(entries []WordInfoDTO) []model.WordInfo {
	infos := make([]model.WordInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, toWordInfo(e))
	}
	return infos
}

func toWordInfo(e WordInfoDTO) model.WordInfo {
	id := uuid.New().String()
	text, audio := pickPhonetic(e.Phonetics)

	wi := model.WordInfo{
		ID:       id,
		Word:     orDefault(e.Word, MissingWord),
		Phonetic: text,
		AudioURL: audio,
	}
	for _, m := range e.Meanings {
		meaningID := uuid.New().String()
		meaning := model.Meaning{
			ID:           meaningID,
			WordInfoID:   id,
			PartOfSpeech: orDefault(m.PartOfSpeech, MissingPartOfSpeech),
			Synonyms:     dedupe(m.Synonyms),
			Antonyms:     dedupe(m.Antonyms),
		}
		for _, d := range m.Definitions {
			meaning.Definitions = append(meaning.Definitions, model.Definition{
				Text:    orDefault(d.Definition, MissingDefinition),
				Example: orDefault(d.Example, ""),
			})
		}
		if len(meaning.Definitions) == 0 {
			meaning.Definitions = []model.Definition{{Text: MissingDefinition}}
		}
		wi.Meanings = append(wi.Meanings, meaning)
	}
	return wi
}

// pickPhonetic prefers the first phonetic that carries audio.
func pickPhonetic(ps []PhoneticDTO) (text, audio string) {
	if len(ps) == 0 {
		return "", ""
	}
	chosen := ps[0]
	for _, p := range ps {
		if p.Audio != nil && *p.Audio != "" {
			chosen = p
			break
		}
	}
	return orDefault(chosen.Text, ""), orDefault(chosen.Audio, "")
}

// IsPlaceholder reports whether a definition text is one of the defaults
// substituted for missing data rather than a real dictionary definition.
func IsPlaceholder(text string) bool {
	switch strings.TrimSpace(text) {
	case "", MissingDefinition, MissingWord, ErrNotFound.Error():
		return true
	}
	return false
}

func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
