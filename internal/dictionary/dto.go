package dictionary

// Wire types of the lookup endpoint. Every field may be missing or null.

type WordInfoDTO struct {
	Word      *string       `json:"word"`
	Phonetics []PhoneticDTO `json:"phonetics"`
	Meanings  []MeaningDTO  `json:"meanings"`
}

type PhoneticDTO struct {
	Text  *string `json:"text"`
	Audio *string `json:"audio"`
}

type MeaningDTO struct {
	PartOfSpeech *string         `json:"partOfSpeech"`
	Definitions  []DefinitionDTO `json:"definitions"`
	Synonyms     []string        `json:"synonyms"`
	Antonyms     []string        `json:"antonyms"`
}

type DefinitionDTO struct {
	Definition *string `json:"definition"`
	Example    *string `json:"example"`
}
