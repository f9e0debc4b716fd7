package models

// Card categories. Every generation response maps requested category
// names to ordered card slices; unrequested categories are never present.
const (
	CategoryMain        = "main"
	CategoryDefinitions = "definitions"
	CategoryCloze       = "cloze"
)

type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CardSet maps a category name to its generated cards. Order within a
// slice is generation order and is preserved end-to-end.
type CardSet map[string][]Flashcard

// Clone returns a deep copy of the set.
func (cs CardSet) Clone() CardSet {
	out := make(CardSet, len(cs))
	for k, cards := range cs {
		copied := make([]Flashcard, len(cards))
		copy(copied, cards)
		out[k] = copied
	}
	return out
}

// TotalCards counts cards across all categories.
func (cs CardSet) TotalCards() int {
	n := 0
	for _, cards := range cs {
		n += len(cards)
	}
	return n
}

// GenerateOptions is the input contract to the card generator.
type GenerateOptions struct {
	Difficulty         string `json:"difficulty"` // "easy" | "medium" | "hard"
	QuestionAnswer     bool   `json:"question_answer"`
	ExtractDefinitions bool   `json:"extract_definitions"`
	CreateCloze        bool   `json:"create_cloze"`
}

// Categories returns the requested category keys in canonical order.
// When nothing is requested, question/answer cards are generated alone.
func (o GenerateOptions) Categories() []string {
	var keys []string
	if o.QuestionAnswer {
		keys = append(keys, CategoryMain)
	}
	if o.ExtractDefinitions {
		keys = append(keys, CategoryDefinitions)
	}
	if o.CreateCloze {
		keys = append(keys, CategoryCloze)
	}
	if len(keys) == 0 {
		keys = []string{CategoryMain}
	}
	return keys
}

// TargetCardCount maps a difficulty tier to the requested card volume.
// The tier also scales conceptual depth in the generation prompt.
func TargetCardCount(difficulty string) int {
	switch difficulty {
	case "medium":
		return 8
	case "hard":
		return 10
	default: // easy
		return 5
	}
}

type GenerateTextRequest struct {
	Text               string `json:"text"`
	Format             string `json:"format"` // "plain" | "markdown"
	Difficulty         string `json:"difficulty"`
	QuestionAnswer     *bool  `json:"question_answer"`
	ExtractDefinitions bool   `json:"extract_definitions"`
	CreateCloze        bool   `json:"create_cloze"`
}

type GenerateTopicRequest struct {
	Topic              string `json:"topic"`
	Difficulty         string `json:"difficulty"`
	IncludeDefinitions bool   `json:"include_definitions"`
	IncludeFacts       bool   `json:"include_facts"`
	IncludeDates       bool   `json:"include_dates"`
}

// GenerateResponse carries the categorized set plus flattened copies of
// each category array for client convenience.
type GenerateResponse struct {
	Flashcards  CardSet     `json:"flashcards"`
	Main        []Flashcard `json:"main"`
	Definitions []Flashcard `json:"definitions"`
	Cloze       []Flashcard `json:"cloze"`
}

func NewGenerateResponse(cards CardSet) GenerateResponse {
	resp := GenerateResponse{
		Flashcards:  cards,
		Main:        []Flashcard{},
		Definitions: []Flashcard{},
		Cloze:       []Flashcard{},
	}
	if main, ok := cards[CategoryMain]; ok {
		resp.Main = main
	}
	if defs, ok := cards[CategoryDefinitions]; ok {
		resp.Definitions = defs
	}
	if cloze, ok := cards[CategoryCloze]; ok {
		resp.Cloze = cloze
	}
	return resp
}
