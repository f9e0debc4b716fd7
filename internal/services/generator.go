package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"cardforge-backend/internal/heuristic"
	"cardforge-backend/internal/models"
)

// TextGenerator is the boundary to the external generation model. A nil
// generator switches GeneratorService to the local heuristic strategy.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GeneratorService turns normalized text into a categorized CardSet. It
// never returns an error: every failure collapses into a fallback set
// that still satisfies the output contract.
type GeneratorService struct {
	llm     TextGenerator
	timeout time.Duration
}

func NewGeneratorService(llm TextGenerator, timeout time.Duration) *GeneratorService {
	return &GeneratorService{llm: llm, timeout: timeout}
}

const systemPrompt = `You are an expert flashcard creator. You produce valid JSON output only, containing exactly the requested categories and nothing else.
Rules:
- Preserve the natural language of the source text. Never translate.
- One concept per card. Cards must be concise, accurate, and unambiguous.
- Scale conceptual depth to the requested difficulty.
- No preamble, no markdown, no backticks.`

// Generate produces a CardSet for the requested categories. Postcondition:
// the result contains exactly the requested category keys, each mapped to
// an ordered (possibly empty) sequence of cards with non-empty fields.
func (s *GeneratorService) Generate(ctx context.Context, text string, opts models.GenerateOptions) models.CardSet {
	categories := opts.Categories()

	if s.llm == nil {
		return conform(heuristic.Generate(text, opts), categories)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.llm.GenerateText(ctx, systemPrompt, buildCardPrompt(opts, categories, text))
	if err != nil {
		log.Printf("WARNING: card generation failed, using generic fallback: %v", err)
		return genericFallback(categories)
	}

	result := parseCardSet(raw, categories)
	if result.fallback {
		log.Printf("WARNING: could not parse model output (%s), using placeholder cards", result.reason)
	}

	return conform(result.cards, categories)
}

func buildCardPrompt(opts models.GenerateOptions, categories []string, text string) string {
	var b strings.Builder

	count := models.TargetCardCount(opts.Difficulty)
	b.WriteString(fmt.Sprintf("Generate flashcards from the content below. Target %d cards in total.\n\n", count))

	b.WriteString(fmt.Sprintf("Difficulty: %s\n", opts.Difficulty))
	switch opts.Difficulty {
	case "medium":
		b.WriteString("Medium = application of concepts.\n")
	case "hard":
		b.WriteString("Hard = analysis, synthesis, or inference beyond what is explicitly stated.\n")
	default:
		b.WriteString("Easy = direct recall from text.\n")
	}
	b.WriteString("\n")

	schema := make(map[string]string, len(categories))
	for _, cat := range categories {
		switch cat {
		case models.CategoryMain:
			b.WriteString("Category \"main\": question/answer cards. Question = a short question about a key concept. Answer = a concise, self-contained answer.\n")
		case models.CategoryDefinitions:
			b.WriteString("Category \"definitions\": term/definition cards. Question = \"What is <term>?\" for a term the text defines. Answer = the definition.\n")
		case models.CategoryCloze:
			b.WriteString("Category \"cloze\": fill-in-the-blank cards. Question = a sentence from the content with one key term replaced by \"________\". Answer = the removed term.\n")
		}
		schema[cat] = `[{"question": "string", "answer": "string"}]`
	}

	b.WriteString("\nCRITICAL: Return ONLY a valid JSON object with exactly these keys:\n{")
	for i, cat := range categories {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fmt.Sprintf("%q: %s", cat, schema[cat]))
	}
	b.WriteString("}\n")

	b.WriteString("\n---CONTENT---\n")
	b.WriteString(text)
	b.WriteString("\n---END---\n")

	return b.String()
}

// parseResult is the tagged outcome of parsing model output: either a
// parsed CardSet or a per-category placeholder fallback with a reason.
type parseResult struct {
	cards    models.CardSet
	fallback bool
	reason   string
}

func parseCardSet(raw string, categories []string) parseResult {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var byCategory map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &byCategory); err != nil {
		// Try to extract the JSON object from surrounding prose.
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start < 0 || end <= start {
			return placeholderFallback(categories, "no JSON object found")
		}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &byCategory); err != nil {
			return placeholderFallback(categories, err.Error())
		}
	}

	cards := models.CardSet{}
	for _, cat := range categories {
		rawCards, ok := byCategory[cat]
		if !ok {
			continue
		}
		var entries []models.Flashcard
		if err := json.Unmarshal(rawCards, &entries); err != nil {
			continue
		}
		cards[cat] = entries
	}

	return parseResult{cards: cards}
}

func placeholderFallback(categories []string, reason string) parseResult {
	cards := models.CardSet{}
	for _, cat := range categories {
		cards[cat] = []models.Flashcard{placeholderCard(cat)}
	}
	return parseResult{cards: cards, fallback: true, reason: reason}
}

func placeholderCard(category string) models.Flashcard {
	switch category {
	case models.CategoryDefinitions:
		return models.Flashcard{
			Question: "Which terms should be defined from this content?",
			Answer:   "The content could not be structured into definition cards. Try again with different text.",
		}
	case models.CategoryCloze:
		return models.Flashcard{
			Question: "Which key terms from this content are worth memorizing?",
			Answer:   "The content could not be structured into fill-in-the-blank cards. Try again with different text.",
		}
	default:
		return models.Flashcard{
			Question: "What is this content about?",
			Answer:   "The content could not be structured into flashcards. Try again with different text.",
		}
	}
}

// genericFallback is the top-level failure artifact: two generic main
// cards plus empty slices for any other requested category.
func genericFallback(categories []string) models.CardSet {
	cards := models.CardSet{}
	for _, cat := range categories {
		cards[cat] = []models.Flashcard{}
	}

	fallback := []models.Flashcard{
		{
			Question: "What is the main topic of this text?",
			Answer:   "Review the text to identify key concepts.",
		},
		{
			Question: "What are the key points in this text?",
			Answer:   "The text covers several important aspects of the topic.",
		},
	}

	if _, ok := cards[models.CategoryMain]; ok {
		cards[models.CategoryMain] = fallback
	} else {
		cards[categories[0]] = fallback
	}

	return cards
}

// conform enforces the output contract: exactly the requested keys, each
// an ordered slice of cards with non-empty trimmed fields.
func conform(cards models.CardSet, categories []string) models.CardSet {
	out := models.CardSet{}
	for _, cat := range categories {
		kept := []models.Flashcard{}
		for _, card := range cards[cat] {
			q := strings.TrimSpace(card.Question)
			a := strings.TrimSpace(card.Answer)
			if q == "" || a == "" {
				continue
			}
			kept = append(kept, models.Flashcard{Question: q, Answer: a})
		}
		out[cat] = kept
	}
	return out
}
