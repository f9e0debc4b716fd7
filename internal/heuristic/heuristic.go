// Package heuristic generates flashcards locally, without an external
// model. It is the alternate strategy used when no generation API key is
// configured: key-point extraction plus pattern-based question, definition
// and cloze transforms.
package heuristic

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"cardforge-backend/internal/models"
)

const (
	maxChunkLen     = 512
	minSentenceLen  = 15
	minClozeWords   = 6
	maxClozeCards   = 10
	pointsPerChunk  = 3
	summaryWindow   = 200
)

var sentenceSplit = regexp.MustCompile(`(?:[.!?])\s+`)

var definitionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`([A-Z][^.!?:]{2,40}?) is ([^.!?]+)`),
	regexp.MustCompile(`([A-Z][^.!?:]{2,40}?) means ([^.!?]+)`),
	regexp.MustCompile(`([A-Z][^.!?:]{2,40}?) refers to ([^.!?]+)`),
	regexp.MustCompile(`([A-Z][^.!?:]{2,40}?) defined as ([^.!?]+)`),
	regexp.MustCompile(`([A-Z][^.!?:]{2,40}?): ([^.!?]+)`),
}

// Generate produces a CardSet for the requested categories. Every
// requested category key is present in the result; no unrequested key is
// added. It never fails.
func Generate(text string, opts models.GenerateOptions) models.CardSet {
	result := models.CardSet{}
	categories := opts.Categories()

	for _, cat := range categories {
		switch cat {
		case models.CategoryMain:
			result[cat] = questionCards(text, models.TargetCardCount(opts.Difficulty))
		case models.CategoryDefinitions:
			result[cat] = definitionCards(text)
		case models.CategoryCloze:
			result[cat] = clozeCards(text)
		}
	}

	if result.TotalCards() == 0 {
		// Nothing matched any pattern; hand back one generic card over
		// the leading text window so the caller still gets content.
		result[categories[0]] = []models.Flashcard{{
			Question: "What is the main topic of this text?",
			Answer:   leadingSummary(text),
		}}
	}

	return result
}

// ExtractKeyPoints splits text into bounded chunks and keeps the most
// substantial sentences of each chunk as key points.
func ExtractKeyPoints(text string) []string {
	var points []string

	for _, chunk := range chunkText(text, maxChunkLen) {
		kept := 0
		for _, s := range splitSentences(chunk) {
			if len(s) <= minSentenceLen {
				continue
			}
			points = append(points, s)
			kept++
			if kept >= pointsPerChunk {
				break
			}
		}
	}

	return points
}

func questionCards(text string, limit int) []models.Flashcard {
	var cards []models.Flashcard

	for _, point := range ExtractKeyPoints(text) {
		if len(cards) >= limit {
			break
		}

		words := strings.Fields(point)
		if len(words) < 5 {
			continue
		}

		if card, ok := pointToCard(point, words); ok {
			cards = append(cards, card)
		}
	}

	return cards
}

func pointToCard(point string, words []string) (models.Flashcard, bool) {
	// "The X ..." / "A X ...": the opening noun phrase becomes the answer.
	if strings.HasPrefix(point, "The ") || strings.HasPrefix(point, "A ") {
		n := 4
		if len(words) < n {
			n = len(words)
		}
		subject := strings.Join(words[:n], " ")
		remaining := strings.Join(words[n:], " ")
		return models.Flashcard{
			Question: fmt.Sprintf("What %s?", strings.TrimSuffix(remaining, ".")),
			Answer:   subject,
		}, true
	}

	// Copular "is" near the start: split subject/predicate around it.
	for i := 1; i < 4 && i < len(words); i++ {
		if words[i] == "is" {
			subject := strings.Join(words[:i], " ")
			predicate := strings.Join(words[i+1:], " ")
			return models.Flashcard{
				Question: fmt.Sprintf("What is %s?", subject),
				Answer:   strings.TrimSuffix(predicate, "."),
			}, true
		}
	}

	// Fall back to a cloze-style blank over the longest substantial word.
	longest := ""
	for _, w := range words[1:] {
		clean := strings.Trim(w, ".,;:!?")
		if len(clean) > len(longest) && len(clean) > 6 && isAlpha(clean) {
			longest = clean
		}
	}
	if longest == "" {
		return models.Flashcard{}, false
	}
	return models.Flashcard{
		Question: strings.Replace(point, longest, "________", 1),
		Answer:   longest,
	}, true
}

func definitionCards(text string) []models.Flashcard {
	var cards []models.Flashcard

	for _, pattern := range definitionPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			term := strings.TrimSpace(m[1])
			definition := strings.TrimSpace(m[2])
			if len(term) <= 2 || len(definition) <= 5 {
				continue
			}
			cards = append(cards, models.Flashcard{
				Question: fmt.Sprintf("What is %s?", term),
				Answer:   definition,
			})
		}
	}

	return cards
}

func clozeCards(text string) []models.Flashcard {
	var cards []models.Flashcard

	for _, sentence := range splitSentences(text) {
		if len(cards) >= maxClozeCards {
			break
		}

		words := strings.Fields(sentence)
		if len(words) < minClozeWords {
			continue
		}

		idx, keyword := pickClozeWord(words)
		if keyword == "" {
			continue
		}

		blanked := make([]string, len(words))
		copy(blanked, words)
		blanked[idx] = "________"

		cards = append(cards, models.Flashcard{
			Question: strings.Join(blanked, " "),
			Answer:   keyword,
		})
	}

	return cards
}

// pickClozeWord prefers a capitalized mid-sentence word, then the longest
// plain word over 6 characters.
func pickClozeWord(words []string) (int, string) {
	bestIdx, best := -1, ""

	for i, w := range words {
		clean := strings.Trim(w, ".,;:!?\"'()")
		if clean == "" {
			continue
		}
		if i > 0 && unicode.IsUpper(rune(clean[0])) && len(clean) > 3 {
			return i, clean
		}
		if len(clean) > 6 && isAlpha(clean) && len(clean) > len(best) {
			bestIdx, best = i, clean
		}
	}

	if bestIdx < 0 {
		return -1, ""
	}
	return bestIdx, best
}

func leadingSummary(text string) string {
	window := strings.TrimSpace(text)
	if len(window) > summaryWindow {
		window = window[:summaryWindow]
		if cut := strings.LastIndex(window, " "); cut > 0 {
			window = window[:cut]
		}
		window += "..."
	}
	if window == "" {
		return "Review the text to identify key concepts."
	}
	return window
}

func chunkText(text string, size int) []string {
	if len(text) <= size {
		return []string{text}
	}
	var chunks []string
	for start := 0; start < len(text); start += size {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
	}
	return chunks
}

func splitSentences(text string) []string {
	var out []string
	for _, s := range sentenceSplit.Split(text, -1) {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
