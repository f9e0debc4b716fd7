package services

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"

	"cardforge-backend/internal/models"
)

var categoryTitles = map[string]string{
	models.CategoryMain:        "Questions & Answers",
	models.CategoryDefinitions: "Definitions",
	models.CategoryCloze:       "Fill in the Blank",
}

// PDFService renders a deck as a printable PDF. Layout is deterministic:
// same deck in, same document out.
type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

func (s *PDFService) RenderDeck(title string, cards models.CardSet) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	// Fixed metadata keeps output reproducible for the same deck.
	doc.SetCreationDate(time.Unix(0, 0).UTC())
	doc.SetModificationDate(time.Unix(0, 0).UTC())
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.MultiCell(0, 10, title, "", "C", false)
	doc.Ln(4)

	for _, category := range orderedCategories(cards) {
		sectionCards := cards[category]
		if len(sectionCards) == 0 {
			continue
		}

		heading, ok := categoryTitles[category]
		if !ok {
			heading = category
		}

		doc.SetFont("Helvetica", "B", 13)
		doc.MultiCell(0, 8, heading, "", "L", false)
		doc.Ln(1)

		for i, card := range sectionCards {
			doc.SetFont("Helvetica", "B", 11)
			doc.MultiCell(0, 6, fmt.Sprintf("%d. %s", i+1, card.Question), "", "L", false)
			doc.SetFont("Helvetica", "", 11)
			doc.MultiCell(0, 6, card.Answer, "", "L", false)
			doc.Ln(3)
		}
		doc.Ln(2)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render deck PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// orderedCategories lists the well-known categories first, then any
// remaining ones alphabetically.
func orderedCategories(cards models.CardSet) []string {
	order := []string{models.CategoryMain, models.CategoryDefinitions, models.CategoryCloze}
	seen := map[string]bool{}
	var out []string
	for _, cat := range order {
		if _, ok := cards[cat]; ok {
			out = append(out, cat)
			seen[cat] = true
		}
	}

	var rest []string
	for cat := range cards {
		if !seen[cat] {
			rest = append(rest, cat)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
