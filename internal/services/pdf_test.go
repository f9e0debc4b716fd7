package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardforge-backend/internal/models"
)

func TestRenderDeck_ProducesPDF(t *testing.T) {
	svc := NewPDFService()

	cards := models.CardSet{
		models.CategoryMain: {
			{Question: "What is spaced repetition?", Answer: "Reviewing material at increasing intervals."},
		},
		models.CategoryCloze: {
			{Question: "Memory consolidation happens during ________.", Answer: "sleep"},
		},
	}

	data, err := svc.RenderDeck("Study Techniques", cards)

	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderDeck_Deterministic(t *testing.T) {
	svc := NewPDFService()

	cards := models.CardSet{
		models.CategoryMain: {
			{Question: "Q1", Answer: "A1"},
			{Question: "Q2", Answer: "A2"},
		},
	}

	first, err := svc.RenderDeck("Deck", cards)
	require.NoError(t, err)
	second, err := svc.RenderDeck("Deck", cards)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestOrderedCategories(t *testing.T) {
	cards := models.CardSet{
		"zeta":                     {},
		models.CategoryCloze:       {},
		models.CategoryMain:        {},
		"alpha":                    {},
		models.CategoryDefinitions: {},
	}

	got := orderedCategories(cards)

	assert.Equal(t, []string{
		models.CategoryMain,
		models.CategoryDefinitions,
		models.CategoryCloze,
		"alpha",
		"zeta",
	}, got)
}
