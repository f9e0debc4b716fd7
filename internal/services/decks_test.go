package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardforge-backend/internal/models"
)

type memoryDeckStore struct {
	decks map[uuid.UUID]*models.Deck
}

func newMemoryDeckStore() *memoryDeckStore {
	return &memoryDeckStore{decks: make(map[uuid.UUID]*models.Deck)}
}

func (m *memoryDeckStore) Create(_ context.Context, deck *models.Deck) error {
	deck.ID = uuid.New()
	deck.CreatedAt = time.Now()
	m.decks[deck.ID] = deck
	return nil
}

func (m *memoryDeckStore) GetByID(_ context.Context, id uuid.UUID) (*models.Deck, error) {
	if d, ok := m.decks[id]; ok {
		return d, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memoryDeckStore) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Deck, error) {
	var out []models.Deck
	for _, d := range m.decks {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memoryDeckStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.decks, id)
	return nil
}

func (m *memoryDeckStore) TouchLastStudied(_ context.Context, id uuid.UUID) error {
	now := time.Now()
	m.decks[id].LastStudied = &now
	return nil
}

func sampleCards() models.CardSet {
	return models.CardSet{
		models.CategoryMain: {
			{Question: "What is a deck?", Answer: "A saved set of flashcards."},
		},
	}
}

func TestDeckSave_Success(t *testing.T) {
	svc := NewDeckService(newMemoryDeckStore())
	owner := uuid.New()

	deck, err := svc.Save(context.Background(), owner, models.SaveDeckRequest{
		Title: "  Biology 101  ",
		Cards: sampleCards(),
	})

	require.NoError(t, err)
	assert.Equal(t, "Biology 101", deck.Title)
	assert.Equal(t, 1, deck.CardCount)
	assert.Equal(t, owner, deck.UserID)
}

func TestDeckSave_RejectsEmptyTitleAndCards(t *testing.T) {
	svc := NewDeckService(newMemoryDeckStore())

	_, err := svc.Save(context.Background(), uuid.New(), models.SaveDeckRequest{})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Fields, 2)
}

func TestDeckValidateSave(t *testing.T) {
	svc := NewDeckService(newMemoryDeckStore())

	err := svc.ValidateSave(models.SaveDeckRequest{Title: "Valid", Cards: sampleCards()})
	assert.NoError(t, err)

	err = svc.ValidateSave(models.SaveDeckRequest{Title: "   ", Cards: models.CardSet{}})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "title")
	assert.Contains(t, vErr.Fields, "cards")
}

func TestDeckGet_NotFound(t *testing.T) {
	svc := NewDeckService(newMemoryDeckStore())

	_, err := svc.Get(context.Background(), uuid.New(), uuid.New())

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestDeckGet_ForbiddenForOtherUser(t *testing.T) {
	store := newMemoryDeckStore()
	svc := NewDeckService(store)
	owner := uuid.New()

	deck, err := svc.Save(context.Background(), owner, models.SaveDeckRequest{Title: "Private", Cards: sampleCards()})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New(), deck.ID)

	var fErr *ForbiddenError
	require.ErrorAs(t, err, &fErr)
}

func TestDeckDelete_ChecksOwnership(t *testing.T) {
	store := newMemoryDeckStore()
	svc := NewDeckService(store)
	owner := uuid.New()

	deck, err := svc.Save(context.Background(), owner, models.SaveDeckRequest{Title: "Mine", Cards: sampleCards()})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), uuid.New(), deck.ID)
	var fErr *ForbiddenError
	require.ErrorAs(t, err, &fErr)
	assert.Len(t, store.decks, 1)

	require.NoError(t, svc.Delete(context.Background(), owner, deck.ID))
	assert.Empty(t, store.decks)
}

func TestDeckStudy_TouchesLastStudied(t *testing.T) {
	store := newMemoryDeckStore()
	svc := NewDeckService(store)
	owner := uuid.New()

	deck, err := svc.Save(context.Background(), owner, models.SaveDeckRequest{Title: "Study me", Cards: sampleCards()})
	require.NoError(t, err)
	require.Nil(t, deck.LastStudied)

	_, err = svc.Study(context.Background(), owner, deck.ID)

	require.NoError(t, err)
	assert.NotNil(t, store.decks[deck.ID].LastStudied)
}
