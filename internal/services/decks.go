package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"cardforge-backend/internal/models"
)

// DeckStore is the persistence boundary for saved decks.
type DeckStore interface {
	Create(ctx context.Context, deck *models.Deck) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Deck, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Deck, error)
	Delete(ctx context.Context, id uuid.UUID) error
	TouchLastStudied(ctx context.Context, id uuid.UUID) error
}

// DeckService owns deck lifecycle rules: ownership checks, immutable card
// content, and the last-studied timestamp.
type DeckService struct {
	decks DeckStore
}

func NewDeckService(decks DeckStore) *DeckService {
	return &DeckService{decks: decks}
}

// ValidateSave checks a save request without persisting anything. The
// handler runs it for anonymous saves too, so a bad deck is rejected the
// same way whether or not it would be stored server-side.
func (s *DeckService) ValidateSave(req models.SaveDeckRequest) error {
	fieldErrors := make(map[string]string)

	if strings.TrimSpace(req.Title) == "" {
		fieldErrors["title"] = "Title is required"
	}
	if req.Cards.TotalCards() == 0 {
		fieldErrors["cards"] = "Deck must contain at least one card"
	}
	if len(fieldErrors) > 0 {
		return &ValidationError{Fields: fieldErrors}
	}
	return nil
}

func (s *DeckService) Save(ctx context.Context, userID uuid.UUID, req models.SaveDeckRequest) (*models.Deck, error) {
	if err := s.ValidateSave(req); err != nil {
		return nil, err
	}

	deck := &models.Deck{
		UserID:    userID,
		Title:     strings.TrimSpace(req.Title),
		Cards:     req.Cards.Clone(),
		CardCount: req.Cards.TotalCards(),
	}

	if err := s.decks.Create(ctx, deck); err != nil {
		return nil, err
	}
	return deck, nil
}

func (s *DeckService) Get(ctx context.Context, userID, deckID uuid.UUID) (*models.Deck, error) {
	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Deck not found"}
		}
		return nil, err
	}

	if deck.UserID != userID {
		return nil, &ForbiddenError{Message: "You do not have access to this deck"}
	}
	return deck, nil
}

func (s *DeckService) List(ctx context.Context, userID uuid.UUID) ([]models.Deck, error) {
	return s.decks.ListByUser(ctx, userID)
}

func (s *DeckService) Delete(ctx context.Context, userID, deckID uuid.UUID) error {
	if _, err := s.Get(ctx, userID, deckID); err != nil {
		return err
	}
	return s.decks.Delete(ctx, deckID)
}

// Study records a study pass over the deck and returns it with card order
// preserved.
func (s *DeckService) Study(ctx context.Context, userID, deckID uuid.UUID) (*models.Deck, error) {
	deck, err := s.Get(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}

	if err := s.decks.TouchLastStudied(ctx, deckID); err != nil {
		return nil, err
	}
	return deck, nil
}
