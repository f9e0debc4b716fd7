package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"cardforge-backend/internal/models"
)

// DeckRepo stores decks with their card content serialized as a JSON blob.
// Card content never changes after creation.
type DeckRepo struct {
	pool *pgxpool.Pool
}

func NewDeckRepo(pool *pgxpool.Pool) *DeckRepo {
	return &DeckRepo{pool: pool}
}

func (r *DeckRepo) Create(ctx context.Context, d *models.Deck) error {
	d.ID = uuid.New()

	cardsBytes, err := json.Marshal(d.Cards)
	if err != nil {
		return fmt.Errorf("failed to serialize deck cards: %w", err)
	}

	query := `INSERT INTO decks (id, user_id, title, cards_json, card_count)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		d.ID, d.UserID, d.Title, cardsBytes, d.CardCount,
	).Scan(&d.CreatedAt)
}

func (r *DeckRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Deck, error) {
	d := &models.Deck{}
	var cardsBytes []byte

	query := `SELECT id, user_id, title, cards_json, card_count, created_at, last_studied
		FROM decks WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.UserID, &d.Title, &cardsBytes, &d.CardCount, &d.CreatedAt, &d.LastStudied,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(cardsBytes, &d.Cards); err != nil {
		return nil, fmt.Errorf("failed to decode deck cards: %w", err)
	}
	return d, nil
}

// ListByUser returns deck metadata without card content, newest first.
func (r *DeckRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Deck, error) {
	query := `SELECT id, user_id, title, card_count, created_at, last_studied
		FROM decks WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decks []models.Deck
	for rows.Next() {
		d := models.Deck{}
		if err := rows.Scan(&d.ID, &d.UserID, &d.Title, &d.CardCount, &d.CreatedAt, &d.LastStudied); err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

func (r *DeckRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM decks WHERE id = $1", id)
	return err
}

func (r *DeckRepo) TouchLastStudied(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE decks SET last_studied = NOW() WHERE id = $1", id)
	return err
}
