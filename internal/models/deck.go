package models

import (
	"time"

	"github.com/google/uuid"
)

// Deck is a named, timestamped CardSet owned by a user. Card content is
// immutable after creation; only LastStudied is updated afterwards.
type Deck struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Cards       CardSet    `json:"cards"`
	CardCount   int        `json:"card_count"`
	CreatedAt   time.Time  `json:"created_at"`
	LastStudied *time.Time `json:"last_studied"`
}

type SaveDeckRequest struct {
	Title string  `json:"title"`
	Cards CardSet `json:"cards"`
}
