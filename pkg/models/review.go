package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is an append-only child of Business captured from the primary
// provider's detail response. Reviews carry no external identity, so
// repeated ingestion of the same business duplicates them; this is a known
// limitation of the source data.
type Review struct {
	ID           uuid.UUID `json:"id"`
	BusinessID   uuid.UUID `json:"business_id"`
	Author       string    `json:"author"`
	Rating       float64   `json:"rating"`
	Text         string    `json:"text"`
	RelativeTime string    `json:"relative_time"` // provider label, e.g. "2 months ago"
	CreatedAt    time.Time `json:"created_at"`
}
