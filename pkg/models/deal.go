package models

import (
	"time"

	"github.com/google/uuid"
)

// DealValidityDays is the length of the promotional window synthesized for
// every ingested business.
const DealValidityDays = 30

// Deal is a promotional offer synthesized once per ingestion pass from the
// configured category→offer table. Append-only, never upserted.
type Deal struct {
	ID          uuid.UUID `json:"id"`
	BusinessID  uuid.UUID `json:"business_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ValidFrom   time.Time `json:"valid_from"`
	ValidUntil  time.Time `json:"valid_until"`
	CreatedAt   time.Time `json:"created_at"`
}
