package models

import (
	"time"

	"github.com/google/uuid"
)

// Extras holds best-effort data scraped from a business's own website.
// At most one row per business; upserted on the business id.
type Extras struct {
	BusinessID      uuid.UUID `json:"business_id"`
	MetaDescription string    `json:"meta_description"`
	MenuLinks       []string  `json:"menu_links"` // at most 3, document order
	UpdatedAt       time.Time `json:"updated_at"`
}
