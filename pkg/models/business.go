package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ContactUnknown is the sentinel stored when neither provider supplied a
// phone number or website. Downstream consumers treat it as "no contact
// info"; it is never null in the store.
const ContactUnknown = "N/A"

// Business is the canonical reconciled record, one per unique primary
// provider place id. All provider-native records are merged into this shape
// by the reconciler before persistence.
type Business struct {
	ID          uuid.UUID `json:"id"`
	PlaceID     string    `json:"google_place_id"` // primary provider identity, sole upsert key
	YelpID      *string   `json:"yelp_id,omitempty"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Address     string    `json:"address"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Phone       string    `json:"phone"`
	Website     string    `json:"website"`
	Rating      *float64  `json:"rating,omitempty"`
	RatingCount *int      `json:"rating_count,omitempty"`
	PriceLevel  *int      `json:"price_level,omitempty"`
	// OpeningHours is the provider's structured hours blob, stored as-is.
	OpeningHours json.RawMessage `json:"opening_hours,omitempty"`
	Description  *string         `json:"description,omitempty"`
	PhotoPath    string          `json:"photo_path"`
	MapsURL      *string         `json:"maps_url,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// HasContact reports whether the value is a real contact field rather than
// the unknown sentinel or empty.
func HasContact(v string) bool {
	return v != "" && v != ContactUnknown
}
