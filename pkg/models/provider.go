package models

import "encoding/json"

// PlaceResult is the bare record returned by the primary provider's paged
// nearby search, before the richer per-entity detail call.
type PlaceResult struct {
	PlaceID     string
	Name        string
	Vicinity    string // short-form address
	Lat         float64
	Lon         float64
	Types       []string
	Rating      *float64
	RatingCount *int
	PriceLevel  *int
	PhotoRef    string
}

// PlaceDetail is the primary provider's per-entity detail response.
// A zero PlaceDetail means the detail fetch degraded after exhausting its
// retry budget; the reconciler then falls back to bare-result fields.
type PlaceDetail struct {
	Name             string
	FormattedAddress string
	Phone            string
	Website          string
	Lat              float64
	Lon              float64
	Types            []string
	Rating           *float64
	RatingCount      *int
	PriceLevel       *int
	OpeningHours     json.RawMessage
	EditorialSummary string
	MapsURL          string
	PhotoRef         string
	Reviews          []Review
}

// IsZero reports whether the detail carries none of the fields a valid
// response always has. Used to detect a degraded (empty) detail.
func (d PlaceDetail) IsZero() bool {
	return d.Name == "" && d.FormattedAddress == "" && d.Website == ""
}

// MatchResult is the normalized subset of the secondary provider's
// top-ranked search hit. Nil means no enrichment is available.
type MatchResult struct {
	YelpID    string
	Phone     string
	URL       string // canonical website or review-profile URL
	PriceTier string // "$".."$$$$"
	Address   string // street address line, may be empty
}

// PriceLevel converts the secondary provider's dollar-sign tier into the
// primary provider's numeric price level. Returns nil for an empty tier.
func (m *MatchResult) PriceLevel() *int {
	if m == nil || m.PriceTier == "" {
		return nil
	}
	level := len(m.PriceTier)
	return &level
}

// ScrapeResult is the best-effort output of scraping a business's own
// website. Nil means the scrape was skipped or failed.
type ScrapeResult struct {
	Description string
	MenuLinks   []string // at most 3, document order
}
