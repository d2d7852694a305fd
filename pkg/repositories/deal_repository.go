package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bizradar/poi-ingest/pkg/database"
	"github.com/bizradar/poi-ingest/pkg/models"
)

// DealRepository synthesizes and stores one promotional offer per
// ingestion pass. Append-only, like reviews.
type DealRepository interface {
	// Append inserts one offer for the business's category, with a
	// validity window of [today, today+30d). Unknown categories get the
	// generic fallback text.
	Append(ctx context.Context, businessID uuid.UUID, category string) error
}

// OfferTable resolves a category to its promotional offer text.
type OfferTable interface {
	OfferText(category string) string
}

type dealRepository struct {
	q      database.Querier
	offers OfferTable
}

// NewDealRepository creates a deal repository with the configured
// category→offer table.
func NewDealRepository(q database.Querier, offers OfferTable) DealRepository {
	return &dealRepository{q: q, offers: offers}
}

var _ DealRepository = (*dealRepository)(nil)

func (r *dealRepository) Append(ctx context.Context, businessID uuid.UUID, category string) error {
	now := time.Now()
	validFrom := now.Truncate(24 * time.Hour)
	validUntil := validFrom.AddDate(0, 0, models.DealValidityDays)

	query := `
		INSERT INTO deals (id, business_id, title, description, valid_from, valid_until, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`

	_, err := r.q.Exec(ctx, query,
		uuid.New(),
		businessID,
		fmt.Sprintf("New customer offer (%s)", category),
		r.offers.OfferText(category),
		validFrom,
		validUntil,
	)
	if err != nil {
		return fmt.Errorf("failed to append deal for business %s: %w", businessID, err)
	}
	return nil
}
