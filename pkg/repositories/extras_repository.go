package repositories

import (
	"context"
	"fmt"

	"github.com/bizradar/poi-ingest/pkg/database"
	"github.com/bizradar/poi-ingest/pkg/models"
)

// ExtrasRepository stores scraped website extras, at most one row per
// business. The only child record with update semantics.
type ExtrasRepository interface {
	// Upsert inserts or overwrites the extras row for the business.
	Upsert(ctx context.Context, extras *models.Extras) error
}

type extrasRepository struct {
	q database.Querier
}

// NewExtrasRepository creates an extras repository.
func NewExtrasRepository(q database.Querier) ExtrasRepository {
	return &extrasRepository{q: q}
}

var _ ExtrasRepository = (*extrasRepository)(nil)

func (r *extrasRepository) Upsert(ctx context.Context, extras *models.Extras) error {
	query := `
		INSERT INTO business_extras (business_id, meta_description, menu_links, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (business_id) DO UPDATE SET
			meta_description = EXCLUDED.meta_description,
			menu_links = EXCLUDED.menu_links,
			updated_at = now()`

	_, err := r.q.Exec(ctx, query,
		extras.BusinessID,
		extras.MetaDescription,
		extras.MenuLinks,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert extras for business %s: %w", extras.BusinessID, err)
	}
	return nil
}
