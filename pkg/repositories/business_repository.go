package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bizradar/poi-ingest/pkg/database"
	"github.com/bizradar/poi-ingest/pkg/models"
)

// BusinessRepository persists canonical businesses.
type BusinessRepository interface {
	// Upsert inserts the business or, when the place id already exists,
	// overwrites every mutable field and bumps updated_at. Returns the
	// stable internal id in both branches.
	Upsert(ctx context.Context, b *models.Business) (uuid.UUID, error)

	// CountAll returns the number of stored businesses; used for the
	// end-of-run summary.
	CountAll(ctx context.Context) (int, error)
}

type businessRepository struct {
	q database.Querier
}

// NewBusinessRepository creates a business repository over the given
// querier (pool or run transaction).
func NewBusinessRepository(q database.Querier) BusinessRepository {
	return &businessRepository{q: q}
}

var _ BusinessRepository = (*businessRepository)(nil)

func (r *businessRepository) Upsert(ctx context.Context, b *models.Business) (uuid.UUID, error) {
	query := `
		INSERT INTO businesses (
			id, google_place_id, yelp_id, name, category, address, lat, lon,
			phone, website, rating, rating_count, price_level, opening_hours,
			description, photo_path, maps_url, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, now(), now())
		ON CONFLICT (google_place_id) DO UPDATE SET
			yelp_id = COALESCE(businesses.yelp_id, EXCLUDED.yelp_id),
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			address = EXCLUDED.address,
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			phone = EXCLUDED.phone,
			website = EXCLUDED.website,
			rating = EXCLUDED.rating,
			rating_count = EXCLUDED.rating_count,
			price_level = EXCLUDED.price_level,
			opening_hours = EXCLUDED.opening_hours,
			description = EXCLUDED.description,
			photo_path = EXCLUDED.photo_path,
			maps_url = EXCLUDED.maps_url,
			updated_at = now()
		RETURNING id, created_at, updated_at`

	var openingHours any
	if len(b.OpeningHours) > 0 {
		openingHours = []byte(b.OpeningHours)
	}

	var id uuid.UUID
	err := r.q.QueryRow(ctx, query,
		uuid.New(),
		b.PlaceID,
		b.YelpID,
		b.Name,
		b.Category,
		b.Address,
		b.Lat,
		b.Lon,
		b.Phone,
		b.Website,
		b.Rating,
		b.RatingCount,
		b.PriceLevel,
		openingHours,
		b.Description,
		b.PhotoPath,
		b.MapsURL,
	).Scan(&id, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert business %s: %w", b.PlaceID, err)
	}

	b.ID = id
	return id, nil
}

func (r *businessRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.q.QueryRow(ctx, "SELECT COUNT(*) FROM businesses").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count businesses: %w", err)
	}
	return count, nil
}
