package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bizradar/poi-ingest/pkg/database"
	"github.com/bizradar/poi-ingest/pkg/models"
)

// MaxReviewsPerIngestion caps how many reviews are stored per ingestion of
// a business.
const MaxReviewsPerIngestion = 5

// ReviewRepository stores provider reviews. Append-only: reviews carry no
// external identity, so re-ingesting a business duplicates its reviews.
type ReviewRepository interface {
	// Append inserts at most the first MaxReviewsPerIngestion reviews, in
	// the order supplied.
	Append(ctx context.Context, businessID uuid.UUID, reviews []models.Review) error
}

type reviewRepository struct {
	q database.Querier
}

// NewReviewRepository creates a review repository.
func NewReviewRepository(q database.Querier) ReviewRepository {
	return &reviewRepository{q: q}
}

var _ ReviewRepository = (*reviewRepository)(nil)

func (r *reviewRepository) Append(ctx context.Context, businessID uuid.UUID, reviews []models.Review) error {
	if len(reviews) > MaxReviewsPerIngestion {
		reviews = reviews[:MaxReviewsPerIngestion]
	}

	query := `
		INSERT INTO google_reviews (id, business_id, author, rating, review_text, relative_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`

	for _, review := range reviews {
		_, err := r.q.Exec(ctx, query,
			uuid.New(),
			businessID,
			review.Author,
			review.Rating,
			review.Text,
			review.RelativeTime,
		)
		if err != nil {
			return fmt.Errorf("failed to append review for business %s: %w", businessID, err)
		}
	}
	return nil
}
