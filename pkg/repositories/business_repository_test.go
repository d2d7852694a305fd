//go:build integration

package repositories

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizradar/poi-ingest/pkg/models"
	"github.com/bizradar/poi-ingest/pkg/testhelpers"
)

func sampleBusiness(placeID string) *models.Business {
	rating := 4.2
	count := 37
	return &models.Business{
		PlaceID:     placeID,
		Name:        "Alpha Diner",
		Category:    "restaurant",
		Address:     "12 Short St",
		Lat:         47.75,
		Lon:         -122.2,
		Phone:       "(555) 010-0000",
		Website:     "https://alpha.test",
		Rating:      &rating,
		RatingCount: &count,
		PhotoPath:   "/cache/p1.jpg",
	}
}

func cleanupBusinesses(t *testing.T, db *testhelpers.IngestDB) {
	t.Helper()
	_, err := db.DB.Exec(context.Background(), "DELETE FROM businesses")
	require.NoError(t, err)
}

func TestUpsertInsertsAndReturnsID(t *testing.T) {
	db := testhelpers.GetIngestDB(t)
	t.Cleanup(func() { cleanupBusinesses(t, db) })
	repo := NewBusinessRepository(db.DB)

	b := sampleBusiness("upsert-p1")
	b.OpeningHours = json.RawMessage(`{"weekday_text":["Monday: 9-5"]}`)

	id, err := repo.Upsert(context.Background(), b)

	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, id, b.ID)
	assert.False(t, b.UpdatedAt.IsZero())
}

func TestUpsertIsIdempotentOnPlaceID(t *testing.T) {
	db := testhelpers.GetIngestDB(t)
	t.Cleanup(func() { cleanupBusinesses(t, db) })
	repo := NewBusinessRepository(db.DB)
	ctx := context.Background()

	first := sampleBusiness("upsert-p2")
	firstID, err := repo.Upsert(ctx, first)
	require.NoError(t, err)
	firstUpdatedAt := first.UpdatedAt

	second := sampleBusiness("upsert-p2")
	second.Name = "Alpha Diner Renamed"
	second.Phone = models.ContactUnknown
	secondID, err := repo.Upsert(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, firstID, secondID, "internal id is stable across upserts")
	assert.True(t, second.UpdatedAt.After(firstUpdatedAt), "updated_at strictly increases")

	var count int
	var name, phone string
	err = db.DB.QueryRow(ctx,
		"SELECT COUNT(*) OVER (), name, phone FROM businesses WHERE google_place_id = $1",
		"upsert-p2").Scan(&count, &name, &phone)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "exactly one row per place id")
	assert.Equal(t, "Alpha Diner Renamed", name, "fields equal the second ingestion's output")
	assert.Equal(t, models.ContactUnknown, phone)
}

func TestUpsertKeepsExistingSecondaryID(t *testing.T) {
	db := testhelpers.GetIngestDB(t)
	t.Cleanup(func() { cleanupBusinesses(t, db) })
	repo := NewBusinessRepository(db.DB)
	ctx := context.Background()

	first := sampleBusiness("upsert-p3")
	yelpID := "alpha-diner"
	first.YelpID = &yelpID
	_, err := repo.Upsert(ctx, first)
	require.NoError(t, err)

	// A later run without an enrichment match must not clear the id.
	second := sampleBusiness("upsert-p3")
	_, err = repo.Upsert(ctx, second)
	require.NoError(t, err)

	var stored *string
	err = db.DB.QueryRow(ctx,
		"SELECT yelp_id FROM businesses WHERE google_place_id = $1", "upsert-p3").Scan(&stored)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "alpha-diner", *stored)
}

func TestCountAll(t *testing.T) {
	db := testhelpers.GetIngestDB(t)
	t.Cleanup(func() { cleanupBusinesses(t, db) })
	repo := NewBusinessRepository(db.DB)
	ctx := context.Background()

	before, err := repo.CountAll(ctx)
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, sampleBusiness("count-p1"))
	require.NoError(t, err)

	after, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}
