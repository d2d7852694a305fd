package places

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bizradar/poi-ingest/pkg/apperrors"
	"github.com/bizradar/poi-ingest/pkg/models"
	"github.com/bizradar/poi-ingest/pkg/ratelimit"
)

func newTestClient(t *testing.T, handler http.Handler) (Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient("test-key", server.URL, 5*time.Second, ratelimit.New(0), zap.NewNop())
	return client, server
}

func TestSearchNearbyMapsResults(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nearbysearch/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "restaurant", r.URL.Query().Get("keyword"))
		fmt.Fprint(w, `{
			"status": "OK",
			"results": [{
				"place_id": "p1",
				"name": "Alpha",
				"vicinity": "12 Short St",
				"geometry": {"location": {"lat": 47.5, "lng": -122.2}},
				"types": ["restaurant", "food"],
				"rating": 4.4,
				"user_ratings_total": 120,
				"price_level": 2,
				"photos": [{"photo_reference": "ref-1"}, {"photo_reference": "ref-2"}]
			}]
		}`)
	}))

	results, next, err := client.SearchNearby(context.Background(), models.Center{Lat: 47, Lon: -122}, 3000, "restaurant", "")

	require.NoError(t, err)
	assert.Empty(t, next)
	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, "p1", r.PlaceID)
	assert.Equal(t, "Alpha", r.Name)
	assert.Equal(t, "12 Short St", r.Vicinity)
	assert.Equal(t, 47.5, r.Lat)
	assert.Equal(t, -122.2, r.Lon)
	assert.Equal(t, 4.4, *r.Rating)
	assert.Equal(t, 120, *r.RatingCount)
	assert.Equal(t, 2, *r.PriceLevel)
	assert.Equal(t, "ref-1", r.PhotoRef, "first photo reference wins")
}

func TestSearchNearbyZeroResults(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "ZERO_RESULTS", "results": []}`)
	}))

	results, next, err := client.SearchNearby(context.Background(), models.Center{}, 3000, "cafe", "")

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, next)
}

func TestSearchNearbyAuthFailureNotRetried(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		fmt.Fprint(w, `{"status": "REQUEST_DENIED", "error_message": "key invalid"}`)
	}))

	_, _, err := client.SearchNearby(context.Background(), models.Center{}, 3000, "cafe", "")

	require.ErrorIs(t, err, apperrors.ErrAuth)
	assert.Equal(t, 1, calls)
}

func TestSearchNearbyPageTokenWaitsBeforeReuse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok-1", r.URL.Query().Get("pagetoken"))
		assert.Empty(t, r.URL.Query().Get("location"), "token calls carry the token only")
		fmt.Fprint(w, `{"status": "OK", "results": []}`)
	}))

	start := time.Now()
	_, _, err := client.SearchNearby(context.Background(), models.Center{}, 3000, "cafe", "tok-1")

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), pageTokenActivationDelay)
}

func TestSearchNearbyRetriesTransientStatus(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, `{"status": "OVER_QUERY_LIMIT"}`)
			return
		}
		fmt.Fprint(w, `{"status": "OK", "results": []}`)
	}))

	_, _, err := client.SearchNearby(context.Background(), models.Center{}, 3000, "cafe", "")

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDetailsMapsFullRecord(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/details/json", r.URL.Path)
		assert.Equal(t, "p1", r.URL.Query().Get("place_id"))
		fmt.Fprint(w, `{
			"status": "OK",
			"result": {
				"name": "Alpha",
				"formatted_address": "1 Long Ave, Bothell, WA",
				"formatted_phone_number": "(555) 010-0000",
				"website": "https://alpha.test",
				"geometry": {"location": {"lat": 47.5, "lng": -122.2}},
				"types": ["restaurant"],
				"rating": 4.6,
				"user_ratings_total": 210,
				"opening_hours": {"weekday_text": ["Monday: 9-5"]},
				"editorial_summary": {"overview": "A neighborhood spot."},
				"url": "https://maps.test/p1",
				"photos": [{"photo_reference": "ref-9"}],
				"reviews": [
					{"author_name": "Ann", "rating": 5, "text": "Great", "relative_time_description": "a week ago"}
				]
			}
		}`)
	}))

	detail, err := client.Details(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, "Alpha", detail.Name)
	assert.Equal(t, "1 Long Ave, Bothell, WA", detail.FormattedAddress)
	assert.Equal(t, "https://alpha.test", detail.Website)
	assert.Equal(t, "A neighborhood spot.", detail.EditorialSummary)
	assert.Equal(t, "https://maps.test/p1", detail.MapsURL)
	assert.Equal(t, "ref-9", detail.PhotoRef)
	assert.JSONEq(t, `{"weekday_text": ["Monday: 9-5"]}`, string(detail.OpeningHours))
	require.Len(t, detail.Reviews, 1)
	assert.Equal(t, "Ann", detail.Reviews[0].Author)
	assert.Equal(t, "a week ago", detail.Reviews[0].RelativeTime)
}

func TestDetailsIncompleteDegradesAfterBudget(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		// Name only: neither address nor website, so the response counts
		// as incomplete on every attempt.
		fmt.Fprint(w, `{"status": "OK", "result": {"name": "Alpha"}}`)
	}))

	detail, err := client.Details(context.Background(), "p1")

	require.NoError(t, err, "degrade, not abort")
	assert.True(t, detail.IsZero())
	assert.Equal(t, detailAttempts, calls)
}

func TestDetailsIncompleteThenCompleteRecovers(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 2 {
			fmt.Fprint(w, `{"status": "OK", "result": {"name": "Alpha"}}`)
			return
		}
		fmt.Fprint(w, `{"status": "OK", "result": {"name": "Alpha", "website": "https://alpha.test"}}`)
	}))

	detail, err := client.Details(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, "https://alpha.test", detail.Website)
	assert.Equal(t, 2, calls)
}

func TestDetailsAuthFailurePropagates(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "REQUEST_DENIED", "error_message": "key invalid"}`)
	}))

	_, err := client.Details(context.Background(), "p1")

	require.ErrorIs(t, err, apperrors.ErrAuth)
}

func TestPhotoURL(t *testing.T) {
	client := NewClient("test-key", "https://places.test", time.Second, ratelimit.New(0), zap.NewNop())

	url := client.PhotoURL("ref-1", 640)

	assert.Contains(t, url, "https://places.test/photo?")
	assert.Contains(t, url, "photoreference=ref-1")
	assert.Contains(t, url, "maxwidth=640")
	assert.Empty(t, client.PhotoURL("", 640))
}
