package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/bizradar/poi-ingest/pkg/apperrors"
	"github.com/bizradar/poi-ingest/pkg/logging"
	"github.com/bizradar/poi-ingest/pkg/models"
	"github.com/bizradar/poi-ingest/pkg/ratelimit"
	"github.com/bizradar/poi-ingest/pkg/retry"
)

const (
	// pageTokenActivationDelay is how long a next_page_token takes to
	// become valid after it is issued. Reusing it earlier fails with
	// INVALID_REQUEST.
	pageTokenActivationDelay = 2 * time.Second

	// detailRetryDelay is the fixed wait between detail fetch attempts.
	detailRetryDelay = 1500 * time.Millisecond

	// detailAttempts is the total attempt budget for a detail fetch
	// before degrading to bare search-result fields.
	detailAttempts = 3

	detailFields = "name,formatted_address,geometry,formatted_phone_number,website,types,rating,user_ratings_total,price_level,opening_hours,editorial_summary,url,photos,reviews"
)

// Client is the primary geographic-search provider: paginated nearby
// search, per-entity detail fetch, and photo media URLs.
type Client interface {
	// SearchNearby returns one page of bare results plus the token for the
	// next page ("" when the result set is exhausted). The client waits
	// out the token activation delay itself before reusing a token.
	SearchNearby(ctx context.Context, center models.Center, radiusMeters int, keyword, pageToken string) ([]models.PlaceResult, string, error)

	// Details fetches the rich record for one place. A response missing
	// all always-present fields counts as incomplete and is retried on a
	// fixed delay; once the attempt budget is exhausted a zero detail is
	// returned with a nil error so the caller degrades instead of
	// aborting. Authentication failures are returned as-is.
	Details(ctx context.Context, placeID string) (models.PlaceDetail, error)

	// PhotoURL builds the media URL for a photo reference.
	PhotoURL(photoRef string, maxWidth int) string
}

type client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	limiter    *ratelimit.Limiter
	logger     *zap.Logger
}

// NewClient creates a primary provider client. Every request consumes one
// slot on the shared limiter.
func NewClient(apiKey, baseURL string, timeout time.Duration, limiter *ratelimit.Limiter, logger *zap.Logger) Client {
	return &client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		baseURL:    baseURL,
		limiter:    limiter,
		logger:     logger.Named("places-client"),
	}
}

var _ Client = (*client)(nil)

type searchResponse struct {
	Status        string      `json:"status"`
	ErrorMessage  string      `json:"error_message"`
	NextPageToken string      `json:"next_page_token"`
	Results       []rawResult `json:"results"`
}

type detailResponse struct {
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message"`
	Result       rawDetail `json:"result"`
}

type rawResult struct {
	PlaceID     string     `json:"place_id"`
	Name        string     `json:"name"`
	Vicinity    string     `json:"vicinity"`
	Geometry    geometry   `json:"geometry"`
	Types       []string   `json:"types"`
	Rating      *float64   `json:"rating"`
	RatingCount *int       `json:"user_ratings_total"`
	PriceLevel  *int       `json:"price_level"`
	Photos      []rawPhoto `json:"photos"`
}

type rawDetail struct {
	Name             string          `json:"name"`
	FormattedAddress string          `json:"formatted_address"`
	Phone            string          `json:"formatted_phone_number"`
	Website          string          `json:"website"`
	Geometry         geometry        `json:"geometry"`
	Types            []string        `json:"types"`
	Rating           *float64        `json:"rating"`
	RatingCount      *int            `json:"user_ratings_total"`
	PriceLevel       *int            `json:"price_level"`
	OpeningHours     json.RawMessage `json:"opening_hours"`
	EditorialSummary *struct {
		Overview string `json:"overview"`
	} `json:"editorial_summary"`
	MapsURL string      `json:"url"`
	Photos  []rawPhoto  `json:"photos"`
	Reviews []rawReview `json:"reviews"`
}

type geometry struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

type rawPhoto struct {
	Reference string `json:"photo_reference"`
}

type rawReview struct {
	Author       string  `json:"author_name"`
	Rating       float64 `json:"rating"`
	Text         string  `json:"text"`
	RelativeTime string  `json:"relative_time_description"`
}

func (c *client) SearchNearby(ctx context.Context, center models.Center, radiusMeters int, keyword, pageToken string) ([]models.PlaceResult, string, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	if pageToken != "" {
		// A fresh token is not active immediately; wait it out before the
		// follow-up call instead of burning a retry on INVALID_REQUEST.
		select {
		case <-time.After(pageTokenActivationDelay):
		case <-ctx.Done():
			return nil, "", ctx.Err()
		}
		params.Set("pagetoken", pageToken)
	} else {
		params.Set("location", fmt.Sprintf("%f,%f", center.Lat, center.Lon))
		params.Set("radius", strconv.Itoa(radiusMeters))
		params.Set("type", keyword)
		params.Set("keyword", keyword)
	}

	var resp searchResponse
	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		resp = searchResponse{}
		if err := c.getJSON(ctx, "/nearbysearch/json", params, &resp); err != nil {
			return err
		}
		return c.statusError(resp.Status, resp.ErrorMessage, pageToken != "")
	})
	if err != nil {
		return nil, "", err
	}

	results := make([]models.PlaceResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, models.PlaceResult{
			PlaceID:     r.PlaceID,
			Name:        r.Name,
			Vicinity:    r.Vicinity,
			Lat:         r.Geometry.Location.Lat,
			Lon:         r.Geometry.Location.Lng,
			Types:       r.Types,
			Rating:      r.Rating,
			RatingCount: r.RatingCount,
			PriceLevel:  r.PriceLevel,
			PhotoRef:    firstPhotoRef(r.Photos),
		})
	}
	return results, resp.NextPageToken, nil
}

func (c *client) Details(ctx context.Context, placeID string) (models.PlaceDetail, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("place_id", placeID)
	params.Set("fields", detailFields)

	cfg := retry.FixedConfig(detailAttempts-1, detailRetryDelay)
	detail, err := retry.DoWithResult(ctx, cfg, func() (models.PlaceDetail, error) {
		var resp detailResponse
		if err := c.getJSON(ctx, "/details/json", params, &resp); err != nil {
			return models.PlaceDetail{}, err
		}
		if err := c.statusError(resp.Status, resp.ErrorMessage, false); err != nil {
			return models.PlaceDetail{}, err
		}
		detail := mapDetail(resp.Result)
		if detail.FormattedAddress == "" && detail.Website == "" {
			return models.PlaceDetail{}, fmt.Errorf("place %s: %w", placeID, apperrors.ErrIncomplete)
		}
		return detail, nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrAuth) {
			return models.PlaceDetail{}, err
		}
		// Degrade rather than abort: the orchestrator persists the record
		// from bare search-result fields only.
		c.logger.Warn("Detail fetch degraded to bare result",
			zap.String("place_id", placeID),
			zap.String("reason", logging.SanitizeError(err)))
		return models.PlaceDetail{}, nil
	}
	return detail, nil
}

func (c *client) PhotoURL(photoRef string, maxWidth int) string {
	if photoRef == "" {
		return ""
	}
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("photoreference", photoRef)
	params.Set("maxwidth", strconv.Itoa(maxWidth))
	return c.baseURL + "/photo?" + params.Encode()
}

// getJSON performs one rate-limited GET and decodes the JSON body.
func (c *client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	c.logger.Debug("Provider request", zap.String("url", logging.SanitizeURL(reqURL)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return fmt.Errorf("status %d from %s: %w", resp.StatusCode, path, apperrors.ErrTransient)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// statusError maps the provider's body-level status onto the error
// taxonomy. usedPageToken widens INVALID_REQUEST to transient, since that
// is what the provider returns for a token that has not activated yet.
func (c *client) statusError(status, message string, usedPageToken bool) error {
	switch status {
	case "OK", "ZERO_RESULTS", "":
		return nil
	case "REQUEST_DENIED":
		return fmt.Errorf("%s: %w", message, apperrors.ErrAuth)
	case "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
		return fmt.Errorf("status %s: %w", status, apperrors.ErrTransient)
	case "INVALID_REQUEST":
		if usedPageToken {
			return fmt.Errorf("page token not yet active: %w", apperrors.ErrTransient)
		}
		return fmt.Errorf("invalid request: %s", message)
	case "NOT_FOUND":
		return fmt.Errorf("status %s: %w", status, apperrors.ErrNotFound)
	default:
		return fmt.Errorf("unexpected provider status %s: %s", status, message)
	}
}

func mapDetail(r rawDetail) models.PlaceDetail {
	d := models.PlaceDetail{
		Name:             r.Name,
		FormattedAddress: r.FormattedAddress,
		Phone:            r.Phone,
		Website:          r.Website,
		Lat:              r.Geometry.Location.Lat,
		Lon:              r.Geometry.Location.Lng,
		Types:            r.Types,
		Rating:           r.Rating,
		RatingCount:      r.RatingCount,
		PriceLevel:       r.PriceLevel,
		OpeningHours:     r.OpeningHours,
		MapsURL:          r.MapsURL,
		PhotoRef:         firstPhotoRef(r.Photos),
	}
	if r.EditorialSummary != nil {
		d.EditorialSummary = r.EditorialSummary.Overview
	}
	for _, rev := range r.Reviews {
		d.Reviews = append(d.Reviews, models.Review{
			Author:       rev.Author,
			Rating:       rev.Rating,
			Text:         rev.Text,
			RelativeTime: rev.RelativeTime,
		})
	}
	return d
}

func firstPhotoRef(photos []rawPhoto) string {
	if len(photos) == 0 {
		return ""
	}
	return photos[0].Reference
}
