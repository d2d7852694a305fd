package yelp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/bizradar/poi-ingest/pkg/logging"
	"github.com/bizradar/poi-ingest/pkg/models"
	"github.com/bizradar/poi-ingest/pkg/ratelimit"
)

// Client is the secondary enrichment provider. It is strictly best-effort:
// a lookup never fails the pipeline, it only returns nil.
type Client interface {
	// Match returns the top-ranked search hit for the business name near
	// the given coordinates, or nil when no match is available. The top
	// hit is accepted without a similarity threshold, so a result is a
	// candidate enrichment, not an authoritative identity claim.
	Match(ctx context.Context, name string, lat, lon float64) *models.MatchResult
}

type client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	limiter    *ratelimit.Limiter
	logger     *zap.Logger
}

// NewClient creates a secondary provider client.
func NewClient(apiKey, baseURL string, timeout time.Duration, limiter *ratelimit.Limiter, logger *zap.Logger) Client {
	return &client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		baseURL:    baseURL,
		limiter:    limiter,
		logger:     logger.Named("yelp-client"),
	}
}

var _ Client = (*client)(nil)

type searchResponse struct {
	Businesses []rawBusiness `json:"businesses"`
}

type rawBusiness struct {
	ID       string `json:"id"`
	Phone    string `json:"display_phone"`
	URL      string `json:"url"`
	Price    string `json:"price"`
	Location struct {
		Address1 string `json:"address1"`
	} `json:"location"`
}

func (c *client) Match(ctx context.Context, name string, lat, lon float64) *models.MatchResult {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil
	}

	params := url.Values{}
	params.Set("term", name)
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("limit", "1")
	params.Set("sort_by", "best_match")

	reqURL := c.baseURL + "/businesses/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Warn("Enrichment request build failed", zap.Error(err))
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport and auth failures are logged and swallowed: enrichment
		// must never abort ingestion of a record.
		c.logger.Warn("Enrichment lookup failed",
			zap.String("name", name),
			zap.String("reason", logging.SanitizeError(err)))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Enrichment lookup rejected",
			zap.String("name", name),
			zap.Int("status", resp.StatusCode))
		return nil
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn("Enrichment response decode failed",
			zap.String("name", name), zap.Error(err))
		return nil
	}
	if len(body.Businesses) == 0 {
		c.logger.Debug("No enrichment match", zap.String("name", name))
		return nil
	}

	hit := body.Businesses[0]
	return &models.MatchResult{
		YelpID:    hit.ID,
		Phone:     hit.Phone,
		URL:       hit.URL,
		PriceTier: hit.Price,
		Address:   hit.Location.Address1,
	}
}
