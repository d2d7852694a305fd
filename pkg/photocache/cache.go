package photocache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/bizradar/poi-ingest/pkg/logging"
)

const placeholderName = "placeholder.jpg"

// placeholderJPEG is a minimal 1x1 white JPEG written on first use so the
// placeholder path always resolves to a real file.
var placeholderJPEG = []byte{
	0xff, 0xd8, 0xff, 0xdb, 0x00, 0x43, 0x00, 0x03, 0x02, 0x02, 0x02, 0x02,
	0x02, 0x03, 0x02, 0x02, 0x02, 0x03, 0x03, 0x03, 0x03, 0x04, 0x06, 0x04,
	0x04, 0x04, 0x04, 0x04, 0x08, 0x06, 0x06, 0x05, 0x06, 0x09, 0x08, 0x0a,
	0x0a, 0x09, 0x08, 0x09, 0x09, 0x0a, 0x0c, 0x0f, 0x0c, 0x0a, 0x0b, 0x0e,
	0x0b, 0x09, 0x09, 0x0d, 0x11, 0x0d, 0x0e, 0x0f, 0x10, 0x10, 0x11, 0x10,
	0x0a, 0x0c, 0x12, 0x13, 0x12, 0x10, 0x13, 0x0f, 0x10, 0x10, 0x10, 0xff,
	0xc9, 0x00, 0x0b, 0x08, 0x00, 0x01, 0x00, 0x01, 0x01, 0x01, 0x11, 0x00,
	0xff, 0xcc, 0x00, 0x06, 0x00, 0x10, 0x10, 0x05, 0xff, 0xda, 0x00, 0x08,
	0x01, 0x01, 0x00, 0x00, 0x3f, 0x00, 0xd2, 0xcf, 0x20, 0xff, 0xd9,
}

// Cache is a content cache for business photos, addressed by the primary
// provider's external id. Lookups are cache-first and never fail: any
// fetch problem falls back to a shared placeholder asset.
type Cache interface {
	// Fetch returns the local path for the business's photo. An existing
	// cached file short-circuits without a network call; an empty photoURL
	// resolves straight to the placeholder.
	Fetch(ctx context.Context, photoURL, externalID string) string
}

type cache struct {
	dir        string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a photo cache rooted at dir, creating it if needed.
func New(dir string, timeout time.Duration, logger *zap.Logger) (Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create photo cache dir: %w", err)
	}
	return &cache{
		dir:        dir,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("photo-cache"),
	}, nil
}

var _ Cache = (*cache)(nil)

func (c *cache) Fetch(ctx context.Context, photoURL, externalID string) string {
	path := filepath.Join(c.dir, externalID+".jpg")
	if _, err := os.Stat(path); err == nil {
		return path
	}

	if photoURL == "" {
		return c.placeholder()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		return c.placeholder()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Photo fetch failed",
			zap.String("external_id", externalID),
			zap.String("reason", logging.SanitizeError(err)))
		return c.placeholder()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Photo fetch returned non-OK status",
			zap.String("external_id", externalID),
			zap.Int("status", resp.StatusCode))
		return c.placeholder()
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.placeholder()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.logger.Warn("Photo cache write failed",
			zap.String("path", path), zap.Error(err))
		return c.placeholder()
	}
	return path
}

// placeholder returns the shared placeholder path, lazily creating the
// asset.
func (c *cache) placeholder() string {
	path := filepath.Join(c.dir, placeholderName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, placeholderJPEG, 0o644); err != nil {
			c.logger.Warn("Placeholder write failed", zap.Error(err))
		}
	}
	return path
}
