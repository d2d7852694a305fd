package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the ingestion run.
// Configuration can come from YAML file (config.yaml) or environment
// variables; environment variables always override YAML values. Secrets
// (API keys, database URL) must only come from environment variables.
type Config struct {
	Env string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`

	// Primary geographic-search provider credentials. Required.
	PrimaryAPIKey string `yaml:"-" env:"PRIMARY_API_KEY"`

	// Secondary enrichment provider credentials. Optional: an empty value
	// disables enrichment silently.
	SecondaryAPIKey string `yaml:"-" env:"SECONDARY_API_KEY"`

	// PostgreSQL connection string. Required.
	DatabaseURL string `yaml:"-" env:"DATABASE_URL"`

	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`

	Ingest    IngestConfig   `yaml:"ingest"`
	Providers ProviderConfig `yaml:"providers"`

	// Offers maps a search category to the promotional offer text
	// synthesized for businesses ingested under it. Defaults are compiled
	// in; a YAML mapping replaces them wholesale.
	Offers map[string]string `yaml:"offers"`
}

// IngestConfig holds the search geometry and run bounds.
type IngestConfig struct {
	CenterLat     float64 `yaml:"center_lat" env:"INGEST_CENTER_LAT" env-default:"47.7599"`
	CenterLon     float64 `yaml:"center_lon" env:"INGEST_CENTER_LON" env-default:"-122.2050"`
	RadiusMeters  int     `yaml:"radius_meters" env:"INGEST_RADIUS_METERS" env-default:"3000"`
	TargetCount   int     `yaml:"target_count" env:"INGEST_TARGET_COUNT" env-default:"200"`
	CategoriesStr string  `yaml:"categories" env:"INGEST_CATEGORIES" env-default:"restaurant,cafe,bakery,bar,gym,salon"`
	PhotoCacheDir string  `yaml:"photo_cache_dir" env:"PHOTO_CACHE_DIR" env-default:"./photo_cache"`

	// Categories is parsed from CategoriesStr, order preserved.
	Categories []string `yaml:"-"`
}

// ProviderConfig holds per-provider HTTP settings. Base URLs are
// overridable so tests can point clients at local servers.
type ProviderConfig struct {
	PrimaryBaseURL   string `yaml:"primary_base_url" env:"PRIMARY_BASE_URL" env-default:"https://maps.googleapis.com/maps/api/place"`
	SecondaryBaseURL string `yaml:"secondary_base_url" env:"SECONDARY_BASE_URL" env-default:"https://api.yelp.com/v3"`
	RateLimitMS      int    `yaml:"rate_limit_ms" env:"PROVIDER_RATE_LIMIT_MS" env-default:"200"`
	TimeoutSeconds   int    `yaml:"timeout_seconds" env:"PROVIDER_TIMEOUT_SECONDS" env-default:"10"`
}

// defaultOffers is the compiled-in category→offer-text table, used when the
// config file supplies none.
const defaultOffers = `
restaurant: "10% off your first dine-in order"
cafe: "Free pastry with any large coffee"
bakery: "Buy one dozen, get 3 free"
bar: "Happy hour pricing 4-6pm all week"
gym: "First month free with annual signup"
salon: "15% off your first appointment"
`

// FallbackOfferText is used for categories absent from the offers table.
const FallbackOfferText = "Special welcome offer for new customers"

// Load reads configuration from config.yaml (if present) with environment
// variable overrides, validates required secrets, and parses derived
// fields. Missing required values fail fast.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.parseComplexFields(); err != nil {
		return nil, fmt.Errorf("failed to parse config fields: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseComplexFields handles fields that need post-processing after loading.
func (c *Config) parseComplexFields() error {
	c.Ingest.Categories = splitList(c.Ingest.CategoriesStr)

	if len(c.Offers) == 0 {
		offers := make(map[string]string)
		if err := yaml.Unmarshal([]byte(defaultOffers), &offers); err != nil {
			return fmt.Errorf("parse default offers table: %w", err)
		}
		c.Offers = offers
	}
	return nil
}

func (c *Config) validate() error {
	if c.PrimaryAPIKey == "" {
		return fmt.Errorf("PRIMARY_API_KEY is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Ingest.TargetCount <= 0 {
		return fmt.Errorf("ingest target_count must be positive, got %d", c.Ingest.TargetCount)
	}
	if len(c.Ingest.Categories) == 0 {
		return fmt.Errorf("ingest categories must not be empty")
	}
	return nil
}

// SecondaryEnabled reports whether enrichment lookups should run.
func (c *Config) SecondaryEnabled() bool {
	return c.SecondaryAPIKey != ""
}

// OfferText returns the offer text for a category, falling back to the
// generic text for unknown categories.
func (c *Config) OfferText(category string) string {
	if text, ok := c.Offers[category]; ok {
		return text
	}
	return FallbackOfferText
}

// splitList parses a comma-separated list, trimming whitespace and
// dropping empty entries, order preserved.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
