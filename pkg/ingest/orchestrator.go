package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bizradar/poi-ingest/pkg/apperrors"
	"github.com/bizradar/poi-ingest/pkg/models"
	"github.com/bizradar/poi-ingest/pkg/photocache"
	"github.com/bizradar/poi-ingest/pkg/providers/places"
	"github.com/bizradar/poi-ingest/pkg/providers/yelp"
	"github.com/bizradar/poi-ingest/pkg/reconcile"
	"github.com/bizradar/poi-ingest/pkg/repositories"
	"github.com/bizradar/poi-ingest/pkg/scrape"
)

// photoMaxWidth is the width requested from the photo media endpoint.
const photoMaxWidth = 640

// Orchestrator drives the category × pagination ingestion loop: fetch a
// page, pre-filter seen ids, run the per-record chain (detail → enrichment
// → photo → merge → scrape → persist), and stop once the target count is
// reached.
type Orchestrator interface {
	// Run executes one full ingestion pass and returns the number of
	// businesses upserted. Only fatal conditions (provider auth, store
	// failure) return an error; everything else degrades per record.
	Run(ctx context.Context) (int, error)
}

type orchestrator struct {
	rc      *models.RunContext
	places  places.Client
	yelp    yelp.Client // nil when enrichment is disabled
	scraper scrape.Scraper
	photos  photocache.Cache

	businesses repositories.BusinessRepository
	reviews    repositories.ReviewRepository
	deals      repositories.DealRepository
	extras     repositories.ExtrasRepository

	logger *zap.Logger
}

// Deps bundles the orchestrator's collaborators.
type Deps struct {
	RunContext *models.RunContext
	Places     places.Client
	Yelp       yelp.Client
	Scraper    scrape.Scraper
	Photos     photocache.Cache
	Businesses repositories.BusinessRepository
	Reviews    repositories.ReviewRepository
	Deals      repositories.DealRepository
	Extras     repositories.ExtrasRepository
}

// NewOrchestrator creates the ingestion orchestrator. A nil Yelp client
// disables enrichment.
func NewOrchestrator(deps Deps, logger *zap.Logger) Orchestrator {
	return &orchestrator{
		rc:         deps.RunContext,
		places:     deps.Places,
		yelp:       deps.Yelp,
		scraper:    deps.Scraper,
		photos:     deps.Photos,
		businesses: deps.Businesses,
		reviews:    deps.Reviews,
		deals:      deps.Deals,
		extras:     deps.Extras,
		logger:     logger.Named("ingest"),
	}
}

var _ Orchestrator = (*orchestrator)(nil)

func (o *orchestrator) Run(ctx context.Context) (int, error) {
	total := 0
	if o.yelp == nil {
		o.logger.Info("Secondary enrichment disabled (no API key)")
	}

	for _, category := range o.rc.Categories {
		o.logger.Info("Ingesting category", zap.String("category", category))

		done, err := o.runCategory(ctx, category, &total)
		if err != nil {
			return total, err
		}
		if done {
			o.logger.Info("Target count reached", zap.Int("target", o.rc.TargetCount))
			return total, nil
		}
	}

	return total, nil
}

// runCategory walks one category's pages in provider order. Returns true
// when the global target count truncates the run.
func (o *orchestrator) runCategory(ctx context.Context, category string, total *int) (bool, error) {
	pageToken := ""
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		results, nextToken, err := o.places.SearchNearby(ctx, o.rc.Center, o.rc.RadiusMeters, category, pageToken)
		if err != nil {
			if errors.Is(err, apperrors.ErrAuth) {
				return false, fmt.Errorf("search %q: %w", category, err)
			}
			// A page that stays broken after retries costs us that page,
			// not the run.
			o.logger.Warn("Search page failed, skipping rest of category",
				zap.String("category", category),
				zap.Int("page", page),
				zap.Error(err))
			return false, nil
		}

		o.logger.Debug("Search page fetched",
			zap.String("category", category),
			zap.Int("page", page),
			zap.Int("results", len(results)))

		for _, result := range results {
			if result.PlaceID == "" {
				continue
			}
			if o.rc.Seen(result.PlaceID) {
				o.logger.Debug("Skipping already-seen place",
					zap.String("place_id", result.PlaceID))
				continue
			}
			o.rc.MarkSeen(result.PlaceID)

			if err := o.processRecord(ctx, category, result); err != nil {
				return false, err
			}
			*total++

			if *total >= o.rc.TargetCount {
				return true, nil
			}
		}

		if nextToken == "" {
			return false, nil
		}
		pageToken = nextToken
	}
}

// processRecord runs the full chain for one search result. Best-effort
// collaborators degrade to absence; only persistence and auth failures
// propagate.
func (o *orchestrator) processRecord(ctx context.Context, category string, result models.PlaceResult) error {
	detail, err := o.places.Details(ctx, result.PlaceID)
	if err != nil {
		return fmt.Errorf("details %s: %w", result.PlaceID, err)
	}

	var match *models.MatchResult
	if o.yelp != nil {
		match = o.yelp.Match(ctx, result.Name, result.Lat, result.Lon)
	}

	photoURL := ""
	if ref := reconcile.PhotoRef(result, detail); ref != "" {
		photoURL = o.places.PhotoURL(ref, photoMaxWidth)
	}
	photoPath := o.photos.Fetch(ctx, photoURL, result.PlaceID)

	business := reconcile.Merge(result, detail, match, photoPath)

	businessID, err := o.businesses.Upsert(ctx, &business)
	if err != nil {
		return err
	}
	if err := o.reviews.Append(ctx, businessID, detail.Reviews); err != nil {
		return err
	}
	if err := o.deals.Append(ctx, businessID, category); err != nil {
		return err
	}

	if scraped := o.scraper.Fetch(ctx, business.Website); scraped != nil {
		extras := &models.Extras{
			BusinessID:      businessID,
			MetaDescription: scraped.Description,
			MenuLinks:       scraped.MenuLinks,
		}
		if err := o.extras.Upsert(ctx, extras); err != nil {
			return err
		}
	}

	o.logger.Info("Business ingested",
		zap.String("place_id", result.PlaceID),
		zap.String("name", business.Name),
		zap.String("category", business.Category),
		zap.Bool("degraded", detail.IsZero()),
		zap.Bool("enriched", match != nil))

	return nil
}
