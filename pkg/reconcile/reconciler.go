package reconcile

import (
	"github.com/bizradar/poi-ingest/pkg/models"
)

// Merge folds a bare search result, its detail record (possibly zero after
// a degraded fetch), an optional enrichment match and the resolved photo
// path into one canonical business. Pure function: every field follows a
// fixed first-present-wins precedence list and all I/O happens before this
// call.
//
// Precedence per field, highest first:
//
//	name:     bare result (stable across detail retries) > detail
//	phone:    detail > match > "N/A" sentinel
//	website:  detail (unless sentinel) > match URL > "N/A" sentinel
//	address:  detail formatted > bare vicinity > match street address
//	rating, rating count, price level, category: detail > bare result
//	location: detail > bare result
func Merge(bare models.PlaceResult, detail models.PlaceDetail, match *models.MatchResult, photoPath string) models.Business {
	b := models.Business{
		PlaceID:      bare.PlaceID,
		Name:         firstNonEmpty(bare.Name, detail.Name),
		Address:      firstNonEmpty(detail.FormattedAddress, bare.Vicinity),
		Phone:        detail.Phone,
		Website:      detail.Website,
		Category:     category(detail.Types, bare.Types),
		Rating:       firstPresentFloat(detail.Rating, bare.Rating),
		RatingCount:  firstPresentInt(detail.RatingCount, bare.RatingCount),
		PriceLevel:   firstPresentInt(detail.PriceLevel, bare.PriceLevel),
		OpeningHours: detail.OpeningHours,
		PhotoPath:    photoPath,
	}

	if detail.Lat != 0 || detail.Lon != 0 {
		b.Lat, b.Lon = detail.Lat, detail.Lon
	} else {
		b.Lat, b.Lon = bare.Lat, bare.Lon
	}

	if detail.EditorialSummary != "" {
		summary := detail.EditorialSummary
		b.Description = &summary
	}
	if detail.MapsURL != "" {
		mapsURL := detail.MapsURL
		b.MapsURL = &mapsURL
	}

	if match != nil {
		yelpID := match.YelpID
		b.YelpID = &yelpID
		if !models.HasContact(b.Phone) && match.Phone != "" {
			b.Phone = match.Phone
		}
		if !models.HasContact(b.Website) && match.URL != "" {
			b.Website = match.URL
		}
		if b.Address == "" && match.Address != "" {
			b.Address = match.Address
		}
		if b.PriceLevel == nil {
			b.PriceLevel = match.PriceLevel()
		}
	}

	// Contact fields are never null downstream; the sentinel marks
	// "no contact info".
	if !models.HasContact(b.Phone) {
		b.Phone = models.ContactUnknown
	}
	if !models.HasContact(b.Website) {
		b.Website = models.ContactUnknown
	}

	return b
}

// PhotoRef picks the photo reference to fetch: detail first, bare result
// second, empty when neither has one (the cache then yields the
// placeholder).
func PhotoRef(bare models.PlaceResult, detail models.PlaceDetail) string {
	if detail.PhotoRef != "" {
		return detail.PhotoRef
	}
	return bare.PhotoRef
}

// category derives the canonical category from the first classification
// tag of whichever provider supplied tags.
func category(detailTypes, bareTypes []string) string {
	if len(detailTypes) > 0 {
		return detailTypes[0]
	}
	if len(bareTypes) > 0 {
		return bareTypes[0]
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPresentFloat(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstPresentInt(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
