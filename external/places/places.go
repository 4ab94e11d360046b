package places

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"googlemaps.github.io/maps"

	"github.com/MoinBasha-MD/Syncup-Backend-sub002/schema"
	"github.com/MoinBasha-MD/Syncup-Backend-sub002/utils"
)

const (
	logPrefix      = "places"
	defaultTimeout = 10 * time.Second

	// Source tags every record this adapter produces.
	Source = "google_places"
)

// PlaceFetcher - interface to fetch places of interest around a point.
// Records carry a stable external id so the cache store can deduplicate
// anything returned by overlapping queries.
type PlaceFetcher interface {
	FetchPlaces(cords schema.Location, radiusMeters float64, categories []schema.PlaceCategory) ([]schema.PlaceRecord, error)
}

type placeFetcher struct {
	client *maps.Client
}

// FetchPlaces runs one nearby search per requested category and merges the
// results, deduplicated by provider place id. A category failing to fetch
// is logged and skipped; the call errors only when nothing succeeded.
func (p placeFetcher) FetchPlaces(cords schema.Location, radiusMeters float64, categories []schema.PlaceCategory) ([]schema.PlaceRecord, error) {
	log.WithFields(log.Fields{
		"prefix":     logPrefix,
		"lat":        cords.Latitude,
		"lng":        cords.Longitude,
		"radius":     radiusMeters,
		"categories": categories,
	}).Info("query nearby places")

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	seen := map[string]struct{}{}
	records := make([]schema.PlaceRecord, 0)
	var lastErr error

	for _, category := range categories {
		searchType := utils.SearchTypeFor(category)
		if searchType == "" {
			log.WithFields(log.Fields{
				"prefix":   logPrefix,
				"category": category,
			}).Warn("no provider type for category")
			continue
		}

		resp, err := p.client.NearbySearch(ctx, &maps.NearbySearchRequest{
			Location: &maps.LatLng{
				Lat: cords.Latitude,
				Lng: cords.Longitude,
			},
			Radius: uint(radiusMeters),
			Type:   maps.PlaceType(searchType),
		})
		if err != nil {
			log.WithFields(log.Fields{
				"prefix":   logPrefix,
				"category": category,
				"error":    err,
			}).Error("nearby search")
			lastErr = err
			continue
		}

		for _, result := range resp.Results {
			if _, ok := seen[result.PlaceID]; ok {
				continue
			}
			seen[result.PlaceID] = struct{}{}
			records = append(records, readPlace(result, category))
		}
	}

	if len(records) == 0 && lastErr != nil {
		return nil, lastErr
	}

	return records, nil
}

// readPlace maps one provider result into a cacheable record. The provider
// type list decides the category; when it is too generic the requested
// category stands in.
func readPlace(result maps.PlacesSearchResult, requested schema.PlaceCategory) schema.PlaceRecord {
	category := utils.ReadPlaceCategory(result.Types)
	if category == schema.CategoryUnknown {
		category = requested
	}

	address := result.FormattedAddress
	if address == "" {
		address = result.Vicinity
	}

	return schema.PlaceRecord{
		ExternalID:    result.PlaceID,
		Name:          result.Name,
		Category:      category,
		CategoryLabel: utils.CategoryLabel(category),
		Icon:          utils.CategoryIcon(category),
		Color:         utils.CategoryColor(category),
		Location: schema.NewGeoJSONPoint(schema.Location{
			Latitude:  result.Geometry.Location.Lat,
			Longitude: result.Geometry.Location.Lng,
		}),
		Address: address,
		CacheMetadata: schema.PlaceCacheMetadata{
			Source: Source,
		},
	}
}

// New - new PlaceFetcher backed by the Google Places API
func New(apiKey string) (PlaceFetcher, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		log.WithFields(log.Fields{
			"prefix": logPrefix,
			"error":  err,
		}).Error("new map client")

		return nil, err
	}

	return &placeFetcher{
		client: client,
	}, nil
}
