package cache

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/MoinBasha-MD/Syncup-Backend-sub002/external/places"
	"github.com/MoinBasha-MD/Syncup-Backend-sub002/schema"
	"github.com/MoinBasha-MD/Syncup-Backend-sub002/store"
)

const logPrefix = "cache"

// Source tells a caller whether a response was served from the local cache
// or fetched live from the provider.
type Source string

const (
	SourceCache    Source = "cache"
	SourceProvider Source = "provider"
)

// NearbyResult - places around a point plus cache observability fields
type NearbyResult struct {
	Source    Source               `json:"source"`
	Places    []schema.PlaceRecord `json:"places"`
	CachedAt  *time.Time           `json:"cached_at,omitempty"`
	ExpiresAt *time.Time           `json:"expires_at,omitempty"`
}

// CacheStatus - read-only introspection of the region index
type CacheStatus struct {
	Cached     bool       `json:"cached"`
	Expired    bool       `json:"expired"`
	PlaceCount int64      `json:"place_count"`
	CachedAt   *time.Time `json:"cached_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// CacheStore is the persistence the cache engine needs: place records and
// the region index.
type CacheStore interface {
	store.PlaceStore
	store.RegionIndex
}

// NearbyCache answers nearby-place queries cache-first, falling back to
// the provider and remembering the executed query as a cached region.
type NearbyCache struct {
	store   CacheStore
	fetcher places.PlaceFetcher
}

// NewNearbyCache - new cache engine over a store and a provider adapter
func NewNearbyCache(cacheStore CacheStore, fetcher places.PlaceFetcher) *NearbyCache {
	return &NearbyCache{
		store:   cacheStore,
		fetcher: fetcher,
	}
}

// GetNearby serves places of the given categories within radiusMeters of
// cords. A fuzzy region hit is served from the store; a miss goes to the
// provider, and the fetched batch is upserted and registered as a new
// cached region so nearby future requests hit cache. On provider failure
// the result is an empty provider-tagged list alongside the error, letting
// the caller degrade to "no results" without special-casing.
func (n *NearbyCache) GetNearby(cords schema.Location, radiusMeters float64, categories []schema.PlaceCategory) (*NearbyResult, error) {
	region, err := n.store.FindCachedRegion(cords, radiusMeters, categories)
	if err != nil {
		// index trouble degrades to a miss, the provider path still works
		log.WithFields(log.Fields{
			"prefix": logPrefix,
			"error":  err,
		}).Error("cached region lookup")
	}

	if region != nil {
		placesFound, err := n.store.NearbyPlaces(cords, radiusMeters, categories)
		if err == nil {
			log.WithFields(log.Fields{
				"prefix":      logPrefix,
				"region_id":   region.ID.Hex(),
				"place_count": len(placesFound),
			}).Debug("cache hit")

			return &NearbyResult{
				Source:    SourceCache,
				Places:    placesFound,
				CachedAt:  &region.CachedAt,
				ExpiresAt: &region.ExpiresAt,
			}, nil
		}

		log.WithFields(log.Fields{
			"prefix":    logPrefix,
			"region_id": region.ID.Hex(),
			"error":     err,
		}).Error("read cached places, falling back to provider")
	}

	records, err := n.fetcher.FetchPlaces(cords, radiusMeters, categories)
	if err != nil {
		log.WithFields(log.Fields{
			"prefix": logPrefix,
			"error":  err,
		}).Error("fetch places from provider")
		return &NearbyResult{
			Source: SourceProvider,
			Places: []schema.PlaceRecord{},
		}, err
	}

	n.registerFetch(cords, radiusMeters, categories, records)

	return &NearbyResult{
		Source: SourceProvider,
		Places: records,
	}, nil
}

// registerFetch persists a provider batch and records the executed query
// as a cached region. Bookkeeping failures are logged, never surfaced: the
// caller already has the fresh places, and the next request simply
// re-fetches.
func (n *NearbyCache) registerFetch(cords schema.Location, radiusMeters float64, categories []schema.PlaceCategory, records []schema.PlaceRecord) {
	result, err := n.store.UpsertPlaces(records)
	if err != nil {
		log.WithFields(log.Fields{
			"prefix": logPrefix,
			"error":  err,
		}).Error("upsert fetched places")
		return
	}
	if result.Failed > 0 {
		log.WithFields(log.Fields{
			"prefix":     logPrefix,
			"failed":     result.Failed,
			"failed_ids": result.FailedIDs,
		}).Warn("some fetched places failed to upsert")
	}

	expiresAt := ExpiryFor(time.Now().UTC(), categories)
	if _, err := n.store.UpsertRegion(cords, radiusMeters, categories, int64(len(records)), expiresAt); err != nil {
		log.WithFields(log.Fields{
			"prefix": logPrefix,
			"error":  err,
		}).Error("register cached region")
	}
}

// CheckCacheStatus reports whether a query would be served from cache,
// with no side effects. Cached means an active region whose expiry is
// still ahead; a matching-but-stale region reports Expired instead.
func (n *NearbyCache) CheckCacheStatus(cords schema.Location, radiusMeters float64, categories []schema.PlaceCategory) (*CacheStatus, error) {
	region, err := n.store.FindMatchingRegion(cords, radiusMeters, categories)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return &CacheStatus{}, nil
	}

	expired := region.Expired(time.Now().UTC())

	return &CacheStatus{
		Cached:     region.Status == schema.RegionStatusActive && !expired,
		Expired:    expired,
		PlaceCount: region.PlaceCount,
		CachedAt:   &region.CachedAt,
		ExpiresAt:  &region.ExpiresAt,
	}, nil
}

// CleanupExpired flips stale active regions to expired. Pure housekeeping,
// idempotent; lookups never rely on it.
func (n *NearbyCache) CleanupExpired() (int64, error) {
	return n.store.MarkExpiredRegions()
}
