package schema

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RegionCollection = "cached_regions"
)

type RegionStatus string

const (
	RegionStatusActive     RegionStatus = "active"
	RegionStatusRefreshing RegionStatus = "refreshing"
	RegionStatusExpired    RegionStatus = "expired"
)

// CachedRegion remembers that a (center, radius, categories) query was
// executed and when its results stop being trusted. It does not own the
// place records; overlapping regions share them through the place
// collection's external id uniqueness.
//
// ExpiresAt is the single source of truth for staleness. Status exists for
// the refresh lock (refreshing) and housekeeping (expired), never for the
// expiry decision itself.
type CachedRegion struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Center          *GeoJSON           `bson:"center" json:"center"`
	RadiusMeters    float64            `bson:"radius_meters" json:"radius_meters"`
	Categories      []PlaceCategory    `bson:"categories" json:"categories"`
	PlaceCount      int64              `bson:"place_count" json:"place_count"`
	CachedAt        time.Time          `bson:"cached_at" json:"cached_at"`
	ExpiresAt       time.Time          `bson:"expires_at" json:"expires_at"`
	LastRefreshedAt time.Time          `bson:"last_refreshed_at" json:"last_refreshed_at"`
	RefreshCount    int64              `bson:"refresh_count" json:"refresh_count"`
	Status          RegionStatus       `bson:"status" json:"status"`
}

// Expired reports whether the region is stale at the given instant,
// regardless of what the status field says.
func (r CachedRegion) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
