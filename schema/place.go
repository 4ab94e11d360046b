package schema

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PlaceCollection = "cached_places"
)

type PlaceCategory string

const (
	CategoryRestaurant  PlaceCategory = "restaurant"
	CategoryCafe        PlaceCategory = "cafe"
	CategoryHospital    PlaceCategory = "hospital"
	CategoryPharmacy    PlaceCategory = "pharmacy"
	CategoryBank        PlaceCategory = "bank"
	CategoryATM         PlaceCategory = "atm"
	CategoryHotel       PlaceCategory = "hotel"
	CategoryGasStation  PlaceCategory = "gas_station"
	CategorySupermarket PlaceCategory = "supermarket"
	CategoryGym         PlaceCategory = "gym"
	CategoryPark        PlaceCategory = "park"
	CategorySchool      PlaceCategory = "school"
	CategoryBusStation  PlaceCategory = "bus_station"
	CategoryTemple      PlaceCategory = "temple"
	CategoryUnknown     PlaceCategory = "unknown"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeoJSON - mongo location format
type GeoJSON struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoJSONPoint builds a GeoJSON point from a lat/lng pair.
// Mongo wants coordinates in longitude, latitude order.
func NewGeoJSONPoint(loc Location) *GeoJSON {
	return &GeoJSON{
		Type:        "Point",
		Coordinates: []float64{loc.Longitude, loc.Latitude},
	}
}

// PlaceCacheMetadata - bookkeeping for a cached provider record
type PlaceCacheMetadata struct {
	FirstCachedAt  time.Time `bson:"first_cached_at" json:"first_cached_at"`
	LastUpdatedAt  time.Time `bson:"last_updated_at" json:"last_updated_at"`
	LastVerifiedAt time.Time `bson:"last_verified_at" json:"last_verified_at"`
	UpdateCount    int64     `bson:"update_count" json:"update_count"`
	Source         string    `bson:"source" json:"source"`
}

// PlaceRecord - a provider place normalized into the local cache.
// ExternalID is the provider-assigned identity and the natural upsert key;
// there is exactly one record per external id.
type PlaceRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ExternalID    string             `bson:"external_id" json:"external_id"`
	Name          string             `bson:"name" json:"name"`
	Category      PlaceCategory      `bson:"category" json:"category"`
	CategoryLabel string             `bson:"category_label" json:"category_label"`
	Icon          string             `bson:"icon" json:"icon"`
	Color         string             `bson:"color" json:"color"`
	Location      *GeoJSON           `bson:"location" json:"location"`
	Address       string             `bson:"address" json:"address"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Website       string             `bson:"website,omitempty" json:"website,omitempty"`
	CacheMetadata PlaceCacheMetadata `bson:"cache_metadata" json:"cache_metadata"`
}
