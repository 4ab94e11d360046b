package cache

import (
	"time"

	"github.com/MoinBasha-MD/Syncup-Backend-sub002/schema"
)

// DefaultTTL applies to any category the table does not know about.
const DefaultTTL = 24 * time.Hour

// categoryTTL encodes how fast each venue category goes stale in the real
// world: food venues churn within days, institutional venues over a month,
// parks almost never.
var categoryTTL = map[schema.PlaceCategory]time.Duration{
	schema.CategoryRestaurant:  7 * 24 * time.Hour,
	schema.CategoryCafe:        7 * 24 * time.Hour,
	schema.CategorySupermarket: 14 * 24 * time.Hour,
	schema.CategoryGym:         14 * 24 * time.Hour,
	schema.CategoryHospital:    30 * 24 * time.Hour,
	schema.CategoryPharmacy:    30 * 24 * time.Hour,
	schema.CategoryBank:        30 * 24 * time.Hour,
	schema.CategoryATM:         30 * 24 * time.Hour,
	schema.CategoryHotel:       30 * 24 * time.Hour,
	schema.CategoryGasStation:  30 * 24 * time.Hour,
	schema.CategorySchool:      60 * 24 * time.Hour,
	schema.CategoryBusStation:  60 * 24 * time.Hour,
	schema.CategoryTemple:      60 * 24 * time.Hour,
	schema.CategoryPark:        180 * 24 * time.Hour,
}

// TTLFor returns the time-to-live for a category. Total: every category,
// declared or not, gets a finite positive duration.
func TTLFor(category schema.PlaceCategory) time.Duration {
	if ttl, ok := categoryTTL[category]; ok {
		return ttl
	}
	return DefaultTTL
}

// ExpiryFor derives a region expiry from a category set: the most volatile
// category wins, so a region is never trusted longer than its
// fastest-churning content. An empty set falls back to the default.
func ExpiryFor(now time.Time, categories []schema.PlaceCategory) time.Time {
	if len(categories) == 0 {
		return now.Add(DefaultTTL)
	}

	min := TTLFor(categories[0])
	for _, category := range categories[1:] {
		if ttl := TTLFor(category); ttl < min {
			min = ttl
		}
	}
	return now.Add(min)
}
