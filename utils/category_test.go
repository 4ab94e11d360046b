package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MoinBasha-MD/Syncup-Backend-sub002/schema"
)

func TestRestaurantCategory(t *testing.T) {
	types := []string{"establishment",
		"restaurant",
		"food",
		"point_of_interest",
	}

	category := ReadPlaceCategory(types)
	assert.Equal(t, schema.CategoryRestaurant, category)
}

func TestRestaurantCategoryOnlyFood(t *testing.T) {
	types := []string{"establishment",
		"food",
		"point_of_interest",
	}

	category := ReadPlaceCategory(types)
	assert.Equal(t, schema.CategoryRestaurant, category)
}

func TestHospitalCategoryByDentist(t *testing.T) {
	types := []string{"establishment",
		"dentist",
		"health",
		"point_of_interest",
	}

	category := ReadPlaceCategory(types)
	assert.Equal(t, schema.CategoryHospital, category)
}

func TestTempleCategoryOnlyWorship(t *testing.T) {
	types := []string{"establishment",
		"place_of_worship",
		"point_of_interest",
	}

	category := ReadPlaceCategory(types)
	assert.Equal(t, schema.CategoryTemple, category)
}

func TestUnknownCategory(t *testing.T) {
	types := []string{"establishment",
		"point_of_interest",
	}

	category := ReadPlaceCategory(types)
	assert.Equal(t, schema.CategoryUnknown, category)
}

func TestSearchTypeRoundTrip(t *testing.T) {
	for category, providerType := range searchType {
		assert.NotEmpty(t, providerType)
		assert.Equal(t, category, ReadPlaceCategory([]string{providerType}),
			"search type %s does not map back to %s", providerType, category)
	}
}

func TestSearchTypeForUnknown(t *testing.T) {
	assert.Equal(t, "", SearchTypeFor(schema.CategoryUnknown))
}

func TestCategoryTablesFallback(t *testing.T) {
	odd := schema.PlaceCategory("laundromat")
	assert.Equal(t, "Place", CategoryLabel(odd))
	assert.Equal(t, "place", CategoryIcon(odd))
	assert.Equal(t, "#757575", CategoryColor(odd))
}
