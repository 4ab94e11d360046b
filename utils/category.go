package utils

import (
	"github.com/MoinBasha-MD/Syncup-Backend-sub002/schema"
)

// ReadPlaceCategory returns an internal category by analyzing the type list
// a provider attaches to a place. Provider type lists mix generic tags
// ("establishment", "point_of_interest") with specific ones; the first
// specific tag wins.
func ReadPlaceCategory(types []string) schema.PlaceCategory {
	food := false
	worship := false
	for _, t := range types {
		switch t {
		case "restaurant", "meal_takeaway", "meal_delivery":
			return schema.CategoryRestaurant
		case "cafe", "bakery":
			return schema.CategoryCafe
		case "hospital", "doctor", "dentist":
			return schema.CategoryHospital
		case "pharmacy", "drugstore":
			return schema.CategoryPharmacy
		case "bank":
			return schema.CategoryBank
		case "atm":
			return schema.CategoryATM
		case "lodging":
			return schema.CategoryHotel
		case "gas_station":
			return schema.CategoryGasStation
		case "supermarket", "grocery_or_supermarket":
			return schema.CategorySupermarket
		case "gym":
			return schema.CategoryGym
		case "park":
			return schema.CategoryPark
		case "school", "primary_school", "secondary_school", "university":
			return schema.CategorySchool
		case "bus_station", "transit_station", "train_station":
			return schema.CategoryBusStation
		case "hindu_temple", "church", "mosque", "synagogue":
			return schema.CategoryTemple
		case "food":
			food = true
		case "place_of_worship":
			worship = true
		}
	}

	if food {
		return schema.CategoryRestaurant
	}
	if worship {
		return schema.CategoryTemple
	}
	return schema.CategoryUnknown
}

// searchType maps an internal category to the provider type used to query
// for it. This is the outbound half of the taxonomy translation.
var searchType = map[schema.PlaceCategory]string{
	schema.CategoryRestaurant:  "restaurant",
	schema.CategoryCafe:        "cafe",
	schema.CategoryHospital:    "hospital",
	schema.CategoryPharmacy:    "pharmacy",
	schema.CategoryBank:        "bank",
	schema.CategoryATM:         "atm",
	schema.CategoryHotel:       "lodging",
	schema.CategoryGasStation:  "gas_station",
	schema.CategorySupermarket: "supermarket",
	schema.CategoryGym:         "gym",
	schema.CategoryPark:        "park",
	schema.CategorySchool:      "school",
	schema.CategoryBusStation:  "bus_station",
	schema.CategoryTemple:      "hindu_temple",
}

// SearchTypeFor returns the provider query type for an internal category,
// empty when the category has no provider counterpart.
func SearchTypeFor(category schema.PlaceCategory) string {
	return searchType[category]
}

var categoryLabel = map[schema.PlaceCategory]string{
	schema.CategoryRestaurant:  "Restaurant",
	schema.CategoryCafe:        "Cafe",
	schema.CategoryHospital:    "Hospital",
	schema.CategoryPharmacy:    "Pharmacy",
	schema.CategoryBank:        "Bank",
	schema.CategoryATM:         "ATM",
	schema.CategoryHotel:       "Hotel",
	schema.CategoryGasStation:  "Petrol Pump",
	schema.CategorySupermarket: "Supermarket",
	schema.CategoryGym:         "Gym",
	schema.CategoryPark:        "Park",
	schema.CategorySchool:      "School",
	schema.CategoryBusStation:  "Bus Station",
	schema.CategoryTemple:      "Temple",
	schema.CategoryUnknown:     "Place",
}

var categoryIcon = map[schema.PlaceCategory]string{
	schema.CategoryRestaurant:  "restaurant",
	schema.CategoryCafe:        "local_cafe",
	schema.CategoryHospital:    "local_hospital",
	schema.CategoryPharmacy:    "local_pharmacy",
	schema.CategoryBank:        "account_balance",
	schema.CategoryATM:         "local_atm",
	schema.CategoryHotel:       "hotel",
	schema.CategoryGasStation:  "local_gas_station",
	schema.CategorySupermarket: "local_grocery_store",
	schema.CategoryGym:         "fitness_center",
	schema.CategoryPark:        "park",
	schema.CategorySchool:      "school",
	schema.CategoryBusStation:  "directions_bus",
	schema.CategoryTemple:      "temple_hindu",
	schema.CategoryUnknown:     "place",
}

var categoryColor = map[schema.PlaceCategory]string{
	schema.CategoryRestaurant:  "#FF6B35",
	schema.CategoryCafe:        "#8D6E63",
	schema.CategoryHospital:    "#E53935",
	schema.CategoryPharmacy:    "#43A047",
	schema.CategoryBank:        "#1E88E5",
	schema.CategoryATM:         "#3949AB",
	schema.CategoryHotel:       "#8E24AA",
	schema.CategoryGasStation:  "#F4511E",
	schema.CategorySupermarket: "#00897B",
	schema.CategoryGym:         "#6D4C41",
	schema.CategoryPark:        "#2E7D32",
	schema.CategorySchool:      "#FB8C00",
	schema.CategoryBusStation:  "#546E7A",
	schema.CategoryTemple:      "#FDD835",
	schema.CategoryUnknown:     "#757575",
}

// CategoryLabel returns the display label for a category.
func CategoryLabel(category schema.PlaceCategory) string {
	if label, ok := categoryLabel[category]; ok {
		return label
	}
	return categoryLabel[schema.CategoryUnknown]
}

// CategoryIcon returns the map icon name for a category.
func CategoryIcon(category schema.PlaceCategory) string {
	if icon, ok := categoryIcon[category]; ok {
		return icon
	}
	return categoryIcon[schema.CategoryUnknown]
}

// CategoryColor returns the map pin color for a category.
func CategoryColor(category schema.PlaceCategory) string {
	if color, ok := categoryColor[category]; ok {
		return color
	}
	return categoryColor[schema.CategoryUnknown]
}
