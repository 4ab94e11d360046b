package store

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/MoinBasha-MD/Syncup-Backend-sub002/schema"
)

const earthRadiusMeters = 6378137.0

// nearSphereQuery builds a proximity filter on a 2dsphere-indexed field,
// with the distance bound in meters. Matches come back nearest first.
func nearSphereQuery(field string, cords schema.Location, maxDistanceMeters float64) bson.D {
	return bson.D{{
		Key: field,
		Value: bson.D{{
			Key: "$nearSphere",
			Value: bson.D{{
				Key: "$geometry",
				Value: bson.D{{
					Key:   "type",
					Value: "Point",
				}, {
					Key:   "coordinates",
					Value: bson.A{cords.Longitude, cords.Latitude},
				}},
			}, {
				Key:   "$maxDistance",
				Value: maxDistanceMeters,
			}},
		}},
	}}
}
