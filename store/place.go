package store

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MoinBasha-MD/Syncup-Backend-sub002/schema"
)

var (
	ErrAllPlacesFailed = fmt.Errorf("all place records failed to upsert")
)

// UpsertResult summarizes a bulk place upsert. Partial success is the
// expected steady state for provider batches, not an error condition.
type UpsertResult struct {
	Inserted  int
	Updated   int
	Failed    int
	FailedIDs []string
}

func (r UpsertResult) Succeeded() int {
	return r.Inserted + r.Updated
}

// PlaceStore - operations for cached place records
type PlaceStore interface {
	UpsertPlaces(records []schema.PlaceRecord) (*UpsertResult, error)
	NearbyPlaces(cords schema.Location, radiusMeters float64, categories []schema.PlaceCategory) ([]schema.PlaceRecord, error)
	CountNearbyPlaces(cords schema.Location, radiusMeters float64, categories []schema.PlaceCategory) (int64, error)
}

// UpsertPlaces stores provider records keyed by external id. It first tries
// an unordered batch insert; records rejected there (typically duplicate
// keys) are retried one by one as upserts so that a single malformed record
// never loses the rest of the batch. It returns an error only when every
// record failed.
func (m *mongoDB) UpsertPlaces(records []schema.PlaceRecord) (*UpsertResult, error) {
	result := &UpsertResult{}
	if len(records) == 0 {
		return result, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.PlaceCollection)

	now := time.Now().UTC()
	docs := make([]interface{}, len(records))
	for i := range records {
		records[i].CacheMetadata.FirstCachedAt = now
		records[i].CacheMetadata.LastUpdatedAt = now
		records[i].CacheMetadata.LastVerifiedAt = now
		docs[i] = records[i]
	}

	retry := make([]int, 0)

	opts := options.InsertMany().SetOrdered(false)
	_, err := c.InsertMany(ctx, docs, opts)
	if err != nil {
		if errs, hasErr := err.(mongo.BulkWriteException); hasErr {
			for _, writeErr := range errs.WriteErrors {
				if DuplicateKeyCode != writeErr.Code {
					log.WithFields(log.Fields{
						"prefix":      mongoLogPrefix,
						"external_id": records[writeErr.Index].ExternalID,
						"error":       writeErr.Message,
					}).Warn("batch insert place record")
				}
				retry = append(retry, writeErr.Index)
			}
			result.Inserted = len(records) - len(errs.WriteErrors)
		} else {
			// batch-level failure, retry everything individually
			log.WithFields(log.Fields{
				"prefix": mongoLogPrefix,
				"error":  err,
			}).Warn("batch insert place records")
			retry = retry[:0]
			for i := range records {
				retry = append(retry, i)
			}
		}
	} else {
		result.Inserted = len(records)
	}

	for _, i := range retry {
		if err := m.upsertPlace(ctx, c, records[i]); err != nil {
			log.WithFields(log.Fields{
				"prefix":      mongoLogPrefix,
				"external_id": records[i].ExternalID,
				"error":       err,
			}).Error("upsert place record")
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, records[i].ExternalID)
			continue
		}
		result.Updated++
	}

	if result.Failed == len(records) {
		return result, ErrAllPlacesFailed
	}

	return result, nil
}

// upsertPlace updates a single record matched by external id, inserting it
// when absent. first_cached_at is only written on insert; update_count grows
// by one on every call.
func (m *mongoDB) upsertPlace(ctx context.Context, c *mongo.Collection, record schema.PlaceRecord) error {
	now := time.Now().UTC()

	query := bson.M{"external_id": record.ExternalID}
	update := bson.M{
		"$set": bson.M{
			"name":                            record.Name,
			"category":                        record.Category,
			"category_label":                  record.CategoryLabel,
			"icon":                            record.Icon,
			"color":                           record.Color,
			"location":                        record.Location,
			"address":                         record.Address,
			"phone":                           record.Phone,
			"website":                         record.Website,
			"cache_metadata.last_updated_at":  now,
			"cache_metadata.last_verified_at": now,
			"cache_metadata.source":           record.CacheMetadata.Source,
		},
		"$inc": bson.M{
			"cache_metadata.update_count": 1,
		},
		"$setOnInsert": bson.M{
			"external_id":                    record.ExternalID,
			"cache_metadata.first_cached_at": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true)
	if err := c.FindOneAndUpdate(ctx, query, update, opts).Err(); err != nil && err != mongo.ErrNoDocuments {
		return err
	}

	return nil
}

// NearbyPlaces returns cached records within radiusMeters of cords, limited
// to the given categories. Results come back nearest first.
func (m *mongoDB) NearbyPlaces(cords schema.Location, radiusMeters float64, categories []schema.PlaceCategory) ([]schema.PlaceRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.PlaceCollection)

	query := nearSphereQuery("location", cords, radiusMeters)
	if len(categories) > 0 {
		query = append(query, bson.E{Key: "category", Value: bson.M{"$in": categories}})
	}

	cur, err := c.Find(ctx, query)
	if nil != err {
		log.WithField("prefix", mongoLogPrefix).Errorf("query nearby places with error: %s", err)
		return nil, fmt.Errorf("nearby places query with error: %s", err)
	}

	places := make([]schema.PlaceRecord, 0)
	for cur.Next(ctx) {
		var record schema.PlaceRecord
		if err = cur.Decode(&record); nil != err {
			log.WithField("prefix", mongoLogPrefix).Errorf("decode nearby place with error: %s", err)
			return nil, fmt.Errorf("nearby places decode record with error: %s", err)
		}
		places = append(places, record)
	}

	log.WithField("prefix", mongoLogPrefix).Debugf("nearby places query gets %d records near long:%v lat:%v",
		len(places), cords.Longitude, cords.Latitude)

	return places, nil
}

// CountNearbyPlaces counts cached records the same way NearbyPlaces selects
// them, for cache-status introspection.
func (m *mongoDB) CountNearbyPlaces(cords schema.Location, radiusMeters float64, categories []schema.PlaceCategory) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.PlaceCollection)

	// $nearSphere is not allowed in count queries; $geoWithin/$centerSphere
	// takes the radius in radians.
	query := bson.M{
		"location": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{
					bson.A{cords.Longitude, cords.Latitude},
					radiusMeters / earthRadiusMeters,
				},
			},
		},
	}
	if len(categories) > 0 {
		query["category"] = bson.M{"$in": categories}
	}

	return c.CountDocuments(ctx, query)
}
