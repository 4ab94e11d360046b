package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MoinBasha-MD/Syncup-Backend-sub002/schema"
)

const (
	// Tolerance bands for the fuzzy read-path match. Client requests almost
	// never repeat an exact center/radius, so candidacy is widened to any
	// region whose center lies within 1.5x the query radius and whose own
	// radius is within 20% of the requested one.
	regionCenterSlack = 1.5
	regionRadiusLower = 0.8
	regionRadiusUpper = 1.2
)

var (
	ErrRegionNotFound = fmt.Errorf("cached region not found")
)

// RegionIndex - operations for remembered spatial queries
type RegionIndex interface {
	FindCachedRegion(cords schema.Location, radiusMeters float64, categories []schema.PlaceCategory) (*schema.CachedRegion, error)
	FindMatchingRegion(cords schema.Location, radiusMeters float64, categories []schema.PlaceCategory) (*schema.CachedRegion, error)
	UpsertRegion(cords schema.Location, radiusMeters float64, categories []schema.PlaceCategory, placeCount int64, expiresAt time.Time) (*schema.CachedRegion, error)
	GetRegion(regionID primitive.ObjectID) (*schema.CachedRegion, error)

	ClaimRegionForRefresh(regionID primitive.ObjectID) (bool, error)
	FinishRegionRefresh(regionID primitive.ObjectID, placeCount int64, expiresAt time.Time) error
	ReleaseRegion(regionID primitive.ObjectID) error

	FindRefreshCandidates(limit int64) ([]schema.CachedRegion, error)
	MarkExpiredRegions() (int64, error)
}

// sortedCategories returns a copy of the set in canonical order so that
// category sets compare as arrays in mongo.
func sortedCategories(categories []schema.PlaceCategory) []schema.PlaceCategory {
	sorted := make([]schema.PlaceCategory, len(categories))
	copy(sorted, categories)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

// fuzzyRegionQuery is the approximate-match predicate shared by the read
// path and the status check: center proximity, radius band and category
// superset. Liveness (status + expiry) is layered on by the caller.
func fuzzyRegionQuery(cords schema.Location, radiusMeters float64, categories []schema.PlaceCategory) bson.D {
	query := nearSphereQuery("center", cords, radiusMeters*regionCenterSlack)
	query = append(query, bson.E{Key: "radius_meters", Value: bson.M{
		"$gte": radiusMeters * regionRadiusLower,
		"$lte": radiusMeters * regionRadiusUpper,
	}})
	if len(categories) > 0 {
		query = append(query, bson.E{Key: "categories", Value: bson.M{"$all": categories}})
	}
	return query
}

// FindCachedRegion answers the read path: the nearest active, unexpired
// region approximately matching the query, or nil when every candidate
// misses. The expiry comparison is against the clock, never the status
// field, so a stale region not yet swept to expired is still a miss.
func (m *mongoDB) FindCachedRegion(cords schema.Location, radiusMeters float64, categories []schema.PlaceCategory) (*schema.CachedRegion, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.RegionCollection)

	query := fuzzyRegionQuery(cords, radiusMeters, categories)
	query = append(query,
		bson.E{Key: "status", Value: schema.RegionStatusActive},
		bson.E{Key: "expires_at", Value: bson.M{"$gt": time.Now().UTC()}},
	)

	var region schema.CachedRegion
	if err := c.FindOne(ctx, query).Decode(&region); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		log.WithField("prefix", mongoLogPrefix).Errorf("query cached region with error: %s", err)
		return nil, fmt.Errorf("cached region query with error: %s", err)
	}

	return &region, nil
}

// FindMatchingRegion is FindCachedRegion without the liveness filter, for
// read-only introspection that needs to see expired or refreshing regions.
func (m *mongoDB) FindMatchingRegion(cords schema.Location, radiusMeters float64, categories []schema.PlaceCategory) (*schema.CachedRegion, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.RegionCollection)

	var region schema.CachedRegion
	if err := c.FindOne(ctx, fuzzyRegionQuery(cords, radiusMeters, categories)).Decode(&region); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		log.WithField("prefix", mongoLogPrefix).Errorf("query matching region with error: %s", err)
		return nil, fmt.Errorf("matching region query with error: %s", err)
	}

	return &region, nil
}

// UpsertRegion registers an executed spatial query. Unlike the fuzzy read
// it matches on exact center, radius and category set, so two distinct
// cached queries are never silently merged. An existing region has its
// timing reset and refresh count bumped; a new one starts active.
func (m *mongoDB) UpsertRegion(cords schema.Location, radiusMeters float64, categories []schema.PlaceCategory, placeCount int64, expiresAt time.Time) (*schema.CachedRegion, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.RegionCollection)

	now := time.Now().UTC()
	sorted := sortedCategories(categories)

	query := bson.M{
		"center.coordinates.0": cords.Longitude,
		"center.coordinates.1": cords.Latitude,
		"radius_meters":        radiusMeters,
		"categories":           sorted,
	}

	// The update leaves status alone so a concurrent refresh keeps its
	// refreshing lock. Swept-expired regions are revived separately.
	update := bson.M{
		"$set": bson.M{
			"place_count":       placeCount,
			"expires_at":        expiresAt,
			"last_refreshed_at": now,
		},
		"$inc": bson.M{
			"refresh_count": 1,
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var region schema.CachedRegion
	err := c.FindOneAndUpdate(ctx, query, update, opts).Decode(&region)
	if err == nil {
		if region.Status == schema.RegionStatusExpired {
			revive := bson.M{"$set": bson.M{"status": schema.RegionStatusActive}}
			if _, err := c.UpdateOne(ctx, bson.M{"_id": region.ID, "status": schema.RegionStatusExpired}, revive); err != nil {
				return nil, err
			}
			region.Status = schema.RegionStatusActive
		}
		return &region, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	region = schema.CachedRegion{
		Center:          schema.NewGeoJSONPoint(cords),
		RadiusMeters:    radiusMeters,
		Categories:      sorted,
		PlaceCount:      placeCount,
		CachedAt:        now,
		ExpiresAt:       expiresAt,
		LastRefreshedAt: now,
		RefreshCount:    0,
		Status:          schema.RegionStatusActive,
	}
	result, err := c.InsertOne(ctx, region)
	if err != nil {
		log.WithFields(log.Fields{
			"prefix": mongoLogPrefix,
			"error":  err,
		}).Error("insert cached region")
		return nil, err
	}
	region.ID = result.InsertedID.(primitive.ObjectID)

	return &region, nil
}

// GetRegion finds a region by id
func (m *mongoDB) GetRegion(regionID primitive.ObjectID) (*schema.CachedRegion, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.RegionCollection)

	var region schema.CachedRegion
	if err := c.FindOne(ctx, bson.M{"_id": regionID}).Decode(&region); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrRegionNotFound
		}
		return nil, err
	}

	return &region, nil
}

// ClaimRegionForRefresh flips a region from active to refreshing. The
// conditional update is the refresh lock: a region already claimed or no
// longer active is simply not claimable, which is how concurrent refreshers
// and the read path stay out of each other's way.
func (m *mongoDB) ClaimRegionForRefresh(regionID primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.RegionCollection)

	query := bson.M{
		"_id":    regionID,
		"status": schema.RegionStatusActive,
	}
	update := bson.M{
		"$set": bson.M{"status": schema.RegionStatusRefreshing},
	}

	result, err := c.UpdateOne(ctx, query, update)
	if err != nil {
		return false, err
	}

	return result.MatchedCount == 1, nil
}

// FinishRegionRefresh completes a refresh: back to active with fresh
// timing and the refresh counter bumped.
func (m *mongoDB) FinishRegionRefresh(regionID primitive.ObjectID, placeCount int64, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.RegionCollection)

	query := bson.M{
		"_id":    regionID,
		"status": schema.RegionStatusRefreshing,
	}
	update := bson.M{
		"$set": bson.M{
			"status":            schema.RegionStatusActive,
			"place_count":       placeCount,
			"expires_at":        expiresAt,
			"last_refreshed_at": time.Now().UTC(),
		},
		"$inc": bson.M{
			"refresh_count": 1,
		},
	}

	result, err := c.UpdateOne(ctx, query, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrRegionNotFound
	}

	return nil
}

// ReleaseRegion is the failure path of a refresh: revert to active with the
// old expiry untouched so the region is retried on the next cycle instead
// of staying locked forever.
func (m *mongoDB) ReleaseRegion(regionID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.RegionCollection)

	query := bson.M{
		"_id":    regionID,
		"status": schema.RegionStatusRefreshing,
	}
	update := bson.M{
		"$set": bson.M{"status": schema.RegionStatusActive},
	}

	if _, err := c.UpdateOne(ctx, query, update); err != nil {
		log.WithFields(log.Fields{
			"prefix":    mongoLogPrefix,
			"region_id": regionID.Hex(),
			"error":     err,
		}).Error("release refreshing region")
		return err
	}

	return nil
}

// FindRefreshCandidates lists stale-but-active regions, oldest expiry
// first, capped to bound the work of one refresh cycle.
func (m *mongoDB) FindRefreshCandidates(limit int64) ([]schema.CachedRegion, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.RegionCollection)

	query := bson.M{
		"status":     schema.RegionStatusActive,
		"expires_at": bson.M{"$lt": time.Now().UTC()},
	}
	opts := options.Find().SetSort(bson.M{"expires_at": 1}).SetLimit(limit)

	cur, err := c.Find(ctx, query, opts)
	if nil != err {
		log.WithField("prefix", mongoLogPrefix).Errorf("query refresh candidates with error: %s", err)
		return nil, fmt.Errorf("refresh candidates query with error: %s", err)
	}

	regions := make([]schema.CachedRegion, 0)
	for cur.Next(ctx) {
		var region schema.CachedRegion
		if err = cur.Decode(&region); err != nil {
			return nil, err
		}
		regions = append(regions, region)
	}

	return regions, nil
}

// MarkExpiredRegions is the housekeeping sweep flipping stale active
// regions to expired. Read-path correctness never depends on it; lookups
// check expires_at themselves.
func (m *mongoDB) MarkExpiredRegions() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.RegionCollection)

	query := bson.M{
		"status":     schema.RegionStatusActive,
		"expires_at": bson.M{"$lt": time.Now().UTC()},
	}
	update := bson.M{
		"$set": bson.M{"status": schema.RegionStatusExpired},
	}

	result, err := c.UpdateMany(ctx, query, update)
	if err != nil {
		log.WithField("prefix", mongoLogPrefix).Errorf("mark expired regions with error: %s", err)
		return 0, err
	}

	if result.ModifiedCount > 0 {
		log.WithFields(log.Fields{
			"prefix":  mongoLogPrefix,
			"records": result.ModifiedCount,
		}).Debug("marked regions expired")
	}

	return result.ModifiedCount, nil
}
