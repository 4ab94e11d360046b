package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MoinBasha-MD/Syncup-Backend-sub002/external/mocks"
	"github.com/MoinBasha-MD/Syncup-Backend-sub002/schema"
	"github.com/MoinBasha-MD/Syncup-Backend-sub002/store"
)

type NearbyCacheTestSuite struct {
	suite.Suite
	connURI      string
	testDBName   string
	mongoClient  *mongo.Client
	testDatabase *mongo.Database
	mongoStore   store.MongoStore

	ctrl        *gomock.Controller
	fetcherMock *mocks.MockPlaceFetcher
}

func NewNearbyCacheTestSuite(connURI, dbName string) *NearbyCacheTestSuite {
	return &NearbyCacheTestSuite{
		connURI:    connURI,
		testDBName: dbName,
	}
}

func (s *NearbyCacheTestSuite) SetupSuite() {
	if s.connURI == "" || s.testDBName == "" {
		s.T().Fatal("invalid test suite configuration")
	}

	opts := options.Client().ApplyURI(s.connURI)
	mongoClient, err := mongo.NewClient(opts)
	if nil != err {
		s.T().Fatalf("create mongo client with error: %s", err)
	}

	if err = mongoClient.Connect(context.Background()); nil != err {
		s.T().Fatalf("connect mongo database with error: %s", err.Error())
	}

	s.mongoClient = mongoClient
	s.testDatabase = mongoClient.Database(s.testDBName)

	// make sure the test suite is run with a clean environment
	if err := s.CleanMongoDB(); err != nil {
		s.T().Fatal(err)
	}
	schema.NewMongoDBIndexer(s.connURI, s.testDBName).IndexAll()

	s.mongoStore = store.NewMongoStore(mongoClient, s.testDBName)
}

func (s *NearbyCacheTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.fetcherMock = mocks.NewMockPlaceFetcher(s.ctrl)
}

func (s *NearbyCacheTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

// CleanMongoDB drop the whole test mongodb
func (s *NearbyCacheTestSuite) CleanMongoDB() error {
	return s.testDatabase.Drop(context.Background())
}

func providerBatch(prefix string, n int, category schema.PlaceCategory, lng, lat float64) []schema.PlaceRecord {
	records := make([]schema.PlaceRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, schema.PlaceRecord{
			ExternalID:    fmt.Sprintf("%s-%d", prefix, i),
			Name:          fmt.Sprintf("Place %d", i),
			Category:      category,
			CategoryLabel: "Test",
			Location: &schema.GeoJSON{
				Type:        "Point",
				Coordinates: []float64{lng + float64(i)*0.001, lat},
			},
			Address: "1 Test Street",
			CacheMetadata: schema.PlaceCacheMetadata{
				Source: "test",
			},
		})
	}
	return records
}

// TestMissThenHit walks the full read path: a first query on an empty
// store goes to the provider and registers a region, an identical second
// query is served from cache with no further provider call
func (s *NearbyCacheTestSuite) TestMissThenHit() {
	ctx := context.Background()
	engine := NewNearbyCache(s.mongoStore, s.fetcherMock)

	cords := schema.Location{Latitude: 12.97, Longitude: 77.59}
	categories := []schema.PlaceCategory{schema.CategoryRestaurant}
	batch := providerBatch("miss-hit", 3, schema.CategoryRestaurant, 77.59, 12.97)

	s.fetcherMock.EXPECT().
		FetchPlaces(cords, float64(3000), categories).
		Return(batch, nil).
		Times(1)

	result, err := engine.GetNearby(cords, 3000, categories)
	s.NoError(err)
	s.Equal(SourceProvider, result.Source)
	s.Len(result.Places, 3)

	count, err := s.testDatabase.Collection(schema.RegionCollection).CountDocuments(ctx, bson.M{
		"center.coordinates.0": cords.Longitude,
		"center.coordinates.1": cords.Latitude,
	})
	s.NoError(err)
	s.Equal(int64(1), count)

	// second identical call is a cache hit, mock forbids another fetch
	result, err = engine.GetNearby(cords, 3000, categories)
	s.NoError(err)
	s.Equal(SourceCache, result.Source)
	s.Len(result.Places, 3)
	s.NotNil(result.CachedAt)
	s.NotNil(result.ExpiresAt)
	s.True(result.ExpiresAt.After(time.Now().UTC()))
}

// TestNearMissServedByFuzzyMatch tests that a drifted but similar query
// hits the region cached by an earlier one
func (s *NearbyCacheTestSuite) TestNearMissServedByFuzzyMatch() {
	engine := NewNearbyCache(s.mongoStore, s.fetcherMock)

	cords := schema.Location{Latitude: 12.30, Longitude: 76.65}
	categories := []schema.PlaceCategory{schema.CategoryCafe}
	batch := providerBatch("fuzzy", 2, schema.CategoryCafe, 76.65, 12.30)

	s.fetcherMock.EXPECT().
		FetchPlaces(cords, float64(3000), categories).
		Return(batch, nil).
		Times(1)

	result, err := engine.GetNearby(cords, 3000, categories)
	s.NoError(err)
	s.Equal(SourceProvider, result.Source)

	// about 1.1km away with a slightly smaller radius
	drifted := schema.Location{Latitude: 12.31, Longitude: 76.65}
	result, err = engine.GetNearby(drifted, 2800, categories)
	s.NoError(err)
	s.Equal(SourceCache, result.Source)
	s.Len(result.Places, 2)
}

// TestProviderFailureDegrades tests that a miss that also fails at the
// provider yields an empty result with the error, and no region is left
// behind
func (s *NearbyCacheTestSuite) TestProviderFailureDegrades() {
	ctx := context.Background()
	engine := NewNearbyCache(s.mongoStore, s.fetcherMock)

	cords := schema.Location{Latitude: 12.40, Longitude: 76.75}
	categories := []schema.PlaceCategory{schema.CategoryBank}

	s.fetcherMock.EXPECT().
		FetchPlaces(cords, float64(2000), categories).
		Return(nil, fmt.Errorf("provider unavailable")).
		Times(1)

	result, err := engine.GetNearby(cords, 2000, categories)
	s.Error(err)
	s.Equal(SourceProvider, result.Source)
	s.Len(result.Places, 0)

	count, err := s.testDatabase.Collection(schema.RegionCollection).CountDocuments(ctx, bson.M{
		"center.coordinates.0": cords.Longitude,
		"center.coordinates.1": cords.Latitude,
	})
	s.NoError(err)
	s.Equal(int64(0), count)
}

// TestRefreshingRegionFallsThrough pins the behavior for a region locked
// by a refresh: the read path treats it as a miss and goes to the provider
// rather than waiting
func (s *NearbyCacheTestSuite) TestRefreshingRegionFallsThrough() {
	ctx := context.Background()
	engine := NewNearbyCache(s.mongoStore, s.fetcherMock)

	cords := schema.Location{Latitude: 12.50, Longitude: 76.85}
	categories := []schema.PlaceCategory{schema.CategoryPark}
	batch := providerBatch("locked", 2, schema.CategoryPark, 76.85, 12.50)

	s.fetcherMock.EXPECT().
		FetchPlaces(cords, float64(3000), categories).
		Return(batch, nil).
		Times(2)

	result, err := engine.GetNearby(cords, 3000, categories)
	s.NoError(err)
	s.Equal(SourceProvider, result.Source)

	// lock the region as a refresh cycle would
	_, err = s.testDatabase.Collection(schema.RegionCollection).UpdateOne(ctx,
		bson.M{
			"center.coordinates.0": cords.Longitude,
			"center.coordinates.1": cords.Latitude,
		},
		bson.M{"$set": bson.M{"status": schema.RegionStatusRefreshing}},
	)
	s.NoError(err)

	result, err = engine.GetNearby(cords, 3000, categories)
	s.NoError(err)
	s.Equal(SourceProvider, result.Source)

	// the fall-through must not have stolen the refresh lock
	var region schema.CachedRegion
	err = s.testDatabase.Collection(schema.RegionCollection).FindOne(ctx, bson.M{
		"center.coordinates.0": cords.Longitude,
		"center.coordinates.1": cords.Latitude,
	}).Decode(&region)
	s.NoError(err)
	s.Equal(schema.RegionStatusRefreshing, region.Status)
}

// TestCheckCacheStatus tests the read-only introspection contract
func (s *NearbyCacheTestSuite) TestCheckCacheStatus() {
	engine := NewNearbyCache(s.mongoStore, s.fetcherMock)

	cords := schema.Location{Latitude: 12.60, Longitude: 76.95}
	categories := []schema.PlaceCategory{schema.CategoryPharmacy}
	batch := providerBatch("status", 4, schema.CategoryPharmacy, 76.95, 12.60)

	// nothing cached yet
	status, err := engine.CheckCacheStatus(cords, 3000, categories)
	s.NoError(err)
	s.False(status.Cached)
	s.False(status.Expired)

	s.fetcherMock.EXPECT().
		FetchPlaces(cords, float64(3000), categories).
		Return(batch, nil).
		Times(1)

	_, err = engine.GetNearby(cords, 3000, categories)
	s.NoError(err)

	status, err = engine.CheckCacheStatus(cords, 3000, categories)
	s.NoError(err)
	s.True(status.Cached)
	s.False(status.Expired)
	s.Equal(int64(4), status.PlaceCount)
	s.NotNil(status.CachedAt)
	s.NotNil(status.ExpiresAt)

	// no side effects: still exactly one region, untouched
	count, err := s.testDatabase.Collection(schema.RegionCollection).CountDocuments(context.Background(), bson.M{
		"center.coordinates.0": cords.Longitude,
		"center.coordinates.1": cords.Latitude,
	})
	s.NoError(err)
	s.Equal(int64(1), count)
}

// TestCheckCacheStatusExpired tests that a stale region reports expired
// instead of cached
func (s *NearbyCacheTestSuite) TestCheckCacheStatusExpired() {
	ctx := context.Background()
	engine := NewNearbyCache(s.mongoStore, s.fetcherMock)

	cords := schema.Location{Latitude: 12.70, Longitude: 77.05}
	categories := []schema.PlaceCategory{schema.CategoryHotel}

	_, err := s.testDatabase.Collection(schema.RegionCollection).InsertOne(ctx, schema.CachedRegion{
		Center:          schema.NewGeoJSONPoint(cords),
		RadiusMeters:    3000,
		Categories:      categories,
		PlaceCount:      7,
		CachedAt:        time.Now().UTC().Add(-90 * 24 * time.Hour),
		ExpiresAt:       time.Now().UTC().Add(-time.Hour),
		LastRefreshedAt: time.Now().UTC().Add(-90 * 24 * time.Hour),
		Status:          schema.RegionStatusActive,
	})
	s.NoError(err)

	status, err := engine.CheckCacheStatus(cords, 3000, categories)
	s.NoError(err)
	s.False(status.Cached)
	s.True(status.Expired)
	s.Equal(int64(7), status.PlaceCount)
}

// TestCleanupExpired tests the explicit maintenance trigger
func (s *NearbyCacheTestSuite) TestCleanupExpired() {
	ctx := context.Background()
	engine := NewNearbyCache(s.mongoStore, s.fetcherMock)

	cords := schema.Location{Latitude: 12.80, Longitude: 77.15}

	_, err := s.testDatabase.Collection(schema.RegionCollection).InsertOne(ctx, schema.CachedRegion{
		Center:          schema.NewGeoJSONPoint(cords),
		RadiusMeters:    2000,
		Categories:      []schema.PlaceCategory{schema.CategoryGym},
		CachedAt:        time.Now().UTC().Add(-30 * 24 * time.Hour),
		ExpiresAt:       time.Now().UTC().Add(-time.Hour),
		LastRefreshedAt: time.Now().UTC().Add(-30 * 24 * time.Hour),
		Status:          schema.RegionStatusActive,
	})
	s.NoError(err)

	marked, err := engine.CleanupExpired()
	s.NoError(err)
	s.True(marked >= 1)

	// idempotent
	marked, err = engine.CleanupExpired()
	s.NoError(err)
	s.Equal(int64(0), marked)
}

// In order for 'go test' to run this suite, we need to create
// a normal test function and pass our suite to s.Run
func TestNearbyCacheTestSuite(t *testing.T) {
	suite.Run(t, NewNearbyCacheTestSuite("mongodb://127.0.0.1:27017/?compressors=disabled", "test-nearby-db"))
}
