package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/MoinBasha-MD/Syncup-Backend-sub002/external/places"
	"github.com/MoinBasha-MD/Syncup-Backend-sub002/schema"
)

const schedulerLogPrefix = "refresh"

const (
	DefaultRefreshInterval = 6 * time.Hour
	DefaultInitialDelay    = 30 * time.Second
	DefaultRefreshBatch    = 10
)

// RefreshStats summarizes one refresh cycle.
type RefreshStats struct {
	Refreshed int
	Failed    int
	Skipped   int
}

// RefreshScheduler proactively re-fetches expired regions from the
// provider so the cache does not silently go stale between client
// requests. One cycle runs at a time; a tick arriving mid-cycle is
// dropped, not queued. Designed for a single backend process - the guard
// is in-process, not a distributed lease.
type RefreshScheduler struct {
	store   CacheStore
	fetcher places.PlaceFetcher

	interval     time.Duration
	initialDelay time.Duration
	batchSize    int64

	running int32
	stop    chan struct{}
	once    sync.Once
}

// NewRefreshScheduler - new scheduler with the given cycle interval and
// per-cycle region cap. Non-positive arguments fall back to defaults.
func NewRefreshScheduler(cacheStore CacheStore, fetcher places.PlaceFetcher, interval time.Duration, batchSize int64) *RefreshScheduler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultRefreshBatch
	}

	return &RefreshScheduler{
		store:        cacheStore,
		fetcher:      fetcher,
		interval:     interval,
		initialDelay: DefaultInitialDelay,
		batchSize:    batchSize,
		stop:         make(chan struct{}),
	}
}

// Start launches the background loop: one cycle shortly after process
// start, then one per interval until Stop.
func (s *RefreshScheduler) Start() {
	go s.loop()
}

// Stop ends the background loop. Safe to call more than once; a cycle in
// flight finishes on its own.
func (s *RefreshScheduler) Stop() {
	s.once.Do(func() {
		close(s.stop)
	})
}

func (s *RefreshScheduler) loop() {
	log.WithFields(log.Fields{
		"prefix":   schedulerLogPrefix,
		"interval": s.interval,
		"batch":    s.batchSize,
	}).Info("refresh scheduler started")

	initial := time.NewTimer(s.initialDelay)
	defer initial.Stop()

	select {
	case <-initial.C:
		s.RunOnce()
	case <-s.stop:
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce()
		case <-s.stop:
			log.WithField("prefix", schedulerLogPrefix).Info("refresh scheduler stopped")
			return
		}
	}
}

// RunOnce executes one refresh cycle: up to batchSize stale active
// regions, each claimed, re-fetched and finished independently, so one
// region's provider failure never aborts the batch. Returns nil stats when
// another cycle was already in flight and this one was skipped.
func (s *RefreshScheduler) RunOnce() *RefreshStats {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		log.WithField("prefix", schedulerLogPrefix).Debug("refresh cycle already in progress, skipping tick")
		return nil
	}
	defer atomic.StoreInt32(&s.running, 0)

	runID := uuid.New().String()
	cycleLog := log.WithFields(log.Fields{
		"prefix": schedulerLogPrefix,
		"run_id": runID,
	})

	regions, err := s.store.FindRefreshCandidates(s.batchSize)
	if err != nil {
		cycleLog.WithError(err).Error("find refresh candidates")
		return &RefreshStats{}
	}
	if len(regions) == 0 {
		cycleLog.Debug("no regions to refresh")
		return &RefreshStats{}
	}

	stats := &RefreshStats{}
	for _, region := range regions {
		s.refreshRegion(region, stats, cycleLog)
	}

	cycleLog.WithFields(log.Fields{
		"refreshed": stats.Refreshed,
		"failed":    stats.Failed,
		"skipped":   stats.Skipped,
	}).Info("refresh cycle done")

	return stats
}

func (s *RefreshScheduler) refreshRegion(region schema.CachedRegion, stats *RefreshStats, cycleLog *log.Entry) {
	regionLog := cycleLog.WithField("region_id", region.ID.Hex())

	claimed, err := s.store.ClaimRegionForRefresh(region.ID)
	if err != nil {
		regionLog.WithError(err).Error("claim region for refresh")
		stats.Failed++
		return
	}
	if !claimed {
		// another writer got there first
		regionLog.Debug("region no longer claimable")
		stats.Skipped++
		return
	}

	cords := schema.Location{
		Longitude: region.Center.Coordinates[0],
		Latitude:  region.Center.Coordinates[1],
	}

	records, err := s.fetcher.FetchPlaces(cords, region.RadiusMeters, region.Categories)
	if err != nil {
		regionLog.WithError(err).Error("re-fetch region from provider")
		s.release(region, regionLog)
		stats.Failed++
		return
	}

	result, err := s.store.UpsertPlaces(records)
	if err != nil {
		regionLog.WithError(err).Error("upsert refreshed places")
		s.release(region, regionLog)
		stats.Failed++
		return
	}
	if result.Failed > 0 {
		regionLog.WithFields(log.Fields{
			"failed":     result.Failed,
			"failed_ids": result.FailedIDs,
		}).Warn("some refreshed places failed to upsert")
	}

	expiresAt := ExpiryFor(time.Now().UTC(), region.Categories)
	if err := s.store.FinishRegionRefresh(region.ID, int64(len(records)), expiresAt); err != nil {
		regionLog.WithError(err).Error("finish region refresh")
		s.release(region, regionLog)
		stats.Failed++
		return
	}

	regionLog.WithFields(log.Fields{
		"place_count": len(records),
		"expires_at":  expiresAt,
	}).Debug("region refreshed")
	stats.Refreshed++
}

// release reverts a claimed region to active with its old expiry, so the
// next cycle retries it instead of leaving it locked.
func (s *RefreshScheduler) release(region schema.CachedRegion, regionLog *log.Entry) {
	if err := s.store.ReleaseRegion(region.ID); err != nil {
		regionLog.WithError(err).Error("release region after failed refresh")
	}
}
