package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"gorm.io/datatypes"

	"github.com/tmarek/blockpress-backend/database"
	"github.com/tmarek/blockpress-backend/models"
)

// maxConcurrentLookups bounds in-flight geolocation requests. When the
// semaphore is saturated the lookup is skipped and the click is recorded
// with an unknown country; content serving is never made to wait.
const maxConcurrentLookups = 16

// ClickContext carries the request attributes captured at serve time.
type ClickContext struct {
	Referrer  string
	UserAgent string
	IPAddress string
	Meta      datatypes.JSON
}

// AnalyticsRecorder appends click facts off the content-serving path.
// Every failure inside it is swallowed: a lost click is acceptable, a slow
// or failed response is not.
type AnalyticsRecorder struct {
	clickRepo *database.ClickRepo
	geo       *GeoClient
	lookups   *semaphore.Weighted
	logger    zerolog.Logger

	// recorded is signalled after each append attempt; tests use it to
	// wait for the asynchronous write without sleeping.
	recorded chan struct{}
}

func NewAnalyticsRecorder(clickRepo *database.ClickRepo, geo *GeoClient) *AnalyticsRecorder {
	return &AnalyticsRecorder{
		clickRepo: clickRepo,
		geo:       geo,
		lookups:   semaphore.NewWeighted(maxConcurrentLookups),
		logger:    log.With().Str("service", "analyticsRecorder").Logger(),
		recorded:  make(chan struct{}, 64),
	}
}

// TrackClick records one click fact asynchronously. It returns immediately;
// the caller never observes an error and never waits on the geolocation
// lookup or the append.
func (a *AnalyticsRecorder) TrackClick(blockID uuid.UUID, clickCtx ClickContext) {
	go a.record(blockID, clickCtx)
}

func (a *AnalyticsRecorder) record(blockID uuid.UUID, clickCtx ClickContext) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().Interface("panic", r).Msg("Recovered from panic while recording click")
		}
		select {
		case a.recorded <- struct{}{}:
		default:
		}
	}()

	click := &models.Click{
		ID:        uuid.New(),
		BlockID:   blockID,
		Timestamp: time.Now(),
		Referrer:  clickCtx.Referrer,
		UserAgent: clickCtx.UserAgent,
		IPAddress: clickCtx.IPAddress,
		Meta:      clickCtx.Meta,
	}

	if clickCtx.IPAddress != "" && a.lookups.TryAcquire(1) {
		country := a.geo.CountryForIP(clickCtx.IPAddress)
		a.lookups.Release(1)
		if country != "" {
			click.Country = &country
		}
	}

	if err := a.clickRepo.Add(click); err != nil {
		// Swallowed: analytics must never surface failures to the
		// content-serving path.
		a.logger.Warn().Err(err).Str("blockId", blockID.String()).Msg("Failed to append click fact")
	}
}

// WaitForRecord blocks until one pending click append has finished or the
// timeout elapses. Test helper; production callers never wait.
func (a *AnalyticsRecorder) WaitForRecord(timeout time.Duration) bool {
	select {
	case <-a.recorded:
		return true
	case <-time.After(timeout):
		return false
	}
}
