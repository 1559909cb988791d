package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/campusid/auth/internal/auth/metrics"
	"github.com/campusid/auth/internal/auth/registry"
)

// DefaultHousekeepingInterval is used when no interval is configured.
const DefaultHousekeepingInterval = time.Hour

// HousekeepingService periodically evicts expired refresh tokens from the
// registry so it does not grow without bound.
type HousekeepingService struct {
	Registry registry.Registry
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Interval time.Duration

	// Now is the clock passed to EvictExpired. Defaults to time.Now.
	Now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval falls back to DefaultHousekeepingInterval.
func NewHousekeepingService(
	reg registry.Registry,
	m *metrics.Metrics,
	logger *slog.Logger,
	interval time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = DefaultHousekeepingInterval
	}

	return &HousekeepingService{
		Registry: reg,
		Metrics:  m,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs one eviction immediately, then one per Interval, until Stop.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", slog.Duration("interval", s.Interval))
}

// Stop shuts the worker down and waits for an in-flight eviction to finish.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// RunOnce evicts expired refresh tokens and reports how many were removed.
func (s *HousekeepingService) RunOnce(ctx context.Context) int64 {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	n, err := s.Registry.EvictExpired(ctx, now())
	if err != nil {
		s.Logger.Error("failed to evict expired refresh tokens", slog.Any("error", err))
		return 0
	}

	s.Metrics.RefreshEvicted(n)
	s.Logger.Debug("housekeeping completed", slog.Int64("evicted", n))
	return n
}
