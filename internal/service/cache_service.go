package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
)

// AdminDashboardKey holds the single admin overview snapshot.
const AdminDashboardKey = "dashboard:admin"

const districtDashboardPrefix = "dashboard:district:"

// DistrictDashboardKey names the snapshot for one district's staff dashboard.
func DistrictDashboardKey(district string) string {
	return districtDashboardPrefix + district
}

// CacheRepository persists dashboard snapshots.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// dashboardInvalidator drops snapshots a write has made stale.
type dashboardInvalidator interface {
	InvalidateDashboards(ctx context.Context, districts ...string) error
}

// CacheService keeps dashboard snapshots keyed by scope and records hit ratios.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs a cache service. Snapshots live for ttl.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get loads a snapshot into dest and reports whether one was found. A failing
// store counts as a miss.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	hit := err == nil
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit, time.Since(start))
	}
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("dashboard snapshot read failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return hit, nil
}

// Set stores a snapshot for the configured lifetime.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	if !s.Enabled() {
		return nil
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, s.ttl)
	if s.metrics != nil {
		s.metrics.ObserveCacheWrite(time.Since(start))
	}
	if err != nil {
		s.logger.Warn("dashboard snapshot write failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// InvalidateDashboards drops the admin overview and the staff dashboard of
// every named district. Empty and repeated names are ignored.
func (s *CacheService) InvalidateDashboards(ctx context.Context, districts ...string) error {
	if !s.Enabled() {
		return nil
	}
	keys := []string{AdminDashboardKey}
	seen := make(map[string]struct{}, len(districts))
	for _, district := range districts {
		if district == "" {
			continue
		}
		if _, dup := seen[district]; dup {
			continue
		}
		seen[district] = struct{}{}
		keys = append(keys, DistrictDashboardKey(district))
	}
	if err := s.repo.Delete(ctx, keys...); err != nil {
		s.logger.Warn("dashboard invalidation failed", zap.Strings("keys", keys), zap.Error(err))
		return err
	}
	return nil
}

// invalidateDashboards is the write-path hook shared by the mutating services.
// Failures are already logged by the cache and never fail the write.
func invalidateDashboards(ctx context.Context, cache dashboardInvalidator, districts ...string) {
	if cache == nil {
		return
	}
	_ = cache.InvalidateDashboards(ctx, districts...)
}
