package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/transport-request-api/internal/models"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
	"github.com/noah-isme/transport-request-api/pkg/jobs"
)

type activityRepository interface {
	Create(ctx context.Context, entry *models.SystemActivity) error
	List(ctx context.Context, filter models.ActivityFilter) ([]models.SystemActivity, error)
}

// ActivityConfig sizes the background writer.
type ActivityConfig struct {
	Workers    int
	Retries    int
	BufferSize int
}

// ActivityService appends system log entries off the request path and reads them back.
type ActivityService struct {
	repo    activityRepository
	queue   *jobs.Queue[models.SystemActivity]
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewActivityService constructs the service. Call Start before recording.
func NewActivityService(repo activityRepository, metrics *MetricsService, logger *zap.Logger, cfg ActivityConfig) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ActivityService{repo: repo, metrics: metrics, logger: logger, now: time.Now}
	s.queue = jobs.NewQueue[models.SystemActivity]("system-activity", s.write, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.Retries,
		RetryDelay: 500 * time.Millisecond,
		Logger:     logger,
	})
	return s
}

// Start launches the writers.
func (s *ActivityService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop flushes what is buffered and stops the writers.
func (s *ActivityService) Stop() {
	s.queue.Stop()
}

// Record queues an entry attributed to session. It never blocks the caller;
// entries that cannot be queued are logged and counted.
func (s *ActivityService) Record(session models.Session, action, details string) {
	if s == nil {
		return
	}
	entry := models.SystemActivity{
		ID:        uuid.NewString(),
		User:      session.DisplayName(),
		Action:    action,
		District:  session.District,
		Details:   details,
		Timestamp: s.now().UTC(),
	}
	if session.UserID != "" {
		id := session.UserID
		entry.UserID = &id
	}
	if entry.User == "" {
		entry.User = "public"
	}

	if err := s.queue.Enqueue(jobs.Job[models.SystemActivity]{ID: entry.ID, Type: action, Payload: entry}); err != nil {
		s.metrics.RecordActivityDropped()
		s.logger.Warn("system activity dropped", zap.String("action", action), zap.Error(err))
	}
}

func (s *ActivityService) write(ctx context.Context, job jobs.Job[models.SystemActivity]) error {
	entry := job.Payload
	return s.repo.Create(ctx, &entry)
}

// List returns log entries newest first. District staff only see their own district.
func (s *ActivityService) List(ctx context.Context, session models.Session, filter models.ActivityFilter) ([]models.SystemActivity, error) {
	if session.Role == models.RoleDistrict {
		filter.District = session.District
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load system activity")
	}
	return entries, nil
}
