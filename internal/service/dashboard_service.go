package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/internal/workflow"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
)

type requestLoader interface {
	Load(ctx context.Context, session models.Session) ([]models.TransportRequest, error)
}

type userLister interface {
	ListAll(ctx context.Context) ([]models.User, error)
}

type supportLister interface {
	ListAll(ctx context.Context) ([]models.SupportMessage, error)
}

type activityLister interface {
	List(ctx context.Context, filter models.ActivityFilter) ([]models.SystemActivity, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	Location      *time.Location
	SourceTimeout time.Duration
	RecentLimit   int
}

// DashboardService composes the district and admin dashboards.
type DashboardService struct {
	requests requestLoader
	users    userLister
	support  supportLister
	activity activityLister
	cache    *CacheService
	logger   *zap.Logger
	now      func() time.Time
	cfg      DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Requests requestLoader
	Users    userLister
	Support  supportLister
	Activity activityLister
	Cache    *CacheService
	Logger   *zap.Logger
	Config   DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = 5 * time.Second
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = RecentActivityLimit
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		requests: params.Requests,
		users:    params.Users,
		support:  params.Support,
		activity: params.Activity,
		cache:    params.Cache,
		logger:   logger,
		now:      time.Now,
		cfg:      cfg,
	}
}

// District returns the staff dashboard for the session's district and reports whether it came from cache.
func (s *DashboardService) District(ctx context.Context, session models.Session) (*models.DistrictDashboard, bool, error) {
	if session.Role != models.RoleDistrict || session.District == "" {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "district staff access required")
	}
	key := DistrictDashboardKey(session.District)
	var cached models.DistrictDashboard
	if s.tryCache(ctx, key, &cached) {
		return &cached, true, nil
	}

	requests, err := s.requests.Load(ctx, session)
	if err != nil {
		return nil, false, err
	}
	recent := ByLastActivity(requests)
	if len(recent) > s.cfg.RecentLimit {
		recent = recent[:s.cfg.RecentLimit]
	}
	dash := &models.DistrictDashboard{
		District:       session.District,
		Stats:          workflow.Aggregate(requests, s.now(), s.cfg.Location),
		RecentActivity: recent,
	}
	s.persistCache(ctx, key, dash)
	return dash, false, nil
}

// Admin fans out to every source concurrently and assembles the overview once all have answered.
// The first failure cancels the others.
func (s *DashboardService) Admin(ctx context.Context, session models.Session) (*models.AdminDashboard, bool, error) {
	if session.Role != models.RoleAdmin {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "admin access required")
	}
	const key = AdminDashboardKey
	var cached models.AdminDashboard
	if s.tryCache(ctx, key, &cached) {
		return &cached, true, nil
	}

	var (
		requests []models.TransportRequest
		users    []models.User
		support  []models.SupportMessage
		activity []models.SystemActivity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, cancel := context.WithTimeout(gctx, s.cfg.SourceTimeout)
		defer cancel()
		var err error
		requests, err = s.requests.Load(c, session)
		return err
	})
	g.Go(func() error {
		c, cancel := context.WithTimeout(gctx, s.cfg.SourceTimeout)
		defer cancel()
		var err error
		users, err = s.users.ListAll(c)
		return err
	})
	g.Go(func() error {
		c, cancel := context.WithTimeout(gctx, s.cfg.SourceTimeout)
		defer cancel()
		var err error
		support, err = s.support.ListAll(c)
		return err
	})
	g.Go(func() error {
		c, cancel := context.WithTimeout(gctx, s.cfg.SourceTimeout)
		defer cancel()
		var err error
		activity, err = s.activity.List(c, models.ActivityFilter{Limit: s.cfg.RecentLimit * 2})
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("admin dashboard source failed", zap.Error(err))
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, false, appErr
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard")
	}

	now := s.now()
	districts := workflow.Districts(requests, users, now)
	pending := 0
	for _, msg := range support {
		if msg.Status == models.SupportPending {
			pending++
		}
	}
	recentSupport := support
	if len(recentSupport) > s.cfg.RecentLimit {
		recentSupport = recentSupport[:s.cfg.RecentLimit]
	}

	dash := &models.AdminDashboard{
		Stats:          workflow.Aggregate(requests, now, s.cfg.Location),
		PendingSupport: pending,
		DistrictCount:  len(districts),
		Districts:      districts,
		RecentActivity: activity,
		RecentSupport:  recentSupport,
	}
	s.persistCache(ctx, key, dash)
	return dash, false, nil
}

func (s *DashboardService) tryCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		return false
	}
	return hit
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(ctx, key, value)
}
