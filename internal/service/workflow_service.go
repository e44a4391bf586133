package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/internal/validation"
	"github.com/noah-isme/transport-request-api/internal/workflow"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
)

type userLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// RecentActivityLimit is the size of the district "recent activity" panel.
const RecentActivityLimit = 5

// ArtifactFilter hides legacy and test records from the admin views.
type ArtifactFilter struct {
	MinYear  int
	HideTest bool
}

// WorkflowService serves district staff and admins reviewing requests across families.
type WorkflowService struct {
	repo      requestRepository
	users     userLookup
	cache     dashboardInvalidator
	activity  activityRecorder
	metrics   *MetricsService
	policy    workflow.TransitionPolicy
	artifacts ArtifactFilter
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// WorkflowServiceParams groups constructor dependencies.
type WorkflowServiceParams struct {
	Requests  requestRepository
	Users     userLookup
	Cache     dashboardInvalidator
	Activity  activityRecorder
	Metrics   *MetricsService
	Policy    workflow.TransitionPolicy
	Artifacts ArtifactFilter
	Validator *validator.Validate
	Logger    *zap.Logger
}

// NewWorkflowService constructs a WorkflowService. A nil policy allows every transition.
func NewWorkflowService(params WorkflowServiceParams) *WorkflowService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validation.New()
	}
	policy := params.Policy
	if policy == nil {
		policy = workflow.PermissivePolicy()
	}
	return &WorkflowService{
		repo:      params.Requests,
		users:     params.Users,
		cache:     params.Cache,
		activity:  recorderOrNop(params.Activity),
		metrics:   params.Metrics,
		policy:    policy,
		artifacts: params.Artifacts,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Load returns every request visible to the session: the staff member's
// district, or all districts for an admin with test artifacts removed.
func (s *WorkflowService) Load(ctx context.Context, session models.Session) ([]models.TransportRequest, error) {
	q := models.RequestQuery{}
	switch session.Role {
	case models.RoleDistrict:
		if session.District == "" {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "account is not assigned to a district")
		}
		q.District = session.District
	case models.RoleAdmin:
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "staff access required")
	}

	requests, err := s.repo.ListAll(ctx, q)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requests")
	}
	if session.Role == models.RoleAdmin {
		requests = workflow.ExcludeArtifacts(requests, s.artifacts.MinYear, s.artifacts.HideTest, s.now())
	}
	return requests, nil
}

// List filters, sorts and paginates the visible requests.
func (s *WorkflowService) List(ctx context.Context, session models.Session, q workflow.Query, page, size int) ([]models.TransportRequest, models.Pagination, error) {
	requests, err := s.Load(ctx, session)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	items, meta := workflow.Paginate(q.Run(requests), page, size)
	return items, meta, nil
}

// Get returns one request the session may see.
func (s *WorkflowService) Get(ctx context.Context, session models.Session, id string) (*models.TransportRequest, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	if session.Role == models.RoleDistrict && req.District != session.District {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
	}
	return req, nil
}

// NextStatuses lists the statuses the transition policy lets staff set from status.
func (s *WorkflowService) NextStatuses(status models.RequestStatus) []models.RequestStatus {
	return s.policy.Targets(status)
}

// UpdateStatus moves a request to a new status, appending the reviewer's note.
// The note is stored exactly as typed; clients escape it when rendering.
// Nothing is written when any step fails.
func (s *WorkflowService) UpdateStatus(ctx context.Context, session models.Session, id string, req models.StatusUpdateRequest) (*models.TransportRequest, error) {
	status, err := workflow.ParseStatus(string(req.Status))
	if err != nil {
		return nil, err
	}
	req.Status = status
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status update")
	}

	current, err := s.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}

	updated, err := workflow.ApplyStatusChange(*current, workflow.StatusChange{
		Status:  status,
		Note:    req.Note,
		ActorID: session.UserID,
		At:      s.now().UTC(),
	}, s.policy)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, &updated, req.ExpectedUpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if req.ExpectedUpdatedAt != nil {
				return nil, appErrors.Clone(appErrors.ErrStaleWrite, "request was updated by someone else, reload and try again")
			}
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request status")
	}

	s.metrics.RecordStatusChange(status)
	invalidateDashboards(ctx, s.cache, current.District, updated.District)
	s.activity.Record(session, models.ActivityStatusChange,
		fmt.Sprintf("Request %s for %s changed from %s to %s", updated.ID, updated.StudentName(), current.Status.OrDefault().Label(), status.Label()))
	return &updated, nil
}

// ParentContact returns the owner's contact details for a request.
func (s *WorkflowService) ParentContact(ctx context.Context, session models.Session, id string) (*models.ParentContact, error) {
	req, err := s.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}
	if req.OwnerID() == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingOwnerReference, "Cannot load parent contact: request has no owner.")
	}
	user, err := s.users.FindByID(ctx, req.OwnerID())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parent account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent account")
	}
	return &models.ParentContact{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
	}, nil
}

// ActivityHistory lists visible requests by most recent activity.
func (s *WorkflowService) ActivityHistory(ctx context.Context, session models.Session, page, size int) ([]models.TransportRequest, models.Pagination, error) {
	requests, err := s.Load(ctx, session)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	items, meta := workflow.Paginate(ByLastActivity(requests), page, size)
	return items, meta, nil
}

// ByLastActivity returns a copy of requests ordered by updatedAt, falling back to createdAt, newest first.
func ByLastActivity(requests []models.TransportRequest) []models.TransportRequest {
	out := make([]models.TransportRequest, len(requests))
	copy(out, requests)
	key := func(r models.TransportRequest) int64 {
		if ts := r.LastActivity(); ts != nil {
			return ts.UnixMilli()
		}
		return 0
	}
	sort.SliceStable(out, func(i, j int) bool { return key(out[i]) > key(out[j]) })
	return out
}
