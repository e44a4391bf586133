package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/internal/validation"
	"github.com/noah-isme/transport-request-api/internal/workflow"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
	"github.com/noah-isme/transport-request-api/pkg/sanitize"
)

type requestRepository interface {
	Create(ctx context.Context, req *models.TransportRequest) error
	FindByID(ctx context.Context, id string) (*models.TransportRequest, error)
	FindOwned(ctx context.Context, id, ownerID string) (*models.TransportRequest, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.TransportRequest, error)
	ListAll(ctx context.Context, q models.RequestQuery) ([]models.TransportRequest, error)
	UpdateStatus(ctx context.Context, req *models.TransportRequest, expectedUpdatedAt *time.Time) error
	UpdateFields(ctx context.Context, id, ownerID string, upd models.ParentRequestUpdate, at time.Time) error
	DeleteOwned(ctx context.Context, id, ownerID string) error
}

// RequestService is the parent's view of their own transportation requests.
type RequestService struct {
	repo      requestRepository
	cache     dashboardInvalidator
	activity  activityRecorder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRequestService constructs a RequestService.
func NewRequestService(repo requestRepository, cache dashboardInvalidator, activity activityRecorder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &RequestService{
		repo:      repo,
		cache:     cache,
		activity:  recorderOrNop(activity),
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Create stores a submission for the session's family. Ownership and district
// come from the session, never from the payload.
func (s *RequestService) Create(ctx context.Context, session models.Session, req models.TransportRequest) (*models.TransportRequest, error) {
	if !session.Authenticated() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "sign in to submit a request")
	}
	owner := session.UserID
	req.ID = ""
	req.UserID = &owner
	req.District = session.District
	req.Status = models.StatusPending
	req.AdminNotes = ""
	req.CreatedAt = nil
	req.UpdatedAt = nil
	req.UpdatedBy = nil
	sanitize.Fields(&req.StudentFirstName, &req.StudentLastName, &req.School,
		&req.PickupLocation, &req.DropOffLocation, &req.Details.AdditionalComments)

	if err := s.repo.Create(ctx, &req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit request")
	}

	s.metrics.RecordSubmission()
	invalidateDashboards(ctx, s.cache, session.District)
	s.activity.Record(session, models.ActivityRequestSubmit, fmt.Sprintf("Submitted request %s for %s", req.ID, req.StudentName()))
	return &req, nil
}

// List returns the family's requests newest first, filtered and paginated.
func (s *RequestService) List(ctx context.Context, session models.Session, q workflow.Query, page, size int) ([]models.TransportRequest, models.Pagination, error) {
	requests, err := s.repo.ListByOwner(ctx, session.UserID, 0)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requests")
	}
	items, meta := workflow.Paginate(q.Run(requests), page, size)
	return items, meta, nil
}

// Get returns one of the family's requests.
func (s *RequestService) Get(ctx context.Context, session models.Session, id string) (*models.TransportRequest, error) {
	req, err := s.repo.FindOwned(ctx, id, session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return req, nil
}

// Children lists each distinct student across the family's requests.
func (s *RequestService) Children(ctx context.Context, session models.Session) ([]models.Child, error) {
	requests, err := s.repo.ListByOwner(ctx, session.UserID, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requests")
	}
	return workflow.DistinctChildren(requests), nil
}

// Update applies a parent's limited edit and returns the stored record.
func (s *RequestService) Update(ctx context.Context, session models.Session, id string, upd models.ParentRequestUpdate) (*models.TransportRequest, error) {
	if upd.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}
	for _, field := range []*string{upd.StudentFirstName, upd.StudentLastName, upd.School, upd.PickupLocation, upd.DropOffLocation} {
		if field != nil {
			*field = sanitize.Text(*field)
		}
	}
	if err := s.validator.Struct(upd); err != nil {
		return nil, appErrors.WithDetails(
			appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request update"),
			validation.Messages(err, nil),
		)
	}

	if err := s.repo.UpdateFields(ctx, id, session.UserID, upd, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request")
	}

	invalidateDashboards(ctx, s.cache, session.District)
	s.activity.Record(session, models.ActivityRequestEdit, "Edited request "+id)
	return s.Get(ctx, session, id)
}

// Delete removes one of the family's requests.
func (s *RequestService) Delete(ctx context.Context, session models.Session, id string) error {
	if err := s.repo.DeleteOwned(ctx, id, session.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete request")
	}
	invalidateDashboards(ctx, s.cache, session.District)
	s.activity.Record(session, models.ActivityRequestDelete, "Deleted request "+id)
	return nil
}
