package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/internal/validation"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
	"github.com/noah-isme/transport-request-api/pkg/sanitize"
)

// publicRole marks messages sent from the landing page contact form.
const publicRole = "public"

type supportRepository interface {
	Create(ctx context.Context, msg *models.SupportMessage) error
	FindByID(ctx context.Context, id string) (*models.SupportMessage, error)
	List(ctx context.Context, filter models.SupportFilter) ([]models.SupportMessage, int, error)
	ListAll(ctx context.Context) ([]models.SupportMessage, error)
	UpdateTriage(ctx context.Context, id string, status *models.SupportStatus, priority *models.SupportPriority) error
}

// SupportService stores help requests and lets admins triage them.
type SupportService struct {
	repo      supportRepository
	cache     dashboardInvalidator
	activity  activityRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSupportService constructs a SupportService.
func NewSupportService(repo supportRepository, cache dashboardInvalidator, activity activityRecorder, validate *validator.Validate, logger *zap.Logger) *SupportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &SupportService{
		repo:      repo,
		cache:     cache,
		activity:  recorderOrNop(activity),
		validator: validate,
		logger:    logger,
	}
}

// Create stores a message from a signed-in parent or district staff member.
func (s *SupportService) Create(ctx context.Context, session models.Session, req models.CreateSupportMessageRequest) (*models.SupportMessage, error) {
	if !session.Authenticated() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "sign in to contact support")
	}
	req.Subject = sanitize.Text(req.Subject)
	req.Message = sanitize.Text(req.Message)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	userID := session.UserID
	msg := &models.SupportMessage{
		Subject:  req.Subject,
		From:     session.DisplayName(),
		Email:    session.Email,
		District: session.District,
		Status:   models.SupportPending,
		Priority: models.PriorityMedium,
		Message:  req.Message,
		Role:     string(session.Role),
		UserID:   &userID,
	}
	return s.store(ctx, session, msg)
}

// Contact stores a message from the public landing page.
func (s *SupportService) Contact(ctx context.Context, req models.ContactRequest) (*models.SupportMessage, error) {
	req.Name = sanitize.Text(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Message = sanitize.Text(req.Message)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	msg := &models.SupportMessage{
		Subject:  "Contact form: " + req.Name,
		From:     req.Name,
		Email:    req.Email,
		Status:   models.SupportPending,
		Priority: models.PriorityMedium,
		Message:  req.Message,
		Role:     publicRole,
	}
	return s.store(ctx, models.Session{FullName: req.Name, Email: req.Email}, msg)
}

// List returns one page of the admin inbox.
func (s *SupportService) List(ctx context.Context, session models.Session, filter models.SupportFilter) ([]models.SupportMessage, models.Pagination, error) {
	if session.Role != models.RoleAdmin {
		return nil, models.Pagination{}, appErrors.Clone(appErrors.ErrForbidden, "admin access required")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 10
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load support messages")
	}
	return items, models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// UpdateTriage changes a ticket's status and/or priority.
func (s *SupportService) UpdateTriage(ctx context.Context, session models.Session, id string, req models.UpdateSupportMessageRequest) (*models.SupportMessage, error) {
	if session.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin access required")
	}
	if req.Status == nil && req.Priority == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status or priority is required")
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTriage(ctx, id, req.Status, req.Priority); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "support message not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update support message")
	}
	msg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "support message not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load support message")
	}

	invalidateDashboards(ctx, s.cache)
	s.activity.Record(session, models.ActivitySupportUpdate, fmt.Sprintf("Support message %q is now %s / %s", msg.Subject, msg.Status, msg.Priority))
	return msg, nil
}

func (s *SupportService) store(ctx context.Context, actor models.Session, msg *models.SupportMessage) (*models.SupportMessage, error) {
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send message")
	}
	invalidateDashboards(ctx, s.cache)
	s.activity.Record(actor, models.ActivitySupportCreate, fmt.Sprintf("Support message %q from %s", msg.Subject, msg.From))
	return msg, nil
}

func (s *SupportService) validate(payload interface{}) error {
	if err := s.validator.Struct(payload); err != nil {
		return appErrors.WithDetails(
			appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid support message"),
			validation.Messages(err, nil),
		)
	}
	return nil
}
