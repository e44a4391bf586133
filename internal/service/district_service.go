package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/internal/validation"
	"github.com/noah-isme/transport-request-api/internal/workflow"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
	"github.com/noah-isme/transport-request-api/pkg/sanitize"
)

type districtUserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// DistrictService exposes the derived district directory and provisions district staff logins.
type DistrictService struct {
	requests  requestLoader
	users     districtUserStore
	cache     dashboardInvalidator
	activity  activityRecorder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewDistrictService constructs a DistrictService.
func NewDistrictService(requests requestLoader, users districtUserStore, cache dashboardInvalidator, activity activityRecorder, validate *validator.Validate, logger *zap.Logger) *DistrictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &DistrictService{
		requests:  requests,
		users:     users,
		cache:     cache,
		activity:  recorderOrNop(activity),
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// All returns every district derived from requests and staff accounts.
func (s *DistrictService) All(ctx context.Context, session models.Session) ([]models.District, error) {
	if session.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin access required")
	}
	requests, err := s.requests.Load(ctx, session)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load users")
	}
	return workflow.Districts(requests, users, s.now()), nil
}

// List filters districts by a case-insensitive name search and paginates.
func (s *DistrictService) List(ctx context.Context, session models.Session, search string, page, size int) ([]models.District, models.Pagination, error) {
	districts, err := s.All(ctx, session)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle != "" {
		filtered := make([]models.District, 0, len(districts))
		for _, d := range districts {
			if strings.Contains(strings.ToLower(d.Name), needle) {
				filtered = append(filtered, d)
			}
		}
		districts = filtered
	}
	items, meta := workflow.Paginate(districts, page, size)
	return items, meta, nil
}

// CreateAccount provisions a district staff login. The district name doubles
// as the account's first name and the contact becomes its phone.
func (s *DistrictService) CreateAccount(ctx context.Context, session models.Session, req models.CreateDistrictAccountRequest) (*models.UserInfo, error) {
	if session.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin access required")
	}
	req.Name = sanitize.Text(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Contact = sanitize.Text(req.Contact)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WithDetails(
			appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Please fill in district name, email, and password."),
			validation.Messages(err, nil),
		)
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an account with this email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.Name,
		Phone:        req.Contact,
		Role:         models.RoleDistrict,
		District:     req.Name,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create district account")
	}

	invalidateDashboards(ctx, s.cache)
	s.activity.Record(session, models.ActivityDistrictCreate, fmt.Sprintf("Created district account %s for %s", user.Email, user.District))
	info := models.NewUserInfo(*user)
	return &info, nil
}
