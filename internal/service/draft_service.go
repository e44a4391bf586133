package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/internal/wizard"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
)

type draftStore interface {
	Save(ctx context.Context, userID, draftID string, value interface{}, ttl time.Duration) error
	Load(ctx context.Context, userID, draftID string, dest interface{}) error
	Delete(ctx context.Context, userID, draftID string) error
	ListIDs(ctx context.Context, userID string) ([]string, error)
}

type requestCreator interface {
	Create(ctx context.Context, session models.Session, req models.TransportRequest) (*models.TransportRequest, error)
}

// StepAction moves a draft between wizard steps.
type StepAction string

const (
	StepNext StepAction = "next"
	StepBack StepAction = "back"
	StepGoTo StepAction = "goto"
)

// DNRAction drives the DNR confirmation dialog.
type DNRAction string

const (
	DNRSet     DNRAction = "set"
	DNRConfirm DNRAction = "confirm"
	DNRCancel  DNRAction = "cancel"
)

// Draft is one saved wizard session.
type Draft struct {
	ID string `json:"id"`
	wizard.Wizard
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DraftService persists wizard state between requests so a parent can resume a submission.
type DraftService struct {
	store    draftStore
	requests requestCreator
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewDraftService constructs a DraftService.
func NewDraftService(store draftStore, requests requestCreator, ttl time.Duration, logger *zap.Logger) *DraftService {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftService{store: store, requests: requests, ttl: ttl, logger: logger, now: time.Now}
}

const dnrRoot = "dnr"

// DNRDocumentPrefix is the storage folder holding a parent's uploaded DNR orders.
func DNRDocumentPrefix(userID string) string {
	return dnrRoot + "/" + userID + "/"
}

// Create starts a new draft at step 1, optionally seeded with a partial form.
func (s *DraftService) Create(ctx context.Context, session models.Session, seed []byte) (*Draft, error) {
	if err := requireParent(session); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	draft := &Draft{ID: uuid.NewString(), Wizard: *wizard.New(), CreatedAt: now, UpdatedAt: now}
	if len(seed) > 0 {
		if err := s.apply(session, draft, seed); err != nil {
			return nil, err
		}
	}
	if err := s.save(ctx, session, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Get loads a draft owned by the session.
func (s *DraftService) Get(ctx context.Context, session models.Session, id string) (*Draft, error) {
	if err := requireParent(session); err != nil {
		return nil, err
	}
	var draft Draft
	if err := s.store.Load(ctx, session.UserID, id, &draft); err != nil {
		if errors.Is(err, appErrors.ErrDraftNotFound) {
			return nil, appErrors.Clone(appErrors.ErrDraftNotFound, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load draft")
	}
	return &draft, nil
}

// List returns the session's live drafts, most recently touched first.
func (s *DraftService) List(ctx context.Context, session models.Session) ([]Draft, error) {
	if err := requireParent(session); err != nil {
		return nil, err
	}
	ids, err := s.store.ListIDs(ctx, session.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list drafts")
	}
	drafts := make([]Draft, 0, len(ids))
	for _, id := range ids {
		draft, err := s.Get(ctx, session, id)
		if err != nil {
			if errors.Is(err, appErrors.ErrDraftNotFound) {
				continue
			}
			return nil, err
		}
		drafts = append(drafts, *draft)
	}
	sort.SliceStable(drafts, func(i, j int) bool { return drafts[i].UpdatedAt.After(drafts[j].UpdatedAt) })
	return drafts, nil
}

// Patch merges a partial form into the draft.
func (s *DraftService) Patch(ctx context.Context, session models.Session, id string, patch []byte) (*Draft, error) {
	draft, err := s.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(session, draft, patch); err != nil {
		return nil, err
	}
	if err := s.save(ctx, session, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Step moves the draft. Validation failures are saved on the draft and also returned.
func (s *DraftService) Step(ctx context.Context, session models.Session, id string, action StepAction, target int) (*Draft, error) {
	draft, err := s.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}
	var stepErr error
	switch action {
	case StepNext:
		stepErr = draft.Next()
	case StepBack:
		draft.Back()
	case StepGoTo:
		stepErr = draft.GoTo(target)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown step action "+string(action))
	}
	if err := s.save(ctx, session, draft); err != nil {
		return nil, err
	}
	if stepErr != nil {
		return draft, stepErr
	}
	return draft, nil
}

// DNR opens, confirms or cancels the DNR dialog.
func (s *DraftService) DNR(ctx context.Context, session models.Session, id string, action DNRAction) (*Draft, error) {
	draft, err := s.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}
	var dnrErr error
	switch action {
	case DNRSet:
		draft.SetDNR(true)
	case DNRConfirm:
		dnrErr = draft.ConfirmDNR()
	case DNRCancel:
		draft.CancelDNR()
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown DNR action "+string(action))
	}
	if err := s.save(ctx, session, draft); err != nil {
		return nil, err
	}
	return draft, dnrErr
}

// Submit validates every step, stores the request and discards the draft.
// On validation failure the draft is kept, positioned on the failing step.
func (s *DraftService) Submit(ctx context.Context, session models.Session, id string) (*models.TransportRequest, *Draft, error) {
	draft, err := s.Get(ctx, session, id)
	if err != nil {
		return nil, nil, err
	}
	if draft.DNRDialogOpen {
		return nil, draft, appErrors.Clone(appErrors.ErrValidation, "Please complete all required fields for DNR documentation")
	}
	form, err := draft.Submit(s.now())
	if err != nil {
		if saveErr := s.save(ctx, session, draft); saveErr != nil {
			s.logger.Warn("failed to persist draft after rejected submit", zap.String("draft_id", id), zap.Error(saveErr))
		}
		return nil, draft, err
	}

	created, err := s.requests.Create(ctx, session, wizard.Assemble(form))
	if err != nil {
		return nil, draft, err
	}
	if err := s.store.Delete(ctx, session.UserID, id); err != nil {
		s.logger.Warn("failed to discard submitted draft", zap.String("draft_id", id), zap.Error(err))
	}
	return created, nil, nil
}

// Delete discards a draft.
func (s *DraftService) Delete(ctx context.Context, session models.Session, id string) error {
	if err := requireParent(session); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, session.UserID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete draft")
	}
	return nil
}

func (s *DraftService) apply(session models.Session, draft *Draft, patch []byte) error {
	if err := draft.Apply(patch); err != nil {
		return err
	}
	doc := draft.Form.DNRDocumentation
	if doc != "" && !strings.HasPrefix(doc, DNRDocumentPrefix(session.UserID)) {
		return appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "invalid DNR document reference"),
			map[string]string{"dnrDocumentation": "Upload the DNR order before referencing it"})
	}
	return nil
}

func (s *DraftService) save(ctx context.Context, session models.Session, draft *Draft) error {
	draft.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, session.UserID, draft.ID, draft, s.ttl); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save draft")
	}
	return nil
}

func requireParent(session models.Session) error {
	if !session.Authenticated() {
		return appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	if session.Role != models.RoleParent {
		return appErrors.Clone(appErrors.ErrForbidden, "only parents can submit requests")
	}
	return nil
}
