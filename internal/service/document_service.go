package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/transport-request-api/internal/models"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
	"github.com/noah-isme/transport-request-api/pkg/storage"
)

type documentStorage interface {
	SaveStream(filename string, r io.Reader, maxBytes int64) (int64, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(prefix string, ttl time.Duration, keep func(rel string) (bool, error)) ([]string, error)
}

type documentReferences interface {
	DocumentReferenced(ctx context.Context, rel string) (bool, error)
}

type staffRequestReader interface {
	Get(ctx context.Context, session models.Session, id string) (*models.TransportRequest, error)
}

// DocumentConfig tunes DNR uploads and download links.
type DocumentConfig struct {
	APIPrefix    string
	MaxBytes     int64
	AllowedMIMEs []string
}

// DocumentRef points at a stored upload.
type DocumentRef struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// DocumentLink is a short-lived download URL.
type DocumentLink struct {
	URL       string    `json:"url"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// DocumentService stores DNR orders uploaded by parents and hands staff signed links to them.
type DocumentService struct {
	storage  documentStorage
	signer   *storage.SignedURLSigner
	requests staffRequestReader
	activity activityRecorder
	logger   *zap.Logger
	cfg      DocumentConfig
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(store documentStorage, signer *storage.SignedURLSigner, requests staffRequestReader, activity activityRecorder, logger *zap.Logger, cfg DocumentConfig) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 5 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"application/pdf"}
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &DocumentService{
		storage:  store,
		signer:   signer,
		requests: requests,
		activity: recorderOrNop(activity),
		logger:   logger,
		cfg:      cfg,
	}
}

// Upload stores a parent's DNR order under the parent's folder. Both the
// declared content type and the sniffed bytes must be an allowed type.
func (s *DocumentService) Upload(ctx context.Context, session models.Session, declaredType string, r io.Reader) (*DocumentRef, error) {
	if err := requireParent(session); err != nil {
		return nil, err
	}
	if !s.allowed(declaredType) {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedMedia, "Only PDF files are accepted")
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	head = head[:n]
	if n == 0 || !s.allowed(http.DetectContentType(head)) {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedMedia, "Only PDF files are accepted")
	}

	rel := path.Join(strings.TrimSuffix(DNRDocumentPrefix(session.UserID), "/"), uuid.NewString()+".pdf")
	size, err := s.storage.SaveStream(rel, io.MultiReader(bytes.NewReader(head), r), s.cfg.MaxBytes)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("File must be smaller than %d MB", s.cfg.MaxBytes/(1024*1024)))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document")
	}

	s.activity.Record(session, models.ActivityDocumentUpload, "Uploaded DNR documentation")
	return &DocumentRef{Path: rel, Size: size}, nil
}

// Link issues a signed download link for the DNR order attached to a request.
func (s *DocumentService) Link(ctx context.Context, session models.Session, requestID string) (*DocumentLink, error) {
	if err := requireStaff(session); err != nil {
		return nil, err
	}
	req, err := s.requests.Get(ctx, session, requestID)
	if err != nil {
		return nil, err
	}
	if req.Details.DNR == nil || req.Details.DNR.Documentation == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "request has no DNR documentation")
	}
	token, expiresAt, err := s.signer.Generate(req.ID, req.Details.DNR.Documentation)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign document link")
	}
	return &DocumentLink{
		URL:       fmt.Sprintf("%s/documents/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Open resolves a signed token to the stored file. The request it was issued
// for must still be visible to the session.
func (s *DocumentService) Open(ctx context.Context, session models.Session, token string) (*os.File, string, error) {
	if err := requireStaff(session); err != nil {
		return nil, "", err
	}
	link, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "download link is invalid or expired")
	}
	if _, err := s.requests.Get(ctx, session, link.Subject); err != nil {
		return nil, "", err
	}
	file, err := s.storage.Open(link.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open document")
	}
	return file, path.Base(link.Path), nil
}

func (s *DocumentService) allowed(contentType string) bool {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, allowed := range s.cfg.AllowedMIMEs {
		if strings.EqualFold(allowed, mediaType) {
			return true
		}
	}
	return false
}

func requireStaff(session models.Session) error {
	switch session.Role {
	case models.RoleDistrict, models.RoleAdmin:
		return nil
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "staff access required")
	}
}

// PruneOrphans removes uploads older than olderThan that no submitted request
// points at. These are left behind when a parent abandons a draft after uploading.
func (s *DocumentService) PruneOrphans(ctx context.Context, refs documentReferences, olderThan time.Duration) ([]string, error) {
	if olderThan <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "retention must be positive")
	}
	deleted, err := s.storage.CleanupOlderThan(dnrRoot, olderThan, func(rel string) (bool, error) {
		return refs.DocumentReferenced(ctx, rel)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to prune documents")
	}
	s.logger.Info("orphaned documents pruned", zap.Int("count", len(deleted)))
	return deleted, nil
}
