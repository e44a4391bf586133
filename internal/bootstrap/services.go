package bootstrap

import (
	"go.uber.org/zap"

	"github.com/noah-isme/transport-request-api/internal/repository"
	"github.com/noah-isme/transport-request-api/internal/service"
	"github.com/noah-isme/transport-request-api/internal/validation"
	"github.com/noah-isme/transport-request-api/pkg/config"
	"github.com/noah-isme/transport-request-api/pkg/export"
	"github.com/noah-isme/transport-request-api/pkg/storage"
)

// tokenIssuer is stamped into every access token.
const tokenIssuer = "transport-request-api"

// Services bundles every application service.
type Services struct {
	Metrics   *service.MetricsService
	Cache     *service.CacheService
	Activity  *service.ActivityService
	Auth      *service.AuthService
	Requests  *service.RequestService
	Workflow  *service.WorkflowService
	Drafts    *service.DraftService
	Documents *service.DocumentService
	Districts *service.DistrictService
	Support   *service.SupportService
	Dashboard *service.DashboardService
	Reports   *service.ReportService

	// DocumentRefs answers whether an upload is attached to a request.
	DocumentRefs *repository.RequestRepository
}

// BuildServices wires repositories into services. The activity writer must be
// started by the caller.
func BuildServices(cfg *config.Config, deps Deps, logger *zap.Logger) (*Services, error) {
	validate := validation.New()
	metrics := service.NewMetricsService()
	loc := cfg.Dashboard.Location()

	users := repository.NewUserRepository(deps.DB)
	requests := repository.NewRequestRepository(deps.DB, cfg.Store.QueryTimeout)
	support := repository.NewSupportRepository(deps.DB)
	activityLog := repository.NewActivityRepository(deps.DB)
	cacheRepo := repository.NewCacheRepository(deps.Redis, logger.Named("cache"))
	drafts := repository.NewDraftRepository(deps.Redis)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logger.Named("cache"), cfg.Dashboard.CacheEnabled && deps.Redis != nil)
	activity := service.NewActivityService(activityLog, metrics, logger.Named("activity"), service.ActivityConfig{
		Workers:    cfg.Activity.Workers,
		Retries:    cfg.Activity.Retries,
		BufferSize: cfg.Activity.BufferSize,
	})

	auth := service.NewAuthService(users, validate, logger.Named("auth"), activity, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             tokenIssuer,
	})
	requestSvc := service.NewRequestService(requests, cacheSvc, activity, metrics, validate, logger.Named("requests"))
	workflowSvc := service.NewWorkflowService(service.WorkflowServiceParams{
		Requests: requests,
		Users:    users,
		Cache:    cacheSvc,
		Activity: activity,
		Metrics:  metrics,
		Artifacts: service.ArtifactFilter{
			MinYear:  cfg.Admin.MinRequestYear,
			HideTest: cfg.Admin.HideTestRequests,
		},
		Validator: validate,
		Logger:    logger.Named("workflow"),
	})
	districtSvc := service.NewDistrictService(workflowSvc, users, cacheSvc, activity, validate, logger.Named("districts"))
	supportSvc := service.NewSupportService(support, cacheSvc, activity, validate, logger.Named("support"))

	store, err := storage.NewLocalStorage(cfg.Documents.StorageDir)
	if err != nil {
		return nil, err
	}
	documents := service.NewDocumentService(store, storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL), workflowSvc, activity, logger.Named("documents"), service.DocumentConfig{
		APIPrefix:    cfg.APIPrefix,
		MaxBytes:     cfg.Documents.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Documents.AllowedMIMEs,
	})

	return &Services{
		Metrics:   metrics,
		Cache:     cacheSvc,
		Activity:  activity,
		Auth:      auth,
		Requests:  requestSvc,
		Workflow:  workflowSvc,
		Drafts:    service.NewDraftService(drafts, requestSvc, cfg.Drafts.TTL, logger.Named("drafts")),
		Documents: documents,
		Districts: districtSvc,
		Support:   supportSvc,
		Dashboard: service.NewDashboardService(service.DashboardServiceParams{
			Requests: workflowSvc,
			Users:    users,
			Support:  support,
			Activity: activityLog,
			Cache:    cacheSvc,
			Logger:   logger.Named("dashboard"),
			Config: service.DashboardServiceConfig{
				Location:      loc,
				SourceTimeout: cfg.Store.QueryTimeout,
			},
		}),
		Reports: service.NewReportService(service.ReportServiceParams{
			Requests:  workflowSvc,
			Support:   support,
			Districts: districtSvc,
			Activity:  activityLog,
			Recorder:  activity,
			CSV:       export.NewCSVExporter(),
			PDF:       export.NewPDFExporter(),
			Location:  loc,
			Validator: validate,
			Logger:    logger.Named("reports"),
		}),

		DocumentRefs: requests,
	}, nil
}
