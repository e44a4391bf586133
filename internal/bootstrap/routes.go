package bootstrap

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/transport-request-api/internal/handler"
	"github.com/noah-isme/transport-request-api/internal/middleware"
	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/pkg/config"
	"github.com/noah-isme/transport-request-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/transport-request-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/transport-request-api/pkg/middleware/requestid"
)

// BuildRouter mounts every route group under cfg.APIPrefix.
func BuildRouter(cfg *config.Config, svc *Services, logr *zap.Logger) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(svc.Metrics))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(svc.Metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(svc.Auth)
	requestHandler := handler.NewRequestHandler(svc.Requests)
	draftHandler := handler.NewDraftHandler(svc.Drafts)
	documentHandler := handler.NewDocumentHandler(svc.Documents)
	workflowHandler := handler.NewWorkflowHandler(svc.Workflow)
	dashboardHandler := handler.NewDashboardHandler(svc.Dashboard)
	districtHandler := handler.NewDistrictHandler(svc.Districts)
	supportHandler := handler.NewSupportHandler(svc.Support)
	activityHandler := handler.NewActivityHandler(svc.Activity)
	reportHandler := handler.NewReportHandler(svc.Reports)

	jwt := middleware.JWT(svc.Auth)
	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", jwt, authHandler.Logout)
	auth.GET("/me", jwt, authHandler.Me)
	auth.POST("/change-password", jwt, authHandler.ChangePassword)

	api.POST("/contact", supportHandler.Contact)

	secured := api.Group("", jwt)
	secured.POST("/support", supportHandler.Create)
	secured.GET("/documents/:token",
		middleware.RequireRoles(models.RoleDistrict, models.RoleAdmin),
		middleware.Activity(svc.Activity, models.ActivityDocumentView, func(*gin.Context) string {
			return "Viewed DNR documentation"
		}),
		documentHandler.Download,
	)

	parent := secured.Group("/parent", middleware.RequireRoles(models.RoleParent))
	parent.GET("/requests", requestHandler.List)
	parent.GET("/requests/:id", requestHandler.Get)
	parent.PATCH("/requests/:id", requestHandler.Update)
	parent.DELETE("/requests/:id", requestHandler.Delete)
	parent.GET("/children", requestHandler.Children)
	parent.POST("/documents", documentHandler.Upload)
	parent.POST("/drafts", draftHandler.Create)
	parent.GET("/drafts", draftHandler.List)
	parent.GET("/drafts/:id", draftHandler.Get)
	parent.PATCH("/drafts/:id", draftHandler.Patch)
	parent.DELETE("/drafts/:id", draftHandler.Delete)
	parent.POST("/drafts/:id/step", draftHandler.Step)
	parent.POST("/drafts/:id/dnr", draftHandler.DNR)
	parent.POST("/drafts/:id/submit", draftHandler.Submit)

	district := secured.Group("/district", middleware.RequireRoles(models.RoleDistrict))
	mountRequestTable(district, workflowHandler, documentHandler)
	district.GET("/dashboard", dashboardHandler.District)
	district.GET("/activity", workflowHandler.ActivityHistory)
	district.GET("/reports", reportHandler.Generate)

	admin := secured.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	mountRequestTable(admin, workflowHandler, documentHandler)
	admin.GET("/dashboard", dashboardHandler.Admin)
	admin.GET("/districts", districtHandler.List)
	admin.POST("/districts", districtHandler.CreateAccount)
	admin.GET("/support", supportHandler.List)
	admin.PATCH("/support/:id", supportHandler.UpdateTriage)
	admin.GET("/activity", activityHandler.List)
	admin.GET("/reports", reportHandler.Generate)
	admin.GET("/metrics", metricsHandler.Snapshot)

	return r
}

func mountRequestTable(group *gin.RouterGroup, workflow *handler.WorkflowHandler, documents *handler.DocumentHandler) {
	group.GET("/requests", workflow.List)
	group.GET("/requests/:id", workflow.Get)
	group.PATCH("/requests/:id/status", workflow.UpdateStatus)
	group.GET("/requests/:id/contact", workflow.ParentContact)
	group.GET("/requests/:id/document", documents.Link)
}
