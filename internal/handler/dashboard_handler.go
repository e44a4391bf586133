package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/transport-request-api/internal/middleware"
	"github.com/noah-isme/transport-request-api/internal/models"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
	"github.com/noah-isme/transport-request-api/pkg/response"
)

type dashboardService interface {
	District(ctx context.Context, session models.Session) (*models.DistrictDashboard, bool, error)
	Admin(ctx context.Context, session models.Session) (*models.AdminDashboard, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// District godoc
// @Summary District dashboard
// @Description Request statistics and recent activity for the caller's district
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /district/dashboard [get]
func (h *DashboardHandler) District(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	summary, cacheHit, err := h.service.District(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithSnapshot(c, summary, cacheHit)
}

// Admin godoc
// @Summary Admin dashboard
// @Description System-wide counts, trends and latest support and activity entries
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	summary, cacheHit, err := h.service.Admin(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithSnapshot(c, summary, cacheHit)
}

func respondWithSnapshot(c *gin.Context, data interface{}, cacheHit bool) {
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, data, nil, middleware.ExtractMeta(c))
}
