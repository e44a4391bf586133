package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/pkg/response"
)

type activityService interface {
	List(ctx context.Context, session models.Session, filter models.ActivityFilter) ([]models.SystemActivity, error)
}

// ActivityHandler exposes the system activity log.
type ActivityHandler struct {
	service activityService
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(svc activityService) *ActivityHandler {
	return &ActivityHandler{service: svc}
}

// List godoc
// @Summary System activity log
// @Tags Activity
// @Produce json
// @Param district query string false "District"
// @Param action query string false "Action, e.g. STATUS_UPDATE"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param limit query int false "Max entries" default(100)
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /admin/activity [get]
func (h *ActivityHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	from, to, err := parseDateRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.ActivityFilter{
		District: allToBlank(c.Query("district")),
		Action:   allToBlank(c.Query("action")),
		From:     from,
		To:       to,
		Limit:    parseQueryInt(c, "limit", 100),
		Offset:   parseQueryInt(c, "offset", 0),
	}

	entries, err := h.service.List(c.Request.Context(), session, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}
