package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/pkg/response"
)

type supportService interface {
	Create(ctx context.Context, session models.Session, req models.CreateSupportMessageRequest) (*models.SupportMessage, error)
	Contact(ctx context.Context, req models.ContactRequest) (*models.SupportMessage, error)
	List(ctx context.Context, session models.Session, filter models.SupportFilter) ([]models.SupportMessage, models.Pagination, error)
	UpdateTriage(ctx context.Context, session models.Session, id string, req models.UpdateSupportMessageRequest) (*models.SupportMessage, error)
}

// SupportHandler exposes support tickets and the public contact form.
type SupportHandler struct {
	service supportService
}

// NewSupportHandler constructs the handler.
func NewSupportHandler(svc supportService) *SupportHandler {
	return &SupportHandler{service: svc}
}

// Create godoc
// @Summary Contact support
// @Tags Support
// @Accept json
// @Produce json
// @Param payload body models.CreateSupportMessageRequest true "Support message"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /support [post]
func (h *SupportHandler) Create(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.CreateSupportMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid support payload"))
		return
	}

	msg, err := h.service.Create(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, msg)
}

// Contact godoc
// @Summary Public contact form
// @Tags Support
// @Accept json
// @Produce json
// @Param payload body models.ContactRequest true "Contact message"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /contact [post]
func (h *SupportHandler) Contact(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid contact payload"))
		return
	}

	msg, err := h.service.Contact(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"id": msg.ID, "message": "Thank you for contacting us. We will get back to you soon."})
}

// List godoc
// @Summary Support inbox
// @Tags Support
// @Produce json
// @Param search query string false "Subject, sender or message"
// @Param status query string false "pending|in-progress|resolved"
// @Param district query string false "District"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/support [get]
func (h *SupportHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	from, to, err := parseDateRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.SupportFilter{
		Search:   c.Query("search"),
		District: allToBlank(c.Query("district")),
		From:     from,
		To:       to,
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 10),
	}
	if status := allToBlank(c.Query("status")); status != "" {
		filter.Status = models.SupportStatus(status)
	}

	items, pagination, err := h.service.List(c.Request.Context(), session, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, &pagination)
}

// UpdateTriage godoc
// @Summary Update support ticket status or priority
// @Tags Support
// @Accept json
// @Produce json
// @Param id path string true "Message ID"
// @Param payload body models.UpdateSupportMessageRequest true "Triage"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/support/{id} [patch]
func (h *SupportHandler) UpdateTriage(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.UpdateSupportMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid triage payload"))
		return
	}

	msg, err := h.service.UpdateTriage(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, msg, nil)
}

func allToBlank(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}
