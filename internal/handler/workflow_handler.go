package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/internal/workflow"
	"github.com/noah-isme/transport-request-api/pkg/response"
)

type workflowService interface {
	List(ctx context.Context, session models.Session, q workflow.Query, page, size int) ([]models.TransportRequest, models.Pagination, error)
	Get(ctx context.Context, session models.Session, id string) (*models.TransportRequest, error)
	NextStatuses(status models.RequestStatus) []models.RequestStatus
	UpdateStatus(ctx context.Context, session models.Session, id string, req models.StatusUpdateRequest) (*models.TransportRequest, error)
	ParentContact(ctx context.Context, session models.Session, id string) (*models.ParentContact, error)
	ActivityHistory(ctx context.Context, session models.Session, page, size int) ([]models.TransportRequest, models.Pagination, error)
}

// WorkflowHandler serves the staff request table for district and admin routes.
// The session decides which requests are visible.
type WorkflowHandler struct {
	service workflowService
}

// NewWorkflowHandler constructs the handler.
func NewWorkflowHandler(svc workflowService) *WorkflowHandler {
	return &WorkflowHandler{service: svc}
}

// List godoc
// @Summary List transportation requests
// @Tags Workflow
// @Produce json
// @Param search query string false "Student, school or district"
// @Param district query string false "District (admin only)"
// @Param school query string false "School"
// @Param status query string false "pending|approved|rejected|on-hold|completed"
// @Param tab query string false "all|pending|approved|rejected|flagged"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param sort query string false "date|school|student|status"
// @Param order query string false "asc|desc"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /district/requests [get]
func (h *WorkflowHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	query, err := parseWorkflowQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	items, pagination, err := h.service.List(c.Request.Context(), session, query, parseQueryInt(c, "page", 1), parseQueryInt(c, "page_size", 20))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, &pagination)
}

// Get godoc
// @Summary Get a transportation request
// @Description meta.nextStatuses lists the statuses the request may be moved to.
// @Tags Workflow
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /district/requests/{id} [get]
func (h *WorkflowHandler) Get(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	item, err := h.service.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item, nil, map[string]interface{}{
		"nextStatuses": h.service.NextStatuses(item.Status),
	})
}

// UpdateStatus godoc
// @Summary Change a request's status
// @Description Appends the note to the request's notes history.
// @Tags Workflow
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body models.StatusUpdateRequest true "Status change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /district/requests/{id}/status [patch]
func (h *WorkflowHandler) UpdateStatus(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid status payload"))
		return
	}

	item, err := h.service.UpdateStatus(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item, nil)
}

// ParentContact godoc
// @Summary Contact details of the parent who submitted a request
// @Tags Workflow
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /district/requests/{id}/contact [get]
func (h *WorkflowHandler) ParentContact(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	contact, err := h.service.ParentContact(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, contact, nil)
}

// ActivityHistory godoc
// @Summary Requests ordered by last activity
// @Tags Workflow
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /district/activity [get]
func (h *WorkflowHandler) ActivityHistory(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	items, pagination, err := h.service.ActivityHistory(c.Request.Context(), session, parseQueryInt(c, "page", 1), parseQueryInt(c, "page_size", 10))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, &pagination)
}
