package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/internal/workflow"
	"github.com/noah-isme/transport-request-api/pkg/response"
)

type parentRequestService interface {
	List(ctx context.Context, session models.Session, q workflow.Query, page, size int) ([]models.TransportRequest, models.Pagination, error)
	Get(ctx context.Context, session models.Session, id string) (*models.TransportRequest, error)
	Children(ctx context.Context, session models.Session) ([]models.Child, error)
	Update(ctx context.Context, session models.Session, id string, upd models.ParentRequestUpdate) (*models.TransportRequest, error)
	Delete(ctx context.Context, session models.Session, id string) error
}

// RequestHandler serves the parent's own transportation requests.
type RequestHandler struct {
	service parentRequestService
}

// NewRequestHandler constructs the handler.
func NewRequestHandler(svc parentRequestService) *RequestHandler {
	return &RequestHandler{service: svc}
}

// List godoc
// @Summary List my requests
// @Tags Parent
// @Produce json
// @Param search query string false "Search student or school"
// @Param status query string false "Status"
// @Param sort query string false "date|school|student|status"
// @Param order query string false "asc|desc"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /parent/requests [get]
func (h *RequestHandler) List(c *gin.Context) {
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
// @Summary Get one of my requests
// @Tags Parent
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /parent/requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	item, err := h.service.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item, nil)
}

// Children godoc
// @Summary List my children
// @Description Distinct students across the parent's requests
// @Tags Parent
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /parent/children [get]
func (h *RequestHandler) Children(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	children, err := h.service.Children(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, children, nil)
}

// Update godoc
// @Summary Edit a submitted request
// @Tags Parent
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body models.ParentRequestUpdate true "Editable fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /parent/requests/{id} [patch]
func (h *RequestHandler) Update(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	var req models.ParentRequestUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid payload"))
		return
	}

	item, err := h.service.Update(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete a request
// @Tags Parent
// @Param id path string true "Request ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /parent/requests/{id} [delete]
func (h *RequestHandler) Delete(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), session, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
