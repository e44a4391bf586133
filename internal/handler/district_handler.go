package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/pkg/response"
)

type districtService interface {
	List(ctx context.Context, session models.Session, search string, page, size int) ([]models.District, models.Pagination, error)
	CreateAccount(ctx context.Context, session models.Session, req models.CreateDistrictAccountRequest) (*models.UserInfo, error)
}

// DistrictHandler manages districts from the admin view.
type DistrictHandler struct {
	service districtService
}

// NewDistrictHandler constructs the handler.
func NewDistrictHandler(svc districtService) *DistrictHandler {
	return &DistrictHandler{service: svc}
}

// List godoc
// @Summary List districts
// @Description Districts derived from requests and district accounts
// @Tags Districts
// @Produce json
// @Param search query string false "District name"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/districts [get]
func (h *DistrictHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	items, pagination, err := h.service.List(c.Request.Context(), session, c.Query("search"), parseQueryInt(c, "page", 1), parseQueryInt(c, "page_size", 10))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, &pagination)
}

// CreateAccount godoc
// @Summary Create a district account
// @Tags Districts
// @Accept json
// @Produce json
// @Param payload body models.CreateDistrictAccountRequest true "District account"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/districts [post]
func (h *DistrictHandler) CreateAccount(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.CreateDistrictAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid district payload"))
		return
	}

	user, err := h.service.CreateAccount(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, user)
}
