package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/internal/service"
	"github.com/noah-isme/transport-request-api/pkg/response"
)

type draftService interface {
	Create(ctx context.Context, session models.Session, seed []byte) (*service.Draft, error)
	Get(ctx context.Context, session models.Session, id string) (*service.Draft, error)
	List(ctx context.Context, session models.Session) ([]service.Draft, error)
	Patch(ctx context.Context, session models.Session, id string, patch []byte) (*service.Draft, error)
	Step(ctx context.Context, session models.Session, id string, action service.StepAction, target int) (*service.Draft, error)
	DNR(ctx context.Context, session models.Session, id string, action service.DNRAction) (*service.Draft, error)
	Submit(ctx context.Context, session models.Session, id string) (*models.TransportRequest, *service.Draft, error)
	Delete(ctx context.Context, session models.Session, id string) error
}

// DraftHandler drives the request submission wizard.
type DraftHandler struct {
	service draftService
}

// NewDraftHandler constructs the handler.
func NewDraftHandler(svc draftService) *DraftHandler {
	return &DraftHandler{service: svc}
}

type stepPayload struct {
	Action service.StepAction `json:"action" binding:"required"`
	Target int                `json:"target"`
}

type dnrPayload struct {
	Action service.DNRAction `json:"action" binding:"required"`
}

// Create godoc
// @Summary Start a request draft
// @Description Opens the wizard at step 1. The body may carry a partial form.
// @Tags Drafts
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /parent/drafts [post]
func (h *DraftHandler) Create(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	seed, err := c.GetRawData()
	if err != nil {
		response.Error(c, bindError(err, "invalid draft payload"))
		return
	}

	draft, err := h.service.Create(c.Request.Context(), session, seed)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, draft)
}

// List godoc
// @Summary List my drafts
// @Tags Drafts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /parent/drafts [get]
func (h *DraftHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	drafts, err := h.service.List(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, drafts, nil)
}

// Get godoc
// @Summary Get a draft
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /parent/drafts/{id} [get]
func (h *DraftHandler) Get(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	draft, err := h.service.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, draft, nil)
}

// Patch godoc
// @Summary Update draft fields
// @Description Merges the posted form fields into the draft without validating.
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /parent/drafts/{id} [patch]
func (h *DraftHandler) Patch(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	patch, err := c.GetRawData()
	if err != nil {
		response.Error(c, bindError(err, "invalid draft payload"))
		return
	}

	draft, err := h.service.Patch(c.Request.Context(), session, c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, draft, nil)
}

// Step godoc
// @Summary Move between wizard steps
// @Description action is next, back or goto. Failed validation returns the draft with its field errors.
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body stepPayload true "Step action"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /parent/drafts/{id}/step [post]
func (h *DraftHandler) Step(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req stepPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid step payload"))
		return
	}

	draft, err := h.service.Step(c.Request.Context(), session, c.Param("id"), req.Action, req.Target)
	if err != nil {
		respondDraftError(c, err, draft)
		return
	}

	response.JSON(c, http.StatusOK, draft, nil)
}

// DNR godoc
// @Summary Drive the DNR confirmation dialog
// @Description action is set, confirm or cancel.
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body dnrPayload true "DNR action"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /parent/drafts/{id}/dnr [post]
func (h *DraftHandler) DNR(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dnrPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid DNR payload"))
		return
	}

	draft, err := h.service.DNR(c.Request.Context(), session, c.Param("id"), req.Action)
	if err != nil {
		respondDraftError(c, err, draft)
		return
	}

	response.JSON(c, http.StatusOK, draft, nil)
}

// Submit godoc
// @Summary Submit a draft
// @Description Validates every step and creates the transportation request.
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /parent/drafts/{id}/submit [post]
func (h *DraftHandler) Submit(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	created, draft, err := h.service.Submit(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		respondDraftError(c, err, draft)
		return
	}

	response.Created(c, created)
}

// Delete godoc
// @Summary Discard a draft
// @Tags Drafts
// @Param id path string true "Draft ID"
// @Success 204 {object} response.Envelope
// @Router /parent/drafts/{id} [delete]
func (h *DraftHandler) Delete(c *gin.Context) {
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

func respondDraftError(c *gin.Context, err error, draft *service.Draft) {
	if draft == nil {
		response.Error(c, err)
		return
	}
	response.ErrorWithData(c, err, draft)
}
