package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/internal/service"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
	"github.com/noah-isme/transport-request-api/pkg/response"
)

type documentService interface {
	Upload(ctx context.Context, session models.Session, declaredType string, r io.Reader) (*service.DocumentRef, error)
	Link(ctx context.Context, session models.Session, requestID string) (*service.DocumentLink, error)
	Open(ctx context.Context, session models.Session, token string) (*os.File, string, error)
}

// DocumentHandler uploads DNR orders and serves them back through signed links.
type DocumentHandler struct {
	service documentService
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(svc documentService) *DocumentHandler {
	return &DocumentHandler{service: svc}
}

// Upload godoc
// @Summary Upload DNR documentation
// @Description Stores a signed DNR order. Put the returned path into the draft's dnrDocumentation field.
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF document"
// @Success 201 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /parent/documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, bindError(err, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close()

	ref, err := h.service.Upload(c.Request.Context(), session, header.Header.Get("Content-Type"), file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, ref)
}

// Link godoc
// @Summary Signed link to a request's DNR document
// @Tags Documents
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /district/requests/{id}/document [get]
func (h *DocumentHandler) Link(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	link, err := h.service.Link(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, link, nil)
}

// Download godoc
// @Summary Download a DNR document
// @Tags Documents
// @Produce application/pdf
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /documents/{token} [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	file, name, err := h.service.Open(c.Request.Context(), session, c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read document"))
		return
	}

	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", file, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", name),
	})
}
