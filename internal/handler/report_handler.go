package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/pkg/response"
)

type reportService interface {
	Generate(ctx context.Context, session models.Session, req models.ReportRequest) (*models.ReportFile, error)
}

// ReportHandler streams CSV and PDF exports.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(svc reportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Generate godoc
// @Summary Download a report
// @Description District accounts may export transportation and system reports of their own district.
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param type query string false "transportation|support|districts|system" default(transportation)
// @Param format query string false "csv|pdf" default(csv)
// @Param district query string false "District (admin only)"
// @Param school query string false "School"
// @Param status query string false "Status"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/reports [get]
func (h *ReportHandler) Generate(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, bindError(err, "invalid report query"))
		return
	}
	if req.Type == "" {
		req.Type = models.ReportTransportation
	}
	from, to, err := parseDateRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.From, req.To = from, to

	file, err := h.service.Generate(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Header("X-Report-Rows", strconv.Itoa(file.Rows))
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
