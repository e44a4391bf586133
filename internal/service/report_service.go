package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/internal/validation"
	"github.com/noah-isme/transport-request-api/internal/workflow"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
	"github.com/noah-isme/transport-request-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type districtDirectory interface {
	All(ctx context.Context, session models.Session) ([]models.District, error)
}

// reportDateLayout is the date format used in every report column.
const reportDateLayout = "01/02/2006"

// ReportServiceParams groups constructor dependencies.
type ReportServiceParams struct {
	Requests  requestLoader
	Support   supportLister
	Districts districtDirectory
	Activity  activityLister
	Recorder  activityRecorder
	CSV       csvRenderer
	PDF       pdfRenderer
	Location  *time.Location
	Validator *validator.Validate
	Logger    *zap.Logger
}

// ReportService renders CSV and PDF exports of requests, support tickets, districts and the system log.
type ReportService struct {
	requests  requestLoader
	support   supportLister
	districts districtDirectory
	activity  activityLister
	recorder  activityRecorder
	csv       csvRenderer
	pdf       pdfRenderer
	loc       *time.Location
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(params ReportServiceParams) *ReportService {
	s := &ReportService{
		requests:  params.Requests,
		support:   params.Support,
		districts: params.Districts,
		activity:  params.Activity,
		recorder:  recorderOrNop(params.Recorder),
		csv:       params.CSV,
		pdf:       params.PDF,
		loc:       params.Location,
		validator: params.Validator,
		logger:    params.Logger,
		now:       time.Now,
	}
	if s.csv == nil {
		s.csv = export.NewCSVExporter()
	}
	if s.pdf == nil {
		s.pdf = export.NewPDFExporter()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.validator == nil {
		s.validator = validation.New()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Generate builds and renders one report. District staff may only export
// their own district's requests and activity.
func (s *ReportService) Generate(ctx context.Context, session models.Session, req models.ReportRequest) (*models.ReportFile, error) {
	if req.Format == "" {
		req.Format = models.ReportFormatCSV
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WithDetails(
			appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report request"),
			validation.Messages(err, nil),
		)
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must not be before start date")
	}
	req.District = allToEmpty(req.District)
	req.School = allToEmpty(req.School)
	req.Status = allToEmpty(req.Status)

	switch session.Role {
	case models.RoleAdmin:
	case models.RoleDistrict:
		if req.Type != models.ReportTransportation && req.Type != models.ReportSystem {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "report not available for district accounts")
		}
		req.District = session.District
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "staff access required")
	}

	dataset, title, err := s.buildDataset(ctx, session, req)
	if err != nil {
		return nil, err
	}

	var (
		body        []byte
		contentType string
	)
	switch req.Format {
	case models.ReportFormatPDF:
		body, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		body, err = s.csv.Render(dataset)
		contentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	s.recorder.Record(session, models.ActivityReportGenerate, fmt.Sprintf("Generated %s report (%d rows, %s)", req.Type, len(dataset.Rows), req.Format))
	return &models.ReportFile{
		Filename:    s.filename(req),
		ContentType: contentType,
		Body:        body,
		Rows:        len(dataset.Rows),
	}, nil
}

func (s *ReportService) buildDataset(ctx context.Context, session models.Session, req models.ReportRequest) (export.Dataset, string, error) {
	switch req.Type {
	case models.ReportTransportation:
		return s.transportation(ctx, session, req)
	case models.ReportSupport:
		return s.supportMessages(ctx, req)
	case models.ReportDistricts:
		return s.districtSummary(ctx, session)
	case models.ReportSystem:
		return s.systemActivity(ctx, req)
	default:
		return export.Dataset{}, "", appErrors.Clone(appErrors.ErrValidation, "unsupported report type "+string(req.Type))
	}
}

func (s *ReportService) transportation(ctx context.Context, session models.Session, req models.ReportRequest) (export.Dataset, string, error) {
	requests, err := s.requests.Load(ctx, session)
	if err != nil {
		return export.Dataset{}, "", err
	}
	filter := workflow.Filter{District: req.District, School: req.School, Status: req.Status, From: req.From, To: req.To}
	matched := workflow.Query{Filter: filter}.Run(requests)

	data := export.Dataset{Columns: []export.Column{
		{Key: "student", Label: "Student"},
		{Key: "grade", Label: "Grade"},
		{Key: "school", Label: "School"},
		{Key: "district", Label: "District"},
		{Key: "status", Label: "Status"},
		{Key: "submitted", Label: "Submitted"},
	}}
	for _, r := range matched {
		submitted := r.CreatedAt
		if submitted == nil {
			submitted = r.UpdatedAt
		}
		data.Rows = append(data.Rows, map[string]string{
			"student":   r.StudentName(),
			"grade":     r.Grade,
			"school":    r.School,
			"district":  r.District,
			"status":    r.Status.OrDefault().Label(),
			"submitted": s.formatDate(submitted),
		})
	}
	return data, "Transportation Requests", nil
}

func (s *ReportService) supportMessages(ctx context.Context, req models.ReportRequest) (export.Dataset, string, error) {
	messages, err := s.support.ListAll(ctx)
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load support messages")
	}
	data := export.Dataset{Columns: []export.Column{
		{Key: "subject", Label: "Subject"},
		{Key: "from", Label: "From"},
		{Key: "email", Label: "Email"},
		{Key: "district", Label: "District"},
		{Key: "status", Label: "Status"},
		{Key: "priority", Label: "Priority"},
		{Key: "date", Label: "Date"},
	}}
	for _, msg := range messages {
		if req.District != "" && msg.District != req.District {
			continue
		}
		if !inRange(msg.Date, req.From, req.To) {
			continue
		}
		date := msg.Date
		data.Rows = append(data.Rows, map[string]string{
			"subject":  msg.Subject,
			"from":     msg.From,
			"email":    msg.Email,
			"district": msg.District,
			"status":   string(msg.Status),
			"priority": string(msg.Priority),
			"date":     s.formatDate(&date),
		})
	}
	return data, "Support Messages", nil
}

func (s *ReportService) districtSummary(ctx context.Context, session models.Session) (export.Dataset, string, error) {
	districts, err := s.districts.All(ctx, session)
	if err != nil {
		return export.Dataset{}, "", err
	}
	data := export.Dataset{Columns: []export.Column{
		{Key: "name", Label: "District"},
		{Key: "admins", Label: "Admins"},
		{Key: "requests", Label: "Requests"},
		{Key: "active", Label: "Active Requests"},
		{Key: "lastActive", Label: "Last Active"},
	}}
	for _, d := range districts {
		data.Rows = append(data.Rows, map[string]string{
			"name":       d.Name,
			"admins":     strconv.Itoa(d.AdminCount),
			"requests":   strconv.Itoa(d.RequestCount),
			"active":     strconv.Itoa(d.ActiveRequests),
			"lastActive": s.formatDate(d.LastActive),
		})
	}
	return data, "Districts", nil
}

func (s *ReportService) systemActivity(ctx context.Context, req models.ReportRequest) (export.Dataset, string, error) {
	entries, err := s.activity.List(ctx, models.ActivityFilter{District: req.District, From: req.From, To: req.To})
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load system activity")
	}
	data := export.Dataset{Columns: []export.Column{
		{Key: "user", Label: "User"},
		{Key: "action", Label: "Action"},
		{Key: "district", Label: "District"},
		{Key: "details", Label: "Details"},
		{Key: "timestamp", Label: "Timestamp"},
	}}
	for _, e := range entries {
		ts := e.Timestamp
		data.Rows = append(data.Rows, map[string]string{
			"user":      e.User,
			"action":    e.Action,
			"district":  e.District,
			"details":   e.Details,
			"timestamp": s.formatDate(&ts),
		})
	}
	return data, "System Activity", nil
}

func (s *ReportService) formatDate(ts *time.Time) string {
	if ts == nil || ts.IsZero() {
		return ""
	}
	return ts.In(s.loc).Format(reportDateLayout)
}

func (s *ReportService) filename(req models.ReportRequest) string {
	scope := "all"
	if req.District != "" {
		scope = sanitizeFilename(req.District)
	}
	stamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s-report-%s-%s.%s", req.Type, scope, stamp, req.Format)
}

func sanitizeFilename(raw string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "")
	result := replacer.Replace(strings.TrimSpace(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func allToEmpty(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), "all") {
		return ""
	}
	return strings.TrimSpace(v)
}

func inRange(ts time.Time, from, to *time.Time) bool {
	if from != nil && ts.Before(*from) {
		return false
	}
	if to != nil && ts.After(*to) {
		return false
	}
	return true
}
