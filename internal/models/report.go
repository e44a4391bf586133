package models

import "time"

// ReportType selects the dataset of an admin or district report.
type ReportType string

const (
	ReportTransportation ReportType = "transportation"
	ReportSupport        ReportType = "support"
	ReportDistricts      ReportType = "districts"
	ReportSystem         ReportType = "system"
)

// ReportFormat selects the rendered file type.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportRequest describes one export.
type ReportRequest struct {
	Type     ReportType   `form:"type" json:"type" validate:"required,oneof=transportation support districts system"`
	Format   ReportFormat `form:"format" json:"format" validate:"omitempty,oneof=csv pdf"`
	District string       `form:"district" json:"district"`
	School   string       `form:"school" json:"school"`
	Status   string       `form:"status" json:"status"`
	From     *time.Time   `form:"-" json:"from,omitempty"`
	To       *time.Time   `form:"-" json:"to,omitempty"`
}

// ReportFile is a rendered export ready to download.
type ReportFile struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}
