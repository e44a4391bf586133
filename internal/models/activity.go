package models

import "time"

// Activity actions recorded in the system log.
const (
	ActivityLogin          = "LOGIN"
	ActivityLogout         = "LOGOUT"
	ActivityRegister       = "REGISTER"
	ActivityPasswordChange = "PASSWORD_CHANGE"
	ActivityRequestSubmit  = "REQUEST_SUBMIT"
	ActivityRequestEdit    = "REQUEST_EDIT"
	ActivityRequestDelete  = "REQUEST_DELETE"
	ActivityStatusChange   = "STATUS_CHANGE"
	ActivityDistrictCreate = "DISTRICT_ACCOUNT_CREATE"
	ActivitySupportCreate  = "SUPPORT_CREATE"
	ActivitySupportUpdate  = "SUPPORT_UPDATE"
	ActivityReportGenerate = "REPORT_GENERATE"
	ActivityDocumentUpload = "DOCUMENT_UPLOAD"
	ActivityDocumentView   = "DOCUMENT_VIEW"
)

// SystemActivity is one append-only entry of the system log.
type SystemActivity struct {
	ID        string    `db:"id" json:"id"`
	User      string    `db:"actor" json:"user"`
	UserID    *string   `db:"user_id" json:"userId,omitempty"`
	Action    string    `db:"action" json:"action"`
	District  string    `db:"district" json:"district"`
	Details   string    `db:"details" json:"details"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// ActivityFilter narrows the system log.
type ActivityFilter struct {
	District string
	Action   string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}
