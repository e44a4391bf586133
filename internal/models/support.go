package models

import "time"

// SupportStatus tracks a support ticket through triage.
type SupportStatus string

const (
	SupportPending    SupportStatus = "pending"
	SupportInProgress SupportStatus = "in-progress"
	SupportResolved   SupportStatus = "resolved"
)

// SupportPriority ranks a support ticket.
type SupportPriority string

const (
	PriorityLow    SupportPriority = "low"
	PriorityMedium SupportPriority = "medium"
	PriorityHigh   SupportPriority = "high"
)

// SupportMessage is a ticket raised by a signed-in user or the public contact form.
type SupportMessage struct {
	ID       string          `db:"id" json:"id"`
	Subject  string          `db:"subject" json:"subject"`
	From     string          `db:"sender" json:"from"`
	Email    string          `db:"email" json:"email"`
	District string          `db:"district" json:"district"`
	Status   SupportStatus   `db:"status" json:"status"`
	Priority SupportPriority `db:"priority" json:"priority"`
	Message  string          `db:"message" json:"message"`
	Role     string          `db:"role" json:"role"`
	UserID   *string         `db:"user_id" json:"userId,omitempty"`
	Date     time.Time       `db:"date" json:"date"`
}

// SupportFilter narrows the admin support inbox.
type SupportFilter struct {
	Search   string
	Status   SupportStatus
	District string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// CreateSupportMessageRequest is posted by signed-in users.
type CreateSupportMessageRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// ContactRequest is posted by the public landing page.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

// UpdateSupportMessageRequest lets an admin triage a ticket.
type UpdateSupportMessageRequest struct {
	Status   *SupportStatus   `json:"status" validate:"omitempty,oneof=pending in-progress resolved"`
	Priority *SupportPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
}
