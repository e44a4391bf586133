package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RequestStatus is the lifecycle state of a transportation request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusOnHold    RequestStatus = "on-hold"
	StatusCompleted RequestStatus = "completed"
)

// RequestStatuses lists every status in display order.
var RequestStatuses = []RequestStatus{StatusPending, StatusApproved, StatusRejected, StatusOnHold, StatusCompleted}

var statusLabels = map[RequestStatus]string{
	StatusPending:   "Pending Review",
	StatusApproved:  "Approved",
	StatusRejected:  "Rejected",
	StatusOnHold:    "On Hold",
	StatusCompleted: "Completed",
}

// Label returns the fixed human label used by dashboards and notifications.
func (s RequestStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// OrDefault maps the empty status of legacy records to pending.
func (s RequestStatus) OrDefault() RequestStatus {
	if s == "" {
		return StatusPending
	}
	return s
}

// Flag names as exposed in the set-valued representation.
const (
	FlagDNR           = "dnr"
	FlagNeedsAttended = "needsAttended"
	FlagNonVerbal     = "nonVerbal"
)

// Flags are the student-specific transportation considerations.
type Flags struct {
	DNR           bool `db:"flag_dnr" json:"dnr"`
	NeedsAttended bool `db:"flag_needs_attended" json:"needsAttended"`
	NonVerbal     bool `db:"flag_non_verbal" json:"nonVerbal"`
}

// Any reports whether at least one flag is set.
func (f Flags) Any() bool {
	return f.DNR || f.NeedsAttended || f.NonVerbal
}

// List returns the set-valued representation in a stable order.
func (f Flags) List() []string {
	out := make([]string, 0, 3)
	if f.DNR {
		out = append(out, FlagDNR)
	}
	if f.NeedsAttended {
		out = append(out, FlagNeedsAttended)
	}
	if f.NonVerbal {
		out = append(out, FlagNonVerbal)
	}
	return out
}

// ParseFlags builds Flags from the set-valued representation; unknown names are rejected.
func ParseFlags(names []string) (Flags, error) {
	var f Flags
	for _, name := range names {
		switch strings.TrimSpace(name) {
		case FlagDNR:
			f.DNR = true
		case FlagNeedsAttended:
			f.NeedsAttended = true
		case FlagNonVerbal:
			f.NonVerbal = true
		default:
			return Flags{}, fmt.Errorf("unknown flag %q", name)
		}
	}
	return f, nil
}

// TransportRequest is one parent submission for one student.
type TransportRequest struct {
	ID               string        `db:"id" json:"id"`
	UserID           *string       `db:"user_id" json:"userId,omitempty"`
	StudentFirstName string        `db:"student_first_name" json:"studentFirstName"`
	StudentLastName  string        `db:"student_last_name" json:"studentLastName"`
	StudentID        *string       `db:"student_id" json:"studentId,omitempty"`
	School           string        `db:"school" json:"school"`
	Grade            string        `db:"grade" json:"grade"`
	SchoolYear       string        `db:"school_year" json:"schoolYear"`
	District         string        `db:"district" json:"district"`
	Status           RequestStatus `db:"status" json:"status"`
	Flags
	PickupLocation  string         `db:"pickup_location" json:"pickupLocation"`
	PickupTime      string         `db:"pickup_time" json:"pickupTime"`
	DropOffLocation string         `db:"drop_off_location" json:"dropOffLocation"`
	DropOffTime     string         `db:"drop_off_time" json:"dropOffTime"`
	AdminNotes      string         `db:"admin_notes" json:"adminNotes"`
	Details         RequestDetails `db:"details" json:"details"`
	CreatedAt       *time.Time     `db:"created_at" json:"createdAt,omitempty"`
	UpdatedAt       *time.Time     `db:"updated_at" json:"updatedAt,omitempty"`
	UpdatedBy       *string        `db:"updated_by" json:"updatedBy,omitempty"`
}

// StudentName is "First Last" with surrounding whitespace removed.
func (r TransportRequest) StudentName() string {
	return strings.TrimSpace(r.StudentFirstName + " " + r.StudentLastName)
}

// OwnerID returns the owning parent id or "" when the record is orphaned.
func (r TransportRequest) OwnerID() string {
	if r.UserID == nil {
		return ""
	}
	return *r.UserID
}

// LastActivity is updatedAt when present, otherwise createdAt.
func (r TransportRequest) LastActivity() *time.Time {
	if r.UpdatedAt != nil {
		return r.UpdatedAt
	}
	return r.CreatedAt
}

type transportRequestJSON TransportRequest

// MarshalJSON adds the set-valued "flags" field next to the three booleans.
func (r TransportRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		transportRequestJSON
		FlagList []string `json:"flags"`
	}{transportRequestJSON(r), r.Flags.List()})
}

// UnmarshalJSON accepts either the three booleans or the "flags" list.
func (r *TransportRequest) UnmarshalJSON(data []byte) error {
	aux := struct {
		*transportRequestJSON
		FlagList []string `json:"flags"`
	}{transportRequestJSON: (*transportRequestJSON)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.FlagList) > 0 {
		flags, err := ParseFlags(aux.FlagList)
		if err != nil {
			return err
		}
		r.Flags.DNR = r.Flags.DNR || flags.DNR
		r.Flags.NeedsAttended = r.Flags.NeedsAttended || flags.NeedsAttended
		r.Flags.NonVerbal = r.Flags.NonVerbal || flags.NonVerbal
	}
	return nil
}

// Guardian is a parent or guardian contact.
type Guardian struct {
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}

// Address is the student's home address.
type Address struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
}

// EmergencyContact is one person to call in an emergency.
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// MedicalNeeds groups the health section of the submission.
type MedicalNeeds struct {
	HasMedicalNeeds   bool     `json:"hasMedicalNeeds"`
	Devices           []string `json:"devices,omitempty"`
	OtherDevice       string   `json:"otherDevice,omitempty"`
	Amenities         []string `json:"amenities,omitempty"`
	VestSize          string   `json:"vestSize,omitempty"`
	RequiresSupport   bool     `json:"requiresMedicalSupport"`
	HasCaretaker      bool     `json:"hasCaretaker"`
	CaretakerName     string   `json:"caretakerName,omitempty"`
	CaretakerPhone    string   `json:"caretakerPhone,omitempty"`
	PreferredHospital string   `json:"preferredHospital,omitempty"`
	EmergencyGuidance string   `json:"additionalEmergencyInstructions,omitempty"`
}

// BehavioralNeeds groups the behavioural section of the submission.
type BehavioralNeeds struct {
	AggressiveBehavior bool   `json:"aggressiveBehavior"`
	ElopementRisk      bool   `json:"elopementRisk"`
	EasilyOverwhelmed  bool   `json:"easilyOverwhelmed"`
	Other              string `json:"other,omitempty"`
	Strategies         string `json:"strategies,omitempty"`
}

// DNRRecord references the uploaded directive and its acknowledgment.
type DNRRecord struct {
	Documentation       string `json:"documentation,omitempty"`
	LegalAcknowledgment bool   `json:"legalAcknowledgment"`
	Signature           string `json:"signature,omitempty"`
}

// Consent captures the final step acknowledgments.
type Consent struct {
	ParentalConsent  bool   `json:"parentalConsent"`
	PolicyAgreement  bool   `json:"policyAgreement"`
	DigitalSignature string `json:"digitalSignature"`
	SignatureDate    string `json:"signatureDate"`
}

// RequestDetails is the part of a submission no dashboard filters on. It is
// stored as a single JSONB column.
type RequestDetails struct {
	Gender              string             `json:"gender,omitempty"`
	Address             Address            `json:"address"`
	Guardian1           Guardian           `json:"guardian1"`
	HasGuardian2        bool               `json:"hasGuardian2"`
	Guardian2           *Guardian          `json:"guardian2,omitempty"`
	EmergencyContacts   []EmergencyContact `json:"emergencyContacts,omitempty"`
	Medical             MedicalNeeds       `json:"medical"`
	Behavioral          BehavioralNeeds    `json:"behavioral"`
	DNR                 *DNRRecord         `json:"dnr,omitempty"`
	Consent             Consent            `json:"consent"`
	RequiredDocuments   []string           `json:"requiredDocuments,omitempty"`
	SupportingDocuments []string           `json:"supportingDocuments,omitempty"`
	AdditionalComments  string             `json:"additionalComments,omitempty"`
}

// Value implements driver.Valuer.
func (d RequestDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner.
func (d *RequestDetails) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = RequestDetails{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("request details: unsupported column type")
	}
	if len(raw) == 0 {
		*d = RequestDetails{}
		return nil
	}
	return json.Unmarshal(raw, d)
}

// RequestQuery narrows the rows loaded from storage before in-memory filtering.
type RequestQuery struct {
	OwnerID  string
	District string
	Status   RequestStatus
	From     *time.Time
	To       *time.Time
	Limit    int
}

// StatusUpdateRequest is the staff payload for changing a request's status.
type StatusUpdateRequest struct {
	Status            RequestStatus `json:"status" validate:"required"`
	Note              string        `json:"note" validate:"max=4000"`
	ExpectedUpdatedAt *time.Time    `json:"expectedUpdatedAt,omitempty"`
}

// ParentRequestUpdate is the subset of fields a parent may edit after submission.
type ParentRequestUpdate struct {
	StudentFirstName *string `json:"studentFirstName" validate:"omitempty,min=1,max=100"`
	StudentLastName  *string `json:"studentLastName" validate:"omitempty,min=1,max=100"`
	School           *string `json:"school" validate:"omitempty,min=1,max=200"`
	PickupTime       *string `json:"pickupTime" validate:"omitempty,max=20"`
	PickupLocation   *string `json:"pickupLocation" validate:"omitempty,max=300"`
	DropOffTime      *string `json:"dropOffTime" validate:"omitempty,max=20"`
	DropOffLocation  *string `json:"dropOffLocation" validate:"omitempty,max=300"`
}

// Empty reports whether no field was supplied.
func (u ParentRequestUpdate) Empty() bool {
	return u.StudentFirstName == nil && u.StudentLastName == nil && u.School == nil &&
		u.PickupTime == nil && u.PickupLocation == nil && u.DropOffTime == nil && u.DropOffLocation == nil
}

// Child is a distinct student across a parent's requests.
type Child struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	School    string `json:"school"`
	Grade     string `json:"grade"`
	RequestID string `json:"requestId"`
}

// ParentContact is what district staff see when looking up a request's owner.
type ParentContact struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}
