package workflow

import (
	"strings"
	"time"

	"github.com/noah-isme/transport-request-api/internal/models"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
)

// noteSeparator joins successive staff notes.
const noteSeparator = "\n\n"

// TransitionPolicy lists, per current status, the statuses a request may move to.
type TransitionPolicy map[models.RequestStatus][]models.RequestStatus

// PermissivePolicy lets staff move a request between any two statuses,
// including reopening a completed one.
func PermissivePolicy() TransitionPolicy {
	policy := make(TransitionPolicy, len(models.RequestStatuses))
	for _, from := range models.RequestStatuses {
		policy[from] = append([]models.RequestStatus(nil), models.RequestStatuses...)
	}
	return policy
}

// Allows reports whether from -> to is permitted. An empty current status is
// treated as pending.
func (p TransitionPolicy) Allows(from, to models.RequestStatus) bool {
	for _, candidate := range p[from.OrDefault()] {
		if candidate == to {
			return true
		}
	}
	return false
}

// Targets returns the statuses reachable from the given one.
func (p TransitionPolicy) Targets(from models.RequestStatus) []models.RequestStatus {
	return append([]models.RequestStatus(nil), p[from.OrDefault()]...)
}

// ParseStatus normalises user input such as "On Hold" or "on_hold".
func ParseStatus(raw string) (models.RequestStatus, error) {
	normalised := strings.ToLower(strings.TrimSpace(raw))
	normalised = strings.NewReplacer(" ", "-", "_", "-").Replace(normalised)
	status := models.RequestStatus(normalised)
	if !status.Valid() {
		return "", appErrors.Clone(appErrors.ErrValidation, "unknown status "+strings.TrimSpace(raw))
	}
	return status, nil
}

// AppendNote adds note to the existing notes separated by a blank line.
// An empty note leaves the notes untouched.
func AppendNote(existing, note string) string {
	if strings.TrimSpace(note) == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + noteSeparator + note
}

// StatusChange is one staff action on a request.
type StatusChange struct {
	Status  models.RequestStatus
	Note    string
	ActorID string
	At      time.Time
}

// ApplyStatusChange returns an updated copy of req. The input is never modified.
func ApplyStatusChange(req models.TransportRequest, change StatusChange, policy TransitionPolicy) (models.TransportRequest, error) {
	if req.OwnerID() == "" {
		return req, appErrors.Clone(appErrors.ErrMissingOwnerReference, "")
	}
	if !change.Status.Valid() {
		return req, appErrors.Clone(appErrors.ErrValidation, "unknown status "+string(change.Status))
	}
	if !policy.Allows(req.Status, change.Status) {
		return req, appErrors.Clone(appErrors.ErrInvalidTransition,
			"cannot move request from "+req.Status.OrDefault().Label()+" to "+change.Status.Label())
	}

	at := change.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	actor := change.ActorID

	updated := req
	updated.Status = change.Status
	updated.AdminNotes = AppendNote(req.AdminNotes, change.Note)
	updated.UpdatedAt = &at
	updated.UpdatedBy = &actor
	return updated, nil
}

// ApplyStatusChangeToList replaces the request with the given id in a copy of
// list. On any error the original list is returned as is.
func ApplyStatusChangeToList(list []models.TransportRequest, id string, change StatusChange, policy TransitionPolicy) ([]models.TransportRequest, error) {
	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return list, appErrors.Clone(appErrors.ErrNotFound, "request not found")
	}

	updated, err := ApplyStatusChange(list[idx], change, policy)
	if err != nil {
		return list, err
	}

	return replaceByID(list, updated), nil
}

// replaceByID returns a copy of list with updated swapped in for the record sharing its id.
func replaceByID(list []models.TransportRequest, updated models.TransportRequest) []models.TransportRequest {
	out := make([]models.TransportRequest, len(list))
	copy(out, list)
	for i := range out {
		if out[i].ID == updated.ID {
			out[i] = updated
		}
	}
	return out
}
