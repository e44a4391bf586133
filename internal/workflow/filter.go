package workflow

import (
	"strings"
	"time"

	"github.com/noah-isme/transport-request-api/internal/models"
)

// Tab is a category shortcut applied on top of the explicit filters.
type Tab string

const (
	TabAll      Tab = "all"
	TabPending  Tab = "pending"
	TabApproved Tab = "approved"
	TabRejected Tab = "rejected"
	TabFlagged  Tab = "flagged"
)

// allValue is accepted wherever a filter may be switched off.
const allValue = "all"

// Filter selects the requests shown in a table. Zero values disable a predicate.
type Filter struct {
	Search   string
	District string
	School   string
	Status   string
	Tab      Tab
	From     *time.Time
	To       *time.Time
}

// Apply returns the requests matching every active predicate, preserving input order.
func (f Filter) Apply(requests []models.TransportRequest) []models.TransportRequest {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.TransportRequest, 0, len(requests))
	for _, r := range requests {
		if f.matches(r, needle) {
			out = append(out, r)
		}
	}
	return out
}

func (f Filter) matches(r models.TransportRequest, needle string) bool {
	if needle != "" && !matchesSearch(r, needle) {
		return false
	}
	if active(f.District) && r.District != f.District {
		return false
	}
	if active(f.School) && r.School != f.School {
		return false
	}
	if active(f.Status) && string(r.Status.OrDefault()) != f.Status {
		return false
	}
	if !matchesTab(r, f.Tab) {
		return false
	}
	if f.From != nil || f.To != nil {
		ts := dateOf(r)
		if ts == nil {
			return false
		}
		if f.From != nil && ts.Before(*f.From) {
			return false
		}
		if f.To != nil && ts.After(*f.To) {
			return false
		}
	}
	return true
}

func active(v string) bool {
	return v != "" && v != allValue
}

func matchesSearch(r models.TransportRequest, needle string) bool {
	haystacks := []string{
		r.StudentFirstName + " " + r.StudentLastName,
		r.School,
		r.District,
	}
	if r.StudentID != nil {
		haystacks = append(haystacks, *r.StudentID)
	}
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

func matchesTab(r models.TransportRequest, tab Tab) bool {
	switch tab {
	case TabPending:
		return r.Status.OrDefault() == models.StatusPending
	case TabApproved:
		return r.Status == models.StatusApproved
	case TabRejected:
		return r.Status == models.StatusRejected
	case TabFlagged:
		return r.Flags.Any()
	default:
		return true
	}
}

// dateOf is createdAt, falling back to updatedAt.
func dateOf(r models.TransportRequest) *time.Time {
	if r.CreatedAt != nil {
		return r.CreatedAt
	}
	return r.UpdatedAt
}

// ExcludeArtifacts drops records created before minYear and records whose
// student name contains "test". minYear <= 0 disables the year check.
func ExcludeArtifacts(requests []models.TransportRequest, minYear int, hideTest bool, now time.Time) []models.TransportRequest {
	out := make([]models.TransportRequest, 0, len(requests))
	for _, r := range requests {
		if minYear > 0 && bucketTime(r, now).Year() < minYear {
			continue
		}
		if hideTest && strings.Contains(strings.ToLower(r.StudentName()), "test") {
			continue
		}
		out = append(out, r)
	}
	return out
}

// DistinctChildren keeps the first request seen for each student name.
func DistinctChildren(requests []models.TransportRequest) []models.Child {
	seen := make(map[string]struct{}, len(requests))
	children := make([]models.Child, 0)
	for _, r := range requests {
		key := r.StudentName()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		children = append(children, models.Child{
			FirstName: r.StudentFirstName,
			LastName:  r.StudentLastName,
			School:    r.School,
			Grade:     r.Grade,
			RequestID: r.ID,
		})
	}
	return children
}
