package workflow

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/noah-isme/transport-request-api/internal/models"
)

// SortField names a sortable column.
type SortField string

const (
	SortDate    SortField = "date"
	SortSchool  SortField = "school"
	SortStudent SortField = "student"
	SortStatus  SortField = "status"
)

// SortOrder is ascending or descending.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Sort is the table ordering. The zero value sorts by date, newest first.
type Sort struct {
	Field SortField
	Order SortOrder
}

// Normalise fills defaults and replaces unknown values.
func (s Sort) Normalise() Sort {
	switch s.Field {
	case SortDate, SortSchool, SortStudent, SortStatus:
	default:
		s.Field = SortDate
	}
	if s.Order != OrderAsc {
		s.Order = OrderDesc
	}
	return s
}

// Toggle applies a click on a column header: the active column flips order,
// a new column starts descending.
func (s Sort) Toggle(field SortField) Sort {
	current := s.Normalise()
	if current.Field == field {
		if current.Order == OrderAsc {
			current.Order = OrderDesc
		} else {
			current.Order = OrderAsc
		}
		return current
	}
	return Sort{Field: field, Order: OrderDesc}.Normalise()
}

// Apply returns a sorted copy of requests. Ties keep their input order.
func (s Sort) Apply(requests []models.TransportRequest) []models.TransportRequest {
	s = s.Normalise()
	out := make([]models.TransportRequest, len(requests))
	copy(out, requests)

	col := collate.New(language.English)
	compare := func(a, b models.TransportRequest) int {
		switch s.Field {
		case SortSchool:
			return col.CompareString(a.School, b.School)
		case SortStudent:
			return col.CompareString(studentKey(a), studentKey(b))
		case SortStatus:
			return col.CompareString(string(a.Status.OrDefault()), string(b.Status.OrDefault()))
		default:
			ta, tb := dateKey(a), dateKey(b)
			switch {
			case ta < tb:
				return -1
			case ta > tb:
				return 1
			}
			return 0
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j])
		if s.Order == OrderAsc {
			return c < 0
		}
		return c > 0
	})
	return out
}

func studentKey(r models.TransportRequest) string {
	return r.StudentLastName + ", " + r.StudentFirstName
}

// dateKey is createdAt, then updatedAt, then the epoch, in milliseconds.
func dateKey(r models.TransportRequest) int64 {
	if ts := dateOf(r); ts != nil {
		return ts.UnixMilli()
	}
	return 0
}

// Query combines filtering and ordering for one table view.
type Query struct {
	Filter Filter
	Sort   Sort
}

// Run filters then sorts requests.
func (q Query) Run(requests []models.TransportRequest) []models.TransportRequest {
	return q.Sort.Apply(q.Filter.Apply(requests))
}
