package workflow

import (
	"sort"
	"time"

	"github.com/noah-isme/transport-request-api/internal/models"
)

// topSchoolsLimit caps the "top schools" chart.
const topSchoolsLimit = 5

var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// bucketTime is the instant used for histograms: createdAt, then updatedAt, then now.
func bucketTime(r models.TransportRequest, now time.Time) time.Time {
	if ts := dateOf(r); ts != nil {
		return *ts
	}
	return now
}

// Aggregate derives every dashboard figure from requests. loc decides which
// calendar day and month a timestamp falls in; nil means UTC.
func Aggregate(requests []models.TransportRequest, now time.Time, loc *time.Location) models.RequestStats {
	if loc == nil {
		loc = time.UTC
	}

	var summary models.RequestSummary
	byStatus := make(map[models.RequestStatus]int, len(models.RequestStatuses))
	byDistrict := newCounter()
	bySchool := newCounter()
	var weekly [7]int
	var monthly [12]int
	trend := map[[2]int]int{}

	for _, r := range requests {
		summary.Total++
		status := r.Status.OrDefault()
		byStatus[status]++
		switch status {
		case models.StatusPending:
			summary.Pending++
		case models.StatusApproved:
			summary.Approved++
		case models.StatusRejected:
			summary.Rejected++
		case models.StatusOnHold:
			summary.OnHold++
		case models.StatusCompleted:
			summary.Complete++
		}
		if r.Flags.Any() {
			summary.Flagged++
		}
		if r.District != "" {
			byDistrict.add(r.District)
		}
		if r.School != "" {
			bySchool.add(r.School)
		}

		ts := bucketTime(r, now).In(loc)
		weekly[ts.Weekday()]++
		monthly[ts.Month()-1]++
		trend[[2]int{ts.Year(), int(ts.Month())}]++
	}

	stats := models.RequestStats{
		Summary:    summary,
		ByDistrict: byDistrict.ranked(0),
		TopSchools: bySchool.ranked(topSchoolsLimit),
		ByStatus:   make([]models.NamedCount, 0, len(models.RequestStatuses)),
		Weekly:     make([]models.NamedCount, 0, 7),
		Monthly:    make([]models.NamedCount, 0, 12),
		Trend:      make([]models.TrendPoint, 0, len(trend)),
	}
	for _, status := range models.RequestStatuses {
		stats.ByStatus = append(stats.ByStatus, models.NamedCount{Name: status.Label(), Count: byStatus[status]})
	}
	for i, label := range weekdayLabels {
		stats.Weekly = append(stats.Weekly, models.NamedCount{Name: label, Count: weekly[i]})
	}
	for i, label := range monthLabels {
		stats.Monthly = append(stats.Monthly, models.NamedCount{Name: label, Count: monthly[i]})
	}

	keys := make([][2]int, 0, len(trend))
	for k := range trend {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	for _, k := range keys {
		stats.Trend = append(stats.Trend, models.TrendPoint{Month: monthLabels[k[1]-1], Year: k[0], Count: trend[k]})
	}
	return stats
}

// counter tallies names and remembers first appearance for tie-breaking.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}}
}

func (c *counter) add(name string) {
	if _, ok := c.counts[name]; !ok {
		c.order = append(c.order, name)
	}
	c.counts[name]++
}

// ranked returns counts in descending order; limit <= 0 returns all.
func (c *counter) ranked(limit int) []models.NamedCount {
	out := make([]models.NamedCount, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, models.NamedCount{Name: name, Count: c.counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
