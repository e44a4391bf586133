package workflow

import (
	"time"

	"github.com/noah-isme/transport-request-api/internal/models"
)

// Districts groups requests and district staff accounts by the exact district
// name. Requests without a district are skipped. A district with no dated
// request, including one known only through its staff accounts, reports now as
// its last activity. Output order is first appearance, requests before users.
func Districts(requests []models.TransportRequest, users []models.User, now time.Time) []models.District {
	index := map[string]int{}
	var out []models.District

	entry := func(name string) *models.District {
		if i, ok := index[name]; ok {
			return &out[i]
		}
		index[name] = len(out)
		out = append(out, models.District{Name: name, Admins: []models.DistrictAdmin{}})
		return &out[len(out)-1]
	}

	for _, r := range requests {
		if r.District == "" {
			continue
		}
		d := entry(r.District)
		d.RequestCount++
		switch r.Status.OrDefault() {
		case models.StatusPending, models.StatusApproved:
			d.ActiveRequests++
		}
		if ts := r.LastActivity(); ts != nil && (d.LastActive == nil || ts.After(*d.LastActive)) {
			t := *ts
			d.LastActive = &t
		}
	}

	for _, u := range users {
		if u.Role != models.RoleDistrict || u.District == "" {
			continue
		}
		d := entry(u.District)
		d.Admins = append(d.Admins, models.DistrictAdmin{ID: u.ID, Email: u.Email, FullName: u.FullName()})
		d.AdminCount++
	}

	for i := range out {
		if out[i].LastActive == nil {
			t := now
			out[i].LastActive = &t
		}
	}
	if out == nil {
		out = []models.District{}
	}
	return out
}
