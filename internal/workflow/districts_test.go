package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/transport-request-api/internal/models"
)

func TestDistrictsMergesRequestsAndUsers(t *testing.T) {
	now := day(2025, time.June, 1)
	requests := []models.TransportRequest{
		{ID: "1", District: "Lincoln", Status: models.StatusPending, CreatedAt: timePtr(day(2025, time.March, 1))},
		{ID: "2", District: "Lincoln", Status: models.StatusRejected, CreatedAt: timePtr(day(2025, time.January, 1)), UpdatedAt: timePtr(day(2025, time.April, 1))},
	}
	users := []models.User{{ID: "u1", Email: "staff@lincoln.k12", FirstName: "Sam", LastName: "Staff", Role: models.RoleDistrict, District: "Lincoln"}}

	districts := Districts(requests, users, now)
	require.Len(t, districts, 1)
	d := districts[0]
	assert.Equal(t, "Lincoln", d.Name)
	assert.Equal(t, 2, d.RequestCount)
	assert.Equal(t, 1, d.AdminCount)
	assert.Equal(t, 1, d.ActiveRequests)
	require.NotNil(t, d.LastActive)
	assert.Equal(t, day(2025, time.April, 1), *d.LastActive)
	assert.Equal(t, []models.DistrictAdmin{{ID: "u1", Email: "staff@lincoln.k12", FullName: "Sam Staff"}}, d.Admins)
}

func TestDistrictsCaseSensitiveAndSkipsEmpty(t *testing.T) {
	now := day(2025, time.June, 1)
	requests := []models.TransportRequest{
		{ID: "1", District: "Lincoln"},
		{ID: "2", District: "lincoln"},
		{ID: "3", District: ""},
	}
	users := []models.User{
		{ID: "p", Role: models.RoleParent, District: "Lincoln"},
		{ID: "d", Role: models.RoleDistrict, District: "Madison"},
		{ID: "x", Role: models.RoleDistrict},
	}

	districts := Districts(requests, users, now)
	require.Len(t, districts, 3)
	assert.Equal(t, []string{"Lincoln", "lincoln", "Madison"}, []string{districts[0].Name, districts[1].Name, districts[2].Name})
	assert.Zero(t, districts[0].AdminCount)
	assert.Equal(t, 1, districts[2].AdminCount)
	assert.Zero(t, districts[2].RequestCount)
	require.NotNil(t, districts[2].LastActive)
	assert.Equal(t, now, *districts[2].LastActive)
}

func TestDistrictsUndatedRequestsReportNow(t *testing.T) {
	now := day(2025, time.June, 1)
	requests := []models.TransportRequest{
		{ID: "1", District: "Lincoln", Status: models.StatusPending},
		{ID: "2", District: "Lincoln", Status: models.StatusCompleted},
	}
	users := []models.User{{ID: "d", Role: models.RoleDistrict, District: "Lincoln"}}

	for _, staff := range [][]models.User{nil, users} {
		districts := Districts(requests, staff, now)
		require.Len(t, districts, 1)
		require.NotNil(t, districts[0].LastActive)
		assert.Equal(t, now, *districts[0].LastActive)
		assert.Equal(t, 2, districts[0].RequestCount)
	}
}

func TestDistrictsEmpty(t *testing.T) {
	assert.Equal(t, []models.District{}, Districts(nil, nil, time.Now()))
}
