package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/transport-request-api/internal/models"
)

type fakeActivityRepo struct {
	mu         sync.Mutex
	entries    []models.SystemActivity
	lastFilter models.ActivityFilter
}

func (f *fakeActivityRepo) Create(_ context.Context, entry *models.SystemActivity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeActivityRepo) List(_ context.Context, filter models.ActivityFilter) ([]models.SystemActivity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	out := make([]models.SystemActivity, 0, len(f.entries))
	for _, e := range f.entries {
		if filter.District != "" && e.District != filter.District {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeActivityRepo) snapshot() []models.SystemActivity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SystemActivity(nil), f.entries...)
}

func TestActivityServicePersistsOnStop(t *testing.T) {
	repo := &fakeActivityRepo{}
	svc := NewActivityService(repo, NewMetricsService(), nil, ActivityConfig{Workers: 1, BufferSize: 8})
	svc.Start(context.Background())

	svc.Record(districtSession("Henrico"), models.ActivityStatusChange, "Request r1 approved")
	svc.Record(models.Session{}, models.ActivitySupportCreate, "Contact form message")
	svc.Stop()

	entries := repo.snapshot()
	require.Len(t, entries, 2)
	byAction := map[string]models.SystemActivity{}
	for _, e := range entries {
		byAction[e.Action] = e
	}

	staff := byAction[models.ActivityStatusChange]
	assert.Equal(t, "Dana Staff", staff.User)
	assert.Equal(t, "Henrico", staff.District)
	require.NotNil(t, staff.UserID)
	assert.Equal(t, "staff-1", *staff.UserID)
	assert.NotEmpty(t, staff.ID)
	assert.False(t, staff.Timestamp.IsZero())

	public := byAction[models.ActivitySupportCreate]
	assert.Equal(t, "public", public.User)
	assert.Nil(t, public.UserID)
}

func TestActivityServiceDropsBeforeStart(t *testing.T) {
	repo := &fakeActivityRepo{}
	metrics := NewMetricsService()
	svc := NewActivityService(repo, metrics, nil, ActivityConfig{})

	svc.Record(adminSession(), models.ActivityLogin, "")

	assert.Empty(t, repo.snapshot())
	assert.Equal(t, uint64(1), metrics.Snapshot().ActivityDropped)
}

func TestActivityServiceNilIsSafe(t *testing.T) {
	var svc *ActivityService
	assert.NotPanics(t, func() {
		svc.Record(adminSession(), models.ActivityLogin, "")
	})
}

func TestActivityServiceListScopesDistrict(t *testing.T) {
	repo := &fakeActivityRepo{entries: []models.SystemActivity{
		{ID: "1", District: "Henrico", Action: models.ActivityLogin},
		{ID: "2", District: "Chesterfield", Action: models.ActivityLogin},
	}}
	svc := NewActivityService(repo, nil, nil, ActivityConfig{})

	entries, err := svc.List(context.Background(), districtSession("Henrico"), models.ActivityFilter{District: "Chesterfield"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].ID)
	assert.Equal(t, 100, repo.lastFilter.Limit)

	entries, err = svc.List(context.Background(), adminSession(), models.ActivityFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 10, repo.lastFilter.Limit)
}
