package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/internal/workflow"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
)

var workflowNow = time.Date(2025, 4, 10, 15, 0, 0, 0, time.UTC)

type workflowFixture struct {
	svc      *WorkflowService
	repo     *fakeRequestRepo
	cache    *fakeInvalidator
	recorder *fakeRecorder
	metrics  *MetricsService
}

func newWorkflowFixture(policy workflow.TransitionPolicy, items ...models.TransportRequest) workflowFixture {
	f := workflowFixture{
		repo:     newFakeRequestRepo(items...),
		cache:    &fakeInvalidator{},
		recorder: &fakeRecorder{},
		metrics:  NewMetricsService(),
	}
	f.svc = NewWorkflowService(WorkflowServiceParams{
		Requests: f.repo,
		Users: &fakeUserDirectory{users: map[string]models.User{
			"parent-1": {ID: "parent-1", Email: "pat@example.com", FirstName: "Pat", LastName: "Parent", Phone: "(804) 555-0101"},
		}},
		Cache:     f.cache,
		Activity:  f.recorder,
		Metrics:   f.metrics,
		Policy:    policy,
		Artifacts: ArtifactFilter{MinYear: 2024, HideTest: true},
	})
	f.svc.now = func() time.Time { return workflowNow }
	return f
}

func pendingRequest(id, district string) models.TransportRequest {
	created := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	return models.TransportRequest{
		ID:               id,
		UserID:           strPtr("parent-1"),
		StudentFirstName: "Ava",
		StudentLastName:  "Smith",
		School:           "Lincoln Elementary",
		District:         district,
		Status:           models.StatusPending,
		CreatedAt:        &created,
	}
}

func TestWorkflowUpdateStatusAppendsNote(t *testing.T) {
	req := pendingRequest("r1", "Henrico")
	req.AdminNotes = "Called parent"
	f := newWorkflowFixture(nil, req)

	updated, err := f.svc.UpdateStatus(context.Background(), districtSession("Henrico"), "r1", models.StatusUpdateRequest{
		Status: "Approved",
		Note:   "Route 12 assigned",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, updated.Status)
	assert.Equal(t, "Called parent\n\nRoute 12 assigned", updated.AdminNotes)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, "staff-1", *updated.UpdatedBy)
	require.NotNil(t, updated.UpdatedAt)
	assert.True(t, updated.UpdatedAt.Equal(workflowNow))

	stored := f.repo.items["r1"]
	assert.Equal(t, models.StatusApproved, stored.Status)
	assert.Equal(t, [][]string{{"Henrico", "Henrico"}}, f.cache.calls)
	assert.Equal(t, []string{models.ActivityStatusChange}, f.recorder.actions())
	assert.Contains(t, f.recorder.entries[0].details, "from Pending Review to Approved")
	assert.Equal(t, uint64(1), f.metrics.Snapshot().StatusChangesTotal)
}

func TestWorkflowUpdateStatusKeepsNoteVerbatim(t *testing.T) {
	f := newWorkflowFixture(nil, pendingRequest("r1", "Henrico"))

	note := "Call dad <dad@example.com> first & confirm 7:15 < 7:30"
	updated, err := f.svc.UpdateStatus(context.Background(), districtSession("Henrico"), "r1", models.StatusUpdateRequest{
		Status: models.StatusOnHold,
		Note:   note,
	})
	require.NoError(t, err)
	assert.Equal(t, note, updated.AdminNotes)
	assert.Equal(t, note, f.repo.items["r1"].AdminNotes)
}

func TestWorkflowUpdateStatusStaleWrite(t *testing.T) {
	f := newWorkflowFixture(nil, pendingRequest("r1", "Henrico"))
	f.repo.stale = true

	_, err := f.svc.UpdateStatus(context.Background(), adminSession(), "r1", models.StatusUpdateRequest{
		Status:            models.StatusRejected,
		ExpectedUpdatedAt: timePtr(time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrStaleWrite))
	assert.Empty(t, f.recorder.actions())
	assert.Empty(t, f.cache.calls)
}

func TestWorkflowUpdateStatusMissingOwner(t *testing.T) {
	orphan := pendingRequest("r1", "Henrico")
	orphan.UserID = nil
	f := newWorkflowFixture(nil, orphan)

	_, err := f.svc.UpdateStatus(context.Background(), adminSession(), "r1", models.StatusUpdateRequest{Status: models.StatusApproved})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrMissingOwnerReference))

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 422, appErr.Status)
	assert.Zero(t, f.repo.updates)
	assert.Equal(t, models.StatusPending, f.repo.items["r1"].Status)
}

func TestWorkflowUpdateStatusUnknownStatus(t *testing.T) {
	f := newWorkflowFixture(nil, pendingRequest("r1", "Henrico"))

	_, err := f.svc.UpdateStatus(context.Background(), adminSession(), "r1", models.StatusUpdateRequest{Status: "archived"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, f.repo.updates)
}

func TestWorkflowUpdateStatusRespectsPolicy(t *testing.T) {
	req := pendingRequest("r1", "Henrico")
	req.Status = models.StatusCompleted
	policy := workflow.TransitionPolicy{models.StatusCompleted: {models.StatusCompleted}}
	f := newWorkflowFixture(policy, req)

	_, err := f.svc.UpdateStatus(context.Background(), adminSession(), "r1", models.StatusUpdateRequest{Status: models.StatusPending})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))
}

func TestWorkflowDistrictScoping(t *testing.T) {
	f := newWorkflowFixture(nil, pendingRequest("r1", "Henrico"), pendingRequest("r2", "Chesterfield"))

	items, err := f.svc.Load(context.Background(), districtSession("Henrico"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "r1", items[0].ID)
	assert.Equal(t, "Henrico", f.repo.lastList.District)

	_, err = f.svc.Get(context.Background(), districtSession("Henrico"), "r2")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = f.svc.UpdateStatus(context.Background(), districtSession("Henrico"), "r2", models.StatusUpdateRequest{Status: models.StatusApproved})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Zero(t, f.repo.updates)

	_, err = f.svc.Load(context.Background(), districtSession(""))
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = f.svc.Load(context.Background(), parentSession())
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestWorkflowAdminHidesArtifacts(t *testing.T) {
	legacy := pendingRequest("old", "Henrico")
	legacy.CreatedAt = timePtr(time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC))
	f := newWorkflowFixture(nil, pendingRequest("r1", "Henrico"), legacy)

	items, err := f.svc.Load(context.Background(), adminSession())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "r1", items[0].ID)
}

func TestWorkflowParentContact(t *testing.T) {
	orphan := pendingRequest("r2", "Henrico")
	orphan.UserID = nil
	gone := pendingRequest("r3", "Henrico")
	gone.UserID = strPtr("deleted-user")
	f := newWorkflowFixture(nil, pendingRequest("r1", "Henrico"), orphan, gone)

	contact, err := f.svc.ParentContact(context.Background(), districtSession("Henrico"), "r1")
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", contact.Email)
	assert.Equal(t, "(804) 555-0101", contact.Phone)

	_, err = f.svc.ParentContact(context.Background(), districtSession("Henrico"), "r2")
	assert.True(t, errors.Is(err, appErrors.ErrMissingOwnerReference))

	_, err = f.svc.ParentContact(context.Background(), districtSession("Henrico"), "r3")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestWorkflowActivityHistory(t *testing.T) {
	touched := pendingRequest("r1", "Henrico")
	touched.UpdatedAt = timePtr(time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC))
	fresh := pendingRequest("r2", "Henrico")
	fresh.CreatedAt = timePtr(time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC))
	f := newWorkflowFixture(nil, pendingRequest("r0", "Henrico"), touched, fresh)

	items, meta, err := f.svc.ActivityHistory(context.Background(), districtSession("Henrico"), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, meta.TotalCount)
	require.Len(t, items, 2)
	assert.Equal(t, "r1", items[0].ID)
	assert.Equal(t, "r2", items[1].ID)
}

func TestByLastActivityKeepsUndatedLast(t *testing.T) {
	undated := models.TransportRequest{ID: "x"}
	dated := models.TransportRequest{ID: "y", CreatedAt: timePtr(workflowNow)}

	out := ByLastActivity([]models.TransportRequest{undated, dated})
	assert.Equal(t, "y", out[0].ID)
	assert.Equal(t, "x", out[1].ID)
}

func TestWorkflowNextStatusesFollowsPolicy(t *testing.T) {
	f := newWorkflowFixture(workflow.TransitionPolicy{
		models.StatusPending: {models.StatusApproved, models.StatusOnHold},
	})
	assert.Equal(t, []models.RequestStatus{models.StatusApproved, models.StatusOnHold}, f.svc.NextStatuses(models.StatusPending))
	assert.Empty(t, f.svc.NextStatuses(models.StatusCompleted))

	permissive := newWorkflowFixture(nil)
	assert.Len(t, permissive.svc.NextStatuses(models.StatusCompleted), len(models.RequestStatuses))
}
