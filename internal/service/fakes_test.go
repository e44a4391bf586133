package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/transport-request-api/internal/models"
)

type recordedActivity struct {
	session models.Session
	action  string
	details string
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []recordedActivity
}

func (f *fakeRecorder) Record(session models.Session, action, details string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, recordedActivity{session: session, action: action, details: details})
}

func (f *fakeRecorder) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.action)
	}
	return out
}

func strPtr(s string) *string { return &s }

type fakeRequestRepo struct {
	mu       sync.Mutex
	items    map[string]models.TransportRequest
	seq      int
	stale    bool
	listErr  error
	updates  int
	lastList models.RequestQuery
}

func newFakeRequestRepo(items ...models.TransportRequest) *fakeRequestRepo {
	repo := &fakeRequestRepo{items: map[string]models.TransportRequest{}}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (f *fakeRequestRepo) Create(_ context.Context, req *models.TransportRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	req.ID = fmt.Sprintf("req-%d", f.seq)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	req.CreatedAt = &now
	f.items[req.ID] = *req
	return nil
}

func (f *fakeRequestRepo) FindByID(_ context.Context, id string) (*models.TransportRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (f *fakeRequestRepo) FindOwned(ctx context.Context, id, ownerID string) (*models.TransportRequest, error) {
	item, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.OwnerID() != ownerID {
		return nil, sql.ErrNoRows
	}
	return item, nil
}

func (f *fakeRequestRepo) ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.TransportRequest, error) {
	return f.ListAll(ctx, models.RequestQuery{OwnerID: ownerID, Limit: limit})
}

func (f *fakeRequestRepo) ListAll(_ context.Context, q models.RequestQuery) ([]models.TransportRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = q
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.TransportRequest, 0, len(f.items))
	for _, item := range f.items {
		if q.OwnerID != "" && item.OwnerID() != q.OwnerID {
			continue
		}
		if q.District != "" && item.District != q.District {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRequestRepo) UpdateStatus(_ context.Context, req *models.TransportRequest, expected *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stale {
		return sql.ErrNoRows
	}
	if _, ok := f.items[req.ID]; !ok {
		return sql.ErrNoRows
	}
	f.updates++
	f.items[req.ID] = *req
	return nil
}

func (f *fakeRequestRepo) UpdateFields(_ context.Context, id, ownerID string, upd models.ParentRequestUpdate, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok || item.OwnerID() != ownerID {
		return sql.ErrNoRows
	}
	if upd.School != nil {
		item.School = *upd.School
	}
	if upd.PickupLocation != nil {
		item.PickupLocation = *upd.PickupLocation
	}
	if upd.PickupTime != nil {
		item.PickupTime = *upd.PickupTime
	}
	item.UpdatedAt = &at
	f.updates++
	f.items[id] = item
	return nil
}

func (f *fakeRequestRepo) DeleteOwned(_ context.Context, id, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok || item.OwnerID() != ownerID {
		return sql.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

type fakeInvalidator struct {
	calls [][]string
}

func (f *fakeInvalidator) InvalidateDashboards(_ context.Context, districts ...string) error {
	f.calls = append(f.calls, districts)
	return nil
}

type fakeUserDirectory struct {
	users map[string]models.User
}

func (f *fakeUserDirectory) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (f *fakeUserDirectory) ListAll(context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func timePtr(t time.Time) *time.Time { return &t }

func parentSession() models.Session {
	return models.Session{UserID: "parent-1", Email: "pat@example.com", FullName: "Pat Parent", Role: models.RoleParent, District: "Henrico"}
}

func districtSession(district string) models.Session {
	return models.Session{UserID: "staff-1", Email: "staff@example.com", FullName: "Dana Staff", Role: models.RoleDistrict, District: district}
}

func adminSession() models.Session {
	return models.Session{UserID: "admin-1", Email: "admin@example.com", FullName: "Ada Admin", Role: models.RoleAdmin}
}
