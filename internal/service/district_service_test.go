package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/transport-request-api/internal/models"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
)

type fakeDistrictUsers struct {
	fakeUserDirectory
	created []models.User
}

func (f *fakeDistrictUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeDistrictUsers) Create(_ context.Context, user *models.User) error {
	user.ID = "new-district-user"
	f.created = append(f.created, *user)
	f.users[user.ID] = *user
	return nil
}

func newDistrictFixture(items ...models.TransportRequest) (*DistrictService, *fakeDistrictUsers, *fakeRecorder) {
	users := &fakeDistrictUsers{fakeUserDirectory: fakeUserDirectory{users: map[string]models.User{
		"staff-1": {ID: "staff-1", Email: "staff@henrico.k12.va.us", Role: models.RoleDistrict, District: "Henrico"},
	}}}
	workflowSvc := NewWorkflowService(WorkflowServiceParams{Requests: newFakeRequestRepo(items...)})
	recorder := &fakeRecorder{}
	svc := NewDistrictService(workflowSvc, users, nil, recorder, nil, nil)
	svc.now = func() time.Time { return workflowNow }
	return svc, users, recorder
}

func TestDistrictListSearchAndPaginate(t *testing.T) {
	svc, _, _ := newDistrictFixture(
		pendingRequest("r1", "Henrico"),
		pendingRequest("r2", "Chesterfield"),
		pendingRequest("r3", "Hanover"),
	)

	all, meta, err := svc.List(context.Background(), adminSession(), "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, meta.TotalCount)
	assert.Len(t, all, 3)

	matched, meta, err := svc.List(context.Background(), adminSession(), "HAN", 1, 10)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Hanover", matched[0].Name)
	assert.Equal(t, 1, meta.TotalCount)

	_, _, err = svc.List(context.Background(), districtSession("Henrico"), "", 1, 10)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestDistrictCreateAccount(t *testing.T) {
	svc, users, recorder := newDistrictFixture()

	info, err := svc.CreateAccount(context.Background(), adminSession(), models.CreateDistrictAccountRequest{
		Name:     "Goochland",
		Email:    " Transport@Goochland.K12.va.us ",
		Password: "secret123",
		Contact:  "(804) 555-0142",
	})
	require.NoError(t, err)
	assert.Equal(t, "transport@goochland.k12.va.us", info.Email)

	require.Len(t, users.created, 1)
	created := users.created[0]
	assert.Equal(t, models.RoleDistrict, created.Role)
	assert.Equal(t, "Goochland", created.District)
	assert.Equal(t, "Goochland", created.FirstName)
	assert.Equal(t, "(804) 555-0142", created.Phone)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret123")))
	assert.Equal(t, []string{models.ActivityDistrictCreate}, recorder.actions())
}

func TestDistrictCreateAccountValidation(t *testing.T) {
	svc, users, _ := newDistrictFixture()

	_, err := svc.CreateAccount(context.Background(), adminSession(), models.CreateDistrictAccountRequest{Email: "x@example.com"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Please fill in district name, email, and password.", appErr.Message)

	_, err = svc.CreateAccount(context.Background(), adminSession(), models.CreateDistrictAccountRequest{
		Name: "Henrico", Email: "staff@henrico.k12.va.us", Password: "secret123",
	})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.Empty(t, users.created)

	_, err = svc.CreateAccount(context.Background(), districtSession("Henrico"), models.CreateDistrictAccountRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}
