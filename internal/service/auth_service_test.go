package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/transport-request-api/internal/models"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
)

type mockAuthRepo struct {
	userByEmail         *models.User
	userByID            *models.User
	findByEmailErr      error
	findByIDErr         error
	created             []*models.User
	refreshTokens       map[string]*models.RefreshToken
	refreshTokenErr     error
	createRefreshErr    error
	revokeRefreshErr    error
	revokeUserTokensErr error
	updatePasswordErr   error
	lastLoginUpdated    bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	if m.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.userByID != nil {
		return m.userByID, nil
	}
	if m.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "new-user"
	}
	m.created = append(m.created, user)
	return nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if m.updatePasswordErr != nil {
		return m.updatePasswordErr
	}
	if m.userByEmail != nil && m.userByEmail.ID == id {
		m.userByEmail.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	return m.revokeUserTokensErr
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.createRefreshErr != nil {
		return m.createRefreshErr
	}
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.TokenHash] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	if m.refreshTokenErr != nil {
		return nil, m.refreshTokenErr
	}
	rt, ok := m.refreshTokens[tokenHash]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	if m.revokeRefreshErr != nil {
		return m.revokeRefreshErr
	}
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, RefreshTokenExpiry: 24 * time.Hour}
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceRegisterParent(t *testing.T) {
	repo := &mockAuthRepo{}
	rec := &fakeRecorder{}
	svc := NewAuthService(repo, nil, zap.NewNop(), rec, testAuthConfig())

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		FirstName:       "Anne",
		LastName:        "Lovelace",
		Email:           " Anne@Example.com ",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Role:            models.RoleParent,
		School:          "Deep Run High School",
		District:        "Henrico",
		Phone:           "(804) 555-0100",
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "anne@example.com", repo.created[0].Email)
	assert.Equal(t, models.RoleParent, res.User.Role)
	assert.Equal(t, "Henrico", res.User.District)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, []string{models.ActivityRegister}, rec.actions())

	for hash := range repo.refreshTokens {
		assert.NotEqual(t, res.RefreshToken, hash, "raw refresh token must not be stored")
	}
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, nil, zap.NewNop(), nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		FirstName:       "Anne",
		LastName:        "Lovelace",
		Email:           "anne@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret2",
		Role:            models.RoleParent,
		District:        "Henrico",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "Passwords do not match", appErr.Details["confirmPassword"])
	assert.Contains(t, appErr.Details, "school")
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "u1", Email: "anne@example.com"}}
	svc := NewAuthService(repo, nil, zap.NewNop(), nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		FirstName: "A", LastName: "B", Email: "anne@example.com", Password: "secret1", ConfirmPassword: "secret1",
		Role: models.RoleDistrict, District: "Henrico",
	})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "123", Email: "user@example.com", PasswordHash: mustHash(t, "password"), Active: true, Role: models.RoleDistrict, District: "Henrico"}}
	rec := &fakeRecorder{}
	svc := NewAuthService(repo, nil, zap.NewNop(), rec, testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, models.RoleDistrict, res.User.Role)
	assert.True(t, repo.lastLoginUpdated)
	assert.NotEmpty(t, repo.refreshTokens)
	assert.Equal(t, []string{models.ActivityLogin}, rec.actions())
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "123", Email: "user@example.com", PasswordHash: mustHash(t, "password"), Active: true}}
	svc := NewAuthService(repo, nil, zap.NewNop(), nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "nope"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "123", Email: "user@example.com", PasswordHash: mustHash(t, "password"), Active: false}}
	svc := NewAuthService(repo, nil, zap.NewNop(), nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceRefreshTokenRotates(t *testing.T) {
	repo := &mockAuthRepo{refreshTokens: make(map[string]*models.RefreshToken)}
	user := &models.User{ID: "u1", Email: "user@example.com", PasswordHash: "hash", Active: true, Role: models.RoleAdmin}
	repo.userByEmail = user
	repo.userByID = user
	token := &models.RefreshToken{ID: "rt1", UserID: user.ID, TokenHash: hashToken("token"), ExpiresAt: time.Now().Add(time.Hour)}
	repo.refreshTokens[token.TokenHash] = token

	svc := NewAuthService(repo, nil, zap.NewNop(), nil, testAuthConfig())

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "token", res.RefreshToken)
	assert.True(t, token.Revoked)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogoutForeignToken(t *testing.T) {
	repo := &mockAuthRepo{refreshTokens: map[string]*models.RefreshToken{
		hashToken("token"): {ID: "rt1", UserID: "someone-else", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc := NewAuthService(repo, nil, zap.NewNop(), nil, testAuthConfig())

	err := svc.Logout(context.Background(), models.Session{UserID: "u1", Role: models.RoleParent}, "token")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestAuthServiceChangePassword(t *testing.T) {
	oldHash := mustHash(t, "oldpass")
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "u1", PasswordHash: oldHash, Active: true}}
	svc := NewAuthService(repo, nil, zap.NewNop(), nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), models.Session{UserID: "u1"}, models.ChangePasswordRequest{OldPassword: "oldpass", NewPassword: "newpassword"})
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, repo.userByEmail.PasswordHash)

	err = svc.ChangePassword(context.Background(), models.Session{UserID: "u1"}, models.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "another1"})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestAuthServiceMe(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "u1", Email: "a@example.com", FirstName: "Anne", LastName: "Lovelace", Role: models.RoleParent}}
	svc := NewAuthService(repo, nil, zap.NewNop(), nil, testAuthConfig())

	info, err := svc.Me(context.Background(), models.Session{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "Anne Lovelace", info.FullName)
}

func TestValidateToken(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, nil, zap.NewNop(), nil, testAuthConfig())
	user := &models.User{ID: "u1", Email: "user@example.com", Role: models.RoleDistrict, District: "Henrico"}
	token, _, err := svc.generateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "Henrico", claims.District)

	_, err = svc.ValidateToken(token + "x")
	assert.Error(t, err)
}

func TestAuthServiceCreateAdmin(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, nil, zap.NewNop(), nil, testAuthConfig())

	info, err := svc.CreateAdmin(context.Background(), models.CreateAdminRequest{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "Ops@District.org",
		Password:  "longenough",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, info.Role)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "ops@district.org", repo.created[0].Email)

	repo.userByEmail = repo.created[0]
	_, err = svc.CreateAdmin(context.Background(), models.CreateAdminRequest{
		FirstName: "Grace", LastName: "Hopper", Email: "ops@district.org", Password: "longenough",
	})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
}
