package service

import (
	"context"
	"testing"
	"time"

	"alphagrid-backend/internal/config"
	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeLoginStore struct {
	users map[string]domain.User
}

func (f fakeLoginStore) GetByLogin(_ context.Context, login string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == login || (u.Email != nil && *u.Email == login) {
			uu := u
			return &uu, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeLoginStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func testAuthService(t *testing.T, active bool) AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	hashStr := string(hash)
	email := "alice@example.com"
	return AuthService{
		Config: config.Config{
			JWTSecret:       "test-secret",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 24 * time.Hour,
		},
		Users: fakeLoginStore{users: map[string]domain.User{
			"user-1": {
				ID:           "user-1",
				Email:        &email,
				Username:     "alice",
				FullName:     "Alice Founder",
				Role:         domain.RoleCoFounder,
				IsActive:     active,
				PasswordHash: &hashStr,
			},
		}},
		Logger: discardLogger(),
	}
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	svc := testAuthService(t, true)

	for _, login := range []string{"alice", "alice@example.com"} {
		result, err := svc.Login(context.Background(), LoginInput{Login: login, Password: "s3cret"})
		require.NoError(t, err, "login %q", login)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "user-1", result.User.ID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := testAuthService(t, true)

	_, err := svc.Login(context.Background(), LoginInput{Login: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := testAuthService(t, true)

	_, err := svc.Login(context.Background(), LoginInput{Login: "nobody", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc := testAuthService(t, false)

	_, err := svc.Login(context.Background(), LoginInput{Login: "alice", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestRefreshRoundTrip(t *testing.T) {
	svc := testAuthService(t, true)

	initial, err := svc.Login(context.Background(), LoginInput{Login: "alice", Password: "s3cret"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), initial.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc := testAuthService(t, true)

	initial, err := svc.Login(context.Background(), LoginInput{Login: "alice", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), initial.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc := testAuthService(t, true)

	_, err := svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
