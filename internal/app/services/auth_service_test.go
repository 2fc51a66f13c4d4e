package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexasuite/powerup/internal/app/models/dto"
	"github.com/nexasuite/powerup/internal/pkg/apperrors"
	"github.com/nexasuite/powerup/internal/pkg/auth"
)

type authFixture struct {
	service  AuthService
	users    *fakeUserStore
	profiles *fakeProfileStore
	jwt      *auth.JWTService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:    newFakeUserStore(),
		profiles: newFakeProfileStore(),
		jwt: auth.NewJWTService(auth.JWTConfig{
			SecretKey:      "test-secret-key",
			AccessTokenExp: time.Hour,
			TokenIssuer:    "powerup-test",
		}),
	}
	f.service = NewAuthService(f.users, f.profiles, newFakeFileStore(), f.jwt, &fakeTxRunner{}, zerolog.Nop())
	return f
}

func (f *authFixture) register(t *testing.T, username string) *dto.TokenResponse {
	t.Helper()
	resp, err := f.service.Register(context.Background(), &dto.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterIssuesUsableToken(t *testing.T) {
	f := newAuthFixture()

	resp := f.register(t, "alice")
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Positive(t, resp.ExpiresIn)

	claims, err := f.jwt.ValidateAndExtractClaims(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Positive(t, claims.ProfileID)
}

func TestRegisterCreatesProfileForUser(t *testing.T) {
	f := newAuthFixture()

	resp := f.register(t, "alice")
	claims, err := f.jwt.ValidateAndExtractClaims(resp.AccessToken)
	require.NoError(t, err)

	profile, err := f.profiles.GetByUserID(context.Background(), claims.UserID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, claims.ProfileID, profile.ID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "alice")

	_, err := f.service.Register(context.Background(), &dto.RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "correct horse battery",
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "alice")

	_, err := f.service.Register(context.Background(), &dto.RegisterRequest{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestLoginWithValidCredentials(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "alice")

	resp, err := f.service.Login(context.Background(), &dto.LoginRequest{
		Username: "alice",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	claims, err := f.jwt.ValidateAndExtractClaims(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "alice")

	_, err := f.service.Login(context.Background(), &dto.LoginRequest{
		Username: "alice",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	f := newAuthFixture()

	// The error must not reveal whether the username exists
	_, err := f.service.Login(context.Background(), &dto.LoginRequest{
		Username: "nobody",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestGetProfileUnknownID(t *testing.T) {
	f := newAuthFixture()

	_, err := f.service.GetProfile(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
