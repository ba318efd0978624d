package impl

import (
	"context"
	"testing"
	"time"

	"garage/config"
	domainerrors "garage/internal/domain/errors"
	"garage/internal/domain/service"
	"garage/internal/infra/auth"
	"garage/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// authFixtures wires the user and session services to a shared in-memory
// store, with the real bcrypt hasher and JWT service.
type authFixtures struct {
	store        *memoryStore
	userService  usecase.UserUsecase
	tokenService service.TokenService
}

func newAuthFixtures(t *testing.T) authFixtures {
	t.Helper()

	return newAuthFixturesWithRefreshTTL(t, time.Hour)
}

func newAuthFixturesWithRefreshTTL(t *testing.T, refreshTTL time.Duration) authFixtures {
	t.Helper()

	store := newMemoryStore()

	tokenService, err := auth.NewJWTService(&config.Config{
		Auth: &config.AuthConfig{
			Secret:          "test-secret",
			Issuer:          "garage",
			Audience:        "garage-clients",
			AccessTokenTTL:  time.Minute,
			RefreshTokenTTL: refreshTTL,
		},
	})
	require.NoError(t, err)

	userService := NewUserService(UserServiceParams{
		TxManager:    &fakeTxManager{store: store},
		Hasher:       auth.NewBcryptHasherWithCost(bcrypt.MinCost),
		TokenService: tokenService,
		Logger:       newDiscardLogger(),
	})

	return authFixtures{
		store:        store,
		userService:  userService,
		tokenService: tokenService,
	}
}

func (f authFixtures) register(t *testing.T, email string) *usecase.RegisterOutput {
	t.Helper()

	out, err := f.userService.Register(context.Background(), usecase.RegisterInput{
		Name:     "Test User",
		Email:    email,
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)

	return out
}

func (f authFixtures) login(t *testing.T, email string) *usecase.LoginOutput {
	t.Helper()

	out, err := f.userService.Login(context.Background(), usecase.LoginInput{
		Email:    email,
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)

	return out
}

func TestUserService_Register_HashesPassword(t *testing.T) {
	f := newAuthFixtures(t)

	out := f.register(t, "alice@example.com")

	require.NotNil(t, out.User)
	assert.NotEqual(t, "correct horse battery staple", out.User.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(out.User.PasswordHash), []byte("correct horse battery staple")))
}

func TestUserService_Register_OpensSession(t *testing.T) {
	f := newAuthFixtures(t)

	out := f.register(t, "alice@example.com")

	assert.NotEmpty(t, out.AccessToken)
	assert.NotEmpty(t, out.RefreshToken)

	// One session row, keyed by the refresh token's digest.
	require.Len(t, f.store.tokens, 1)
	for _, token := range f.store.tokens {
		assert.Equal(t, f.tokenService.HashToken(out.RefreshToken), token.TokenHash)
		assert.Equal(t, out.User.ID, token.UserID)
	}

	// The pair is usable without a separate login.
	userID, ok := f.tokenService.UserID(out.AccessToken)
	assert.True(t, ok)
	assert.Equal(t, out.User.ID, userID)

	_, err := f.userService.Refresh(context.Background(), usecase.RefreshInput{
		RefreshToken: out.RefreshToken,
	})
	assert.NoError(t, err)
}

func TestUserService_Register_NormalizesEmail(t *testing.T) {
	f := newAuthFixtures(t)

	out := f.register(t, "  Alice@Example.COM ")
	assert.Equal(t, "alice@example.com", out.User.Email)

	// The normalized address can log in.
	f.login(t, "alice@example.com")
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	f := newAuthFixtures(t)

	f.register(t, "alice@example.com")

	_, err := f.userService.Register(context.Background(), usecase.RegisterInput{
		Email:    "alice@example.com",
		Password: "another long password",
	})
	assert.ErrorIs(t, err, domainerrors.ErrEmailAlreadyRegistered)
}

func TestUserService_Register_Validation(t *testing.T) {
	f := newAuthFixtures(t)

	_, err := f.userService.Register(context.Background(), usecase.RegisterInput{
		Email:    "not-an-email",
		Password: "long enough password",
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	_, err = f.userService.Register(context.Background(), usecase.RegisterInput{
		Email:    "alice@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestUserService_Login_IssuesTokensAndStoresSession(t *testing.T) {
	f := newAuthFixtures(t)
	registered := f.register(t, "alice@example.com")

	out := f.login(t, "alice@example.com")

	assert.NotEmpty(t, out.AccessToken)
	assert.NotEmpty(t, out.RefreshToken)
	assert.Equal(t, registered.User.ID, out.User.ID)

	// The access token validates back to the issuing user.
	userID, ok := f.tokenService.UserID(out.AccessToken)
	assert.True(t, ok)
	assert.Equal(t, registered.User.ID, userID)

	// A second session row appears next to the one opened at registration,
	// keyed by the new token's digest.
	require.Len(t, f.store.tokens, 2)

	found := false
	for _, token := range f.store.tokens {
		if token.TokenHash == f.tokenService.HashToken(out.RefreshToken) {
			found = true

			assert.Equal(t, registered.User.ID, token.UserID)
		}
	}
	assert.True(t, found, "the login session must be stored by digest")
}

func TestUserService_Login_WrongPasswordAndUnknownEmailFailIdentically(t *testing.T) {
	f := newAuthFixtures(t)
	f.register(t, "alice@example.com")

	_, wrongPassword := f.userService.Login(context.Background(), usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "wrong password entirely",
	})
	_, unknownEmail := f.userService.Login(context.Background(), usecase.LoginInput{
		Email:    "nobody@example.com",
		Password: "correct horse battery staple",
	})

	assert.ErrorIs(t, wrongPassword, domainerrors.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, domainerrors.ErrInvalidCredentials)
}

func TestUserService_Refresh_IssuesAccessTokenWithoutRotation(t *testing.T) {
	f := newAuthFixtures(t)
	registered := f.register(t, "alice@example.com")

	out, err := f.userService.Refresh(context.Background(), usecase.RefreshInput{
		RefreshToken: registered.RefreshToken,
	})
	require.NoError(t, err)

	userID, ok := f.tokenService.UserID(out.AccessToken)
	assert.True(t, ok)
	assert.Equal(t, registered.User.ID, userID)

	// The stored refresh token is not rotated; the same raw token keeps
	// working on subsequent refreshes.
	assert.Len(t, f.store.tokens, 1)

	_, err = f.userService.Refresh(context.Background(), usecase.RefreshInput{
		RefreshToken: registered.RefreshToken,
	})
	assert.NoError(t, err)
	assert.Len(t, f.store.tokens, 1)
}

func TestUserService_Refresh_UnknownToken(t *testing.T) {
	f := newAuthFixtures(t)
	f.register(t, "alice@example.com")

	_, err := f.userService.Refresh(context.Background(), usecase.RefreshInput{
		RefreshToken: "never-issued",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
}

func TestUserService_Refresh_ExpiredSessionIsDeleted(t *testing.T) {
	f := newAuthFixtures(t)
	registered := f.register(t, "alice@example.com")

	// Force the stored row past its expiry; the raw JWT is still valid.
	for _, token := range f.store.tokens {
		token.ExpiresAt = time.Now().Add(-time.Minute)
	}

	_, err := f.userService.Refresh(context.Background(), usecase.RefreshInput{
		RefreshToken: registered.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
	assert.Empty(t, f.store.tokens, "the expired row must be removed")

	// A retry with the same token now fails as unknown, not expired.
	_, err = f.userService.Refresh(context.Background(), usecase.RefreshInput{
		RefreshToken: registered.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
}

func TestUserService_Refresh_ExpiredTokenFailsVerification(t *testing.T) {
	// Both the JWT and the stored row are issued already expired, the common
	// shape of a naturally aged session. Verification runs before the store
	// lookup, so the failure is invalid_token and the row stays put.
	f := newAuthFixturesWithRefreshTTL(t, -time.Hour)
	registered := f.register(t, "alice@example.com")

	_, err := f.userService.Refresh(context.Background(), usecase.RefreshInput{
		RefreshToken: registered.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
	assert.Len(t, f.store.tokens, 1, "a token that fails verification must not touch the store")
}

func TestUserService_Refresh_RejectsAccessToken(t *testing.T) {
	f := newAuthFixtures(t)
	registered := f.register(t, "alice@example.com")

	// Plant a session row keyed by the ACCESS token's digest. The type claim
	// check must still reject it.
	for _, token := range f.store.tokens {
		token.TokenHash = f.tokenService.HashToken(registered.AccessToken)
		token.UserID = registered.User.ID
	}

	_, err := f.userService.Refresh(context.Background(), usecase.RefreshInput{
		RefreshToken: registered.AccessToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
}

func TestUserService_Logout_IsIdempotent(t *testing.T) {
	f := newAuthFixtures(t)
	registered := f.register(t, "alice@example.com")

	require.NoError(t, f.userService.Logout(context.Background(), usecase.LogoutInput{
		RefreshToken: registered.RefreshToken,
	}))
	assert.Empty(t, f.store.tokens)

	// Logging out an already-removed session is a no-op.
	assert.NoError(t, f.userService.Logout(context.Background(), usecase.LogoutInput{
		RefreshToken: registered.RefreshToken,
	}))

	// The session is gone, so refreshing fails.
	_, err := f.userService.Refresh(context.Background(), usecase.RefreshInput{
		RefreshToken: registered.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
}
