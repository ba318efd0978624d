// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"garage/internal/domain/entity"
	domainerrors "garage/internal/domain/errors"
	"garage/internal/domain/repository"
	"garage/internal/domain/service"
	"garage/internal/logctx"
	"garage/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const minPasswordLength = 8

// userService implements the UserUsecase interface.
type userService struct {
	txManager    repository.TransactionManager
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// UserServiceParams holds dependencies for userService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		txManager:    params.TxManager,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return logctx.LoggerOrDefault(ctx, srv.logger)
}

// Register creates a new account with a hashed password and opens its first
// session, returning a token pair just like Login. The duplicate check, the
// insert and the session row run in one transaction so two concurrent
// registrations of the same email cannot both succeed.
func (srv *userService) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("a valid email address is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("password is too short")
	}

	srv.log(ctx).Info("Starting registration", slog.String("email", email))

	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	newUser := &entity.User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: passwordHash,
	}

	var accessToken, refreshToken string
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		_, err := userRepo.FindByEmail(ctx, email)
		if err == nil {
			return domainerrors.ErrEmailAlreadyRegistered
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to check email availability")
		}

		if err := userRepo.Create(ctx, newUser); err != nil {
			return err
		}

		accessToken, refreshToken, err = srv.tokenService.GenerateTokens(newUser.ID)
		if err != nil {
			return errors.Wrap(err, "failed to generate tokens")
		}

		session := &entity.RefreshToken{
			UserID:    newUser.ID,
			TokenHash: srv.tokenService.HashToken(refreshToken),
			ExpiresAt: time.Now().Add(srv.tokenService.RefreshTokenTTL()),
		}

		return errors.Wrap(repoFactory.RefreshTokenRepo().Create(ctx, session), "failed to store refresh token")
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("email", email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", newUser.ID))

	return &usecase.RegisterOutput{
		User:         newUser,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Login verifies the credentials and opens a new session: an access token for
// the client plus a stored refresh token. A missing account and a wrong
// password fail identically.
func (srv *userService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var out *usecase.LoginOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.UserRepo().FindByEmail(ctx, email)
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrInvalidCredentials
		}
		if err != nil {
			return errors.Wrap(err, "failed to load user for login")
		}

		if !srv.hasher.Check(input.Password, user.PasswordHash) {
			return domainerrors.ErrInvalidCredentials
		}

		accessToken, refreshToken, err := srv.tokenService.GenerateTokens(user.ID)
		if err != nil {
			return errors.Wrap(err, "failed to generate tokens")
		}

		session := &entity.RefreshToken{
			UserID:    user.ID,
			TokenHash: srv.tokenService.HashToken(refreshToken),
			ExpiresAt: time.Now().Add(srv.tokenService.RefreshTokenTTL()),
		}
		if err := repoFactory.RefreshTokenRepo().Create(ctx, session); err != nil {
			return errors.Wrap(err, "failed to store refresh token")
		}

		out = &usecase.LoginOutput{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			User:         user,
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Login succeeded", slog.Any("userID", out.User.ID))

	return out, nil
}

// Refresh exchanges a stored, unexpired refresh token for a new access token.
// The refresh token itself is not rotated: the stored row stays valid until
// it expires or the session is revoked, so a client can refresh repeatedly
// with the same token.
func (srv *userService) Refresh(ctx context.Context, input usecase.RefreshInput) (*usecase.RefreshOutput, error) {
	// Verify the presented token before touching storage: a token that fails
	// signature, expiry or type checks never reaches the session table.
	claims, err := srv.tokenService.ValidateToken(input.RefreshToken)
	if err != nil || claims.Type != service.TokenTypeRefresh {
		srv.log(ctx).Warn("Token refresh failed", slog.Any("error", domainerrors.ErrInvalidToken))

		return nil, domainerrors.ErrInvalidToken
	}

	tokenHash := srv.tokenService.HashToken(input.RefreshToken)

	var out *usecase.RefreshOutput
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenRepo := repoFactory.RefreshTokenRepo()

		stored, err := tokenRepo.FindByHash(ctx, tokenHash)
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return domainerrors.ErrInvalidToken
		}
		if err != nil {
			return errors.Wrap(err, "failed to look up refresh token")
		}

		// The stored row can expire ahead of the JWT when the session was
		// shortened server-side; the row is dropped so the same token cannot
		// be retried.
		if stored.ExpiresAt.Before(time.Now()) {
			if delErr := tokenRepo.DeleteByID(ctx, stored.ID); delErr != nil && !errors.Is(delErr, repository.ErrRefreshTokenNotFound) {
				return errors.Wrap(delErr, "failed to delete expired refresh token")
			}

			return domainerrors.ErrTokenExpired
		}

		if claims.UserID != stored.UserID {
			return domainerrors.ErrInvalidToken
		}

		accessToken, err := srv.tokenService.GenerateAccessToken(stored.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to generate access token")
		}

		out = &usecase.RefreshOutput{AccessToken: accessToken}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Token refresh failed", slog.Any("error", err))

		return nil, err
	}

	return out, nil
}

// Logout ends the session identified by the refresh token. Logging out an
// already-unknown token is a no-op, not an error.
func (srv *userService) Logout(ctx context.Context, input usecase.LogoutInput) error {
	tokenHash := srv.tokenService.HashToken(input.RefreshToken)

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		err := repoFactory.RefreshTokenRepo().DeleteByHash(ctx, tokenHash)
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return nil
		}

		return err
	})
	if err != nil {
		srv.log(ctx).Warn("Logout failed", slog.Any("error", err))

		return errors.Wrap(err, "failed to delete session")
	}

	return nil
}
