package repository

import (
	"context"
	"errors"

	"garage/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrRefreshTokenNotFound is returned when a refresh token is not found.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository defines the persistence contract for refresh tokens,
// which double as user sessions. Rows are keyed by the SHA-256 digest of the
// raw token; the raw token itself is never stored.
type RefreshTokenRepository interface {
	// Create persists a new refresh token, representing a user session.
	Create(ctx context.Context, token *entity.RefreshToken) error

	// FindByHash retrieves a refresh token record by its stored digest.
	// Expired rows are still returned; expiry policy (delete + typed failure)
	// belongs to the caller.
	FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// FindByID retrieves a refresh token record by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.RefreshToken, error)

	// FindByUserID retrieves all refresh tokens for a user, newest first.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error)

	// DeleteByID removes a refresh token by its ID, ending one session.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// DeleteByHash removes a refresh token by its digest, ending one session.
	DeleteByHash(ctx context.Context, tokenHash string) error

	// DeleteByUserID removes all refresh tokens for a user
	// ("log out everywhere").
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired removes all expired refresh tokens and reports how many
	// rows went away. Called periodically for cleanup.
	DeleteExpired(ctx context.Context) (int64, error)

	// CountActiveByUserID returns the number of non-expired sessions for a user.
	CountActiveByUserID(ctx context.Context, userID uuid.UUID) (int, error)
}
