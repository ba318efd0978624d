package usecase

import (
	"context"

	"garage/internal/domain/entity"

	"github.com/google/uuid"
)

// SessionUsecase manages the stored refresh tokens that represent a user's
// active sessions.
type SessionUsecase interface {
	// ListSessions returns all of the user's sessions, newest first,
	// including already-expired ones flagged as inactive.
	ListSessions(ctx context.Context, userID uuid.UUID) ([]*entity.SessionInfo, error)

	// RevokeSession terminates one session by id, only when it belongs to
	// the user.
	RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error

	// RevokeAllSessions terminates every session of the user.
	RevokeAllSessions(ctx context.Context, userID uuid.UUID) error

	// CleanupExpiredSessions removes expired sessions storewide and reports
	// how many rows went away. Run periodically.
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}
