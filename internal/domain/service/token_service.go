package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes the two kinds of tokens the service signs.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims defines the custom claims for the JWT tokens.
type Claims struct {
	UserID uuid.UUID `json:"uid"`
	Type   TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateTokens creates a new access token and refresh token for a user.
	GenerateTokens(userID uuid.UUID) (accessToken string, refreshToken string, err error)

	// GenerateAccessToken creates only a new access token, used by the refresh
	// flow where the refresh token itself stays untouched.
	GenerateAccessToken(userID uuid.UUID) (string, error)

	// ValidateToken checks signature, issuer, audience and expiry of a token
	// string and returns its claims.
	ValidateToken(tokenString string) (*Claims, error)

	// TokenType returns the type of a valid token; ok is false when
	// verification fails.
	TokenType(tokenString string) (tokenType TokenType, ok bool)

	// UserID returns the user id carried by a valid token; ok is false when
	// verification fails.
	UserID(tokenString string) (userID uuid.UUID, ok bool)

	// HashToken returns the deterministic digest under which a token is
	// persisted, so raw tokens never reach storage.
	HashToken(tokenString string) string

	// RefreshTokenTTL returns the configured refresh-token lifetime.
	RefreshTokenTTL() time.Duration
}
