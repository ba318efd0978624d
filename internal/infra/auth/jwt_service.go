package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"garage/config"
	"garage/internal/domain/service"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// jwtService is a concrete implementation of the TokenService interface using
// the JWT standard (HS256 over a single signing secret).
type jwtService struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTService constructs a jwtService from configuration. A missing secret
// is a hard error: signature checking must never be silently disabled.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg == nil || cfg.Auth == nil || cfg.Auth.Secret == "" {
		return nil, errors.New("jwt signing secret must be provided")
	}

	accessTTL := cfg.Auth.AccessTokenTTL
	if accessTTL == 0 {
		accessTTL = defaultAccessTokenTTL
	}
	refreshTTL := cfg.Auth.RefreshTokenTTL
	if refreshTTL == 0 {
		refreshTTL = defaultRefreshTokenTTL
	}

	return &jwtService{
		secret:     []byte(cfg.Auth.Secret),
		issuer:     cfg.Auth.Issuer,
		audience:   cfg.Auth.Audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// GenerateTokens creates a new access token and refresh token for a user.
func (s *jwtService) GenerateTokens(userID uuid.UUID) (accessToken string, refreshToken string, err error) {
	accessToken, err = s.generateToken(userID, service.TokenTypeAccess, s.accessTTL)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = s.generateToken(userID, service.TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// GenerateAccessToken creates only a new access token.
func (s *jwtService) GenerateAccessToken(userID uuid.UUID) (string, error) {
	return s.generateToken(userID, service.TokenTypeAccess, s.accessTTL)
}

// ValidateToken checks signature, issuer, audience and expiry, returning the
// token's claims. Expired-but-well-formed tokens fail here; the jwt library
// enforces exp itself.
func (s *jwtService) ValidateToken(tokenString string) (*service.Claims, error) {
	claims := &service.Claims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token")
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	return claims, nil
}

// TokenType returns the type of a valid token.
func (s *jwtService) TokenType(tokenString string) (service.TokenType, bool) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", false
	}

	return claims.Type, true
}

// UserID returns the user id carried by a valid token.
func (s *jwtService) UserID(tokenString string) (uuid.UUID, bool) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, false
	}

	return claims.UserID, true
}

// HashToken returns the SHA-256 hex digest under which a token is persisted.
// The digest is deterministic so stored sessions can be looked up by hash.
func (s *jwtService) HashToken(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))

	return hex.EncodeToString(sum[:])
}

// RefreshTokenTTL returns the configured refresh-token lifetime.
func (s *jwtService) RefreshTokenTTL() time.Duration {
	return s.refreshTTL
}

// generateToken is a private helper to create a JWT with specific claims.
func (s *jwtService) generateToken(userID uuid.UUID, tokenType service.TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := service.Claims{
		UserID: userID,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(s.secret)
}
