package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired is returned when a token's expiry time has passed.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid is returned when a token is malformed or its signature
	// does not verify. It is distinguishable from ErrTokenExpired so callers
	// can show different messages.
	ErrTokenInvalid = errors.New("invalid token")
)

// Issuer defines the interface for session token issuance.
type Issuer interface {
	// IssueToken creates a signed token for the given user.
	IssueToken(userID uint) (string, error)
}

// Verifier defines the interface for session token verification.
type Verifier interface {
	// VerifyToken checks the token's signature and expiry and returns the
	// embedded user ID. Failures are ErrTokenExpired or ErrTokenInvalid.
	VerifyToken(token string) (uint, error)
}

// TokenService issues and verifies HS256-signed session tokens.
// The signing secret is injected once at construction and never mutated.
type TokenService struct {
	secret     []byte
	expiration time.Duration
}

var (
	_ Issuer   = (*TokenService)(nil)
	_ Verifier = (*TokenService)(nil)
)

// NewTokenService creates a TokenService with the provided secret and token lifetime.
func NewTokenService(secret string, expiration time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

// IssueToken creates a signed JWT with standard claims.
func (s *TokenService) IssueToken(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(s.expiration).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// VerifyToken parses and validates a JWT and returns the embedded user ID.
func (s *TokenService) VerifyToken(tokenStr string) (uint, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Check signing algorithm (only HMAC allowed)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}
	if !token.Valid {
		return 0, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrTokenInvalid
	}
	sub, ok := claims["sub"].(float64) // JWT numbers are decoded as float64
	if !ok {
		return 0, ErrTokenInvalid
	}
	return uint(sub), nil
}
