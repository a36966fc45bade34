package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeAccess marks access tokens in the token_type claim.
const TokenTypeAccess = "access"

// HeaderAccessToken carries a freshly issued token on authenticated responses.
const HeaderAccessToken = "X-Access-Token"

var (
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrInvalidToken indicates a bearer token that failed verification.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrMissingToken indicates an unauthenticated request.
	ErrMissingToken = errors.New("auth: missing token")
)

// Claims is the JWT payload of an access token.
type Claims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}
