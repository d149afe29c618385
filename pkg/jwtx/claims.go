package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Short-lived access tokens limit the blast radius of a
// leaked token; the refresh token carries the long-lived session.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the single claims shape used for both access and refresh
// tokens. Access tokens carry Email and Role; refresh tokens carry TID
// (the server-tracked rotation id) and nothing else beyond the subject.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the authenticated user (access tokens only).
	Email string `json:"email,omitempty"`

	// Role name of the authenticated user (access tokens only).
	Role string `json:"role,omitempty"`

	// TID is the refresh-token rotation id (refresh tokens only). Its
	// presence is what distinguishes a refresh token from an access token.
	TID string `json:"tid,omitempty"`
}

// IsRefresh reports whether the claims describe a refresh token.
func (c *Claims) IsRefresh() bool { return c.TID != "" }

// NewAccessClaims builds claims for a short-lived access token.
func NewAccessClaims(
	subject, email, role string,
	ttl time.Duration,
	issuer, audience string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: registered(subject, ttl, issuer, audience, now),
		Email:            email,
		Role:             role,
	}
}

// NewRefreshClaims builds claims for a refresh token bound to tokenID. The
// tokenID must also be recorded server-side for the token to be redeemable.
func NewRefreshClaims(
	subject, tokenID string,
	ttl time.Duration,
	issuer, audience string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: registered(subject, ttl, issuer, audience, now),
		TID:              tokenID,
	}
}

func registered(subject string, ttl time.Duration, issuer, audience string, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        NewJTI(),
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
