package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
)

const minSecretLength = 32

// Signer issues and verifies HS256-signed tokens scoped to a fixed
// issuer/audience pair. The same instance handles both access and refresh
// tokens; they differ only in their claims and TTL.
type Signer struct {
	secret   []byte
	issuer   string
	audience string
}

// NewSigner builds a Signer from the process-wide signing secret. The
// secret must carry at least 256 bits so HS256 retains its full strength.
func NewSigner(secret []byte, issuer, audience string) (*Signer, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("jwtx: signing secret must be at least %d bytes", minSecretLength)
	}
	if issuer == "" || audience == "" {
		return nil, errors.New("jwtx: issuer and audience are required")
	}

	return &Signer{secret: secret, issuer: issuer, audience: audience}, nil
}

// Issuer returns the issuer claim value this signer issues and enforces.
func (s *Signer) Issuer() string { return s.issuer }

// Audience returns the audience claim value this signer issues and
// enforces.
func (s *Signer) Audience() string { return s.audience }

// Sign produces a compact HS256 JWS for the given claims.
func (s *Signer) Sign(c Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Verify parses and validates a token: signature, expiry/nbf, issuer and
// audience. On failure it returns one of the package sentinel errors so
// callers can distinguish why verification failed.
func (s *Signer) Verify(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	return claims, nil
}

// mapParseError collapses golang-jwt's joined errors into our sentinels.
// Order matters: a tampered token can report both malformed claims and a
// bad signature, and the signature failure is the more useful signal.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrAudience
	default:
		return ErrMalformed
	}
}
