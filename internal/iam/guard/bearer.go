package guard

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/domain"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
)

const bearerPrefix = "Bearer "

// TokenVerifier verifies a compact JWS and returns its claims. Satisfied
// by *jwtx.Signer.
type TokenVerifier interface {
	Verify(token string) (jwtx.Claims, error)
}

// BearerStrategy authenticates "Authorization: Bearer <jwt>" access
// tokens.
type BearerStrategy struct {
	Verifier TokenVerifier
}

func (s *BearerStrategy) Authenticate(_ context.Context, creds Credentials) (domain.Principal, error) {
	token, ok := strings.CutPrefix(creds.Authorization, bearerPrefix)
	if !ok || token == "" {
		return domain.Principal{}, ErrUnauthorized
	}

	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return domain.Principal{}, ErrUnauthorized
	}
	if claims.IsRefresh() {
		// Refresh tokens only redeem at the refresh endpoint; they never
		// authenticate a request.
		return domain.Principal{}, ErrUnauthorized
	}

	return domain.Principal{
		Sub:   claims.Subject,
		Email: claims.Email,
		Role:  domain.Role(claims.Role),
	}, nil
}
