package guard

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/store"
)

const apiKeyPrefix = "ApiKey "

// APIKeyVerifier knows the wire format of issued keys. Satisfied by
// *service.APIKeyService.
type APIKeyVerifier interface {
	// ExtractUUID pulls the lookup identifier out of a presented key.
	ExtractUUID(apiKey string) (string, error)

	// Validate compares the presented key against a stored hash.
	Validate(apiKey, storedHash string) bool
}

// APIKeyStrategy authenticates "Authorization: ApiKey <key>" credentials.
// The key's embedded uuid locates the stored record; the record's hash is
// then checked against the full key, and the owning user supplies the
// principal.
type APIKeyStrategy struct {
	Verifier APIKeyVerifier
	Store    store.Store
}

func (s *APIKeyStrategy) Authenticate(ctx context.Context, creds Credentials) (domain.Principal, error) {
	raw, ok := strings.CutPrefix(creds.Authorization, apiKeyPrefix)
	if !ok || raw == "" {
		return domain.Principal{}, ErrUnauthorized
	}

	uuid, err := s.Verifier.ExtractUUID(raw)
	if err != nil {
		return domain.Principal{}, ErrUnauthorized
	}

	record, err := s.Store.APIKeys().GetAPIKeyByUUID(ctx, uuid)
	if err != nil {
		return domain.Principal{}, ErrUnauthorized
	}

	if !s.Verifier.Validate(raw, record.SecretHash) {
		return domain.Principal{}, ErrUnauthorized
	}

	owner, err := s.Store.Users().GetUserByID(ctx, record.OwnerID)
	if err != nil {
		return domain.Principal{}, ErrUnauthorized
	}

	return domain.PrincipalFromUser(owner), nil
}
