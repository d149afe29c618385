package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/google/uuid"
)

var ErrMalformedAPIKey = errors.New("malformed_api_key")

// APIKeyService mints and verifies API keys. An issued key is
// base64("<external uuid> <random nonce>"): the uuid half lets the
// verifier find the stored record without a secondary index, the nonce
// half is the actual secret. Only the hash of the full key is persisted.
type APIKeyService struct {
	Store store.Store
}

// Mint issues a new API key owned by ownerID. The raw key is returned to
// the caller exactly once; it cannot be recovered afterwards.
func (s *APIKeyService) Mint(ctx context.Context, ownerID string) (string, domain.APIKey, error) {
	externalUUID := uuid.NewString()
	nonce := uuid.NewString()

	raw := base64.StdEncoding.EncodeToString([]byte(externalUUID + " " + nonce))

	hash, err := cryptox.HashSecret(raw)
	if err != nil {
		return "", domain.APIKey{}, err
	}

	record := domain.APIKey{
		ID:         idx.New().String(),
		UUID:       externalUUID,
		SecretHash: hash,
		OwnerID:    ownerID,
	}

	if err := s.Store.APIKeys().CreateAPIKey(ctx, record); err != nil {
		return "", domain.APIKey{}, err
	}

	return raw, record, nil
}

// ListForOwner returns the owner's key records. Hashes only; the raw keys
// are gone.
func (s *APIKeyService) ListForOwner(ctx context.Context, ownerID string) ([]domain.APIKey, error) {
	return s.Store.APIKeys().ListAPIKeysByOwner(ctx, ownerID)
}

// ExtractUUID pulls the external identifier out of a presented key without
// verifying anything. It is a lookup hint only, never proof of identity.
func (s *APIKeyService) ExtractUUID(apiKey string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(apiKey)
	if err != nil {
		return "", ErrMalformedAPIKey
	}

	id, _, found := strings.Cut(string(decoded), " ")
	if !found || id == "" {
		return "", ErrMalformedAPIKey
	}
	return id, nil
}

// Validate compares the full presented key against the stored hash.
// Constant-effort with respect to the key content.
func (s *APIKeyService) Validate(apiKey, storedHash string) bool {
	return cryptox.VerifySecret(apiKey, storedHash) == nil
}
