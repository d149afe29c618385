package domain

import "time"

// APIKey is the stored record for an issued API key. The raw key material
// is handed to the owner exactly once at mint time and is not recoverable:
// only its hash is kept.
type APIKey struct {
	ID         string // internal ULID
	UUID       string // external identifier embedded in the issued key
	SecretHash string // argon2id hash of the full issued key
	OwnerID    string // user the key authenticates as
	CreatedAt  time.Time
}
