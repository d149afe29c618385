package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface for persistent state (users and
// API keys). Refresh-token state lives in the registry package, not here:
// it is ephemeral single-slot data and wants a different store.
type Store interface {
	Users() Users
	APIKeys() APIKeys

	// ApplyMigrations applies any pending schema migrations. Uses the
	// migration files embedded in the binary.
	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during sign-in.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsers returns all users ordered by id (creation order).
	ListUsers(ctx context.Context) ([]domain.User, error)

	// EnableOTP stores the TOTP secret and flips otp_enabled in one
	// statement so sign-in never observes a half-enrolled user.
	EnableOTP(ctx context.Context, userID, secret string) error
}

type APIKeys interface {
	// CreateAPIKey stores a freshly minted key record.
	CreateAPIKey(ctx context.Context, k domain.APIKey) error

	// GetAPIKeyByUUID looks a record up by the external identifier
	// embedded in the presented key.
	GetAPIKeyByUUID(ctx context.Context, uuid string) (domain.APIKey, error)

	// ListAPIKeysByOwner returns a user's key records (hashes, not keys).
	ListAPIKeysByOwner(ctx context.Context, ownerID string) ([]domain.APIKey, error)
}
