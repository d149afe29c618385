// Package registry tracks the single currently-valid refresh-token id per
// subject. It is the only server-side revocation point for refresh tokens;
// access tokens stay stateless and are never consulted here.
package registry

import "context"

// Registry is the refresh-token id store. At most one valid outstanding
// refresh token exists per subject: Insert overwrites unconditionally, so
// every rotation implicitly invalidates the previous token.
type Registry interface {
	// Insert records tokenID as the subject's current refresh-token id,
	// replacing whatever was there.
	Insert(ctx context.Context, subjectID, tokenID string) error

	// Validate reports whether tokenID is exactly the stored id for the
	// subject. A missing entry is not valid.
	Validate(ctx context.Context, subjectID, tokenID string) (bool, error)

	// Invalidate removes the subject's entry. Idempotent on missing keys.
	Invalidate(ctx context.Context, subjectID string) error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
