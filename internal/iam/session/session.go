// Package session implements server-side cookie sessions: an opaque random
// id handed to the browser, with the principal held in Redis under the
// id's fingerprint. This is the stateful alternative to bearer tokens for
// browser clients; it sits outside the strategy dispatcher on purpose.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/domain"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/redis/go-redis/v9"
)

// CookieName is the session cookie issued on session sign-in.
const CookieName = "gatekeeper_session"

const keyPrefix = "iam:sess:"

var ErrNotFound = errors.New("session: not found")

type Session struct {
	// ID is the opaque value in the cookie. Never stored: Redis keys use
	// its fingerprint, so a dump of the store yields no usable cookies.
	ID string `json:"-"`

	Principal domain.Principal `json:"principal"`
	CreatedAt time.Time        `json:"created_at"`
}

// Store keeps sessions in Redis with a sliding-free fixed TTL.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore builds a session store on an injected Redis client. The caller
// owns the client's lifecycle.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Create mints a fresh session for the principal and persists it.
func (s *Store) Create(ctx context.Context, p domain.Principal) (Session, error) {
	id, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return Session{}, err
	}

	sess := Session{
		ID:        id,
		Principal: p,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return Session{}, err
	}

	if err := s.rdb.Set(ctx, key(id), data, s.ttl).Err(); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Get resolves a presented session id. Missing or expired sessions return
// ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	data, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, err
	}
	sess.ID = id
	return sess, nil
}

// Delete removes a session. Idempotent on missing ids.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, key(id)).Err()
}

func key(id string) string {
	return keyPrefix + cryptox.FingerprintToken(id)
}
