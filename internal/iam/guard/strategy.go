// Package guard resolves request credentials into a principal and enforces
// role requirements. Route declarations pick one or more auth types; the
// dispatcher tries each declared strategy in order and the first one to
// succeed wins.
package guard

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/domain"
)

// AuthType names a credential strategy a route can accept.
type AuthType string

const (
	AuthTypeBearer AuthType = "bearer"
	AuthTypeAPIKey AuthType = "api_key"
	AuthTypeNone   AuthType = "none"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Credentials is the raw material a strategy works from. Strategies pull
// what they need and ignore the rest.
type Credentials struct {
	// Authorization is the raw Authorization header, scheme prefix
	// included.
	Authorization string
}

// CredentialsFromRequest extracts the credential material from a request.
func CredentialsFromRequest(r *http.Request) Credentials {
	return Credentials{Authorization: r.Header.Get("Authorization")}
}

// Strategy authenticates one kind of credential. A strategy failing means
// "these credentials did not satisfy me", not "reject the request": the
// dispatcher may still try the next declared strategy.
type Strategy interface {
	Authenticate(ctx context.Context, creds Credentials) (domain.Principal, error)
}
