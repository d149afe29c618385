package guard

import (
	"context"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/domain"
)

// NoneStrategy is the public-route strategy: it always succeeds and
// resolves no principal. Declaring it alongside Bearer or ApiKey makes
// those strategies optional for the route.
type NoneStrategy struct{}

func (NoneStrategy) Authenticate(context.Context, Credentials) (domain.Principal, error) {
	return domain.Principal{}, nil
}
