package guard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/domain"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// DefaultAuthTypes applies to routes that declare no auth types at all.
var DefaultAuthTypes = []AuthType{AuthTypeBearer}

// Dispatcher fans a request's credentials across the auth types a route
// declares. Strategies run in declaration order; the first success wins
// and its principal stands. If every strategy fails, the last failure is
// the one reported.
type Dispatcher struct {
	strategies map[AuthType]Strategy
}

// NewDispatcher wires one strategy per auth type.
func NewDispatcher(strategies map[AuthType]Strategy) *Dispatcher {
	return &Dispatcher{strategies: strategies}
}

// Authenticate resolves the credentials against the declared types.
func (d *Dispatcher) Authenticate(ctx context.Context, creds Credentials, types []AuthType) (domain.Principal, error) {
	if len(types) == 0 {
		types = DefaultAuthTypes
	}

	lastErr := ErrUnauthorized
	for _, t := range types {
		strategy, ok := d.strategies[t]
		if !ok {
			return domain.Principal{}, fmt.Errorf("guard: no strategy registered for auth type %q", t)
		}

		principal, err := d.try(ctx, strategy, creds)
		if err == nil {
			return principal, nil
		}
		lastErr = err
	}

	return domain.Principal{}, lastErr
}

// try runs one strategy, containing any panic so a misbehaving strategy
// reads as a failed attempt rather than taking the request down.
func (d *Dispatcher) try(ctx context.Context, s Strategy, creds Credentials) (principal domain.Principal, err error) {
	defer func() {
		if r := recover(); r != nil {
			slogx.FromContext(ctx).Error("auth strategy panicked", slog.Any("panic", r))
			principal = domain.Principal{}
			err = ErrUnauthorized
		}
	}()

	return s.Authenticate(ctx, creds)
}
