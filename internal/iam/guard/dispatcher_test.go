package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/domain"
	"github.com/stretchr/testify/require"
)

type stubStrategy struct {
	principal domain.Principal
	err       error
	calls     int
}

func (s *stubStrategy) Authenticate(context.Context, Credentials) (domain.Principal, error) {
	s.calls++
	return s.principal, s.err
}

type panicStrategy struct{}

func (panicStrategy) Authenticate(context.Context, Credentials) (domain.Principal, error) {
	panic("boom")
}

func TestDispatcherFirstSuccessWins(t *testing.T) {
	bearer := &stubStrategy{principal: domain.Principal{Sub: "via-bearer"}}
	apiKey := &stubStrategy{principal: domain.Principal{Sub: "via-api-key"}}

	d := NewDispatcher(map[AuthType]Strategy{
		AuthTypeBearer: bearer,
		AuthTypeAPIKey: apiKey,
	})

	p, err := d.Authenticate(context.Background(), Credentials{}, []AuthType{AuthTypeBearer, AuthTypeAPIKey})
	require.NoError(t, err)
	require.Equal(t, "via-bearer", p.Sub)

	// Declaration order decides, and later strategies never run.
	require.Equal(t, 1, bearer.calls)
	require.Equal(t, 0, apiKey.calls)
}

func TestDispatcherFallsThroughToNext(t *testing.T) {
	bearer := &stubStrategy{err: ErrUnauthorized}
	apiKey := &stubStrategy{principal: domain.Principal{Sub: "via-api-key"}}

	d := NewDispatcher(map[AuthType]Strategy{
		AuthTypeBearer: bearer,
		AuthTypeAPIKey: apiKey,
	})

	p, err := d.Authenticate(context.Background(), Credentials{}, []AuthType{AuthTypeBearer, AuthTypeAPIKey})
	require.NoError(t, err)
	require.Equal(t, "via-api-key", p.Sub)
	require.Equal(t, 1, bearer.calls)
}

func TestDispatcherReportsLastFailure(t *testing.T) {
	errBearer := errors.New("bearer says no")
	errAPIKey := errors.New("api key says no")

	d := NewDispatcher(map[AuthType]Strategy{
		AuthTypeBearer: &stubStrategy{err: errBearer},
		AuthTypeAPIKey: &stubStrategy{err: errAPIKey},
	})

	_, err := d.Authenticate(context.Background(), Credentials{}, []AuthType{AuthTypeBearer, AuthTypeAPIKey})
	require.ErrorIs(t, err, errAPIKey)
}

func TestDispatcherDefaultsToBearer(t *testing.T) {
	bearer := &stubStrategy{err: ErrUnauthorized}

	d := NewDispatcher(map[AuthType]Strategy{
		AuthTypeBearer: bearer,
	})

	_, err := d.Authenticate(context.Background(), Credentials{}, nil)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, 1, bearer.calls)
}

func TestDispatcherNoneAlwaysPasses(t *testing.T) {
	d := NewDispatcher(map[AuthType]Strategy{
		AuthTypeBearer: &stubStrategy{err: ErrUnauthorized},
		AuthTypeNone:   NoneStrategy{},
	})

	p, err := d.Authenticate(context.Background(), Credentials{}, []AuthType{AuthTypeBearer, AuthTypeNone})
	require.NoError(t, err)
	require.True(t, p.IsZero())
}

func TestDispatcherUnknownType(t *testing.T) {
	d := NewDispatcher(map[AuthType]Strategy{})

	_, err := d.Authenticate(context.Background(), Credentials{}, []AuthType{AuthType("saml")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "saml")
}

func TestDispatcherContainsPanics(t *testing.T) {
	d := NewDispatcher(map[AuthType]Strategy{
		AuthTypeBearer: panicStrategy{},
		AuthTypeNone:   NoneStrategy{},
	})

	// A panicking strategy counts as a failed attempt, not a crash.
	_, err := d.Authenticate(context.Background(), Credentials{}, []AuthType{AuthTypeBearer})
	require.ErrorIs(t, err, ErrUnauthorized)

	// And the next declared strategy still gets its turn.
	p, err := d.Authenticate(context.Background(), Credentials{}, []AuthType{AuthTypeBearer, AuthTypeNone})
	require.NoError(t, err)
	require.True(t, p.IsZero())
}
