package guard

import (
	"testing"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/domain"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	admin := domain.Principal{Sub: "a", Role: domain.RoleAdmin}
	regular := domain.Principal{Sub: "r", Role: domain.RoleRegular}

	t.Run("no roles declared admits anyone", func(t *testing.T) {
		require.NoError(t, Authorize(regular, nil))
		require.NoError(t, Authorize(admin, []domain.Role{}))
	})

	t.Run("matching role admits", func(t *testing.T) {
		require.NoError(t, Authorize(admin, []domain.Role{domain.RoleAdmin}))
		require.NoError(t, Authorize(regular, []domain.Role{domain.RoleAdmin, domain.RoleRegular}))
	})

	t.Run("missing role rejects", func(t *testing.T) {
		require.ErrorIs(t, Authorize(regular, []domain.Role{domain.RoleAdmin}), ErrForbidden)
	})

	t.Run("zero principal rejects when roles declared", func(t *testing.T) {
		require.ErrorIs(t, Authorize(domain.Principal{}, []domain.Role{domain.RoleRegular}), ErrForbidden)
	})
}
