package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// AdminHandler exposes the admin-only user listing.
type AdminHandler struct {
	Store store.Store
}

type adminUserSummary struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	OTPEnabled bool      `json:"otp_enabled"`
	CreatedAt  time.Time `json:"created_at"`
}

// HandleListUsers handles GET /v1/admin/users.
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	records, err := h.Store.Users().ListUsers(ctx)
	if err != nil {
		log.Error("admin user list failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not list users")
		return
	}

	users := make([]adminUserSummary, 0, len(records))
	for _, u := range records {
		users = append(users, adminUserSummary{
			ID:         u.ID,
			Email:      u.Email,
			Role:       string(u.Role),
			OTPEnabled: u.OTPEnabled,
			CreatedAt:  u.CreatedAt,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}
