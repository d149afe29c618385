package http

import (
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/guard"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// UserInfoHandler returns the authenticated subject's own record.
type UserInfoHandler struct {
	Store store.Store
}

type userInfoResponse struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	OTPEnabled bool   `json:"otp_enabled"`
}

// HandleGet handles GET /v1/userinfo.
func (h *UserInfoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principal := guard.PrincipalFromContext(ctx)

	// Read through to the store so the response reflects current state,
	// not whatever the access token was signed over.
	user, err := h.Store.Users().GetUserByID(ctx, principal.Sub)
	if err != nil {
		log.Error("userinfo lookup failed", "user_id", principal.Sub, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not load user")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userInfoResponse{
		Sub:        user.ID,
		Email:      user.Email,
		Role:       string(user.Role),
		OTPEnabled: user.OTPEnabled,
	})
}
