package http

import (
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/guard"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// OTPHandler handles TOTP enrollment.
type OTPHandler struct {
	OTPService *service.OTPService
}

type otpEnrollResponse struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
}

// HandleEnroll handles POST /v1/auth/2fa/enroll. From the next sign-in on,
// the subject must present a valid code alongside their password.
func (h *OTPHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principal := guard.PrincipalFromContext(ctx)

	secret, uri, err := h.OTPService.Enroll(ctx, principal.Sub, principal.Email)
	if err != nil {
		log.Error("2fa enrollment failed", "user_id", principal.Sub, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not enroll")
		return
	}

	// The secret is shown once; it is never retrievable again.
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, otpEnrollResponse{Secret: secret, URI: uri})
}
