package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/service"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/session"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// SessionHandler handles the cookie-based browser flow.
type SessionHandler struct {
	SessionService *service.SessionService
	TTL            time.Duration
}

type sessionSignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	OTPCode  string `json:"otp_code,omitempty"`
}

// HandleSignIn handles POST /v1/session/sign-in.
func (h *SessionHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req sessionSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	sess, err := h.SessionService.SignIn(ctx, req.Email, req.Password, req.OTPCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound),
			errors.Is(err, service.ErrInvalidCredentials),
			errors.Is(err, service.ErrInvalidOTPCode):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "authentication failed")
		default:
			log.Error("session sign-in failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not sign in")
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(h.TTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe handles GET /v1/session/me.
func (h *SessionHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "no session")
		return
	}

	principal, err := h.SessionService.Resolve(ctx, cookie.Value)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "session expired")
			return
		}
		slogx.FromContext(ctx).Error("session lookup failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not load session")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, principal)
}

// HandleSignOut handles POST /v1/session/sign-out. Always clears the
// cookie, even when no live session backs it.
func (h *SessionHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cookie, err := r.Cookie(session.CookieName); err == nil {
		if err := h.SessionService.SignOut(ctx, cookie.Value); err != nil {
			slogx.FromContext(ctx).Error("session sign-out failed", "err", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
