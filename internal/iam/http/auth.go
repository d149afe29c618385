package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/guard"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// AuthHandler handles the token-based auth endpoints.
type AuthHandler struct {
	AuthService *service.AuthService
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	OTPCode  string `json:"otp_code,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// HandleSignUp handles POST /v1/auth/sign-up.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	user, err := h.AuthService.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			httpx.WriteError(w, http.StatusConflict, "email_taken", "an account with this email already exists")
			return
		}
		log.Error("sign-up failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not create account")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]string{
		"id":    user.ID,
		"email": user.Email,
	})
}

// HandleSignIn handles POST /v1/auth/sign-in.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	pair, err := h.AuthService.SignIn(ctx, req.Email, req.Password, req.OTPCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusNotFound, "user_not_found", "no account with this email")
		case errors.Is(err, service.ErrInvalidCredentials),
			errors.Is(err, service.ErrInvalidOTPCode):
			// Same body for both so a probing client cannot tell which
			// factor failed.
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "authentication failed")
		default:
			log.Error("sign-in failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not sign in")
		}
		return
	}

	writeTokenPair(w, pair)
}

// HandleRefresh handles POST /v1/auth/refresh.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	pair, err := h.AuthService.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		// ErrReusedRefresh deliberately gets the same response as every
		// other failure; the distinction lives in the logs.
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_grant", "refresh token is invalid")
		return
	}

	writeTokenPair(w, pair)
}

// HandleSignOut handles POST /v1/auth/sign-out. Requires a valid access
// token; revokes the subject's refresh slot.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principal := guard.PrincipalFromContext(ctx)

	if err := h.AuthService.SignOut(ctx, principal.Sub); err != nil {
		log.Error("sign-out failed", "user_id", principal.Sub, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not sign out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeTokenPair(w http.ResponseWriter, pair domain.TokenPair) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	})
}
