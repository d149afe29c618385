package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/guard"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// APIKeysHandler mints and lists the caller's API keys.
type APIKeysHandler struct {
	APIKeyService *service.APIKeyService
}

type apiKeyMintResponse struct {
	// Key is the raw credential, shown exactly once.
	Key  string `json:"key"`
	ID   string `json:"id"`
	UUID string `json:"uuid"`
}

type apiKeySummary struct {
	ID        string    `json:"id"`
	UUID      string    `json:"uuid"`
	CreatedAt time.Time `json:"created_at"`
}

// HandleMint handles POST /v1/api-keys.
func (h *APIKeysHandler) HandleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principal := guard.PrincipalFromContext(ctx)

	raw, record, err := h.APIKeyService.Mint(ctx, principal.Sub)
	if err != nil {
		log.Error("api key mint failed", "user_id", principal.Sub, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not mint api key")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, apiKeyMintResponse{
		Key:  raw,
		ID:   record.ID,
		UUID: record.UUID,
	})
}

// HandleList handles GET /v1/api-keys. Raw keys are never included.
func (h *APIKeysHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principal := guard.PrincipalFromContext(ctx)

	records, err := h.APIKeyService.ListForOwner(ctx, principal.Sub)
	if err != nil {
		log.Error("api key list failed", "user_id", principal.Sub, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not list api keys")
		return
	}

	keys := make([]apiKeySummary, 0, len(records))
	for _, rec := range records {
		keys = append(keys, apiKeySummary{
			ID:        rec.ID,
			UUID:      rec.UUID,
			CreatedAt: rec.CreatedAt,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"api_keys": keys})
}
