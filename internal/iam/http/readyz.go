package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/registry"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
)

// ReadyzHandler is the readiness probe: it checks both backing stores,
// since the service cannot authenticate anyone without them.
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	reg registry.Registry,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &healthChecks{
			Database: "ok",
			Registry: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := reg.Ping(r.Context()); err != nil {
			checks.Registry = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, healthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
