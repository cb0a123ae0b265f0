package api

import (
	"net/http"

	service "github.com/okian/podium/internal/app"
)

// StatsProvider reports service settings and counters of the latest album pass.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves /stats.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if h.provider == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", Wrap("api.get_stats", service.ErrNotStarted))
		return
	}
	writeJSON(w, http.StatusOK, h.provider.GetStats())
}
