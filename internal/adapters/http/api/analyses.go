package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

// AnalysesDependencies defines the interface for reading analyses.
type AnalysesDependencies interface {
	Analyses(ctx context.Context) ([]model.Analysis, error)
}

// analysisResponse is the read shape of one analysed screenshot.
type analysisResponse struct {
	ID          string    `json:"id"`
	TakenAt     time.Time `json:"taken_at"`
	PlayerCount int       `json:"player_count"`
	Victor      string    `json:"victor,omitempty"`
	Light       string    `json:"light"`
	Dark        string    `json:"dark"`
	Coverage    float64   `json:"coverage"`
}

// AnalysesHandler handles analyses requests.
type AnalysesHandler struct {
	deps AnalysesDependencies
}

// NewAnalysesHandler creates a new analyses handler.
func NewAnalysesHandler(deps AnalysesDependencies) *AnalysesHandler {
	return &AnalysesHandler{deps: deps}
}

// HandleGetAnalyses handles GET /analyses[?victor=name] requests.
func (h *AnalysesHandler) HandleGetAnalyses(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_analyses"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	analyses, err := h.deps.Analyses(r.Context())
	if err != nil {
		writeReadError(w, op, err)
		return
	}

	victor, filter := r.URL.Query().Get("victor"), r.URL.Query().Has("victor")
	out := make([]analysisResponse, 0, len(analyses))
	for _, a := range analyses {
		if filter && a.Victor != victor {
			continue
		}
		out = append(out, analysisResponse{
			ID:          a.Screenshot.ID,
			TakenAt:     a.Screenshot.TakenAt,
			PlayerCount: a.PlayerCount,
			Victor:      a.Victor,
			Light:       a.Palette.Light.String(),
			Dark:        a.Palette.Dark.String(),
			Coverage:    a.Coverage,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
