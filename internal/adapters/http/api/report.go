package api

import (
	"net/http"

	service "github.com/okian/podium/internal/app"
)

// ReportDependencies defines the interface for reading the latest report.
type ReportDependencies interface {
	LastReport() (service.Report, bool)
}

// ReportHandler handles report requests.
type ReportHandler struct {
	deps ReportDependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps ReportDependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

// HandleGetReport handles GET /report requests.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_report"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	report, ok := h.deps.LastReport()
	if !ok {
		writeError(w, http.StatusNotFound, "no_report", NewKind(op, ErrNoReport))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
