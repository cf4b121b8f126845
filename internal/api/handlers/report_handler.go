package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
)

// maxReportBodyBytes bounds the report payload
const maxReportBodyBytes = 64 << 10

// ReportValidator checks a report payload
type ReportValidator interface {
	Validate(ctx context.Context, input entities.ReportInput) (*entities.ReportInput, error)
}

// ReportHandler handles report payload validation requests
type ReportHandler struct {
	reports ReportValidator
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports ReportValidator) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ValidateReport handles POST /api/reports/validate
func (h *ReportHandler) ValidateReport(w http.ResponseWriter, r *http.Request) {
	var input entities.ReportInput
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReportBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.reports.Validate(r.Context(), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"valid":  true,
		"report": report,
	})
}
