package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	querysvc "github.com/zatekoja/doctordirectory/backend/internal/query/services"
)

// DirectoryService is the read side the doctor handlers depend on
type DirectoryService interface {
	List(ctx context.Context, state entities.FilterState) (*querysvc.DirectoryListing, error)
	GetDoctor(ctx context.Context, fakeID string) (*entities.JoinedDoctor, error)
	FindByRoute(ctx context.Context, key entities.RouteKey) ([]entities.JoinedDoctor, error)
	Paths(ctx context.Context) ([]entities.RouteKey, error)
	Dataset(ctx context.Context) (*querysvc.DatasetSummary, error)
}

// DoctorHandler handles doctor-related HTTP requests
type DoctorHandler struct {
	directory DirectoryService
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(directory DirectoryService) *DoctorHandler {
	return &DoctorHandler{
		directory: directory,
	}
}

// ListDoctors handles GET /api/doctors
func (h *DoctorHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	state, err := parseFilterState(r.URL.Query())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	listing, err := h.directory.List(r.Context(), state)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, listing)
}

// GetDoctor handles GET /api/doctors/{fakeId}
func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	fakeID := r.PathValue("fakeId")
	if fakeID == "" {
		respondWithError(w, http.StatusBadRequest, "doctor ID is required")
		return
	}

	doctor, err := h.directory.GetDoctor(r.Context(), fakeID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, doctor)
}

// GetPage handles GET /api/pages/{type}/{slugName}/{idInst}
func (h *DoctorHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	key := entities.RouteKey{
		Type:     r.PathValue("type"),
		SlugName: r.PathValue("slugName"),
		IDInst:   r.PathValue("idInst"),
	}

	doctors, err := h.directory.FindByRoute(r.Context(), key)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"path":    key.Path(),
		"doctors": doctors,
		"count":   len(doctors),
	})
}

// ListPaths handles GET /api/paths
func (h *DoctorHandler) ListPaths(w http.ResponseWriter, r *http.Request) {
	paths, err := h.directory.Paths(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"paths": paths,
		"count": len(paths),
	})
}

// GetDataset handles GET /api/dataset
func (h *DoctorHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	summary, err := h.directory.Dataset(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}
