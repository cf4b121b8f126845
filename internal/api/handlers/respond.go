package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/zatekoja/doctordirectory/backend/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps an AppError to a status code. Anything other than
// a not-found or validation error is logged and reported generically.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
			return
		case apperrors.ErrorTypeValidation:
			if len(appErr.Fields) > 0 {
				respondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
					"error":  appErr.Message,
					"fields": appErr.Fields,
				})
				return
			}
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		}
	}

	log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Request failed")
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}
