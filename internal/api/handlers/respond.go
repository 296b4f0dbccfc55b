package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/streambox/streambox/internal/models"
)

// writeJSON encodes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps session and catalog errors onto HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	var upstream *models.UpstreamError

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrUnknownSource):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidEpisode):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrSwitchInProgress):
		status = http.StatusConflict
	case errors.Is(err, models.ErrSessionClosed):
		status = http.StatusGone
	case errors.As(err, &upstream):
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}
