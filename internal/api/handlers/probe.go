package handlers

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/services/catalog"
)

// ProbeHandler measures stream health for a given URL
type ProbeHandler struct {
	catalog *catalog.Client
	logger  *logrus.Logger
}

// NewProbeHandler creates a new probe handler
func NewProbeHandler(client *catalog.Client, logger *logrus.Logger) *ProbeHandler {
	return &ProbeHandler{catalog: client, logger: logger}
}

// ServeHTTP probes the stream URL from the query string
func (h *ProbeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	streamURL := r.URL.Query().Get("url")
	if !strings.HasPrefix(streamURL, "http") {
		http.Error(w, "url query parameter must be an http(s) URL", http.StatusBadRequest)
		return
	}

	result, err := h.catalog.ProbeStream(r.Context(), streamURL)
	if err != nil {
		h.logger.WithError(err).WithField("url", streamURL).Warn("Stream probe failed")
		http.Error(w, "Probe failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
