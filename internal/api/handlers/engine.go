package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/engine"
	"github.com/streambox/streambox/internal/session"
)

// EngineHandler is the rendering client's side of the engine mirror: it
// reports state and events upward and drains queued commands
type EngineHandler struct {
	manager *session.Manager
	logger  *logrus.Logger
}

// NewEngineHandler creates a new engine handler
func NewEngineHandler(manager *session.Manager, logger *logrus.Logger) *EngineHandler {
	return &EngineHandler{manager: manager, logger: logger}
}

type stateReport struct {
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
}

// State mirrors the client's playback clock into the engine handle
func (h *EngineHandler) State(w http.ResponseWriter, r *http.Request) {
	_, handle, ok := h.manager.Current()
	if !ok {
		http.Error(w, "No active session", http.StatusNotFound)
		return
	}

	var report stateReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	handle.UpdateState(report.Position, report.Duration)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type eventReport struct {
	Event string `json:"event"`
}

// Event fires a client-reported lifecycle event
func (h *EngineHandler) Event(w http.ResponseWriter, r *http.Request) {
	_, handle, ok := h.manager.Current()
	if !ok {
		http.Error(w, "No active session", http.StatusNotFound)
		return
	}

	var report eventReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	handle.Fire(engine.Event(report.Event))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Error classifies and handles a client-reported stream error
func (h *EngineHandler) Error(w http.ResponseWriter, r *http.Request) {
	_, handle, ok := h.manager.Current()
	if !ok {
		http.Error(w, "No active session", http.StatusNotFound)
		return
	}

	var report engine.StreamError
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"fatal": report.Fatal,
		"class": report.Class,
	}).Debug("Stream error reported")

	handle.FireError(report)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Commands drains the pending command queue for the client
func (h *EngineHandler) Commands(w http.ResponseWriter, r *http.Request) {
	_, handle, ok := h.manager.Current()
	if !ok {
		http.Error(w, "No active session", http.StatusNotFound)
		return
	}

	commands := handle.DrainCommands()
	if commands == nil {
		commands = []engine.Command{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"commands": commands})
}

// Manifest rewrites a playlist the client fetched, filtering ad markers
// when the session blocks them. The body is the raw playlist text.
func (h *EngineHandler) Manifest(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.manager.Current()
	if !ok {
		http.Error(w, "No active session", http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read playlist", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	w.Write([]byte(sess.RewriteManifest(string(body))))
}
