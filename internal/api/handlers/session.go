package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/session"
)

// SessionHandler drives the playback session lifecycle
type SessionHandler struct {
	manager *session.Manager
	logger  *logrus.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(manager *session.Manager, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{manager: manager, logger: logger}
}

type openRequest struct {
	Source string `json:"source"`
	ID     string `json:"id"`
}

// Open starts a session for a title, replacing any running session
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if req.Source == "" || req.ID == "" {
		http.Error(w, "source and id are required", http.StatusBadRequest)
		return
	}

	sess, err := h.manager.Open(r.Context(), req.Source, req.ID)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"source": req.Source,
			"id":     req.ID,
		}).Error("Failed to open session")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sess.Status())
}

// Status reports the live session's state
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.manager.Current()
	if !ok {
		http.Error(w, "No active session", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sess.Status())
}

// Close tears down the live session
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.manager.Close()
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

type switchRequest struct {
	Index int `json:"index"`
}

// SwitchEpisode transitions the live session to another episode
func (h *SessionHandler) SwitchEpisode(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.manager.Current()
	if !ok {
		http.Error(w, "No active session", http.StatusNotFound)
		return
	}

	var req switchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	if err := sess.SwitchEpisode(req.Index); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sess.Status())
}

// Key translates one keyboard event into a playback action
func (h *SessionHandler) Key(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.manager.Current()
	if !ok {
		http.Error(w, "No active session", http.StatusNotFound)
		return
	}

	var event session.KeyEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	sess.HandleKey(event)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
