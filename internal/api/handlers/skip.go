package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/models"
	"github.com/streambox/streambox/internal/session"
)

// SkipHandler manages the per-installation skip-intro/outro config
type SkipHandler struct {
	db      *models.Database
	manager *session.Manager
	logger  *logrus.Logger
}

// NewSkipHandler creates a new skip config handler
func NewSkipHandler(db *models.Database, manager *session.Manager, logger *logrus.Logger) *SkipHandler {
	return &SkipHandler{db: db, manager: manager, logger: logger}
}

// Get returns the stored skip config
func (h *SkipHandler) Get(w http.ResponseWriter, r *http.Request) {
	config, err := h.db.GetSkipConfig()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load skip config")
		http.Error(w, "Failed to load skip config", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, config)
}

// Put replaces the skip config and applies it to the live session
func (h *SkipHandler) Put(w http.ResponseWriter, r *http.Request) {
	var config models.SkipConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	if err := h.db.SaveSkipConfig(config); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if sess, _, ok := h.manager.Current(); ok {
		if err := sess.UpdateSkipConfig(config); err != nil {
			h.logger.WithError(err).Warn("Failed to apply skip config to live session")
		}
	}

	writeJSON(w, http.StatusOK, config)
}

// Clear wipes the skip config and disables skipping
func (h *SkipHandler) Clear(w http.ResponseWriter, r *http.Request) {
	config := models.SkipConfig{}
	if err := h.db.SaveSkipConfig(config); err != nil {
		h.logger.WithError(err).Error("Failed to clear skip config")
		http.Error(w, "Failed to clear skip config", http.StatusInternalServerError)
		return
	}

	if sess, _, ok := h.manager.Current(); ok {
		if err := sess.UpdateSkipConfig(config); err != nil {
			h.logger.WithError(err).Warn("Failed to apply skip config to live session")
		}
	}

	writeJSON(w, http.StatusOK, config)
}

// MarkIntro pins the skip-intro boundary to the live session's position
func (h *SkipHandler) MarkIntro(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.manager.Current()
	if !ok {
		http.Error(w, "No active session", http.StatusNotFound)
		return
	}

	config := sess.MarkIntroHere()
	if err := h.db.SaveSkipConfig(config); err != nil {
		h.logger.WithError(err).Error("Failed to save skip config")
		http.Error(w, "Failed to save skip config", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, config)
}

// MarkOutro pins the skip-outro boundary to the live session's position
func (h *SkipHandler) MarkOutro(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.manager.Current()
	if !ok {
		http.Error(w, "No active session", http.StatusNotFound)
		return
	}

	config := sess.MarkOutroHere()
	if err := h.db.SaveSkipConfig(config); err != nil {
		h.logger.WithError(err).Error("Failed to save skip config")
		http.Error(w, "Failed to save skip config", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, config)
}
