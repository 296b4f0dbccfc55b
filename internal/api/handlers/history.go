package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/models"
)

// HistoryHandler serves the watch history built from play records
type HistoryHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(db *models.Database, logger *logrus.Logger) *HistoryHandler {
	return &HistoryHandler{db: db, logger: logger}
}

// List returns every checkpoint, most recently watched first
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.db.GetAllPlayRecords()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load play records")
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*models.PlayRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}

// Delete removes one title's checkpoint
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.db.DeletePlayRecord(vars["source"], vars["id"]); err != nil {
		h.logger.WithError(err).Error("Failed to delete play record")
		http.Error(w, "Failed to delete record", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
