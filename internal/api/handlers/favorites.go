package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/models"
)

// FavoritesHandler manages bookmarked titles
type FavoritesHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewFavoritesHandler creates a new favorites handler
func NewFavoritesHandler(db *models.Database, logger *logrus.Logger) *FavoritesHandler {
	return &FavoritesHandler{db: db, logger: logger}
}

// List returns every bookmark, newest first
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.db.GetAllFavorites()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load favorites")
		http.Error(w, "Failed to load favorites", http.StatusInternalServerError)
		return
	}
	if favorites == nil {
		favorites = []*models.Favorite{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"favorites": favorites})
}

// Add bookmarks a title
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	var favorite models.Favorite
	if err := json.NewDecoder(r.Body).Decode(&favorite); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	if err := h.db.AddFavorite(&favorite); err != nil {
		h.logger.WithError(err).Error("Failed to add favorite")
		http.Error(w, "Failed to add favorite", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, &favorite)
}

// Remove drops a bookmark
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.db.RemoveFavorite(vars["source"], vars["id"]); err != nil {
		h.logger.WithError(err).Error("Failed to remove favorite")
		http.Error(w, "Failed to remove favorite", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
