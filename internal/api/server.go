package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/streambox/streambox/internal/api/handlers"
	"github.com/streambox/streambox/internal/api/middleware"
	"github.com/streambox/streambox/internal/config"
	"github.com/streambox/streambox/internal/models"
	"github.com/streambox/streambox/internal/services/catalog"
	"github.com/streambox/streambox/internal/session"
)

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	db      *models.Database
	manager *session.Manager
	catalog *catalog.Client
	logger  *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, db *models.Database, manager *session.Manager, catalogClient *catalog.Client, logger *logrus.Logger) *Server {
	s := &Server{
		db:      db,
		manager: manager,
		catalog: catalogClient,
		logger:  logger,
	}

	router := mux.NewRouter()
	s.setupRoutes(router)

	handler := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(middleware.Metrics(handler), logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(router *mux.Router) {
	healthHandler := handlers.NewHealthHandler(s.logger)
	router.Handle("/health", healthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	sessionHandler := handlers.NewSessionHandler(s.manager, s.logger)
	router.HandleFunc("/api/session", sessionHandler.Open).Methods(http.MethodPost)
	router.HandleFunc("/api/session", sessionHandler.Status).Methods(http.MethodGet)
	router.HandleFunc("/api/session", sessionHandler.Close).Methods(http.MethodDelete)
	router.HandleFunc("/api/session/episode", sessionHandler.SwitchEpisode).Methods(http.MethodPost)
	router.HandleFunc("/api/session/key", sessionHandler.Key).Methods(http.MethodPost)

	engineHandler := handlers.NewEngineHandler(s.manager, s.logger)
	router.HandleFunc("/api/engine/state", engineHandler.State).Methods(http.MethodPost)
	router.HandleFunc("/api/engine/event", engineHandler.Event).Methods(http.MethodPost)
	router.HandleFunc("/api/engine/error", engineHandler.Error).Methods(http.MethodPost)
	router.HandleFunc("/api/engine/commands", engineHandler.Commands).Methods(http.MethodGet)
	router.HandleFunc("/api/engine/manifest", engineHandler.Manifest).Methods(http.MethodPost)

	skipHandler := handlers.NewSkipHandler(s.db, s.manager, s.logger)
	router.HandleFunc("/api/skip-config", skipHandler.Get).Methods(http.MethodGet)
	router.HandleFunc("/api/skip-config", skipHandler.Put).Methods(http.MethodPut)
	router.HandleFunc("/api/skip-config", skipHandler.Clear).Methods(http.MethodDelete)
	router.HandleFunc("/api/skip-config/intro-here", skipHandler.MarkIntro).Methods(http.MethodPost)
	router.HandleFunc("/api/skip-config/outro-here", skipHandler.MarkOutro).Methods(http.MethodPost)

	historyHandler := handlers.NewHistoryHandler(s.db, s.logger)
	router.HandleFunc("/api/history", historyHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/api/history/{source}/{id}", historyHandler.Delete).Methods(http.MethodDelete)

	favoritesHandler := handlers.NewFavoritesHandler(s.db, s.logger)
	router.HandleFunc("/api/favorites", favoritesHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/api/favorites", favoritesHandler.Add).Methods(http.MethodPost)
	router.HandleFunc("/api/favorites/{source}/{id}", favoritesHandler.Remove).Methods(http.MethodDelete)

	probeHandler := handlers.NewProbeHandler(s.catalog, s.logger)
	router.Handle("/api/probe", probeHandler).Methods(http.MethodGet)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
