package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/raaihank/docmask/internal/config"
	"github.com/raaihank/docmask/internal/logger"
	"github.com/raaihank/docmask/internal/privacy"
	"github.com/raaihank/docmask/internal/store"
	"github.com/raaihank/docmask/internal/web"
	"github.com/raaihank/docmask/internal/websocket"
	"go.uber.org/zap"
)

// Server is the docmask HTTP server: upload, scan, download, dashboard.
type Server struct {
	config    *config.Config
	logger    *logger.Logger
	router    *mux.Router
	server    *http.Server
	wsHub     *websocket.Hub
	limiter   *ipRateLimiter
	uploads   *store.Store
	downloads *store.Store
	startedAt time.Time
	done      chan struct{}

	totalScans      atomic.Int64
	totalDetections atomic.Int64

	// detector is swapped wholesale on config reload; individual
	// detectors are immutable.
	mu       sync.RWMutex
	detector *privacy.Detector
}

// New creates a server instance from the configuration.
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	detector, err := privacy.New(cfg.Privacy, log.WithComponent("privacy"))
	if err != nil {
		return nil, fmt.Errorf("failed to create privacy detector: %w", err)
	}

	wsHub := websocket.NewHub(&websocket.HubConfig{
		BroadcastScans:       cfg.WebSocket.Events.BroadcastScans,
		BroadcastSystem:      cfg.WebSocket.Events.BroadcastSystem,
		BroadcastConnections: cfg.WebSocket.Events.BroadcastConnections,
		AllowedOrigins:       cfg.WebSocket.AllowedOrigins,
	}, log.WithComponent("websocket").Logger)

	s := &Server{
		config:    cfg,
		logger:    log.WithComponent("server"),
		detector:  detector,
		router:    mux.NewRouter(),
		wsHub:     wsHub,
		limiter:   newIPRateLimiter(cfg.RateLimit),
		uploads:   store.New(cfg.Uploads.CacheTTL),
		downloads: store.New(cfg.Downloads.TTL),
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Info endpoint
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")

	// Dashboard endpoint - embedded HTML
	s.router.HandleFunc("/", web.ServeDashboard).Methods("GET")
	s.router.HandleFunc("/dashboard", web.ServeDashboard).Methods("GET")

	// WebSocket endpoint for dashboard
	if s.config.WebSocket.Enabled {
		s.router.HandleFunc(s.config.WebSocket.Path, s.handleWebSocket).Methods("GET")
	}

	// Scan API
	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(s.loggingMiddleware)
	api.Use(s.rateLimitMiddleware)
	api.HandleFunc("/scan", s.handleScan).Methods("POST")
	api.HandleFunc("/download/{id}", s.handleDownload).Methods("GET")
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting docmask server",
		zap.Int("port", s.config.Server.Port),
		zap.Int64("max_upload_bytes", s.config.Server.MaxUploadBytes),
	)

	// Start WebSocket hub in a separate goroutine
	go s.wsHub.Run()
	go s.broadcastSystemStatus()

	return s.server.ListenAndServe()
}

// broadcastSystemStatus feeds the dashboard a periodic health summary.
func (s *Server) broadcastSystemStatus() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.wsHub.BroadcastEvent(websocket.Event{
				Type:      websocket.EventTypeSystemStatus,
				Timestamp: time.Now(),
				Data: websocket.SystemStatusEvent{
					Status:           "healthy",
					Uptime:           time.Since(s.startedAt).Round(time.Second).String(),
					TotalScans:       s.totalScans.Load(),
					TotalDetections:  s.totalDetections.Load(),
					ActiveRules:      len(s.Detector().EnabledCategories()),
					ConnectedClients: s.wsHub.ClientCount(),
				},
			})
		}
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping docmask server")
	close(s.done)
	s.uploads.Close()
	s.downloads.Close()
	return s.server.Shutdown(ctx)
}

// Detector returns the current detector instance.
func (s *Server) Detector() *privacy.Detector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detector
}

// ApplyPrivacyConfig builds a fresh detector from cfg and swaps it in.
// Called from the config watcher; in-flight requests keep the instance
// they already hold.
func (s *Server) ApplyPrivacyConfig(cfg config.PrivacyConfig) error {
	detector, err := privacy.New(cfg, s.logger.WithComponent("privacy"))
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.detector = detector
	s.mu.Unlock()

	s.logger.Info("Privacy configuration reloaded",
		zap.Bool("enabled", cfg.Enabled),
		zap.Strings("detectors", cfg.Detectors),
	)
	return nil
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

// handleInfo handles info requests
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	detector := s.Detector()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{
		"name":"docmask",
		"version":"0.1.0",
		"privacy_enabled":%t,
		"detectors_count":%d,
		"connected_clients":%d
	}`, s.config.Privacy.Enabled, len(detector.EnabledCategories()), s.wsHub.ClientCount())
}

// handleWebSocket handles WebSocket connections for the dashboard
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}
