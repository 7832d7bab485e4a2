package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Loran-38/anonyjud/internal/anonymizer"
	"github.com/Loran-38/anonyjud/internal/config"
	"github.com/Loran-38/anonyjud/internal/convert"
	"github.com/Loran-38/anonyjud/internal/document"
	"github.com/Loran-38/anonyjud/internal/events"
	"github.com/Loran-38/anonyjud/internal/fontkit"
	"github.com/Loran-38/anonyjud/internal/logger"
)

// Server is the HTTP front of the anonymization service.
type Server struct {
	config    *config.Config
	logger    *logger.Logger
	engine    *anonymizer.Engine
	processor *document.Processor
	chain     *convert.Chain
	resolver  *fontkit.Resolver
	fitter    *fontkit.Fitter
	router    *mux.Router
	server    *http.Server
	wsHub     *events.Hub
	limiter   *rateLimiter
}

// New creates a new server instance wired to a fresh engine and hub.
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil configuration")
	}

	engine := anonymizer.NewEngine(cfg.Anonymize.PatternFallback, log.WithComponent("anonymizer"))
	processor := document.NewProcessor(engine, log.WithComponent("document"))
	wsHub := events.NewHub(log.WithComponent("events").Logger, events.Config{
		PingInterval:   cfg.WebSocket.PingInterval,
		PongTimeout:    cfg.WebSocket.PongTimeout,
		WriteTimeout:   cfg.WebSocket.WriteTimeout,
		MaxConnections: cfg.WebSocket.MaxConnections,
	})

	// The bundled faces only fail to parse when the binary is broken, so
	// surface that at startup rather than on the first fit request.
	catalog, err := fontkit.NewCatalog()
	if err != nil {
		return nil, fmt.Errorf("font catalog: %w", err)
	}

	s := &Server{
		config:    cfg,
		logger:    log.WithComponent("server"),
		engine:    engine,
		processor: processor,
		chain:     convert.NewChain(cfg.Convert.Commands, cfg.Convert.Timeout, log.WithComponent("convert")),
		resolver:  fontkit.NewResolver(log.WithComponent("fontkit")),
		fitter:    fontkit.NewFitter(catalog, cfg.Render.MinFontSize, cfg.Render.ShrinkStep, cfg.Render.DefaultFontPt),
		router:    mux.NewRouter(),
		wsHub:     wsHub,
	}
	if cfg.Server.RateLimit.Enabled {
		s.limiter = newRateLimiter(cfg.Server.RateLimit.RequestsPerSec, cfg.Server.RateLimit.Burst)
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
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")

	if s.config.WebSocket.Enabled {
		s.router.HandleFunc(s.config.WebSocket.Path, s.handleWebSocket).Methods("GET")
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.loggingMiddleware)
	api.Use(s.rateLimitMiddleware)
	api.HandleFunc("/anonymize", s.handleAnonymize).Methods("POST")
	api.HandleFunc("/anonymize/blocks", s.handleAnonymizeBlocks).Methods("POST")
	api.HandleFunc("/deanonymize", s.handleDeanonymize).Methods("POST")
	api.HandleFunc("/deanonymize/blocks", s.handleDeanonymizeBlocks).Methods("POST")
	api.HandleFunc("/validate", s.handleValidate).Methods("POST")
	api.HandleFunc("/convert", s.handleConvert).Methods("POST")
	api.HandleFunc("/fit", s.handleFit).Methods("POST")
}

// Start starts the HTTP server and the websocket hub.
func (s *Server) Start() error {
	s.logger.Info("Starting anonymization server",
		zap.Int("port", s.config.Server.Port),
		zap.Bool("pattern_fallback", s.config.Anonymize.PatternFallback),
		zap.Bool("rate_limit", s.config.Server.RateLimit.Enabled),
	)

	go s.wsHub.Run()

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping anonymization server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

// handleInfo handles info requests
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{
		"name":"anonyjud",
		"version":"0.1.0",
		"pattern_fallback":%t,
		"websocket_clients":%d
	}`, s.config.Anonymize.PatternFallback, s.wsHub.ClientCount())
}

// handleWebSocket upgrades dashboard connections.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.wsHub.ServeWS(w, r)
}

// GetWebSocketHub returns the hub for broadcasting events.
func (s *Server) GetWebSocketHub() *events.Hub {
	return s.wsHub
}
