// Package server provides the HTTP server for the browser games, the sample
// dataset and the live event feed.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/pkg/logger"
	"github.com/ayusman/mudra/pkg/metrics"
)

// ShutdownTimeout bounds graceful shutdown in Run.
const ShutdownTimeout = 5 * time.Second

// Config holds the server configuration. Routes are registered only for
// the collaborators that are set.
type Config struct {
	StaticDir string

	// Rock-paper-scissors: /api/rps/predict and /api/rps/reset.
	RPS     *gesture.Recognizer
	Session *game.Session

	// Steering: /api/hcr/gesture.
	Drive    *gesture.Recognizer
	Steering *game.Steering

	// Samples: /api/samples. Detector is used to extract posted frames.
	Store    *store.Store
	Detector detector.Detector

	Metrics *metrics.Manager
	Hub     *Hub
	// Listeners receive the same events as websocket subscribers.
	Listeners []api.Publisher
}

// Server represents the HTTP server for the gesture games.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	hcr    *api.HCRHandler
	log    logger.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		log:    logger.Named("server"),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.handle("/api/health", http.HandlerFunc(s.handleHealth))

	events := append(api.Publishers(nil), s.config.Listeners...)
	if s.config.Hub != nil {
		events = append(events, s.config.Hub)
		s.mux.Handle("/api/events", s.config.Hub)
	}

	if s.config.RPS != nil && s.config.Session != nil {
		rps := api.NewRPSHandler(s.config.RPS, s.config.Session, s.config.Metrics, events)
		s.handle("/api/rps/predict", http.HandlerFunc(rps.Predict))
		s.handle("/api/rps/reset", http.HandlerFunc(rps.Reset))
	}

	if s.config.Drive != nil && s.config.Steering != nil {
		s.hcr = api.NewHCRHandler(s.config.Drive, s.config.Steering, s.config.Metrics, events)
		s.handle("/api/hcr/gesture", http.HandlerFunc(s.hcr.Gesture))
	}

	if s.config.Store != nil {
		samples := api.NewSamplesHandler(s.config.Store, s.config.Detector, s.config.Metrics)
		s.handle("/api/samples", samples)
		s.handle("/api/samples/", samples)
	}

	if s.config.Metrics != nil {
		s.mux.Handle("/metrics", s.config.Metrics.Handler())
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// handle registers h with request metrics recorded under pattern.
func (s *Server) handle(pattern string, h http.Handler) {
	if s.config.Metrics == nil {
		s.mux.Handle(pattern, h)
		return
	}
	s.mux.Handle(pattern, metricsMiddleware(s.config.Metrics, pattern, h))
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The game front ends may be served from another origin during development.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// SetSteering turns gesture key output on or off. It reports false when no
// steering game is configured.
func (s *Server) SetSteering(enabled bool) (bool, error) {
	if s.hcr == nil {
		return false, nil
	}
	return true, s.hcr.SetEnabled(enabled)
}

// SteeringEnabled reports whether steering gestures drive the keyboard.
func (s *Server) SteeringEnabled() bool {
	return s.hcr != nil && s.hcr.Enabled()
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "server listening", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info(ctx, "shutting down server")
	if s.config.Hub != nil {
		s.config.Hub.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info(ctx, "server stopped")
	return nil
}

// metricsMiddleware records request counts and latency for endpoint.
func metricsMiddleware(m *metrics.Manager, endpoint string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		m.RecordHTTPRequest(endpoint, r.Method, strconv.Itoa(wrapped.statusCode), time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
