// Package server exposes the ticket analysis pipeline over HTTP.
//
// Routes:
//
//	POST /api/ticket/analyze  analyze one helpdesk ticket (x-api-key auth)
//	GET  /health              dependency health probe
//
// Every other path answers with a JSON 404.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ShayCichocki/ticketpilot/internal/logging"
	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// DefaultShutdownTimeout bounds how long Run waits for in-flight requests.
const DefaultShutdownTimeout = 5 * time.Second

// Analyzer runs the analysis pipeline for one ticket.
type Analyzer interface {
	AnalyzeTicket(ctx context.Context, ticketID int64, opts models.Options) (*models.AnalysisResult, error)
}

// Pinger is a dependency the health endpoint can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds server settings.
type Config struct {
	// Addr is the listen address, e.g. ":3000".
	Addr string
	// APIKey is required in the x-api-key header of analysis requests.
	APIKey string
	// Development skips auth when no APIKey is set.
	Development     bool
	ShutdownTimeout time.Duration

	// LLMConfigured is reported by the health endpoint. The LLM is not
	// probed over the network.
	LLMConfigured bool
	Helpdesk      Pinger
	Knowledge     Pinger

	Logger *zap.Logger
}

// Server is the HTTP front end of the analysis pipeline.
type Server struct {
	analyzer Analyzer
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
	handler  http.Handler
}

// New creates a server around analyzer.
func New(analyzer Analyzer, cfg Config) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	s := &Server{
		analyzer: analyzer,
		cfg:      cfg,
		logger:   logging.OrNop(cfg.Logger),
		now:      time.Now,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /api/ticket/analyze", s.requireAPIKey(http.HandlerFunc(s.handleAnalyze)))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("/", s.handleNotFound)

	return s.logRequests(s.recoverPanics(withCORS(mux)))
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully. Request contexts derive from ctx, so cancelling it also
// cancels in-flight analyses.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
