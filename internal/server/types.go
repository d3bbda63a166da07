// Package server exposes the extraction pipeline over HTTP: synchronous
// single-document extraction, batch extraction with WebSocket progress
// streaming, health and Prometheus metrics endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/pdf"
	"github.com/facto-ocr/facto/internal/pipeline"
)

// Config holds HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	CORSOrigin      string
	MaxUploadMB     int64
	TimeoutSec      int
	ShutdownTimeout int
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline    *pipeline.Pipeline
	pdf         *pdf.Extractor
	host        string
	port        int
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
	shutdownSec int
}

// NewServer creates an extraction server around a built pipeline.
func NewServer(cfg Config, p *pipeline.Pipeline) (*Server, error) {
	if p == nil {
		return nil, errors.New("server: pipeline is required")
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 25
	}
	if cfg.TimeoutSec <= 0 {
		cfg.TimeoutSec = 60
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}
	return &Server{
		pipeline:    p,
		pdf:         pdf.NewExtractor(0),
		host:        cfg.Host,
		port:        cfg.Port,
		corsOrigin:  cfg.CORSOrigin,
		maxUploadMB: cfg.MaxUploadMB,
		timeoutSec:  cfg.TimeoutSec,
		shutdownSec: cfg.ShutdownTimeout,
	}, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/extract", s.corsMiddleware(s.extractHandler))
	mux.HandleFunc("/extract/pdf", s.corsMiddleware(s.extractPDFHandler))
	mux.HandleFunc("/batch", s.corsMiddleware(s.batchHandler))
	mux.HandleFunc("/ws/batch", s.batchWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// Handler returns the fully-routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(s.timeoutSec) * time.Second,
		WriteTimeout:      time.Duration(s.timeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(s.shutdownSec)*time.Second)
	defer cancel()
	slog.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ExtractRequest is the JSON body of POST /extract.
type ExtractRequest struct {
	Text string `json:"text"`
}

// ExtractResponse wraps one document extraction.
type ExtractResponse struct {
	Success  bool             `json:"success"`
	Document *models.Document `json:"document,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// BatchRequest is the JSON body of POST /batch.
type BatchRequest struct {
	Texts []string `json:"texts"`
}

// BatchItem is one document slot of a batch response. Failed documents
// carry an error instead of a document; slots line up with the request.
type BatchItem struct {
	Index    int              `json:"index"`
	Document *models.Document `json:"document,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// BatchResponse wraps a whole batch extraction.
type BatchResponse struct {
	Success bool        `json:"success"`
	Items   []BatchItem `json:"items,omitempty"`
	Error   string      `json:"error,omitempty"`
}
