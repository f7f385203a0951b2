package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/caresignal/accredwatch/pkg/model"
)

// BatchRunner runs one scan over the record source. Satisfied by
// *processor.Processor; tests inject stubs.
type BatchRunner interface {
	Scan(ctx context.Context, prefix string) (*model.ScanResult, error)
}

// Server exposes the batch trigger and health endpoints.
type Server struct {
	runner        BatchRunner
	defaultPrefix string
	mux           *http.ServeMux
	logger        *slog.Logger
}

// NewServer creates the API server. defaultPrefix is used when a scan
// request names no prefix of its own.
func NewServer(runner BatchRunner, defaultPrefix string, logger *slog.Logger) *Server {
	s := &Server{
		runner:        runner,
		defaultPrefix: defaultPrefix,
		mux:           http.NewServeMux(),
		logger:        logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /api/v1/scans", s.handleScan)
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type scanRequest struct {
	Prefix string `json:"prefix,omitempty"`
}

type scanFailure struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	prefix := s.defaultPrefix
	if r.Body != nil {
		var req scanRequest
		// An empty body is a scan with the default prefix.
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Prefix != "" {
			prefix = req.Prefix
		}
	}

	result, err := s.runner.Scan(ctx, prefix)
	if err != nil {
		s.logger.Error("scan failed", "prefix", prefix, "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(scanFailure{
			Message: "Error processing healthcare data",
			Error:   err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
