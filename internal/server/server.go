package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wrenhunt/sourcer/internal/pipeline"
)

const defaultMaxRequestSize = 1 << 20 // 1 MiB

// Runner executes one sourcing pipeline run. Satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, jobDescription string, names []string) (*pipeline.Result, error)
}

// Server exposes the sourcing pipeline over HTTP.
type Server struct {
	runner  Runner
	logger  *zap.Logger
	version string

	Addr           string
	MaxRequestSize int64
}

func New(runner Runner, logger *zap.Logger, addr, version string) *Server {
	return &Server{
		runner:         runner,
		logger:         logger,
		version:        version,
		Addr:           addr,
		MaxRequestSize: defaultMaxRequestSize,
	}
}

// Routes configures the HTTP mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.rootHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/source-candidates", s.requestSizeLimit(s.sourceCandidatesHandler))

	return mux
}

// ListenAndServe blocks serving HTTP until the listener fails.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("listening", zap.String("addr", s.Addr))

	return srv.ListenAndServe()
}

// requestSizeLimit caps the request body size before the handler reads it.
func (s *Server) requestSizeLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.MaxRequestSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
		}
		next(w, r)
	}
}
