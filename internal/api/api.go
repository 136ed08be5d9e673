// Package api exposes the upload service over HTTP.
package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Tallal-Arif/MerkleStreamBackend/internal/config"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/jsonhttp"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/logging"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/upload"
)

// multipartOverhead is the body allowance on top of the file size limit for
// multipart boundaries and part headers.
const multipartOverhead = 64 * 1024

const listLimit = 100

type Server struct {
	http.Handler

	cfg       config.Config
	uploads   *upload.Service
	logger    logging.Logger
	accessLog io.Closer
}

// New wires the routes of the service. The collectors of uploads are registered
// on registry, which also backs /metrics.
func New(cfg config.Config, uploads *upload.Service, logger logging.Logger, registry *prometheus.Registry) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		uploads: uploads,
		logger:  logger,
	}

	for _, c := range append(uploads.Metrics(), collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})) {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(jsonhttp.NotFoundHandler)
	router.MethodNotAllowedHandler = http.HandlerFunc(jsonhttp.MethodNotAllowedHandler)

	router.Handle("/upload", jsonhttp.NewMaxBodyBytesHandler(cfg.MaxUploadBytes+multipartOverhead, errFileTooLarge)(
		http.HandlerFunc(s.uploadHandler),
	)).Methods(http.MethodPost)
	router.HandleFunc("/uploads", s.uploadsListHandler).Methods(http.MethodGet)
	router.HandleFunc("/uploads/{id}", s.uploadGetHandler).Methods(http.MethodGet)
	router.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	w := logger.Writer()
	s.accessLog = w
	s.Handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger),
		handlers.PrintRecoveryStack(false),
	)(handlers.CombinedLoggingHandler(w, router))

	return s, nil
}

// Close releases the access log writer.
func (s *Server) Close() error {
	return s.accessLog.Close()
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}
