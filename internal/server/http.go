package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HealthCheck reports a dependency problem, or nil when healthy.
type HealthCheck func() error

// HTTPService serves /metrics and /healthz. It satisfies Service.
type HTTPService struct {
	server *http.Server
	logger *zap.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewMetricsService builds an HTTPService exposing gatherer's metrics on addr.
// /healthz answers 503 with the error text while health fails; a nil health
// always reports ok.
//
// Precondition: gatherer and logger must be non-nil.
func NewMetricsService(addr string, gatherer prometheus.Gatherer, health HealthCheck, logger *zap.Logger) *HTTPService {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(logger),
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if health != nil {
			if err := health(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		_, _ = w.Write([]byte("ok\n"))
	})
	return &HTTPService{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the service's request router.
func (s *HTTPService) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the bound address once Start is listening, or the configured
// address before that.
func (s *HTTPService) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}

// Start listens and serves until Stop is called.
//
// Postcondition: returns nil after a graceful Stop.
func (s *HTTPService) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("http listening", zap.String("addr", ln.Addr().String()))
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down, waiting for in-flight scrapes until ctx expires.
func (s *HTTPService) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
