package monitoring

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"
)

// NewMux wires /metrics and /healthz
func NewMux(health *HealthChecker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", NewMetricsHandler())
	mux.Handle("/healthz", health)
	return mux
}

// Server exposes metrics and health over HTTP in the background
type Server struct {
	srv      *http.Server
	listener net.Listener
}

// StartServer listens on addr and serves handler until Shutdown
func StartServer(addr string, handler http.Handler) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		listener: listener,
	}

	go func() {
		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("❌ Metrics server stopped: %v", err)
		}
	}()

	return s, nil
}

// Addr returns the bound address, useful when addr used port 0
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
