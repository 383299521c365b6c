package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadHeaderTimeout is the default timeout for reading request headers.
const ReadHeaderTimeout = 10 * time.Second

// Server exposes a metrics gatherer over HTTP.
type Server struct {
	name       string
	config     Config
	server     *http.Server
	listener   net.Listener
	onServeErr func()
}

// NewServer creates a Server serving gatherer at cfg.Path. Config defaults
// are applied before validation. The onServeErr callback, if non-nil, is
// called when the background Serve goroutine encounters a fatal error.
func NewServer(name string, gatherer prometheus.Gatherer, cfg Config, onServeErr func()) (*Server, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	if gatherer == nil {
		return nil, ErrNilGatherer
	}

	cfg.SetDefaults()

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})) //nolint:exhaustruct // defaults are fine

	return &Server{
		name:   name,
		config: cfg,
		server: &http.Server{ //nolint:exhaustruct // only relevant fields needed
			Addr:              cfg.Address,
			Handler:           mux,
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
		listener:   nil,
		onServeErr: onServeErr,
	}, nil
}

// Addr returns the bound address once started, the configured one before.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}

	return s.config.Address
}

// Start begins listening on TCP and serves metrics in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	listenCfg := net.ListenConfig{} //nolint:exhaustruct // zero-value defaults are fine

	listener, err := listenCfg.Listen(ctx, "tcp", s.server.Addr)
	if err != nil {
		slog.Error("failed to listen", "name", s.name, "address", s.server.Addr, "error", err)

		return fmt.Errorf("%w: %w", ErrListenFailed, err)
	}

	s.listener = listener

	slog.Info("starting metrics listener", "name", s.name, "address", listener.Addr().String(), "path", s.config.Path)

	go func() {
		serveErr := s.server.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("metrics listener error", "name", s.name, "error", serveErr)

			if s.onServeErr != nil {
				s.onServeErr()
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	slog.Info("stopping metrics listener", "name", s.name)

	err := s.server.Shutdown(ctx)
	if err != nil {
		slog.Error("shutdown failed", "name", s.name, "error", err)

		return fmt.Errorf("%w: %w", ErrShutdownFailed, err)
	}

	return nil
}
