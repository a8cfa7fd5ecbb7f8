package callback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sentinel-Gate/appgate/internal/domain/message"
	"github.com/Sentinel-Gate/appgate/internal/port/inbound"
	"github.com/Sentinel-Gate/appgate/internal/telemetry"
)

// CallbackPath is the page the identity provider redirects to.
const CallbackPath = "/auth-callback.html"

// Server is the loopback server that receives login results.
type Server struct {
	bus      *message.Bus
	addr     string
	logger   *slog.Logger
	metrics  *telemetry.Metrics
	gatherer prometheus.Gatherer
	closures ClosureRecorder
	health   *HealthChecker

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
	origin   string
}

// Option is a functional option for configuring Server.
type Option func(*Server)

// WithAddr sets the listen address. Default is "127.0.0.1:0", an ephemeral
// loopback port.
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithLogger sets the logger for the server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records request metrics and serves gatherer on /metrics.
func WithMetrics(m *telemetry.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithClosureRecorder receives window closure beacons.
func WithClosureRecorder(r ClosureRecorder) Option {
	return func(s *Server) {
		s.closures = r
	}
}

// WithHealthChecker sets the health checker for the /health endpoint.
func WithHealthChecker(hc *HealthChecker) Option {
	return func(s *Server) {
		s.health = hc
	}
}

// NewServer creates a callback server publishing to bus.
func NewServer(bus *message.Bus, opts ...Option) *Server {
	s := &Server{
		bus:    bus,
		addr:   "127.0.0.1:0",
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.health == nil {
		s.health = NewHealthChecker(bus, "")
	}
	return s
}

// Listen binds the listen address. It is called by Start when needed, and
// may be called earlier so that Origin and CallbackURL are known before
// serving.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.origin = "http://" + ln.Addr().String()
	return nil
}

// Origin is scheme://host:port of the callback page, the origin the
// browser attaches to its messages. Empty before Listen.
func (s *Server) Origin() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.origin
}

// CallbackURL is the callback page URL for one handshake.
func (s *Server) CallbackURL(handshakeID string) string {
	q := url.Values{}
	q.Set("handshake", handshakeID)
	return s.Origin() + CallbackPath + "?" + q.Encode()
}

// Handler builds the route table with its middleware chain.
func (s *Server) Handler() http.Handler {
	origin := s.Origin()

	mux := http.NewServeMux()
	mux.Handle(CallbackPath, pageHandler())
	mux.Handle("/auth/message", messageHandler(s.bus))
	mux.Handle("/auth/closed", OriginGuard(origin)(closedHandler(s.closures)))
	mux.Handle("/health", s.health.Handler())
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	mux.Handle("/favicon.ico", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	var handler http.Handler = mux
	handler = RequestIDMiddleware(s.logger)(handler)
	handler = MetricsMiddleware(s.metrics)(handler)
	return handler
}

// Start serves until ctx is cancelled or Close is called.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.server != nil {
		s.mu.Unlock()
		return errors.New("callback server already started")
	}
	ln := s.listener
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.server = srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Debug("callback server listening", "origin", s.Origin())
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return s.Close()
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return err
	}
}

// Close gracefully shuts the server down. Safe to call more than once.
func (s *Server) Close() error {
	s.mu.Lock()
	srv := s.server
	ln := s.listener
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if srv == nil {
		if ln != nil {
			return ln.Close()
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Error("error during callback server shutdown", "error", err)
		return err
	}
	s.logger.Debug("callback server shutdown complete")
	return nil
}

// Compile-time check that Server implements CallbackServer.
var _ inbound.CallbackServer = (*Server)(nil)
