// Package nav wires the nav runtime: storage, remote gateways, and the HTTP
// lifecycle serving the timeline and image APIs.
package nav

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/millennium-tools/banav/internal/platform/timeouts"
	"github.com/millennium-tools/banav/internal/services/nav/assets"
	"github.com/millennium-tools/banav/internal/services/nav/storage/sqlite"
	"github.com/millennium-tools/banav/internal/services/nav/timeline"
)

// Options configure a nav server.
type Options struct {
	Addr            string
	DBPath          string
	LookupEndpoint  string
	CDNBaseURL      string
	ActivityFeedURL string
	RosterURL       string
}

// Server hosts the nav HTTP API and storage lifecycle.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *sqlite.Store
	logger     *log.Logger
}

// New creates a configured nav server listening on opts.Addr.
func New(opts Options) (*Server, error) {
	listener, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", opts.Addr, err)
	}

	store, err := sqlite.Open(opts.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	logger := log.Default()
	client := &http.Client{Timeout: timeouts.UpstreamFetch}

	cache := assets.NewCache(
		store,
		&assets.HTTPLookupGateway{Endpoint: opts.LookupEndpoint, Client: client},
		&assets.CDNFetcher{BaseURL: opts.CDNBaseURL, Client: client},
		assets.NewHandleRegistry(),
		&assets.LogReporter{Logger: logger},
		logger,
	)
	aggregator := timeline.NewAggregator(
		&timeline.HTTPActivityFeed{Endpoint: opts.ActivityFeedURL, Client: client},
		&timeline.HTTPRosterFeed{Endpoint: opts.RosterURL, Client: client},
		time.Now,
		logger,
	)

	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(cache, aggregator, logger))

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		store:  store,
		logger: logger,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve runs the HTTP server until context cancellation, then shuts it down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	s.logger.Printf("nav server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Close releases the server's resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.store != nil {
		_ = s.store.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}
