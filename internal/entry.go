// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/bwservices06-art/bwservicesweb/internal/api"
	"github.com/bwservices06-art/bwservicesweb/internal/auth"
	"github.com/bwservices06-art/bwservicesweb/internal/binder"
	"github.com/bwservices06-art/bwservicesweb/internal/content"
	"github.com/bwservices06-art/bwservicesweb/internal/contentservice"
	"github.com/bwservices06-art/bwservicesweb/internal/dashboard"
	"github.com/bwservices06-art/bwservicesweb/internal/intake"
	"github.com/bwservices06-art/bwservicesweb/internal/metrics"
	"github.com/bwservices06-art/bwservicesweb/internal/site"
	"github.com/bwservices06-art/bwservicesweb/internal/sse"
	"github.com/bwservices06-art/bwservicesweb/internal/store"
	"github.com/bwservices06-art/bwservicesweb/internal/web"
)

const (
	sseHeartbeat    = 25 * time.Second
	shutdownTimeout = 10 * time.Second
)

// NewLogger returns the JSON logger used by every command.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// OpenStore creates the parent directory of path and opens the content store.
func OpenStore(path string) (*store.SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	return s, nil
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := NewLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("base_url", cfg.App.BaseURL),
		slog.String("store_path", cfg.Store.Path),
		slog.Bool("store_watch", cfg.Store.Watch),
		slog.String("api_mode", cfg.API.Mode),
		slog.String("uploads_path", cfg.Uploads.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Uploads.Path, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}

	s := app.store
	if s == nil {
		var err error
		if s, err = OpenStore(cfg.Store.Path); err != nil {
			return err
		}
		defer s.Close()
	}

	srv, err := newServer(cfg, s, logger)
	if err != nil {
		return err
	}
	defer srv.close()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           srv.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Store.Watch {
		g.Go(func() error {
			if err := s.WatchFile(gCtx, logger); err != nil {
				return fmt.Errorf("store watcher: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Live streams only end when their channels close.
		srv.broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// server is the assembled HTTP surface with the live bindings feeding it.
type server struct {
	handler http.Handler
	broker  *sse.Broker
	subs    []*binder.Subscription
}

func (s *server) close() {
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	s.broker.Close()
}

// newServer binds every content path to the live cache and its SSE topic and
// builds the router.
func newServer(cfg *Config, s *store.SQLite, logger *slog.Logger) (*server, error) {
	a, err := auth.New(auth.Config{
		Email:        cfg.Admin.Email,
		PasswordHash: cfg.Admin.PasswordHash,
		Secret:       cfg.Admin.SessionSecret,
		TTL:          cfg.Admin.SessionTTL,
	})
	if err != nil {
		return nil, err
	}

	srv := &server{broker: sse.NewBroker(sseHeartbeat)}
	live := site.NewLive()
	b := binder.New(s, logger)
	for _, k := range content.Kinds() {
		path := k.Path()
		sub, err := b.Subscribe(path, func(list []content.Record) {
			live.Set(path, list)
			srv.broker.Publish(sse.Event{Topic: path, Type: "snapshot", Data: list})
		})
		if err != nil {
			srv.close()
			return nil, fmt.Errorf("bind %s: %w", path, err)
		}
		srv.subs = append(srv.subs, sub)
	}

	pages, err := web.NewHandler(web.Deps{
		Live:   live,
		Broker: srv.broker,
		Intake: intake.NewService(s, logger,
			intake.WithConfirmDelays(cfg.Intake.InquiryConfirm, cfg.Intake.OrderConfirm)),
		Auth:          a,
		Sessions:      dashboard.NewSessions(a.TTL()),
		Store:         s,
		RatePerMinute: cfg.Intake.RatePerMinute,
		Logger:        logger,
	})
	if err != nil {
		srv.close()
		return nil, err
	}

	svc := contentservice.NewService(s)
	apiRouter := api.NewRouter(svc, cfg.API.AuthEnabled(), cfg.API.Token, cfg.Uploads.Path)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if _, err := s.Singleton(ctx, content.KindSettings.Path()); err != nil {
			logger.Warn("readiness check failed", slog.String("error", err.Error()))
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/api", apiRouter)
	r.Get("/uploads/{filename}", api.NewUploadHandler(cfg.Uploads.Path).ServeFile)
	r.Mount("/", pages.Routes())

	srv.handler = r
	return srv, nil
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, status)
}
