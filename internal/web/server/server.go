// Package server wires the panel's routes, middleware and background jobs.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/foxzi/leadboard/internal/apiclient"
	"github.com/foxzi/leadboard/internal/audit"
	"github.com/foxzi/leadboard/internal/campaign"
	"github.com/foxzi/leadboard/internal/config"
	"github.com/foxzi/leadboard/internal/leadswift"
	"github.com/foxzi/leadboard/internal/mailbox"
	"github.com/foxzi/leadboard/internal/metrics"
	"github.com/foxzi/leadboard/internal/records"
	"github.com/foxzi/leadboard/internal/session"
	"github.com/foxzi/leadboard/internal/web/handlers"
	"github.com/foxzi/leadboard/internal/web/middleware"
	"github.com/foxzi/leadboard/internal/web/static"
	"github.com/foxzi/leadboard/internal/web/views"
)

const (
	sweepInterval   = 10 * time.Minute
	limiterInterval = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	sessions *session.Store
	manager  *session.Manager
	audit    *audit.Store
	limiter  *middleware.RateLimiter
	metrics  *metrics.Metrics
	handlers *handlers.Handlers
	http     *http.Server
}

func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	viewEngine, err := views.New(cfg.Location())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize views: %w", err)
	}

	sessions, err := session.OpenStore(cfg.Storage.SessionPath, cfg.Auth.SessionSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	auditStore, err := audit.Open(cfg.Storage.AuditPath, logger)
	if err != nil {
		sessions.Close()
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		metrics.SetGlobal(m)
	}

	api := apiclient.New(cfg.Backend.BaseURL, cfg.Backend.APIKey)
	manager := session.NewManager(sessions, api, session.ManagerConfig{
		Secret:     cfg.Auth.SessionSecret,
		CookieName: cfg.Auth.CookieName,
		Secure:     cfg.Auth.CookieSecure || cfg.Server.TLS.Enabled,
		TTL:        cfg.Auth.SessionTTL,
	}, logger)

	if !cfg.LeadSwiftConfigured() {
		logger.Warn("leadswift is not configured, search pages will report an error")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		manager:  manager,
		audit:    auditStore,
		limiter:  middleware.NewRateLimiter(cfg.Auth.LoginRateMinute, cfg.Auth.LoginRateHour),
		metrics:  m,
		handlers: handlers.New(handlers.Deps{
			Logger:    logger,
			Views:     viewEngine,
			API:       api,
			LeadSwift: leadswift.New(cfg.LeadSwift.BaseURL, cfg.LeadSwift.APIKey),
			Campaigns: campaign.NewDemoStore(),
			Mailbox:   mailbox.NewChecker(cfg.Mailbox.HelloName, cfg.Mailbox.DialTimeout, logger),
			Audit:     auditStore,
			Formatter: records.NewFormatter(cfg.Location(), cfg.Server.PhoneRegion),
		}),
	}

	s.http = &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the panel's routes
func (s *Server) Handler() http.Handler {
	h := s.handlers
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Recovery(s.logger))
	r.Use(metrics.HTTPMiddleware)
	r.Use(middleware.IPFilter(s.cfg.Server.AllowedIPs, s.logger))
	r.Use(middleware.MethodOverride)

	r.Get("/health", h.Health)
	if s.metrics != nil {
		r.Method(http.MethodGet, s.cfg.Metrics.Path, s.metrics.Handler())
	}
	r.Handle("/static/*", http.StripPrefix("/static", static.Handler()))

	limit := middleware.Limit(s.limiter, s.logger)

	r.Group(func(r chi.Router) {
		r.Use(s.manager.Middleware)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", h.LoginPage)
			r.With(limit).Post("/login", h.Login)
			r.Get("/signup", h.SignupPage)
			r.With(limit).Post("/signup", h.Signup)
			r.Post("/logout", h.Logout)
		})

		r.Route("/api", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   s.cfg.CORS.AllowedOrigins,
				AllowedMethods:   []string{"GET", "OPTIONS"},
				AllowCredentials: true,
			}))
			r.Use(middleware.RequireAuthAPI)
			r.Get("/dashboard", h.DashboardAPI)
		})

		// Protected pages
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(http.HandlerFunc(h.Loading)))

			r.Get("/", h.Dashboard)

			for _, res := range records.All() {
				pages := h.Records(res)
				r.Route(res.Path, func(r chi.Router) {
					r.Get("/", pages.List)
					r.Post("/", pages.Create)
					r.Get("/new", pages.New)
					r.Get("/export", pages.Export)
					r.Post("/import", pages.Import)
					r.Get("/{id}", pages.Detail)
					r.Put("/{id}", pages.Update)
					r.Delete("/{id}", pages.Delete)
					r.Get("/{id}/edit", pages.Edit)
					r.Get("/{id}/delete", pages.ConfirmDelete)
					if res == records.SalesTeam {
						r.Post("/{id}/check", h.CheckMailbox)
					}
				})
			}

			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", h.CampaignsList)
				r.Post("/", h.CampaignsCreate)
				r.Get("/new", h.CampaignsNew)
				r.Get("/{id}", h.CampaignsView)
				r.Delete("/{id}", h.CampaignsDelete)
				r.Post("/{id}/searches", h.CampaignsAddSearch)
				r.Post("/{id}/pause", h.CampaignsPause)
				r.Post("/{id}/resume", h.CampaignsResume)
			})

			r.Get("/searches", h.Searches)
			r.Get("/search/{id}", h.SearchDetail)
			r.Post("/search/{id}/sync", h.SearchSync)

			r.Get("/audit", h.AuditLog)
			r.Get("/databases", h.Databases)
		})
	})

	r.NotFound(s.manager.Middleware(http.HandlerFunc(h.NotFound)).ServeHTTP)

	return r
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	bgCtx, stop := context.WithCancel(ctx)
	defer stop()

	go s.manager.RunSweeper(bgCtx, sweepInterval)
	go s.limiter.Run(bgCtx, limiterInterval)

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting web server", "addr", s.cfg.Server.ListenAddr, "tls", s.cfg.Server.TLS.Enabled)
		if s.cfg.Server.TLS.Enabled {
			errCh <- s.http.ListenAndServeTLS(s.cfg.Server.TLS.CertFile, s.cfg.Server.TLS.KeyFile)
		} else {
			errCh <- s.http.ListenAndServe()
		}
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", "error", err)
		}
		s.Close()
		return nil
	}
}

// Close releases the session and audit databases
func (s *Server) Close() {
	if err := s.sessions.Close(); err != nil {
		s.logger.Error("failed to close session store", "error", err)
	}
	if err := s.audit.Close(); err != nil {
		s.logger.Error("failed to close audit log", "error", err)
	}
}
