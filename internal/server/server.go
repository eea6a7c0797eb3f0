// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the wiring layer. New is the composition root: it opens
// the store, picks the media backend, builds the services and handlers and
// mounts them on one chi router.
//
//	config → sqlstore.Store ─┬→ services → handlers → routes
//	                         └→ media.Store (S3 or database)
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/peerhub/internal/auth"
	"github.com/sakif/peerhub/internal/config"
	"github.com/sakif/peerhub/internal/handler"
	"github.com/sakif/peerhub/internal/media"
	"github.com/sakif/peerhub/internal/metrics"
	"github.com/sakif/peerhub/internal/middleware"
	"github.com/sakif/peerhub/internal/model"
	"github.com/sakif/peerhub/internal/repository/sqlstore"
	"github.com/sakif/peerhub/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Server owns the router and the database connection, which is closed on
// shutdown.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	store   *sqlstore.Store
	metrics *metrics.Metrics
}

// New opens the database, runs migrations and wires every route.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, err := sqlstore.Open(ctx, sqlstore.Dialect(cfg.DatabaseDriver), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		store:   store,
		metrics: metrics.New(),
	}

	if err := s.setupRoutes(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.store.Close()
}

// setupRoutes configures middleware and handlers.
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: every log line and error can be traced to one request
//  2. RealIP: client address from proxy headers
//  3. Logger: logs and measures each request
//  4. Recoverer: a panic becomes a 500 instead of a dead process
//  5. CORS: answers preflights before any route runs
func (s *Server) setupRoutes(ctx context.Context) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger, s.metrics))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  originAllowed(s.config.FrontendURLs, s.config.AllowedOriginSuffixes),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// === Dependencies ===
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return err
	}
	passwords, err := auth.NewPasswordService(s.config.BcryptCost)
	if err != nil {
		return err
	}
	sessions := auth.NewSessions(tokens, s.config.IsProduction())

	mediaStore, err := s.mediaStore(ctx)
	if err != nil {
		return err
	}

	var google *auth.GoogleProvider
	if s.config.Google.Enabled() {
		google = auth.NewGoogleProvider(s.config.Google.ClientID, s.config.Google.ClientSecret, s.config.Google.RedirectURL)
	}

	authService := service.NewAuthService(s.store, tokens, passwords, s.logger)
	projectService := service.NewProjectService(s.store, mediaStore, s.logger)
	ledgerService := service.NewLedgerService(s.store, s.store, s.metrics, s.logger)
	commentService := service.NewCommentService(s.store, s.logger)
	userService := service.NewUserService(s.store, projectService, mediaStore, s.logger)

	authHandler := handler.NewAuthHandler(authService, sessions, google, s.frontendURL(), s.logger)
	projectHandler := handler.NewProjectHandler(projectService, ledgerService, s.config.MaxUploadBytes, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.config.MaxUploadBytes, s.logger)

	requireAuth := auth.RequireAuth(authService, s.logger)

	// === Operational routes ===
	s.router.Get("/healthz", handler.HandleHealth(s.store, s.logger))
	s.router.Handle("/metrics", s.metrics.Handler())
	if !s.config.S3.Enabled() {
		mediaHandler := handler.NewMediaHandler(s.store, s.logger)
		s.router.Get(media.RoutePrefix+"/*", mediaHandler.HandleGet)
	}

	// === API routes ===
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.HandleSignup)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
			r.With(requireAuth).Get("/verify/token", authHandler.HandleVerify)
			r.Post("/google", authHandler.HandleGoogle)
			if google != nil {
				r.Get("/google/login", authHandler.HandleGoogleLogin)
				r.Get("/google/callback", authHandler.HandleGoogleCallback)
			}
		})

		r.Route("/project", func(r chi.Router) {
			r.Get("/get/all", projectHandler.HandleList)
			r.Get("/get/{id}", projectHandler.HandleGet)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/create", projectHandler.HandleCreate)
				r.Put("/edit/{id}", projectHandler.HandleEdit)
				r.Delete("/delete/{id}", projectHandler.HandleDelete)
				r.Put("/toggle/like/{id}", projectHandler.HandleToggle(model.RelationLike))
				r.Put("/toggle/bookmark/{id}", projectHandler.HandleToggle(model.RelationBookmark))
				r.Put("/toggle/favorite/{id}", projectHandler.HandleToggle(model.RelationFavorite))
			})
		})

		r.Route("/comment", func(r chi.Router) {
			r.Get("/get/{projectId}", commentHandler.HandleList)
			r.With(requireAuth).Post("/create/{projectId}", commentHandler.HandleCreate)
			r.With(requireAuth).Delete("/delete/{commentId}", commentHandler.HandleDelete)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/get/projects/{userId}", userHandler.HandleProjects)
			r.Get("/get/profile/{userId}", userHandler.HandleProfile)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Put("/update/profile/{userId}", userHandler.HandleUpdateProfile)
				r.Get("/get/bookmarks/{userId}", userHandler.HandleBookmarks)
				r.Get("/get/favorites/{userId}", userHandler.HandleFavorites)
			})
		})
	})

	return nil
}

// mediaStore picks S3 when a bucket is configured, the database otherwise.
func (s *Server) mediaStore(ctx context.Context) (media.Store, error) {
	if !s.config.S3.Enabled() {
		s.logger.Info("media stored in database", slog.String("baseURL", s.config.PublicBaseURL))
		return media.NewDBStore(s.store, s.config.PublicBaseURL), nil
	}

	store, err := media.NewS3Store(ctx, media.S3Config{
		Bucket:    s.config.S3.Bucket,
		Region:    s.config.S3.Region,
		Endpoint:  s.config.S3.Endpoint,
		AccessKey: s.config.S3.AccessKey,
		SecretKey: s.config.S3.SecretKey,
		PublicURL: s.config.S3PublicBase(),
		PathStyle: s.config.S3.PathStyle,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("media stored in S3", slog.String("bucket", s.config.S3.Bucket))
	return store, nil
}

func (s *Server) frontendURL() string {
	if len(s.config.FrontendURLs) == 0 {
		return ""
	}
	return strings.TrimRight(s.config.FrontendURLs[0], "/")
}

// originAllowed accepts the listed origins exactly, plus any origin whose
// host ends in one of the suffixes (preview deployments).
func originAllowed(origins, suffixes []string) func(*http.Request, string) bool {
	exact := make(map[string]bool, len(origins))
	for _, o := range origins {
		exact[strings.TrimRight(o, "/")] = true
	}
	return func(_ *http.Request, origin string) bool {
		if exact[origin] {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return false
		}
		host := u.Hostname()
		for _, suffix := range suffixes {
			if suffix != "" && strings.HasSuffix(host, suffix) {
				return true
			}
		}
		return false
	}
}

// Start serves until ctx is cancelled, then drains in-flight requests for up
// to 30 seconds and closes the database.
func (s *Server) Start(ctx context.Context) error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("env", s.config.AppEnv),
			slog.String("database", s.config.DatabaseDriver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
