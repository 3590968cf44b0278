package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/taskdesk/apiserver/config"
	"github.com/taskdesk/apiserver/internal/db"
	"github.com/taskdesk/apiserver/internal/handlers"
	"github.com/taskdesk/apiserver/internal/services"
	"github.com/taskdesk/apiserver/internal/storage"
	"github.com/taskdesk/apiserver/internal/store"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	logger     *zap.Logger
}

// New constructs a Server: it validates configuration, connects to the
// store, applies the migration sequence, and wires every service. The
// signing secret never defaults; an empty JWT_SECRET fails startup.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	jwtSecret := strings.TrimSpace(cfg.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Migrate(cfg); err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	logger.Info("schema migrations applied")

	attachments, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	if attachments != nil {
		if err := attachments.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			return nil, fmt.Errorf("ensure bucket: %w", err)
		}
		logger.Info("attachment storage ready",
			zap.String("backend", cfg.Storage.Backend),
			zap.String("bucket", attachments.Bucket()),
		)
	}

	userRepo := store.NewUserRepository(dbConn)
	delegationRepo := store.NewDelegationRepository(dbConn)
	analyticsRepo := store.NewAnalyticsRepository(dbConn)

	userService := services.NewUserService(userRepo)
	delegationService := services.NewDelegationService(delegationRepo)
	analyticsService := services.NewAnalyticsService(analyticsRepo)

	authMiddleware := handlers.RequireAuth(jwtSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger(logger),
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	handlers.AuthRouter(router, userService, jwtSecret)
	router.Route("/profile", func(r chi.Router) {
		handlers.ProfileRouter(r, userService, authMiddleware)
	})
	router.Route("/delegations", func(r chi.Router) {
		handlers.DelegationRouter(r, delegationService, attachments, authMiddleware)
	})
	handlers.AnalyticsRouter(router, analyticsService)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		logger:     logger,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
