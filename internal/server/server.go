// Package server wires the application together: database, services,
// handlers, middleware and routes, plus graceful startup and shutdown.
// It is the composition root; main.go only reads config and calls into
// here.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/joovlink/joovlink/internal/auth"
	"github.com/joovlink/joovlink/internal/email"
	"github.com/joovlink/joovlink/internal/handler"
	"github.com/joovlink/joovlink/internal/middleware"
	sqliteRepo "github.com/joovlink/joovlink/internal/repository/sqlite"
	"github.com/joovlink/joovlink/internal/service"
)

// Config holds everything the server needs to start. main.go fills it
// from environment variables.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string

	Email email.Config

	GoogleClientID       string
	GoogleClientSecret   string
	GoogleCallbackURL    string
	LinkedInClientID     string
	LinkedInClientSecret string
	LinkedInCallbackURL  string
}

// Server owns the router and the resources that must be released on
// shutdown. The database connection is closed in Start() after the
// HTTP server drains.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database, token and
// password services, mailer, OAuth providers, then the service and
// handler layers, and finally the route table.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	var mailer email.Sender
	if s.config.Email.Host != "" {
		m, err := email.NewMailer(s.config.Email)
		if err != nil {
			return fmt.Errorf("creating mailer: %w", err)
		}
		mailer = m
	} else {
		s.logger.Warn("SMTP_HOST not set, emails will be logged instead of sent")
		mailer = &email.LogSender{Logger: s.logger}
	}

	var providers []*auth.Provider
	if s.config.GoogleClientID != "" {
		providers = append(providers, auth.NewGoogleProvider(
			s.config.GoogleClientID, s.config.GoogleClientSecret, s.config.GoogleCallbackURL))
	}
	if s.config.LinkedInClientID != "" {
		providers = append(providers, auth.NewLinkedInProvider(
			s.config.LinkedInClientID, s.config.LinkedInClientSecret, s.config.LinkedInCallbackURL))
	}
	if len(providers) == 0 {
		s.logger.Warn("no OAuth providers configured, social login is disabled")
	}

	authService := service.NewAuthService(
		s.db.Users(), tokens, auth.NewPasswordService(), auth.NewOneTimeTokens(), mailer, s.logger)
	jobService := service.NewJobService(s.db.Jobs(), s.logger)
	savedService := service.NewSavedJobService(s.db.SavedJobs(), s.db.Jobs(), s.logger)
	profileService := service.NewProfileService(s.db.Profiles(), s.logger)

	authHandler := handler.NewAuthHandler(authService, providers, s.logger)
	jobHandler := handler.NewJobHandler(jobService, s.logger)
	savedHandler := handler.NewSavedJobHandler(savedService, s.logger)
	profileHandler := handler.NewProfileHandler(profileService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/healthz", s.handleHealthz)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Get("/verify", authHandler.HandleVerify)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/forgot-password", authHandler.HandleForgotPassword)
			r.Post("/reset-password", authHandler.HandleResetPassword)
			r.Post("/resend-verification", authHandler.HandleResendVerification)
			r.Post("/resend-verification-by-token", authHandler.HandleResendVerificationByToken)
			r.Post("/logout", authHandler.HandleLogout)

			r.Get("/{provider}", authHandler.HandleOAuthStart)
			r.Get("/{provider}/callback", authHandler.HandleOAuthCallback)
		})

		r.Get("/jobs", jobHandler.HandleList)
		r.Get("/jobs/new", jobHandler.HandleListNew)
		r.Get("/jobs/{id}", jobHandler.HandleGetByID)

		r.Get("/profiles/{userID}", profileHandler.HandleGetByUserID)

		// Everything below requires a valid session token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)

			r.Post("/jobs", jobHandler.HandleCreate)
			r.Delete("/jobs/{id}", jobHandler.HandleDelete)

			r.Post("/saved-jobs", savedHandler.HandleSave)
			r.Get("/saved-jobs", savedHandler.HandleList)
			r.Delete("/saved-jobs/{id}", savedHandler.HandleRemove)

			r.Post("/profiles", profileHandler.HandleCreate)
			r.Get("/profiles/me", profileHandler.HandleGetMine)
			r.Put("/profiles/me", profileHandler.HandleUpdate)
		})
	})

	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains
// in-flight requests for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
