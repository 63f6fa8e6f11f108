// Package main is the entry point for the Joovlink API server. It
// reads configuration from environment variables, builds the logger,
// and starts the server. All application logic lives under internal/.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lmittmann/tint"

	"github.com/joovlink/joovlink/internal/email"
	"github.com/joovlink/joovlink/internal/server"
)

func main() {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." && cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLogger builds an slog.Logger from LOG_LEVEL and LOG_FORMAT.
// LOG_FORMAT=json selects the machine-readable handler for production;
// anything else gets tint's colorized text output for development.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: level}))
}

func loadConfig() (server.Config, error) {
	port := 8080
	if v := os.Getenv("PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return server.Config{}, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		port = n
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return server.Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/joovlink.db"
	}

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = fmt.Sprintf("http://localhost:%d", port)
	}

	smtpPort := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return server.Config{}, fmt.Errorf("invalid SMTP_PORT %q: %w", v, err)
		}
		smtpPort = n
	}

	cfg := server.Config{
		Port:      port,
		DBPath:    dbPath,
		JWTSecret: jwtSecret,

		Email: email.Config{
			Host:        os.Getenv("SMTP_HOST"),
			Port:        smtpPort,
			Username:    os.Getenv("SMTP_USER"),
			Password:    os.Getenv("SMTP_PASS"),
			From:        os.Getenv("SMTP_FROM"),
			FromName:    os.Getenv("SMTP_FROM_NAME"),
			TLS:         os.Getenv("SMTP_TLS") != "false",
			FrontendURL: frontendURL,
		},

		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:   os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:    os.Getenv("GOOGLE_CALLBACK_URL"),
		LinkedInClientID:     os.Getenv("LINKEDIN_CLIENT_ID"),
		LinkedInClientSecret: os.Getenv("LINKEDIN_CLIENT_SECRET"),
		LinkedInCallbackURL:  os.Getenv("LINKEDIN_CALLBACK_URL"),
	}

	if cfg.GoogleClientID != "" && cfg.GoogleCallbackURL == "" {
		cfg.GoogleCallbackURL = fmt.Sprintf("http://localhost:%d/api/auth/google/callback", port)
	}
	if cfg.LinkedInClientID != "" && cfg.LinkedInCallbackURL == "" {
		cfg.LinkedInCallbackURL = fmt.Sprintf("http://localhost:%d/api/auth/linkedin/callback", port)
	}

	return cfg, nil
}
