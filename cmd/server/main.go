package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adams99Abubakry/team-nexus/internal/config"
	"github.com/Adams99Abubakry/team-nexus/internal/database"
	"github.com/Adams99Abubakry/team-nexus/internal/logging"
	"github.com/Adams99Abubakry/team-nexus/internal/mailer"
	"github.com/Adams99Abubakry/team-nexus/internal/server"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("info", false)
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.New(cfg.LogLevel, cfg.IsProduction())

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	store, err := server.NewSessionStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create session store")
	}

	var m mailer.Mailer = mailer.Disabled{}
	if cfg.Mail.Enabled() {
		m = mailer.NewSMTPMailer(cfg.Mail)
	} else {
		logger.Warn().Msg("MAIL_SMTP_HOST is not set, invitation emails will not be sent")
	}

	router := server.NewRouter(server.Dependencies{
		Config:       cfg,
		DB:           db,
		Mailer:       m,
		Logger:       logger,
		SessionStore: store,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
	logger.Info().Msg("Server stopped")
}
