package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/amaumene/tubegram/internal/api"
	"github.com/amaumene/tubegram/internal/controllers"
	"github.com/amaumene/tubegram/internal/models"
	"github.com/amaumene/tubegram/internal/scheduler"
	"github.com/amaumene/tubegram/internal/services/telegram"
	"github.com/amaumene/tubegram/internal/services/ytdlp"
	"github.com/amaumene/tubegram/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// drainTimeout bounds how long shutdown waits for in-flight requests
const drainTimeout = 2 * time.Minute

var serveCmd = &cobra.Command{
	Use:               "serve",
	Short:             "Run the bot behind the webhook server",
	Args:              cobra.NoArgs,
	PersistentPreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	logger.Info("Starting tubegram")
	logger.WithFields(logrus.Fields{
		"config_dir":          filepath.Dir(cfg.DatabaseFile),
		"work_dir":            cfg.WorkDir,
		"transcode_available": cfg.TranscodeAvailable,
		"cookies_configured":  cfg.CookiesConfigured(),
	}).Info("Configuration loaded")

	// 1. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 2. Initialize services
	extractor, err := ytdlp.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize yt-dlp client: %w", err)
	}
	if version, err := extractor.Version(context.Background()); err != nil {
		logger.WithError(err).Warn("yt-dlp is not runnable, requests will fail until it is installed")
	} else {
		logger.WithField("version", version).Info("yt-dlp client initialized")
	}

	bot, err := telegram.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram client: %w", err)
	}
	if err := bot.SetCommands(controllers.CommandDescriptions, controllers.CommandOrder); err != nil {
		logger.WithError(err).Warn("Failed to publish bot commands")
	}
	if cfg.WebhookURL != "" {
		link := strings.TrimSuffix(cfg.WebhookURL, "/") + api.WebhookPath(cfg.WebhookSecret)
		if err := bot.SetWebhook(link); err != nil {
			return err
		}
		logger.Info("Webhook registered")
	}

	// 3. Initialize controllers
	classifier := utils.NewClassifier(cfg.CookiesConfigured())
	acquisitionCtrl := controllers.NewAcquisitionController(cfg, extractor, logger)
	chatCtrl := controllers.NewChatController(cfg, acquisitionCtrl, classifier, bot, db, logger)
	cleanupCtrl := controllers.NewCleanupController(cfg, db, logger)
	logger.Info("Controllers initialized")

	// 4. Initialize scheduler
	sched := scheduler.NewScheduler(cleanupCtrl, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 5. Initialize HTTP server
	server := api.NewServer(cfg, db, chatCtrl, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 6. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("tubegram is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), drainTimeout)
	defer drainCancel()
	if err := chatCtrl.Shutdown(drainCtx); err != nil {
		logger.WithError(err).Warn("Stopped before all requests finished")
	}

	logger.Info("tubegram stopped")
	return nil
}
