// Command ahoy runs the community events site: an HTTP server over the
// JSON data directory, plus a sync subcommand that pulls content from a
// live deployment.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ahoyindiemedia/community-events/internal/analytics"
	"github.com/ahoyindiemedia/community-events/internal/config"
	"github.com/ahoyindiemedia/community-events/internal/handler"
	"github.com/ahoyindiemedia/community-events/internal/repository"
	"github.com/ahoyindiemedia/community-events/internal/service"
	"github.com/ahoyindiemedia/community-events/internal/store"
	"github.com/ahoyindiemedia/community-events/internal/syncdata"
	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	var configPath string

	root := &cobra.Command{
		Use:           "ahoy",
		Short:         "Community events site server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")

	root.AddCommand(serveCommand(&configPath, logger))
	root.AddCommand(syncCommand(&configPath, logger))

	if err := root.Execute(); err != nil {
		logger.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func serveCommand(configPath *string, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			return serve(cfg, logger)
		},
	}
}

func serve(cfg *config.Config, logger *slog.Logger) error {
	// Wire up layers.
	st := store.New(cfg.Data.Dir, logger)
	eventRepo := repository.NewEventRepository(st)
	subscribers := repository.NewSubscriberRegistry(st)
	submissions := repository.NewSubmissionRegistry(st)

	eventSvc := service.NewEventService(eventRepo)
	newsletterSvc := service.NewNewsletterService(subscribers)
	artistSvc := service.NewArtistService(submissions)

	tracker := analytics.NewTracker(
		filepath.Join(cfg.Data.Dir, "analytics"), cfg.Analytics.Salt, logger)

	h := handler.New(eventSvc, newsletterSvc, artistSvc,
		subscribers, submissions, tracker, cfg, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      h.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Run in a background goroutine so we can listen for the shutdown
	// signal.
	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func syncCommand(configPath *string, logger *slog.Logger) *cobra.Command {
	var (
		baseURL  string
		password string
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull live site data into the local data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if password == "" {
				password = cfg.Admin.Password
			}
			if password == "" {
				return fmt.Errorf("admin password required (--password or config)")
			}
			client := syncdata.New(baseURL, password, cfg.Data.Dir, logger)
			if err := client.SyncAll(cmd.Context()); err != nil {
				return err
			}
			logger.Info("all data synced")
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "https://ahoynewhaven.org", "base URL of the live site")
	cmd.Flags().StringVar(&password, "password", "", "admin password for the live site")
	return cmd
}
