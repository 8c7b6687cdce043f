package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-safeher/config"
	"go-safeher/cronjobs"
	"go-safeher/logging"
	"go-safeher/routes"
	"go-safeher/session"
	"go-safeher/tracing"
	"go-safeher/types"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var chatMode string

func main() {
	rootCmd := &cobra.Command{
		Use:   "safeher",
		Short: "Personal safety assistant: nearby emergency services and safety advice",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant in the terminal",
		RunE:  runChat,
	}
	chatCmd.Flags().StringVar(&chatMode, "mode", string(types.Emergency), "starting mode (emergency or advice)")

	rootCmd.AddCommand(serveCmd, chatCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger and tracer shared by both
// commands.
func setup(ctx context.Context) (config.Config, *zap.Logger, func(context.Context) error, error) {
	cfg, envLoaded, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("building logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	if !envLoaded {
		logger.Debug("no .env file found, using process environment")
	}

	shutdown, err := tracing.Init(ctx, tracing.ConfigFromEnv(), logger)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("initializing tracing: %w", err)
	}
	return cfg, logger, shutdown, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, shutdownTracing, err := setup(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	defer tracing.ShutdownWithTimeout(context.Background(), shutdownTracing, logger)

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build app", zap.Error(err))
		return err
	}

	store := session.NewStore(a.deps, a.origin, logger.Named("session"))

	// Initialize cron jobs
	sweeper, err := cronjobs.InitCronJobs(store, cfg.SessionSweepSchedule, cfg.SessionIdleTimeout, logger.Named("cron"))
	if err != nil {
		return err
	}
	defer sweeper.Stop()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	r := routes.SetupRouter(store, a.advisor, a.geocoder, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", zap.Error(err))
		}
	}
	return nil
}

func runChat(cmd *cobra.Command, _ []string) error {
	mode, err := types.ParseMode(chatMode)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, shutdownTracing, err := setup(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	defer tracing.ShutdownWithTimeout(context.Background(), shutdownTracing, logger)

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	store := session.NewStore(a.deps, a.origin, logger.Named("session"))
	sess := store.Create(mode)
	return runREPL(ctx, sess.Conversation, os.Stdin, cmd.OutOrStdout())
}
