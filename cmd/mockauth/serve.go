package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mockauth/internal/harness"
	"mockauth/internal/mockauth"
	"mockauth/internal/platform/config"
	"mockauth/internal/platform/server"
	"mockauth/internal/platform/telemetry"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the mock auth harness over HTTP",
		Long:  "serve reads MOCKAUTH_* environment variables and serves the harness endpoints until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	shutdown, err := telemetry.Setup(ctx, "mockauth")
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics initialization: %w", err)
	}

	svc := mockauth.New(cfg.PluginID,
		mockauth.WithDefaults(mockauth.Defaults{
			UserEntityRef:  cfg.Auth.DefaultUserEntityRef,
			ServiceSubject: cfg.Auth.DefaultServiceSubject,
		}),
		mockauth.WithLimitedTokenTTL(cfg.Auth.LimitedTokenTTL),
	)

	handler := harness.NewHandler(svc, harness.Options{
		Logger:             logger,
		Metrics:            metrics,
		AllowLimitedAccess: cfg.Auth.AllowLimitedAccess,
		ServeMetrics:       true,
	})

	logger.Info("mock auth harness starting",
		"addr", cfg.Addr,
		"plugin_id", cfg.PluginID,
		"default_user_entity_ref", cfg.Auth.DefaultUserEntityRef,
		"default_service_subject", cfg.Auth.DefaultServiceSubject,
		"allow_limited_access", cfg.Auth.AllowLimitedAccess,
	)

	if err := server.New(cfg.Addr, handler).Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
