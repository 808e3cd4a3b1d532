package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethdomperin2018/ai-assist/internal/api"
	customMiddleware "github.com/ethdomperin2018/ai-assist/internal/api/middleware"
	"github.com/ethdomperin2018/ai-assist/internal/repository/redis"
	"github.com/ethdomperin2018/ai-assist/internal/security"
	"github.com/ethdomperin2018/ai-assist/internal/workspace"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	a, err := wireApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}

	coordinator := workspace.NewCoordinator(a.store, a.publisher, a.metrics)
	defer coordinator.Close()

	var limiter customMiddleware.RateLimiter
	if a.redis != nil {
		limiter = redis.NewRateLimiter(a.redis, cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst)
	}

	router := api.NewRouter(api.Dependencies{
		Config:          cfg,
		Coordinator:     coordinator,
		Notifications:   a.notifications,
		Recommendations: a.recommendations,
		AI:              a.ai,
		Store:           a.store,
		LLMRouter:       a.llmRouter,
		JWTManager:      security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL),
		RateLimiter:     limiter,
		Metrics:         a.metrics,
		ReadyChecks:     a.readyChecks,
	})

	if cfg.Reminders.Enabled {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(cfg.Reminders.Schedule, func() {
			runReminders(context.Background(), a)
		}); err != nil {
			return fmt.Errorf("failed to schedule reminders: %w", err)
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		log.Info().Str("schedule", cfg.Reminders.Schedule).Msg("Reminder schedule started")
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Shutdown
	coordinator.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
	return nil
}
