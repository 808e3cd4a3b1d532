package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ethdomperin2018/ai-assist/internal/api/handler"
	"github.com/ethdomperin2018/ai-assist/internal/config"
	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/ethdomperin2018/ai-assist/internal/events"
	"github.com/ethdomperin2018/ai-assist/internal/llm"
	"github.com/ethdomperin2018/ai-assist/internal/llm/anthropic"
	"github.com/ethdomperin2018/ai-assist/internal/llm/gemini"
	"github.com/ethdomperin2018/ai-assist/internal/llm/ollama"
	"github.com/ethdomperin2018/ai-assist/internal/llm/openai"
	"github.com/ethdomperin2018/ai-assist/internal/logging"
	"github.com/ethdomperin2018/ai-assist/internal/metrics"
	"github.com/ethdomperin2018/ai-assist/internal/repository/memory"
	"github.com/ethdomperin2018/ai-assist/internal/repository/postgres"
	"github.com/ethdomperin2018/ai-assist/internal/repository/redis"
	"github.com/ethdomperin2018/ai-assist/internal/repository/sqlstore"
	"github.com/ethdomperin2018/ai-assist/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// app holds the wired components and the resources they own
type app struct {
	cfg             *config.Config
	store           domain.Store
	redis           *redis.Client
	publisher       events.Publisher
	metrics         *metrics.Metrics
	llmRouter       *llm.Router
	ai              *service.AIService
	notifications   *service.NotificationService
	recommendations *service.RecommendationService
	readyChecks     map[string]handler.Pinger

	closers []func()
}

// wireApp loads configuration and connects every collaborator
func wireApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logFile, err := logging.Setup(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	a := &app{
		cfg:         cfg,
		readyChecks: map[string]handler.Pinger{},
	}
	a.closers = append(a.closers, func() { closeQuietly("log file", logFile) })

	if err := a.wireStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Redis.Enabled {
		a.redis, err = redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { closeQuietly("redis", a.redis) })
		a.readyChecks["redis"] = a.redis.Ping
	}

	a.publisher, err = events.Connect(cfg.NATS)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, a.publisher.Close)

	if cfg.Metrics.Enabled {
		a.metrics = metrics.New(prometheus.NewRegistry())
	} else {
		a.metrics = metrics.NewNop()
	}

	a.llmRouter = newLLMRouter(cfg.LLM)

	notificationStore, err := a.notificationStore()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.notifications = service.NewNotificationService(notificationStore, a.store, a.publisher, a.metrics)
	a.ai = service.NewAIService(a.llmRouter, cfg.LLM.Timeout)
	a.recommendations = service.NewRecommendationService(a.store, a.ai)

	return a, nil
}

func (a *app) wireStore(ctx context.Context) error {
	switch driver := a.cfg.Storage.Driver; driver {
	case "", "memory":
		a.store = memory.NewStore()
	case "postgres":
		db, err := postgres.NewDB(ctx, a.cfg.Database)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, db.Close)
		a.readyChecks["postgres"] = db.Ping
		a.store = postgres.NewStore(db)
	case sqlstore.DriverSQLite, sqlstore.DriverMySQL:
		db, err := sqlstore.Open(ctx, driver, a.cfg.SQL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { closeQuietly(driver, db) })
		a.readyChecks[driver] = db.Ping
		a.store = sqlstore.NewStore(db)
	default:
		return fmt.Errorf("unsupported storage driver: %s", driver)
	}

	log.Info().Str("driver", a.cfg.Storage.Driver).Msg("Storage ready")
	return nil
}

func (a *app) notificationStore() (domain.NotificationStore, error) {
	switch backend := a.cfg.Notifications.Backend; backend {
	case "", "memory":
		return memory.NewNotificationStore(), nil
	case "redis":
		if a.redis == nil {
			return nil, fmt.Errorf("notification backend redis requires redis.enabled")
		}
		return redis.NewNotificationStore(a.redis), nil
	default:
		return nil, fmt.Errorf("unsupported notification backend: %s", backend)
	}
}

func newLLMRouter(cfg config.LLMConfig) *llm.Router {
	router := llm.NewRouter(cfg.DefaultProvider)
	router.RegisterProvider(openai.NewOpenAI(cfg.OpenAI))
	router.RegisterProvider(openai.NewPerplexity(cfg.Perplexity))
	router.RegisterProvider(openai.NewXAI(cfg.XAI))
	router.RegisterProvider(openai.NewDeepSeek(cfg.DeepSeek))
	router.RegisterProvider(anthropic.NewProvider(cfg.Anthropic.APIKey, cfg.Anthropic.Model))
	router.RegisterProvider(gemini.NewProvider(cfg.Gemini))
	router.RegisterProvider(ollama.NewProvider(cfg.Ollama.Host, cfg.Ollama.DefaultModel, cfg.Ollama.Enabled))

	log.Info().Strs("providers", router.ListProviders()).Str("default", cfg.DefaultProvider).Msg("LLM providers registered")
	return router
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func closeQuietly(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Warn().Err(err).Str("resource", name).Msg("Failed to close")
	}
}
