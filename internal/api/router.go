package api

import (
	"net/http"

	"github.com/ethdomperin2018/ai-assist/internal/api/handler"
	customMiddleware "github.com/ethdomperin2018/ai-assist/internal/api/middleware"
	"github.com/ethdomperin2018/ai-assist/internal/config"
	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/ethdomperin2018/ai-assist/internal/llm"
	"github.com/ethdomperin2018/ai-assist/internal/metrics"
	"github.com/ethdomperin2018/ai-assist/internal/security"
	"github.com/ethdomperin2018/ai-assist/internal/service"
	"github.com/ethdomperin2018/ai-assist/internal/workspace"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Dependencies are the components served by the HTTP router
type Dependencies struct {
	Config          *config.Config
	Coordinator     *workspace.Coordinator
	Notifications   *service.NotificationService
	Recommendations *service.RecommendationService
	AI              *service.AIService
	Store           domain.Store
	LLMRouter       *llm.Router
	JWTManager      *security.JWTManager
	// RateLimiter is optional; nil disables rate limiting
	RateLimiter customMiddleware.RateLimiter
	Metrics     *metrics.Metrics
	ReadyChecks map[string]handler.Pinger
}

// NewRouter creates and configures the HTTP router
func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Real-time collaboration; a mount failure leaves the rest of the API up
	deps.Coordinator.Initialize(r, deps.JWTManager, cfg.Workspace, cfg.Server.AllowedOrigins)

	if cfg.Metrics.Enabled && deps.Metrics != nil {
		r.Handle(cfg.Metrics.Path, deps.Metrics.Handler())
	}

	notificationHandler := handler.NewNotificationHandler(deps.Notifications)
	recommendationHandler := handler.NewRecommendationHandler(deps.Recommendations)
	workspaceHandler := handler.NewWorkspaceHandler(deps.Coordinator)
	aiHandler := handler.NewAIHandler(deps.AI, deps.Store)

	authMiddleware := customMiddleware.NewAuthMiddleware(deps.JWTManager)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(deps.ReadyChecks))

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			if deps.RateLimiter != nil {
				r.Use(customMiddleware.NewRateLimitMiddleware(deps.RateLimiter).Limit)
			}

			r.Get("/llm-providers", handler.ListLLMProviders(deps.LLMRouter))

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.With(customMiddleware.RequireStaff).Post("/", notificationHandler.Create)
				r.With(customMiddleware.RequireStaff).Post("/check-deadlines", notificationHandler.CheckDeadlines)
				r.Post("/{notificationID}/read", notificationHandler.MarkRead)
				r.Delete("/{notificationID}", notificationHandler.Delete)
			})

			r.Post("/recommendations/steps", recommendationHandler.Steps)

			r.Route("/ai", func(r chi.Router) {
				r.Post("/analyze-request", aiHandler.AnalyzeRequest)
				r.Post("/draft-contract", aiHandler.DraftContract)
				r.Post("/chat-response", aiHandler.ChatResponse)
			})

			// Staff-only operations on requests and their artefacts
			r.Group(func(r chi.Router) {
				r.Use(customMiddleware.RequireStaff)

				r.Route("/requests/{requestID}", func(r chi.Router) {
					r.Post("/reminders/deadline", notificationHandler.DeadlineReminder)
					r.Post("/reminders/status", notificationHandler.StatusReminder)
					r.Post("/notify-team", notificationHandler.NotifyTeam)
					r.Get("/recommendations/resources", recommendationHandler.Resources)
					r.Get("/recommendations/optimizations", recommendationHandler.Optimizations)
				})
				r.Post("/meetings/{meetingID}/reminder", notificationHandler.MeetingReminder)
				r.Post("/contracts/{contractID}/reminder", notificationHandler.ContractReminder)

				r.Get("/workspaces", workspaceHandler.List)
				r.Get("/workspaces/{requestID}", workspaceHandler.Get)
			})
		})
	})

	return r
}
