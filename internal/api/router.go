package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"github.com/sereno-app/sereno-api/internal/ai"
	"github.com/sereno-app/sereno-api/internal/ai/gemini"
	"github.com/sereno-app/sereno-api/internal/ai/openai"
	"github.com/sereno-app/sereno-api/internal/ai/rasa"
	"github.com/sereno-app/sereno-api/internal/api/handler"
	customMiddleware "github.com/sereno-app/sereno-api/internal/api/middleware"
	"github.com/sereno-app/sereno-api/internal/config"
	"github.com/sereno-app/sereno-api/internal/repository/mongo"
	"github.com/sereno-app/sereno-api/internal/repository/postgres"
	"github.com/sereno-app/sereno-api/internal/repository/redis"
	"github.com/sereno-app/sereno-api/internal/security"
	"github.com/sereno-app/sereno-api/internal/service"
)

// newPrimaryProvider builds the configured completion backend.
func newPrimaryProvider(cfg config.AIConfig) ai.Provider {
	switch cfg.PrimaryProvider {
	case "gemini":
		log.Info().Str("model", cfg.Gemini.Model).Msg("Using Gemini as primary AI provider")
		return gemini.NewProvider(gemini.Config{
			APIKey:    cfg.Gemini.APIKey,
			Model:     cfg.Gemini.Model,
			MaxTokens: cfg.Gemini.MaxTokens,
		})
	default:
		log.Info().Str("model", cfg.OpenAI.Model).Msg("Using OpenAI as primary AI provider")
		return openai.NewProvider(openai.Config{
			APIKey:    cfg.OpenAI.APIKey,
			Model:     cfg.OpenAI.Model,
			BaseURL:   cfg.OpenAI.BaseURL,
			Timeout:   cfg.OpenAI.Timeout,
			MaxTokens: cfg.OpenAI.MaxTokens,
		})
	}
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *postgres.DB, mongoClient *mongo.Client, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize security components
	jwtManager := security.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	sessionRepo := mongo.NewSessionRepository(mongoClient)

	// Initialize rate limiter and token deny-list
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)
	denylist := redis.NewTokenDenylist(redisClient, cfg.Auth.RefreshTokenTTL)

	// Assemble the AI response chain: primary completion provider,
	// Rasa dialogue engine, static safety payload as the terminal step.
	primary := newPrimaryProvider(cfg.AI)
	secondary := rasa.NewClient(rasa.Config{
		URL:     cfg.AI.Rasa.URL,
		Timeout: cfg.AI.Rasa.Timeout,
	})
	resolver := ai.NewResolver(primary, secondary, cfg.AI.OpenAI.Timeout)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, denylist)
	chatService := service.NewChatService(sessionRepo, resolver, cfg.AI.HistoryWindow)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	sessionHandler := handler.NewSessionHandler(chatService)
	aiChatHandler := handler.NewAIChatHandler(chatService)

	// Auth middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager, denylist)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db, mongoClient))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimitMiddleware.Limit)

			r.Route("/chat-sessions", func(r chi.Router) {
				r.Get("/", sessionHandler.List)
				r.Post("/", sessionHandler.Create)

				r.Route("/{sessionID}", func(r chi.Router) {
					r.Get("/messages", sessionHandler.GetMessages)
					r.Post("/messages", sessionHandler.SendMessage)
					r.Delete("/", sessionHandler.Delete)
				})
			})

			r.Route("/ai-chat", func(r chi.Router) {
				r.Get("/", aiChatHandler.Bootstrap)
				r.Get("/health", aiChatHandler.Health)
			})
		})
	})

	return r
}
