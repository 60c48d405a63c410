package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sahilchouksey/smart-campus-api/config"
	"github.com/sahilchouksey/smart-campus-api/database"
	"github.com/sahilchouksey/smart-campus-api/handlers"
	analytics_handlers "github.com/sahilchouksey/smart-campus-api/handlers/analytics"
	auth_handlers "github.com/sahilchouksey/smart-campus-api/handlers/auth"
	chat_handlers "github.com/sahilchouksey/smart-campus-api/handlers/chat"
	page_handlers "github.com/sahilchouksey/smart-campus-api/handlers/pages"
	"github.com/sahilchouksey/smart-campus-api/services/activity"
	"github.com/sahilchouksey/smart-campus-api/services/assistant"
	"github.com/sahilchouksey/smart-campus-api/services/chat"
	"github.com/sahilchouksey/smart-campus-api/services/identity"
	"github.com/sahilchouksey/smart-campus-api/utils"
	"github.com/sahilchouksey/smart-campus-api/utils/auth"
	"github.com/sahilchouksey/smart-campus-api/utils/cache"
	"github.com/sahilchouksey/smart-campus-api/utils/logging"
	"github.com/sahilchouksey/smart-campus-api/utils/middleware"
	"go.uber.org/zap"
)

// Components are the long-lived services built for the routes that the
// rest of the app (cron jobs, shutdown) also needs.
type Components struct {
	Conversations *chat.Registry
	Blacklist     *auth.BlacklistService
	Cache         *cache.RedisCache // nil when Redis is not configured
}

// Close releases what SetupRoutes opened.
func (c *Components) Close() error {
	if c.Cache != nil {
		return c.Cache.Close()
	}
	return nil
}

func SetupRoutes(app *fiber.App, store database.Storage, env *config.EnviornmentVariable, logs *logging.Loggers) (*Components, error) {
	log := logs.App
	db := store.GetDB()

	jwtSecret := env.JWT_SECRET
	if jwtSecret == "" {
		// Tokens will not survive a restart.
		jwtSecret = uuid.NewString()
		log.Warn("JWT_SECRET is not set, using an ephemeral secret")
	}
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        env.JWT_EXPIRY,
		RefreshExpiry: env.JWT_REFRESH_EXPIRY,
		Issuer:        env.JWT_ISSUER,
	})

	blacklist := auth.NewBlacklistService(db)
	identityService := identity.NewGORMService(db, jwtManager, identity.WithLogger(log.Named("identity")))

	// Redis backs brute force protection only; without it the gate still works.
	components := &Components{Blacklist: blacklist}
	var bruteForceProtection *middleware.BruteForceProtection
	if env.REDIS_URL != "" {
		redisCache, err := cache.NewRedisCache(env.REDIS_URL)
		if err != nil {
			log.Warn("failed to connect to Redis, brute force protection disabled", zap.Error(err))
		} else {
			components.Cache = redisCache
			bruteForceProtection = middleware.NewBruteForceProtection(redisCache, log.Named("brute_force"))
		}
	}

	engine, err := newChatEngine(env, log.Named("chat"))
	if err != nil {
		return nil, err
	}
	conversations := chat.NewRegistry(engine, log.Named("conversations"))
	components.Conversations = conversations

	recorder := activity.NewRecorder(db, log.Named("activity"))

	authMiddleware := middleware.NewAuthMiddleware(identityService, log.Named("auth"))
	authHandler := auth_handlers.NewAuthHandler(auth_handlers.Config{
		Backend:              identityService,
		BruteForceProtection: bruteForceProtection,
		Sessions:             conversations,
		Activity:             recorder,
		Logger:               log.Named("auth"),
		SecureCookies:        env.GO_ENV == "production",
	})
	chatHandler := chat_handlers.NewChatHandler(conversations, recorder, log.Named("chat"))
	pageHandler := page_handlers.NewPageHandler(conversations)
	analyticsHandler := analytics_handlers.NewAnalyticsHandler(recorder, log.Named("analytics"))

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    env.ALLOWED_ORIGINS,
		RateLimitRequests: env.RATE_LIMIT_REQUESTS,
		RateLimitWindow:   1 * time.Minute,
		AccessLog:         logs.Request,
	})

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, handlers.HealthChecker(store)))

	// Gated surfaces
	app.Get("/", authMiddleware.Optional(), pageHandler.Chat)
	app.Get("/auth", authMiddleware.Optional(), pageHandler.Auth)

	// API v1 group
	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authHandler.SignUp)
	if bruteForceProtection != nil {
		authGroup.Post("/signin", bruteForceProtection.CheckAndRecordAttempt(), authHandler.SignIn)
	} else {
		authGroup.Post("/signin", authHandler.SignIn)
	}
	authGroup.Post("/signout", authMiddleware.Required(), authHandler.SignOut)
	authGroup.Get("/session", authMiddleware.Optional(), authHandler.GetSession)

	chatGroup := api.Group("/chat", authMiddleware.Required())
	chatGroup.Get("/messages", chatHandler.GetMessages)
	chatGroup.Post("/messages", chatHandler.SendMessage)
	chatGroup.Get("/stream", chatHandler.Stream)
	chatGroup.Get("/quick-actions", chatHandler.GetQuickActions)

	analyticsGroup := api.Group("/analytics", authMiddleware.Required())
	analyticsGroup.Get("/me/intents", analyticsHandler.GetMyIntents)

	return components, nil
}

func newChatEngine(env *config.EnviornmentVariable, log *zap.Logger) (*chat.Engine, error) {
	catalog, err := assistant.DefaultCatalog()
	if err != nil {
		return nil, err
	}
	classifier, err := assistant.NewDefaultClassifier(catalog)
	if err != nil {
		return nil, err
	}
	latency, err := assistant.NewLatencySimulator(env.CHAT_LATENCY_MIN, env.CHAT_LATENCY_MAX)
	if err != nil {
		return nil, err
	}
	return chat.NewEngine(classifier, catalog, latency,
		chat.WithStrict(true),
		chat.WithTimeout(env.CHAT_RESOLVE_TIMEOUT),
		chat.WithLogger(log),
	)
}
