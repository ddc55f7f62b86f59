package router

import (
	"waifuhub/backend/internal/api"
	"waifuhub/backend/internal/ws"
	"waifuhub/backend/pkg/di"
	"waifuhub/backend/pkg/errors"
	"waifuhub/backend/pkg/logger"
	"waifuhub/backend/pkg/middleware"
	"waifuhub/backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)

	cfg := container.Config
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	_ = engine.SetTrustedProxies(cfg.Security.TrustedProxies)

	engine.Use(middleware.RequestID())
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	rateLimiter := middleware.NewRateLimiter(container.Logger, middleware.RateLimiterOptions{
		Limit:          rate.Limit(cfg.Security.RateLimit),
		Burst:          cfg.Security.RateLimitBurst,
		ExpiryDuration: middleware.DefaultRateLimiterOptions().ExpiryDuration,
		KeyFunc:        middleware.DefaultRateLimiterOptions().KeyFunc,
	})
	engine.Use(rateLimiter.Middleware())

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware(r.Container.Config.Security.AllowedOrigins))

	if schemaPath := r.Container.Config.Validation.OpenAPISchemaPath; schemaPath != "" {
		if v, err := validator.NewOpenAPIValidator(schemaPath); err != nil {
			r.Logger.Warn("OpenAPI validation disabled", "error", err)
		} else {
			r.Engine.Use(v.Middleware())
		}
	}

	requireAuth := middleware.RequireAuth(r.Container.JWTService)
	optionalAuth := middleware.OptionalAuth(r.Container.JWTService)

	authController := api.NewAuthController(r.Container.UserService)
	waifuController := api.NewWaifuController(r.Container.WaifuService)
	voteController := api.NewVoteController(r.Container.VoteService)
	chatController := api.NewChatController(r.Container.ChatService)
	healthController := api.NewHealthController(r.Container.Health)
	wsHandler := ws.NewHandler(r.Container.ChatService, r.Logger)

	v1 := r.Engine.Group("/api/v1")

	v1.GET("/health", healthController.Health)

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/connect", authController.Connect)
		authRoutes.GET("/me", requireAuth, authController.Me)
	}

	waifuRoutes := v1.Group("/waifus")
	{
		waifuRoutes.POST("/generate", requireAuth, waifuController.Generate)
		waifuRoutes.POST("/:id/publish", requireAuth, waifuController.Publish)
		waifuRoutes.GET("/community", waifuController.Community)
		waifuRoutes.GET("/mine", requireAuth, waifuController.Mine)
		waifuRoutes.GET("/:id", optionalAuth, waifuController.Get)
	}

	voteRoutes := v1.Group("/votes")
	{
		voteRoutes.POST("", requireAuth, voteController.Cast)
		voteRoutes.GET("/status", optionalAuth, voteController.Status)
	}

	chatRoutes := v1.Group("/chat")
	{
		chatRoutes.POST("", optionalAuth, chatController.Chat)
		chatRoutes.GET("/history", requireAuth, chatController.History)
	}

	r.Engine.GET("/ws/chat", optionalAuth, wsHandler.Serve)
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		switch {
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, Authorization, Origin, Upgrade, Connection, Cache-Control, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Upgrade, Connection, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
