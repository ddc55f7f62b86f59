package di

import (
	"context"
	"fmt"
	"time"

	"waifuhub/backend/ai"
	"waifuhub/backend/internal/service"
	"waifuhub/backend/pkg/cache"
	"waifuhub/backend/pkg/config"
	apperrors "waifuhub/backend/pkg/errors"
	"waifuhub/backend/pkg/health"
	"waifuhub/backend/pkg/jwt"
	"waifuhub/backend/pkg/logger"
	"waifuhub/backend/pkg/resilience"
	"waifuhub/backend/pkg/secrets"

	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	DB           *gorm.DB
	Logger       *logger.Logger
	Config       *config.Config
	Secrets      *secrets.Manager
	JWTService   *jwt.Service
	FeedCache    *cache.FeedCache
	ChatClient   ai.ChatClient
	VideoClient  ai.VideoClient
	UserService  *service.UserService
	WaifuService *service.WaifuService
	VoteService  *service.VoteService
	ChatService  *service.ChatService
	Health       *health.Checker
}

// New wires the application graph. Secrets come from Vault when enabled,
// otherwise from the environment through the same manager.
func New(db *gorm.DB, cfg *config.Config, log *logger.Logger) (*Container, error) {
	secretsManager, err := secrets.NewManager(log)
	if err != nil {
		return nil, fmt.Errorf("failed to create secrets manager: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	jwtSecret := secretsManager.GetSecretWithDefault(ctx, "jwt-secret", cfg.JWT.Secret)
	openAIKey := secretsManager.GetSecretWithDefault(ctx, "openai-api-key", cfg.Upstream.OpenAIKey)
	replicateToken := secretsManager.GetSecretWithDefault(ctx, "replicate-api-token", cfg.Upstream.ReplicateToken)

	jwtService := jwt.NewService(jwtSecret, cfg.JWT.Expiry)

	chatClient, videoClient := buildUpstreamClients(cfg, log, openAIKey, replicateToken)

	var feedCache *cache.FeedCache
	if cfg.Cache.Enabled {
		var store cache.Store
		if cfg.Redis.Addr != "" {
			store = cache.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			log.Info("Feed cache using redis", "addr", cfg.Redis.Addr)
		} else {
			store = cache.NewMemoryStore(cfg.Cache.MaxSize, cfg.Cache.PurgeWindow)
			log.Info("Feed cache using in-memory fallback")
		}
		feedCache = cache.NewFeedCache(store, cfg.Cache.TTL, log)
	}

	waifuService := service.NewWaifuService(db, videoClient, cfg.Cooldowns.Create, cfg.Upstream.VideoTimeout)
	voteService := service.NewVoteService(db, cfg.Cooldowns.Vote)
	if feedCache != nil {
		waifuService = waifuService.WithFeedCache(feedCache)
		voteService = voteService.WithFeedCache(feedCache)
	}

	container := &Container{
		DB:           db,
		Logger:       log,
		Config:       cfg,
		Secrets:      secretsManager,
		JWTService:   jwtService,
		FeedCache:    feedCache,
		ChatClient:   chatClient,
		VideoClient:  videoClient,
		UserService:  service.NewUserService(db, jwtService),
		WaifuService: waifuService,
		VoteService:  voteService,
		ChatService:  service.NewChatService(db, chatClient, cfg.Upstream.MaxChatHistory, cfg.Upstream.ChatTimeout),
	}
	container.Health = buildHealthChecker(container)
	return container, nil
}

// buildUpstreamClients constructs the breaker-guarded generation clients. A
// missing credential yields a client that fails with UpstreamFailure instead
// of crashing startup, so the rest of the API stays usable.
func buildUpstreamClients(cfg *config.Config, log *logger.Logger, openAIKey, replicateToken string) (ai.ChatClient, ai.VideoClient) {
	var chatClient ai.ChatClient
	if openAIKey != "" {
		inner, err := ai.NewOpenAIClient(ai.OpenAIConfig{
			BaseURL:     cfg.Upstream.OpenAIBaseURL,
			APIKey:      openAIKey,
			Model:       cfg.Upstream.ChatModel,
			Timeout:     cfg.Upstream.ChatTimeout,
			MaxTokens:   cfg.Upstream.MaxReplyTokens,
			Temperature: 0.8,
		})
		if err == nil {
			chatClient = resilience.NewGuardedChatClient(inner, log)
		}
	}
	if chatClient == nil {
		log.Warn("OPENAI_API_KEY not set, chat generation disabled")
		chatClient = unconfiguredClient{name: "chat"}
	}

	var videoClient ai.VideoClient
	if replicateToken != "" {
		inner, err := ai.NewReplicateClient(ai.ReplicateConfig{
			BaseURL: cfg.Upstream.ReplicateURL,
			Token:   replicateToken,
			Model:   cfg.Upstream.VideoModel,
			Timeout: cfg.Upstream.VideoTimeout,
		})
		if err == nil {
			videoClient = resilience.NewGuardedVideoClient(inner, log)
		}
	}
	if videoClient == nil {
		log.Warn("REPLICATE_API_TOKEN not set, video generation disabled")
		videoClient = unconfiguredClient{name: "video"}
	}

	return chatClient, videoClient
}

func buildHealthChecker(c *Container) *health.Checker {
	checker := health.NewChecker(c.Logger, 30*time.Second)

	checker.RegisterDatabaseCheck(func() error {
		return config.Ping(c.DB)
	})

	if c.FeedCache != nil {
		checker.RegisterCacheCheck(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return c.FeedCache.Ping(ctx)
		})
	}

	if ready, ok := c.ChatClient.(interface{ Ready() error }); ok {
		checker.RegisterUpstreamCheck("chat-upstream", ready.Ready)
	}
	if ready, ok := c.VideoClient.(interface{ Ready() error }); ok {
		checker.RegisterUpstreamCheck("video-upstream", ready.Ready)
	}

	return checker
}

// unconfiguredClient stands in for an upstream whose credential is absent.
type unconfiguredClient struct {
	name string
}

func (u unconfiguredClient) GenerateReply(context.Context, string, []ai.Turn, string) (string, error) {
	return "", apperrors.NewUpstreamFailure(u.name + " upstream is not configured")
}

func (u unconfiguredClient) GenerateVideo(context.Context, string) (string, error) {
	return "", apperrors.NewUpstreamFailure(u.name + " upstream is not configured")
}

func (u unconfiguredClient) Ready() error {
	return fmt.Errorf("%s upstream is not configured", u.name)
}
