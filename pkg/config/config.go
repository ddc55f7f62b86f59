package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Timeout time.Duration
		BaseURL string
	}

	// Database configuration
	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
		MaxConns int
		Timeout  time.Duration
	}

	// JWT configuration for wallet session tokens
	JWT struct {
		Secret string
		Expiry time.Duration
	}

	// Cooldowns govern how often a single wallet may create or vote.
	// These are the domain rate limits; the per-IP limiter below is only an
	// abuse guard for the HTTP surface.
	Cooldowns struct {
		Create time.Duration
		Vote   time.Duration
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
		AllowedOrigins []string
		TrustedProxies []string
		MaxBodySize    int64
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}

	// Upstream holds the external generation collaborators
	Upstream struct {
		OpenAIBaseURL   string
		OpenAIKey       string
		ChatModel       string
		ReplicateURL    string
		ReplicateToken  string
		VideoModel      string
		ChatTimeout     time.Duration
		VideoTimeout    time.Duration
		MaxChatHistory  int
		MaxReplyTokens  int
	}

	// Redis configuration for the community feed cache
	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	// Cache settings (in-memory fallback when Redis is not configured)
	Cache struct {
		Enabled     bool
		TTL         time.Duration
		MaxSize     int
		PurgeWindow time.Duration
	}

	// Validation settings; schema validation is off unless a path is set
	Validation struct {
		OpenAPISchemaPath string
	}
}

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables.
// Uses singleton pattern to ensure only one instance exists.
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = &Config{}

		// Server config
		instance.Server.Port = getEnvString("PORT", "8081")
		instance.Server.Env = getEnvString("APP_ENV", "development")
		instance.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)
		instance.Server.BaseURL = getEnvString("BASE_URL", "http://localhost:"+instance.Server.Port)

		// Database config
		instance.Database.Host = getEnvString("DB_HOST", "localhost")
		instance.Database.Port = getEnvString("DB_PORT", "5432")
		instance.Database.User = getEnvString("DB_USER", "postgres")
		instance.Database.Password = getEnvString("DB_PASSWORD", "postgres")
		instance.Database.Name = getEnvString("DB_NAME", "waifuhub")
		instance.Database.SSLMode = getEnvString("DB_SSL_MODE", "disable")
		instance.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 20)
		instance.Database.Timeout = getEnvDuration("DB_TIMEOUT", 5*time.Second)

		// JWT config
		instance.JWT.Secret = getEnvString("JWT_SECRET", "default-jwt-secret-do-not-use-in-production")
		instance.JWT.Expiry = getEnvDuration("JWT_EXPIRY", 24*time.Hour)

		// Cooldowns
		instance.Cooldowns.Create = getEnvDuration("CREATE_COOLDOWN", 10*time.Minute)
		instance.Cooldowns.Vote = getEnvDuration("VOTE_COOLDOWN", 10*time.Minute)

		// Security config
		instance.Security.RateLimit = float64(getEnvInt("RATE_LIMIT", 5))
		instance.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 10)
		instance.Security.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"*"})
		instance.Security.TrustedProxies = getEnvStringSlice("TRUSTED_PROXIES", []string{"127.0.0.1"})
		instance.Security.MaxBodySize = getEnvInt64("MAX_BODY_SIZE", 1<<20) // 1MB

		// Logging config
		instance.Logging.Level = getEnvString("LOG_LEVEL", "info")
		instance.Logging.Format = getEnvString("LOG_FORMAT", "json")

		// Upstream services
		instance.Upstream.OpenAIBaseURL = getEnvString("OPENAI_BASE_URL", "https://api.openai.com/v1")
		instance.Upstream.OpenAIKey = getEnvString("OPENAI_API_KEY", "")
		instance.Upstream.ChatModel = getEnvString("CHAT_MODEL", "gpt-4")
		instance.Upstream.ReplicateURL = getEnvString("REPLICATE_BASE_URL", "https://api.replicate.com/v1")
		instance.Upstream.ReplicateToken = getEnvString("REPLICATE_API_TOKEN", "")
		instance.Upstream.VideoModel = getEnvString("VIDEO_MODEL", "luma/ray-flash-2-540p")
		instance.Upstream.ChatTimeout = getEnvDuration("CHAT_TIMEOUT", 30*time.Second)
		instance.Upstream.VideoTimeout = getEnvDuration("VIDEO_TIMEOUT", 5*time.Minute)
		instance.Upstream.MaxChatHistory = getEnvInt("MAX_CHAT_HISTORY", 50)
		instance.Upstream.MaxReplyTokens = getEnvInt("MAX_REPLY_TOKENS", 150)

		// Redis
		instance.Redis.Addr = getEnvString("REDIS_ADDR", "")
		instance.Redis.Password = getEnvString("REDIS_PASSWORD", "")
		instance.Redis.DB = getEnvInt("REDIS_DB", 0)

		// Cache settings
		instance.Cache.Enabled = getEnvBool("CACHE_ENABLED", true)
		instance.Cache.TTL = getEnvDuration("CACHE_TTL", 30*time.Second)
		instance.Cache.MaxSize = getEnvInt("CACHE_MAX_SIZE", 1000)
		instance.Cache.PurgeWindow = getEnvDuration("CACHE_PURGE_WINDOW", 10*time.Minute)

		// Validation
		instance.Validation.OpenAPISchemaPath = getEnvString("OPENAPI_SCHEMA_PATH", "")
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
