package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"waifuhub/backend/pkg/logger"

	vault "github.com/hashicorp/vault/api"
)

var (
	ErrSecretNotFound = errors.New("secret not found")
	ErrNoVaultToken   = errors.New("no vault token provided")
	ErrNoVaultAddress = errors.New("no vault address provided")
)

const (
	defaultKVPath = "waifuhub"
	defaultMount  = "secret"
	cacheTTL      = 5 * time.Minute
)

type cachedSecret struct {
	value     string
	fetchedAt time.Time
}

// Manager resolves the upstream API keys and the JWT signing secret. With
// Vault enabled it reads a KV v2 path and falls back to environment
// variables; disabled, it is a thin env wrapper so local development needs no
// Vault at all. Reads are cached with a TTL so rotated secrets are picked up.
type Manager struct {
	client *vault.Client
	kvPath string
	log    *logger.Logger

	mu    sync.RWMutex
	cache map[string]cachedSecret
}

// NewManager builds a manager from VAULT_* environment variables. Vault is
// opt-in through VAULT_ENABLED; the common local path is env-only.
func NewManager(log *logger.Logger) (*Manager, error) {
	m := &Manager{
		kvPath: os.Getenv("VAULT_SECRETS_PATH"),
		log:    log,
		cache:  make(map[string]cachedSecret),
	}
	if m.kvPath == "" {
		m.kvPath = defaultKVPath
	}

	if !envBool("VAULT_ENABLED") {
		return m, nil
	}

	addr := os.Getenv("VAULT_ADDR")
	if addr == "" {
		return nil, ErrNoVaultAddress
	}
	token := os.Getenv("VAULT_TOKEN")
	if token == "" {
		return nil, ErrNoVaultToken
	}

	vc := vault.DefaultConfig()
	vc.Address = addr
	vc.Timeout = 10 * time.Second
	vc.MaxRetries = 3

	client, err := vault.NewClient(vc)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	client.SetToken(token)
	if ns := os.Getenv("VAULT_NAMESPACE"); ns != "" {
		client.SetNamespace(ns)
	}

	m.client = client
	return m, nil
}

func envBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// GetSecret resolves a kebab-case key, preferring Vault and falling back to
// the matching environment variable (JWT_SECRET for "jwt-secret").
func (m *Manager) GetSecret(ctx context.Context, key string) (string, error) {
	if value, ok := m.cached(key); ok {
		return value, nil
	}

	if m.client != nil {
		value, err := m.readVault(ctx, key)
		switch {
		case err == nil:
			m.store(key, value)
			return value, nil
		case errors.Is(err, ErrSecretNotFound):
			m.log.Warn("secret missing in vault, trying environment", "key", key)
		default:
			return "", err
		}
	}

	value := os.Getenv(envName(key))
	if value == "" {
		return "", ErrSecretNotFound
	}
	m.store(key, value)
	return value, nil
}

// GetSecretWithDefault resolves a key, returning fallback when it is set
// nowhere. Resolution errors are logged, not surfaced.
func (m *Manager) GetSecretWithDefault(ctx context.Context, key, fallback string) string {
	value, err := m.GetSecret(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrSecretNotFound) {
			m.log.LogError(err, "secret lookup failed, using default", "key", key)
		}
		return fallback
	}
	return value
}

func (m *Manager) readVault(ctx context.Context, key string) (string, error) {
	secret, err := m.client.KVv2(defaultMount).Get(ctx, m.kvPath)
	if err != nil {
		return "", fmt.Errorf("read vault path %s: %w", m.kvPath, err)
	}
	if secret == nil || secret.Data == nil {
		return "", ErrSecretNotFound
	}
	value, ok := secret.Data[key].(string)
	if !ok || value == "" {
		return "", ErrSecretNotFound
	}
	return value, nil
}

func (m *Manager) cached(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.cache[key]
	if !ok || time.Since(entry.fetchedAt) > cacheTTL {
		return "", false
	}
	return entry.value, true
}

func (m *Manager) store(key, value string) {
	m.mu.Lock()
	m.cache[key] = cachedSecret{value: value, fetchedAt: time.Now()}
	m.mu.Unlock()
}

func envName(key string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}
