package llm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/arbiterlabs/symposium/internal/logging"
)

// ClientConfig selects and configures a generation provider.
type ClientConfig struct {
	Provider string `yaml:"provider"` // "ollama" | "openai"
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
}

// Key returns the canonical cache key for the config. The API key is not
// part of the key, so rotating credentials does not grow the cache.
func (c ClientConfig) Key() string {
	return strings.Join([]string{c.Provider, c.Model, c.BaseURL}, "|")
}

// Factory builds a Client from a ClientConfig.
type Factory func(cfg ClientConfig) (Client, error)

// Cache holds one client instance per distinct configuration. It replaces
// module-global instance caching: the cache is owned by whoever constructs
// the orchestrator and can be cleared explicitly.
type Cache struct {
	mu      sync.Mutex
	clients map[string]Client
	factory Factory
	log     *logging.Logger
}

// NewCache creates a client cache. A nil factory uses DefaultFactory.
func NewCache(factory Factory, log *logging.Logger) *Cache {
	if factory == nil {
		factory = DefaultFactory
	}
	return &Cache{
		clients: make(map[string]Client),
		factory: factory,
		log:     log.Sub("llm.cache"),
	}
}

// Get returns the cached client for cfg, building it on first use.
func (c *Cache) Get(cfg ClientConfig) (Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cfg.Key()
	if client, ok := c.clients[key]; ok {
		return client, nil
	}

	client, err := c.factory(cfg)
	if err != nil {
		return nil, err
	}
	c.clients[key] = client
	c.log.Debug().Str("provider", cfg.Provider).Str("model", cfg.Model).Msg("created client")
	return client, nil
}

// Clear evicts all cached clients.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients = make(map[string]Client)
}

// Len returns the number of cached clients.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}

// DefaultFactory builds the built-in provider clients.
func DefaultFactory(cfg ClientConfig) (Client, error) {
	switch cfg.Provider {
	case "ollama", "":
		return NewOllamaClient(cfg.BaseURL, cfg.Model), nil
	case "openai":
		return NewOpenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
