package config

import "github.com/arbiterlabs/symposium/internal/llm"

// Config is the root configuration for symposium.
type Config struct {
	Provider ProviderConfig `yaml:"provider,omitempty"`
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`
	Agents   []AgentEntry   `yaml:"agents,omitempty"`
	Debate   DebateConfig   `yaml:"debate,omitempty"`
	Store    StoreConfig    `yaml:"store,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// ProviderConfig selects the generation backend shared by all speakers.
type ProviderConfig struct {
	Name    string `yaml:"name,omitempty"` // "ollama" | "openai"
	Model   string `yaml:"model,omitempty"`
	BaseURL string `yaml:"baseUrl,omitempty"`
	APIKey  string `yaml:"apiKey,omitempty"` // supports ${ENV_VAR}
}

// DefaultsConfig carries per-debate defaults applied when a start request
// leaves the field unset.
type DefaultsConfig struct {
	Rounds             int            `yaml:"rounds,omitempty"`
	MaxDurationMinutes int            `yaml:"maxDurationMinutes,omitempty"`
	Generation         llm.GenOptions `yaml:"generation,omitempty"`
}

// AgentEntry defines one configured speaker.
type AgentEntry struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Role         string `yaml:"role,omitempty"`
	SystemPrompt string `yaml:"systemPrompt,omitempty"`
}

// DebateConfig tunes the round strategies. SubTopics cycles one focus per
// round; Leads maps a sub-topic to the role keyword that opens that round.
type DebateConfig struct {
	SubTopics []string          `yaml:"subTopics,omitempty"`
	Leads     map[string]string `yaml:"leads,omitempty"`
}

// StoreConfig configures session persistence. An empty path keeps sessions
// in memory only.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // silent | error | warn | info | debug
	Style string `yaml:"style,omitempty"` // "pretty" | "json"
}
