// Package config loads and validates the symposium YAML configuration.
package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Provider: ProviderConfig{
			Name:    "ollama",
			BaseURL: "http://localhost:11434",
		},
		Defaults: DefaultsConfig{
			Rounds:             3,
			MaxDurationMinutes: 30,
		},
		Logging: LoggingConfig{
			Level: "info",
			Style: "pretty",
		},
	}
}

// Agent returns the configured agent with the given id.
func (c Config) Agent(id string) (AgentEntry, bool) {
	for _, a := range c.Agents {
		if a.ID == id {
			return a, true
		}
	}
	return AgentEntry{}, false
}
