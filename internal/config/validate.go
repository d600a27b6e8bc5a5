package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	validProviders := []string{"ollama", "openai"}
	if cfg.Provider.Name != "" && !slices.Contains(validProviders, cfg.Provider.Name) {
		issues = append(issues, ValidationIssue{
			Path:    "provider.name",
			Message: fmt.Sprintf("must be one of %v, got %q", validProviders, cfg.Provider.Name),
		})
	}
	if cfg.Provider.Name == "openai" && cfg.Provider.Model == "" {
		issues = append(issues, ValidationIssue{
			Path:    "provider.model",
			Message: "required when provider.name is openai",
		})
	}

	if cfg.Defaults.Rounds < 1 || cfg.Defaults.Rounds > 10 {
		issues = append(issues, ValidationIssue{
			Path:    "defaults.rounds",
			Message: fmt.Sprintf("must be 1-10, got %d", cfg.Defaults.Rounds),
		})
	}
	if cfg.Defaults.MaxDurationMinutes < 5 || cfg.Defaults.MaxDurationMinutes > 120 {
		issues = append(issues, ValidationIssue{
			Path:    "defaults.maxDurationMinutes",
			Message: fmt.Sprintf("must be 5-120, got %d", cfg.Defaults.MaxDurationMinutes),
		})
	}
	if err := cfg.Defaults.Generation.Validate(); err != nil {
		issues = append(issues, ValidationIssue{
			Path:    "defaults.generation",
			Message: err.Error(),
		})
	}

	seen := make(map[string]bool, len(cfg.Agents))
	for i, a := range cfg.Agents {
		path := fmt.Sprintf("agents[%d]", i)
		if a.ID == "" {
			issues = append(issues, ValidationIssue{Path: path + ".id", Message: "must not be empty"})
			continue
		}
		if seen[a.ID] {
			issues = append(issues, ValidationIssue{
				Path:    path + ".id",
				Message: fmt.Sprintf("duplicate agent id %q", a.ID),
			})
		}
		seen[a.ID] = true
		if a.Name == "" {
			issues = append(issues, ValidationIssue{Path: path + ".name", Message: "must not be empty"})
		}
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}
	validStyles := []string{"pretty", "json"}
	if cfg.Logging.Style != "" && !slices.Contains(validStyles, cfg.Logging.Style) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.style",
			Message: fmt.Sprintf("must be one of %v, got %q", validStyles, cfg.Logging.Style),
		})
	}

	return issues
}
