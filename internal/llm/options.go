package llm

import "fmt"

// GenOptions are the typed generation parameters accepted at the engine
// boundary. Unset pointer fields mean "provider default".
type GenOptions struct {
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int      `json:"maxTokens,omitempty" yaml:"max_tokens,omitempty"`
	TopP        *float64 `json:"topP,omitempty" yaml:"top_p,omitempty"`
}

// Validate checks option ranges. It is called once at the Start boundary so
// malformed parameters fail fast instead of surfacing mid-debate.
func (o GenOptions) Validate() error {
	if o.Temperature != nil && (*o.Temperature < 0 || *o.Temperature > 2) {
		return fmt.Errorf("temperature must be in [0, 2], got %v", *o.Temperature)
	}
	if o.TopP != nil && (*o.TopP < 0 || *o.TopP > 1) {
		return fmt.Errorf("top_p must be in [0, 1], got %v", *o.TopP)
	}
	if o.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d", o.MaxTokens)
	}
	return nil
}

// Apply copies the options onto a completion request.
func (o GenOptions) Apply(req *CompletionRequest) {
	req.Temperature = o.Temperature
	req.TopP = o.TopP
	if o.MaxTokens > 0 {
		req.MaxTokens = o.MaxTokens
	}
}

// Float64 returns a pointer to v. Convenience for literal options.
func Float64(v float64) *float64 { return &v }
