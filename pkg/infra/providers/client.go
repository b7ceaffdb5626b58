package providers

import (
	"context"
)

type Config struct {
	Credentials Credentials `json:"credentials"`
	Model       string      `json:"model"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
	Temperature float64     `json:"temperature,omitempty"`
}

type Credentials struct {
	ApiKey string `json:"api_key"`
}

// Client sends a classification prompt to an LLM provider and returns the
// raw completion text. The pipeline's decoder is the only consumer of that
// text; clients make no attempt to interpret it.
type Client interface {
	Classify(ctx context.Context, config *Config, prompt string) (*CompletionResponse, error)
}
