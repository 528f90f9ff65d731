package ai

import (
	"context"
	"fmt"
)

// AnthropicConfig placeholder for anthropic instrumentation configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// AnthropicClient is a stub that can be expanded once an official Go SDK is
// adopted.
type AnthropicClient struct{}

// NewAnthropicClient constructs the stub client.
func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	return &AnthropicClient{}, nil
}

// CreateMessage is not yet implemented for Anthropic models.
func (a *AnthropicClient) CreateMessage(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("anthropic instrumentation not implemented")
}
