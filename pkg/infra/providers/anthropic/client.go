package anthropic

import (
	"context"
	"fmt"
	"sync"

	"github.com/ToxicGuard/ChatGuard/pkg/infra/providers"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type client struct {
	clientPool *sync.Map
}

func NewAnthropicClient() providers.Client {
	return &client{
		clientPool: &sync.Map{},
	}
}

func (c *client) Classify(
	ctx context.Context,
	config *providers.Config,
	prompt string,
) (*providers.CompletionResponse, error) {
	if config.Credentials.ApiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	anthropicClient := c.getOrCreateClient(config.Credentials.ApiKey)

	model := anthropic.ModelClaude3_5HaikuLatest
	if config.Model != "" {
		model = anthropic.Model(config.Model)
	}

	maxTokens := int64(config.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 1000
	}

	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	if config.Temperature > 0 {
		params.Temperature = anthropic.Float(config.Temperature)
	}

	message, err := anthropicClient.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	if len(message.Content) == 0 {
		return nil, fmt.Errorf("no completions returned")
	}

	var responseText string
	for _, content := range message.Content {
		if content.Type == "text" {
			responseText = content.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content returned")
	}

	return &providers.CompletionResponse{
		ID:       message.ID,
		Model:    string(model),
		Response: responseText,
		Usage: providers.Usage{
			PromptTokens:     int(message.Usage.InputTokens),
			CompletionTokens: int(message.Usage.OutputTokens),
			TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}, nil
}

func (c *client) getOrCreateClient(apiKey string) anthropic.Client {
	if clientVal, ok := c.clientPool.Load(apiKey); ok {
		cached, ok := clientVal.(anthropic.Client)
		if ok {
			return cached
		}
	}
	newClient := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	c.clientPool.Store(apiKey, newClient)
	return newClient
}
