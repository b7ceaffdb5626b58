package groq

import (
	"context"
	"fmt"
	"sync"

	"github.com/ToxicGuard/ChatGuard/pkg/infra/providers"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// Groq exposes an OpenAI-compatible chat completions API, so the client is
// the OpenAI SDK pointed at the Groq endpoint.
const baseURL = "https://api.groq.com/openai/v1"

const defaultModel = "llama3-70b-8192"

type client struct {
	clientPool *sync.Map
}

func NewGroqClient() providers.Client {
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

	groqClient := c.getOrCreateClient(config.Credentials.ApiKey)

	model := config.Model
	if model == "" {
		model = defaultModel
	}

	params := openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}

	if config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(config.MaxTokens))
	}

	if config.Temperature > 0 {
		params.Temperature = openai.Float(config.Temperature)
	}

	resp, err := groqClient.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("groq request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completions returned")
	}

	return &providers.CompletionResponse{
		ID:       resp.ID,
		Model:    resp.Model,
		Response: resp.Choices[0].Message.Content,
		Usage: providers.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func (c *client) getOrCreateClient(apiKey string) *openai.Client {
	if clientVal, ok := c.clientPool.Load(apiKey); ok {
		cached, ok := clientVal.(*openai.Client)
		if ok {
			return cached
		}
	}
	cli := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	c.clientPool.Store(apiKey, &cli)
	return &cli
}
