package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/ToxicGuard/ChatGuard/pkg/infra/providers"
	"github.com/ToxicGuard/ChatGuard/pkg/types"
	"github.com/sirupsen/logrus"
)

// Classifier batches chat messages into a single moderation prompt and asks
// the configured LLM provider for a toxicity verdict per message. The raw
// completion text is handed back untouched; decoding it is the decoder
// package's concern.
type Classifier struct {
	provider providers.Client
	config   *providers.Config
	logger   *logrus.Logger
}

func New(provider providers.Client, config *providers.Config, logger *logrus.Logger) *Classifier {
	return &Classifier{
		provider: provider,
		config:   config,
		logger:   logger,
	}
}

func (c *Classifier) Classify(ctx context.Context, messages []types.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", nil
	}

	prompt := BuildToxicityPrompt(messages)

	resp, err := c.provider.Classify(ctx, c.config, prompt)
	if err != nil {
		return "", fmt.Errorf("toxicity classification failed: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"batch_size":    len(messages),
		"model":         resp.Model,
		"prompt_tokens": resp.Usage.PromptTokens,
		"total_tokens":  resp.Usage.TotalTokens,
	}).Debug("classification response received")

	return resp.Response, nil
}

// BuildToxicityPrompt numbers the messages starting at 1 and embeds them in
// the moderation instruction. The decoder relies on that numbering when it
// converts indexes back to batch positions.
func BuildToxicityPrompt(messages []types.ChatMessage) string {
	var list strings.Builder
	for i, msg := range messages {
		fmt.Fprintf(&list, "%d. [%s]: %s\n", i+1, msg.Author.DisplayName, msg.Text)
	}

	return fmt.Sprintf(`You are a content moderation AI for a live chat. Analyze the following messages for toxicity and provide a toxicity score and reasoning for each message.

TOXICITY SCALE:
0-2: Clean/Positive (no action needed)
3-4: Mild toxicity (warning appropriate)
5-6: Moderate toxicity (timeout/delete message)
7-8: High toxicity (temporary ban)
9-10: Extreme toxicity (permanent ban)

CONSIDER AS TOXIC:
- Hate speech, slurs, discrimination
- Harassment, bullying, personal attacks
- Spam, excessive caps, repetitive content
- Sexual content, inappropriate language
- Threats, violence, harmful content
- Trolling, inflammatory behavior

MESSAGES TO ANALYZE:
%s
Respond with ONLY a JSON array in this exact format:
[
  {
    "messageIndex": 1,
    "toxicityScore": 0-10,
    "category": "hate_speech|harassment|spam|sexual|threats|trolling|clean",
    "reasoning": "brief explanation",
    "action": "none|warn|delete|timeout|ban"
  }
]

Be strict but fair. Consider context and intent. Return valid JSON only.`, list.String())
}
