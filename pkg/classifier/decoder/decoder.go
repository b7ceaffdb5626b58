package decoder

import (
	"strings"

	"github.com/ToxicGuard/ChatGuard/pkg/types"
	"github.com/valyala/fastjson"
)

const (
	// DefaultCategory is used when the classifier omits a category.
	DefaultCategory = "unknown"
	// DefaultReasoning is used when the classifier omits its reasoning.
	DefaultReasoning = "No reason provided"

	maxToxicityScore = 10
)

// Decode turns the raw text returned by the classifier for a batch of
// batchSize messages into typed decisions. It is total: malformed, truncated
// or prose-wrapped output degrades to the best-effort subset of decisions
// that could be extracted, possibly none. It never returns partial records.
//
// The classifier numbers messages starting at 1; decisions come out 0-based.
// Decisions whose index does not fall inside the batch are dropped.
func Decode(raw string, batchSize int) []types.Decision {
	if batchSize <= 0 {
		return nil
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}

	text = stripCodeFences(text)

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		if decisions, ok := parseStrict(text[start:end+1], batchSize); ok {
			return decisions
		}
	}

	return extractLoose(text, batchSize)
}

// parseStrict is the tier-1 parse: the bracketed substring must be a valid
// JSON array of objects. Individual fields are still tolerated when missing
// or mistyped; only structural failure falls through to the loose extractor.
func parseStrict(text string, batchSize int) ([]types.Decision, bool) {
	var parser fastjson.Parser
	value, err := parser.Parse(text)
	if err != nil {
		return nil, false
	}
	items, err := value.Array()
	if err != nil {
		return nil, false
	}

	decisions := make([]types.Decision, 0, len(items))
	for _, item := range items {
		if item.Type() != fastjson.TypeObject {
			continue
		}
		decision, ok := buildDecision(
			int(item.GetFloat64("messageIndex")),
			int(item.GetFloat64("toxicityScore")),
			string(item.GetStringBytes("action")),
			string(item.GetStringBytes("category")),
			string(item.GetStringBytes("reasoning")),
			batchSize,
		)
		if !ok {
			continue
		}
		decisions = append(decisions, decision)
	}
	return decisions, true
}

// buildDecision applies the shared clamping, defaulting and synonym rules
// and converts the classifier's 1-based index to 0-based. ok is false when
// the index does not belong to the current batch.
func buildDecision(rawIndex, rawScore int, action, category, reasoning string, batchSize int) (types.Decision, bool) {
	index := rawIndex - 1
	if index < 0 || index >= batchSize {
		return types.Decision{}, false
	}
	if category == "" {
		category = DefaultCategory
	}
	if reasoning == "" {
		reasoning = DefaultReasoning
	}
	return types.Decision{
		MessageIndex:  index,
		ToxicityScore: clampScore(rawScore),
		Category:      category,
		Reasoning:     reasoning,
		Action:        types.ParseActionKind(strings.ToLower(strings.TrimSpace(action))),
	}, true
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxToxicityScore {
		return maxToxicityScore
	}
	return score
}

func stripCodeFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
