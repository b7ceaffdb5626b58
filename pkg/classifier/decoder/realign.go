package decoder

import (
	"github.com/ToxicGuard/ChatGuard/pkg/types"
)

// Scored pairs a message with the decision that applies to it.
type Scored struct {
	Message  types.ChatMessage
	Decision types.Decision
}

// NoAnalysisReasoning marks a message the classifier returned nothing for.
const NoAnalysisReasoning = "No analysis"

// Realign associates every message of the batch with its decision by index.
// Decoder output carries no ordering guarantee, and some messages may have no
// decision at all; those fail open with a zero score and no action so that a
// parser failure can never escalate into enforcement. When the decoder
// produced duplicate indexes the first decision wins.
func Realign(messages []types.ChatMessage, decisions []types.Decision) []Scored {
	byIndex := make(map[int]types.Decision, len(decisions))
	for _, d := range decisions {
		if _, ok := byIndex[d.MessageIndex]; ok {
			continue
		}
		byIndex[d.MessageIndex] = d
	}

	scored := make([]Scored, 0, len(messages))
	for i, msg := range messages {
		decision, ok := byIndex[i]
		if !ok {
			decision = types.Decision{
				MessageIndex:  i,
				ToxicityScore: 0,
				Category:      DefaultCategory,
				Reasoning:     NoAnalysisReasoning,
				Action:        types.ActionNone,
			}
		}
		scored = append(scored, Scored{Message: msg, Decision: decision})
	}
	return scored
}
