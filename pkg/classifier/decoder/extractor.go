package decoder

import (
	"regexp"
	"strconv"

	"github.com/ToxicGuard/ChatGuard/pkg/types"
)

// Tier-2 extraction. The classifier is a text generator, not an API: quoting
// may be wrong, braces unbalanced, output truncated mid-array. These anchors
// pull the individual fields out of whatever text came back without requiring
// any surrounding structure.
var (
	indexPattern     = regexp.MustCompile(`(?i)"?messageIndex"?\s*[:=]\s*"?(\d+)`)
	scorePattern     = regexp.MustCompile(`(?i)"?toxicityScore"?\s*[:=]\s*"?(-?\d+)`)
	actionPattern    = regexp.MustCompile(`(?i)"?action"?\s*[:=]\s*"?([a-zA-Z_]+)`)
	categoryPattern  = regexp.MustCompile(`(?i)"?category"?\s*[:=]\s*"([^"\n]+)"`)
	reasoningPattern = regexp.MustCompile(`(?i)"?reasoning"?\s*[:=]\s*"([^"\n]+)"`)
)

// extractLoose scans the raw text for repeating (messageIndex, toxicityScore,
// action) triples. Each occurrence of a message index anchors a fragment that
// runs to the next index anchor; a fragment only yields a decision when all
// three mandatory fields are present inside it. Category and reasoning are
// optional and default to the usual sentinels.
func extractLoose(text string, batchSize int) []types.Decision {
	anchors := indexPattern.FindAllStringSubmatchIndex(text, -1)
	if len(anchors) == 0 {
		return nil
	}

	var decisions []types.Decision
	for i, anchor := range anchors {
		if len(decisions) >= batchSize {
			break
		}
		fragStart := anchor[0]
		fragEnd := len(text)
		if i+1 < len(anchors) {
			fragEnd = anchors[i+1][0]
		}
		fragment := text[fragStart:fragEnd]

		rawIndex, err := strconv.Atoi(text[anchor[2]:anchor[3]])
		if err != nil {
			continue
		}

		scoreMatch := scorePattern.FindStringSubmatch(fragment)
		actionMatch := actionPattern.FindStringSubmatch(fragment)
		if scoreMatch == nil || actionMatch == nil {
			continue
		}
		rawScore, err := strconv.Atoi(scoreMatch[1])
		if err != nil {
			continue
		}

		var category, reasoning string
		if m := categoryPattern.FindStringSubmatch(fragment); m != nil {
			category = m[1]
		}
		if m := reasoningPattern.FindStringSubmatch(fragment); m != nil {
			reasoning = m[1]
		}

		decision, ok := buildDecision(rawIndex, rawScore, actionMatch[1], category, reasoning, batchSize)
		if !ok {
			continue
		}
		decisions = append(decisions, decision)
	}
	return decisions
}
