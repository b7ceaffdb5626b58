package storage

import (
	"context"
	"time"

	"github.com/ToxicGuard/ChatGuard/pkg/types"
)

const (
	// MessageHistoryLimit bounds the rolling message history.
	MessageHistoryLimit = 1000
	// ActionHistoryLimit bounds the per-action history lists.
	ActionHistoryLimit = 100
)

// StoredMessage is the persisted view of a classified chat message.
type StoredMessage struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Author        string    `json:"author"`
	Text          string    `json:"text"`
	ToxicityScore int       `json:"toxicity_score"`
	Category      string    `json:"category"`
	Action        string    `json:"action"`
	Reasoning     string    `json:"reasoning"`
	Timestamp     time.Time `json:"timestamp"`
}

// StoredAction is the persisted view of one enforcement attempt.
type StoredAction struct {
	UserID    string    `json:"user_id"`
	MessageID string    `json:"message_id"`
	Action    string    `json:"action"`
	Reason    string    `json:"reason"`
	Succeeded bool      `json:"succeeded"`
	Failure   string    `json:"failure,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats aggregates lifetime counters for the stats API.
type Stats struct {
	MessagesProcessed int64 `json:"messages_processed"`
	ActionsTotal      int64 `json:"actions_total"`
	Warnings          int64 `json:"warnings"`
	Deletions         int64 `json:"deletions"`
	Timeouts          int64 `json:"timeouts"`
	Bans              int64 `json:"bans"`
}

// Store persists moderation history and counters. Record methods absorb
// their own failures so a storage outage never stalls the pipeline.
type Store interface {
	RecordMessage(ctx context.Context, msg types.ChatMessage, decision types.Decision)
	RecordOutcome(ctx context.Context, outcome types.EnforcementOutcome)
	Stats(ctx context.Context) (Stats, error)
	RecentMessages(ctx context.Context, limit int) ([]StoredMessage, error)
	RecentActions(ctx context.Context, action types.ActionKind, limit int) ([]StoredAction, error)
}

func newStoredMessage(msg types.ChatMessage, decision types.Decision) StoredMessage {
	ts := msg.ReceivedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return StoredMessage{
		ID:            msg.ID,
		UserID:        msg.Author.ID,
		Author:        msg.Author.DisplayName,
		Text:          msg.Text,
		ToxicityScore: decision.ToxicityScore,
		Category:      decision.Category,
		Action:        decision.Action.String(),
		Reasoning:     decision.Reasoning,
		Timestamp:     ts,
	}
}

func newStoredAction(outcome types.EnforcementOutcome) StoredAction {
	action := StoredAction{
		UserID:    outcome.Order.TargetUserID,
		MessageID: outcome.Order.MessageID,
		Action:    outcome.Order.Action.String(),
		Reason:    outcome.Order.Reason,
		Succeeded: outcome.Succeeded,
		Timestamp: time.Now(),
	}
	if !outcome.Succeeded {
		action.Failure = outcome.FailureKind.String()
	}
	return action
}

func statsField(action types.ActionKind) string {
	switch action {
	case types.ActionWarn:
		return "warnings"
	case types.ActionDelete:
		return "deletions"
	case types.ActionTimeout:
		return "timeouts"
	case types.ActionBan:
		return "bans"
	default:
		return ""
	}
}
