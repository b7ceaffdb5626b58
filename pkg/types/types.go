package types

import (
	"errors"
	"time"
)

// ErrPermissionDenied marks an enforcement call rejected by the upstream
// surface because the bot account lacks moderator privileges.
var ErrPermissionDenied = errors.New("permission denied")

// ErrTransient marks an enforcement call that failed for a reason likely to
// clear on its own (rate limiting, upstream 5xx).
var ErrTransient = errors.New("transient failure")

// Author identifies the sender of a chat message.
type Author struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsModerator bool   `json:"is_moderator"`
	IsOwner     bool   `json:"is_owner"`
}

// IsPrivileged reports whether the author is exempt from moderation.
func (a Author) IsPrivileged() bool {
	return a.IsModerator || a.IsOwner
}

// ChatMessage is a single message pulled from the live chat source.
// It is owned by the caller and never persisted by the core beyond
// building derived records.
type ChatMessage struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Author     Author    `json:"author"`
	ReceivedAt time.Time `json:"received_at"`
}

// ActionKind is a moderation action ordered by severity.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionWarn
	ActionDelete
	ActionTimeout
	ActionBan
)

func (a ActionKind) String() string {
	switch a {
	case ActionWarn:
		return "warn"
	case ActionDelete:
		return "delete"
	case ActionTimeout:
		return "timeout"
	case ActionBan:
		return "ban"
	default:
		return "none"
	}
}

// actionSynonyms maps the vocabulary the classifier actually emits onto the
// canonical actions. Anything unmapped resolves to ActionNone.
var actionSynonyms = map[string]ActionKind{
	"none":    ActionNone,
	"warn":    ActionWarn,
	"warning": ActionWarn,
	"delete":  ActionDelete,
	"remove":  ActionDelete,
	"timeout": ActionTimeout,
	"kick":    ActionTimeout,
	"ban":     ActionBan,
	"block":   ActionBan,
}

// ParseActionKind resolves a raw action string, including known synonyms.
func ParseActionKind(s string) ActionKind {
	if kind, ok := actionSynonyms[s]; ok {
		return kind
	}
	return ActionNone
}

// Decision is the typed classification for one message of a batch.
// MessageIndex is 0-based and aligned to the input batch.
type Decision struct {
	MessageIndex  int        `json:"message_index"`
	ToxicityScore int        `json:"toxicity_score"`
	Category      string     `json:"category"`
	Reasoning     string     `json:"reasoning"`
	Action        ActionKind `json:"action"`
}

// EnforcementOrder is the final action to apply for one message,
// consumed immediately by the dispatcher.
type EnforcementOrder struct {
	TargetUserID string     `json:"target_user_id"`
	MessageID    string     `json:"message_id"`
	Action       ActionKind `json:"action"`
	Reason       string     `json:"reason"`
}

// FailureKind classifies a failed enforcement call.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailurePermissionDenied
	FailureTransient
	FailureFatal
)

func (f FailureKind) String() string {
	switch f {
	case FailurePermissionDenied:
		return "permission_denied"
	case FailureTransient:
		return "transient"
	case FailureFatal:
		return "fatal"
	default:
		return "none"
	}
}

// EnforcementOutcome records how dispatching an order went. It feeds the
// stats/history recorder and is never retried automatically.
type EnforcementOutcome struct {
	Order       EnforcementOrder `json:"order"`
	Succeeded   bool             `json:"succeeded"`
	FailureKind FailureKind      `json:"failure_kind"`
}
