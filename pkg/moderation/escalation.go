package moderation

import (
	"fmt"
	"sync"
	"time"

	"github.com/ToxicGuard/ChatGuard/pkg/types"
	"github.com/sirupsen/logrus"
)

// UserModerationState tracks a user's accumulated offenses within the
// current cleanup epoch. Counts only ever grow between cleanups; Cleanup
// wipes every record at once rather than aging users individually.
type UserModerationState struct {
	UserID       string    `json:"user_id"`
	WarningCount int       `json:"warning_count"`
	TimeoutCount int       `json:"timeout_count"`
	LastActionAt time.Time `json:"last_action_at"`
}

type counterKind int

const (
	counterWarnings counterKind = iota
	counterTimeouts
)

// escalationRule upgrades an action once the user's counter moves past the
// threshold. Escalation is data, not control flow: changing a threshold or
// a target action is a table edit.
type escalationRule struct {
	counter    counterKind
	threshold  int
	escalateTo types.ActionKind
	reason     string
}

var escalationRules = map[types.ActionKind]escalationRule{
	types.ActionWarn:    {counter: counterWarnings, threshold: 2, escalateTo: types.ActionDelete, reason: "Multiple warnings"},
	types.ActionTimeout: {counter: counterTimeouts, threshold: 2, escalateTo: types.ActionBan, reason: "Multiple timeouts"},
}

// Engine is the per-user escalation state machine. It owns the moderation
// state map exclusively; a single mutex covers both cycle processing and the
// periodic cleanup, which may run concurrently.
type Engine struct {
	mu     sync.Mutex
	states map[string]*UserModerationState
	logger *logrus.Logger
}

func NewEngine(logger *logrus.Logger) *Engine {
	return &Engine{
		states: make(map[string]*UserModerationState),
		logger: logger,
	}
}

// Evaluate turns a decision for a message into the final enforcement order.
// Privileged authors are exempt unconditionally and leave no trace in the
// state map. Delete and Ban pass through without touching counters, so a
// user who only ever gets deletions never escalates; that leniency is kept
// on purpose.
func (e *Engine) Evaluate(msg types.ChatMessage, decision types.Decision) types.EnforcementOrder {
	if msg.Author.IsPrivileged() {
		e.logger.WithField("user", msg.Author.DisplayName).Debug("skipping moderation for privileged author")
		return types.EnforcementOrder{
			TargetUserID: msg.Author.ID,
			MessageID:    msg.ID,
			Action:       types.ActionNone,
			Reason:       "privileged author",
		}
	}

	action := decision.Action
	reason := fmt.Sprintf("%s (toxicity score: %d/10)", decision.Reasoning, decision.ToxicityScore)

	if rule, ok := escalationRules[action]; ok {
		count := e.bump(msg.Author.ID, rule.counter)
		if count > rule.threshold {
			e.logger.WithFields(logrus.Fields{
				"user":   msg.Author.DisplayName,
				"count":  count,
				"action": rule.escalateTo.String(),
			}).Warn("escalating repeat offender")
			action = rule.escalateTo
			reason = rule.reason
		}
	}

	return types.EnforcementOrder{
		TargetUserID: msg.Author.ID,
		MessageID:    msg.ID,
		Action:       action,
		Reason:       reason,
	}
}

// bump increments the given counter for the user, creating the state record
// on first offense, and returns the new count.
func (e *Engine) bump(userID string, counter counterKind) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.states[userID]
	if !ok {
		state = &UserModerationState{UserID: userID}
		e.states[userID] = state
	}
	state.LastActionAt = time.Now()

	switch counter {
	case counterTimeouts:
		state.TimeoutCount++
		return state.TimeoutCount
	default:
		state.WarningCount++
		return state.WarningCount
	}
}

// State returns a copy of the user's moderation state, if any.
func (e *Engine) State(userID string) (UserModerationState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.states[userID]
	if !ok {
		return UserModerationState{}, false
	}
	return *state, true
}

// TrackedUsers returns how many users currently hold state.
func (e *Engine) TrackedUsers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.states)
}

// Cleanup wipes all per-user state wholesale, starting a new epoch.
func (e *Engine) Cleanup() {
	e.mu.Lock()
	wiped := len(e.states)
	e.states = make(map[string]*UserModerationState)
	e.mu.Unlock()
	e.logger.WithField("users", wiped).Info("user warning and timeout data cleaned up")
}
