package storage

import (
	"context"
	"sync"

	"github.com/ToxicGuard/ChatGuard/pkg/types"
)

// MemoryStore keeps history and counters in process memory. Used when no
// redis address is configured; everything is lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	messages []StoredMessage
	actions  map[string][]StoredAction
	stats    Stats
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		actions: make(map[string][]StoredAction),
	}
}

func (s *MemoryStore) RecordMessage(_ context.Context, msg types.ChatMessage, decision types.Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append([]StoredMessage{newStoredMessage(msg, decision)}, s.messages...)
	if len(s.messages) > MessageHistoryLimit {
		s.messages = s.messages[:MessageHistoryLimit]
	}
	s.stats.MessagesProcessed++
}

func (s *MemoryStore) RecordOutcome(_ context.Context, outcome types.EnforcementOutcome) {
	if outcome.Order.Action == types.ActionNone {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	record := newStoredAction(outcome)
	history := append([]StoredAction{record}, s.actions[record.Action]...)
	if len(history) > ActionHistoryLimit {
		history = history[:ActionHistoryLimit]
	}
	s.actions[record.Action] = history

	s.stats.ActionsTotal++
	switch outcome.Order.Action {
	case types.ActionWarn:
		s.stats.Warnings++
	case types.ActionDelete:
		s.stats.Deletions++
	case types.ActionTimeout:
		s.stats.Timeouts++
	case types.ActionBan:
		s.stats.Bans++
	}
}

func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats, nil
}

func (s *MemoryStore) RecentMessages(_ context.Context, limit int) ([]StoredMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.messages) {
		limit = len(s.messages)
	}
	out := make([]StoredMessage, limit)
	copy(out, s.messages[:limit])
	return out, nil
}

func (s *MemoryStore) RecentActions(_ context.Context, action types.ActionKind, limit int) ([]StoredAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.actions[action.String()]
	if limit <= 0 || limit > len(history) {
		limit = len(history)
	}
	out := make([]StoredAction, limit)
	copy(out, history[:limit])
	return out, nil
}
