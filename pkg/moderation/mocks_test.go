package moderation_test

import (
	"context"

	"github.com/ToxicGuard/ChatGuard/pkg/types"
	"github.com/stretchr/testify/mock"
)

type mockEnforcer struct {
	mock.Mock
}

func (m *mockEnforcer) DeleteMessage(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *mockEnforcer) BanUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockSource struct {
	mock.Mock
}

func (m *mockSource) GetMessages(ctx context.Context) ([]types.ChatMessage, error) {
	args := m.Called(ctx)
	msgs, _ := args.Get(0).([]types.ChatMessage)
	return msgs, args.Error(1)
}

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Classify(ctx context.Context, messages []types.ChatMessage) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

type recordedMessage struct {
	Message  types.ChatMessage
	Decision types.Decision
}

// recorderSpy collects everything the pipeline records.
type recorderSpy struct {
	Messages []recordedMessage
	Outcomes []types.EnforcementOutcome
}

func (r *recorderSpy) RecordMessage(ctx context.Context, msg types.ChatMessage, decision types.Decision) {
	r.Messages = append(r.Messages, recordedMessage{Message: msg, Decision: decision})
}

func (r *recorderSpy) RecordOutcome(ctx context.Context, outcome types.EnforcementOutcome) {
	r.Outcomes = append(r.Outcomes, outcome)
}
