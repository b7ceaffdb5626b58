package storage_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ToxicGuard/ChatGuard/pkg/storage"
	"github.com/ToxicGuard/ChatGuard/pkg/types"
	"github.com/go-redis/redismock/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestRedisStore_RecordMessage(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := storage.NewRedisStoreWithClient(client, quietLogger())

	msg := types.ChatMessage{
		ID:         "m1",
		Text:       "some insult",
		Author:     types.Author{ID: "u1", DisplayName: "troll"},
		ReceivedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	decision := types.Decision{ToxicityScore: 6, Category: "harassment", Reasoning: "insult", Action: types.ActionWarn}

	mock.ExpectTxPipeline()
	mock.Regexp().ExpectLPush("chat:messages", `"id":"m1"`).SetVal(1)
	mock.ExpectLTrim("chat:messages", 0, 999).SetVal("OK")
	mock.ExpectHIncrBy("chat:stats", "messages_processed", 1).SetVal(1)
	mock.ExpectHSet("chat:user:u1", "display_name", "troll").SetVal(1)
	mock.ExpectHSet("chat:user:u1", "last_active", "2024-05-01T12:00:00Z").SetVal(1)
	mock.ExpectHIncrBy("chat:user:u1", "messages", 1).SetVal(1)
	mock.ExpectHIncrBy("chat:user:u1", "toxicity_sum", 6).SetVal(6)
	mock.ExpectHIncrBy("chat:user:u1", "flagged", 1).SetVal(1)
	mock.ExpectTxPipelineExec()

	store.RecordMessage(context.Background(), msg, decision)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_RecordOutcome(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := storage.NewRedisStoreWithClient(client, quietLogger())

	outcome := types.EnforcementOutcome{
		Order: types.EnforcementOrder{
			TargetUserID: "u1",
			MessageID:    "m1",
			Action:       types.ActionBan,
			Reason:       "Multiple timeouts",
		},
		Succeeded: true,
	}

	mock.ExpectTxPipeline()
	mock.Regexp().ExpectLPush("chat:actions:ban", `"user_id":"u1"`).SetVal(1)
	mock.ExpectLTrim("chat:actions:ban", 0, 99).SetVal("OK")
	mock.ExpectHIncrBy("chat:stats", "actions_total", 1).SetVal(1)
	mock.ExpectHIncrBy("chat:stats", "bans", 1).SetVal(1)
	mock.ExpectTxPipelineExec()

	store.RecordOutcome(context.Background(), outcome)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_RecordOutcome_NoneIsNotPersisted(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := storage.NewRedisStoreWithClient(client, quietLogger())

	store.RecordOutcome(context.Background(), types.EnforcementOutcome{
		Order:     types.EnforcementOrder{Action: types.ActionNone},
		Succeeded: true,
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Stats(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := storage.NewRedisStoreWithClient(client, quietLogger())

	mock.ExpectHGetAll("chat:stats").SetVal(map[string]string{
		"messages_processed": "42",
		"actions_total":      "7",
		"warnings":           "4",
		"deletions":          "2",
		"bans":               "1",
	})

	stats, err := store.Stats(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(42), stats.MessagesProcessed)
	assert.Equal(t, int64(7), stats.ActionsTotal)
	assert.Equal(t, int64(4), stats.Warnings)
	assert.Equal(t, int64(2), stats.Deletions)
	assert.Equal(t, int64(0), stats.Timeouts)
	assert.Equal(t, int64(1), stats.Bans)
}

func TestRedisStore_RecentMessagesSkipsUnreadableEntries(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := storage.NewRedisStoreWithClient(client, quietLogger())

	good, err := json.Marshal(storage.StoredMessage{ID: "m1", UserID: "u1", Action: "warn"})
	assert.NoError(t, err)

	mock.ExpectLRange("chat:messages", 0, 9).SetVal([]string{string(good), "{not json"})

	messages, err := store.RecentMessages(context.Background(), 10)

	assert.NoError(t, err)
	assert.Len(t, messages, 1)
	assert.Equal(t, "m1", messages[0].ID)
}

func TestRedisStore_RecentActions(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := storage.NewRedisStoreWithClient(client, quietLogger())

	record, err := json.Marshal(storage.StoredAction{UserID: "u1", Action: "delete", Succeeded: true})
	assert.NoError(t, err)

	mock.ExpectLRange("chat:actions:delete", 0, 4).SetVal([]string{string(record)})

	actions, err := store.RecentActions(context.Background(), types.ActionDelete, 5)

	assert.NoError(t, err)
	assert.Len(t, actions, 1)
	assert.Equal(t, "u1", actions[0].UserID)
	assert.True(t, actions[0].Succeeded)
}
