package storage

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ToxicGuard/ChatGuard/pkg/types"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	messagesKey       = "chat:messages"
	actionsKeyPattern = "chat:actions:%s"
	statsKey          = "chat:stats"
	userKeyPattern    = "chat:user:%s"

	writeTimeout = 2 * time.Second
)

// RedisConfig configures the redis-backed store.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

// RedisStore keeps moderation history in capped redis lists and lifetime
// counters in a stats hash.
type RedisStore struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRedisStore(config RedisConfig, logger *logrus.Logger) *RedisStore {
	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	}
	if config.TLS {
		options.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402
		}
	}
	return &RedisStore{
		client: redis.NewClient(options),
		logger: logger,
	}
}

// NewRedisStoreWithClient wires an existing client, used by tests.
func NewRedisStoreWithClient(client *redis.Client, logger *logrus.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) RecordMessage(ctx context.Context, msg types.ChatMessage, decision types.Decision) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	record := newStoredMessage(msg, decision)
	payload, err := json.Marshal(record)
	if err != nil {
		s.logger.WithError(err).Error("failed to marshal message record")
		return
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, messagesKey, string(payload))
	pipe.LTrim(ctx, messagesKey, 0, MessageHistoryLimit-1)
	pipe.HIncrBy(ctx, statsKey, "messages_processed", 1)

	userKey := fmt.Sprintf(userKeyPattern, msg.Author.ID)
	pipe.HSet(ctx, userKey, "display_name", msg.Author.DisplayName)
	pipe.HSet(ctx, userKey, "last_active", record.Timestamp.Format(time.RFC3339))
	pipe.HIncrBy(ctx, userKey, "messages", 1)
	pipe.HIncrBy(ctx, userKey, "toxicity_sum", int64(decision.ToxicityScore))
	if decision.Action != types.ActionNone {
		pipe.HIncrBy(ctx, userKey, "flagged", 1)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.WithError(err).Error("failed to record message")
	}
}

func (s *RedisStore) RecordOutcome(ctx context.Context, outcome types.EnforcementOutcome) {
	if outcome.Order.Action == types.ActionNone {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	record := newStoredAction(outcome)
	payload, err := json.Marshal(record)
	if err != nil {
		s.logger.WithError(err).Error("failed to marshal action record")
		return
	}

	actionsKey := fmt.Sprintf(actionsKeyPattern, record.Action)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, actionsKey, string(payload))
	pipe.LTrim(ctx, actionsKey, 0, ActionHistoryLimit-1)
	pipe.HIncrBy(ctx, statsKey, "actions_total", 1)
	if field := statsField(outcome.Order.Action); field != "" {
		pipe.HIncrBy(ctx, statsKey, field, 1)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.WithError(err).Error("failed to record enforcement outcome")
	}
}

func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	fields, err := s.client.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read stats: %w", err)
	}
	return Stats{
		MessagesProcessed: parseCounter(fields, "messages_processed"),
		ActionsTotal:      parseCounter(fields, "actions_total"),
		Warnings:          parseCounter(fields, "warnings"),
		Deletions:         parseCounter(fields, "deletions"),
		Timeouts:          parseCounter(fields, "timeouts"),
		Bans:              parseCounter(fields, "bans"),
	}, nil
}

func (s *RedisStore) RecentMessages(ctx context.Context, limit int) ([]StoredMessage, error) {
	if limit <= 0 || limit > MessageHistoryLimit {
		limit = MessageHistoryLimit
	}
	raw, err := s.client.LRange(ctx, messagesKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read message history: %w", err)
	}
	messages := make([]StoredMessage, 0, len(raw))
	for _, entry := range raw {
		var msg StoredMessage
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			s.logger.WithError(err).Warn("skipping unreadable message record")
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (s *RedisStore) RecentActions(ctx context.Context, action types.ActionKind, limit int) ([]StoredAction, error) {
	if limit <= 0 || limit > ActionHistoryLimit {
		limit = ActionHistoryLimit
	}
	key := fmt.Sprintf(actionsKeyPattern, action.String())
	raw, err := s.client.LRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read action history: %w", err)
	}
	actions := make([]StoredAction, 0, len(raw))
	for _, entry := range raw {
		var act StoredAction
		if err := json.Unmarshal([]byte(entry), &act); err != nil {
			s.logger.WithError(err).Warn("skipping unreadable action record")
			continue
		}
		actions = append(actions, act)
	}
	return actions, nil
}

func parseCounter(fields map[string]string, name string) int64 {
	value, err := strconv.ParseInt(fields[name], 10, 64)
	if err != nil {
		return 0
	}
	return value
}
