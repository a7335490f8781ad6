package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisKeyPrefix = "agenthub:conv:"
	defaultRedisTTL       = 24 * time.Hour
)

type RedisConfig struct {
	Addr     string        `envconfig:"ADDR" split_words:"true" default:"localhost:6379"`
	Password string        `envconfig:"PASSWORD" split_words:"true"`
	DB       int           `envconfig:"DB" split_words:"true" default:"0"`
	TTL      time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
}

// RedisStore persists conversation documents and message logs in Redis.
// Saves use WATCH/MULTI/EXEC so two near-simultaneous writers cannot both
// overwrite the same version.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

type RedisOption func(*RedisStore)

func WithRedisKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func NewRedisStore(cfg RedisConfig, opts ...RedisOption) *RedisStore {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	s := &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		keyPrefix: defaultRedisKeyPrefix,
		ttl:       ttl,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Load(ctx context.Context, conversationID string) (*Conversation, error) {
	key, err := s.docKey(conversationID)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get conversation: %w", err)
	}

	var conv Conversation
	if err := json.Unmarshal([]byte(raw), &conv); err != nil {
		return nil, fmt.Errorf("unmarshal conversation: %w", err)
	}
	if err := conv.Memory.Validate(); err != nil {
		return nil, fmt.Errorf("invalid conversation loaded from redis: %w", err)
	}
	return &conv, nil
}

func (s *RedisStore) Save(ctx context.Context, conv *Conversation) error {
	if conv == nil {
		return ErrNilConversation
	}
	key, err := s.docKey(conv.ID)
	if err != nil {
		return err
	}
	if err := conv.Memory.Validate(); err != nil {
		return err
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			if conv.Version != 0 {
				return ErrVersionConflict
			}
		case err != nil:
			return err
		default:
			var stored Conversation
			if err := json.Unmarshal([]byte(raw), &stored); err != nil {
				return fmt.Errorf("unmarshal stored conversation: %w", err)
			}
			if stored.Version != conv.Version {
				return ErrVersionConflict
			}
		}

		conv.Version++
		conv.Touch(time.Now())
		payload, err := json.Marshal(conv)
		if err != nil {
			return fmt.Errorf("marshal conversation: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		return err
	}, key)
	return err
}

func (s *RedisStore) Delete(ctx context.Context, conversationID string) error {
	key, err := s.docKey(conversationID)
	if err != nil {
		return err
	}
	logKey, _ := s.logKey(conversationID)
	return s.client.Del(ctx, key, logKey).Err()
}

/* ------------------------------ Message log ------------------------------ */

func (s *RedisStore) Append(ctx context.Context, msg *Message) error {
	if msg == nil {
		return ErrInvalidID
	}
	key, err := s.logKey(msg.ConversationID)
	if err != nil {
		return err
	}

	length, err := s.client.LLen(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis llen: %w", err)
	}
	msg.Sequence = length + 1
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := s.client.RPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("redis rpush: %w", err)
	}
	return s.client.Expire(ctx, key, s.ttl).Err()
}

func (s *RedisStore) List(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	key, err := s.logKey(conversationID)
	if err != nil {
		return nil, err
	}

	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	rows, err := s.client.LRange(ctx, key, start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}

	out := make([]Message, 0, len(rows))
	for _, row := range rows {
		var msg Message
		if err := json.Unmarshal([]byte(row), &msg); err != nil {
			return nil, fmt.Errorf("unmarshal message: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}

func (s *RedisStore) Clear(ctx context.Context, conversationID string) error {
	key, err := s.logKey(conversationID)
	if err != nil {
		return err
	}
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) docKey(conversationID string) (string, error) {
	if strings.TrimSpace(conversationID) == "" {
		return "", ErrInvalidID
	}
	return s.keyPrefix + conversationID, nil
}

func (s *RedisStore) logKey(conversationID string) (string, error) {
	if strings.TrimSpace(conversationID) == "" {
		return "", ErrInvalidID
	}
	return s.keyPrefix + conversationID + ":log", nil
}
