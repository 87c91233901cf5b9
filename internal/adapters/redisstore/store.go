package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

// DefaultTTL is the C2 default session/turn TTL (spec §4.2).
const DefaultTTL = 2 * time.Hour

const namespace = "slovo"

// Store implements ports.EphemeralStore over Redis. Keys are namespaced
// by kind so ResetAll can delete the whole subtree with one SCAN pass.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

func turnsKey(conversationID string) string {
	return fmt.Sprintf("%s:%s:turns", namespace, conversationID)
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("%s:%s:ctx", namespace, sessionID)
}

func toolOutputKey(sessionID, toolName string) string {
	return fmt.Sprintf("%s:%s:tool:%s", namespace, sessionID, toolName)
}

func toolOutputScanPattern(sessionID string) string {
	return fmt.Sprintf("%s:%s:tool:*", namespace, sessionID)
}

func (s *Store) AppendTurn(ctx context.Context, conversationID string, turn models.ConversationTurn) error {
	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}
	key := turnsKey(conversationID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) GetTurns(ctx context.Context, conversationID string, limit int) ([]models.ConversationTurn, error) {
	key := turnsKey(conversationID)
	length, err := s.client.LLen(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	start := int64(0)
	if limit > 0 && length > int64(limit) {
		start = length - int64(limit)
	}
	raw, err := s.client.LRange(ctx, key, start, -1).Result()
	if err != nil {
		return nil, err
	}
	turns := make([]models.ConversationTurn, 0, len(raw))
	for _, r := range raw {
		var t models.ConversationTurn
		if err := json.Unmarshal([]byte(r), &t); err != nil {
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (s *Store) ClearTurns(ctx context.Context, conversationID string) error {
	return s.client.Del(ctx, turnsKey(conversationID)).Err()
}

func (s *Store) GetSessionContext(ctx context.Context, sessionID string) (*models.SessionContext, error) {
	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sc models.SessionContext
	if err := json.Unmarshal([]byte(raw), &sc); err != nil {
		return nil, fmt.Errorf("unmarshal session context: %w", err)
	}
	return &sc, nil
}

func (s *Store) SetSessionContext(ctx context.Context, sc *models.SessionContext) error {
	payload, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshal session context: %w", err)
	}
	ttl := s.ttl
	if sc.TTLSeconds > 0 {
		ttl = time.Duration(sc.TTLSeconds) * time.Second
	}
	return s.client.Set(ctx, sessionKey(sc.SessionID), payload, ttl).Err()
}

func (s *Store) GetToolOutput(ctx context.Context, sessionID, toolName string) (any, bool, error) {
	raw, err := s.client.Get(ctx, toolOutputKey(sessionID, toolName)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (s *Store) SetToolOutput(ctx context.Context, sessionID, toolName string, output any) error {
	payload, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("marshal tool output: %w", err)
	}
	return s.client.Set(ctx, toolOutputKey(sessionID, toolName), payload, s.ttl).Err()
}

func (s *Store) ScanToolOutputs(ctx context.Context, sessionID string) (map[string]any, error) {
	result := make(map[string]any)
	iter := s.client.Scan(ctx, 0, toolOutputScanPattern(sessionID), 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := s.client.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		var out any
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			continue
		}
		result[key] = out
	}
	return result, iter.Err()
}

// ResetAll deletes every key in the slovo:* namespace (C7 full reset).
func (s *Store) ResetAll(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, namespace+":*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
