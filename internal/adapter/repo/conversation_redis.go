package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"mediagen/internal/domain"
)

const conversationKeyPrefix = "mediagen:conversation:"

// ConversationRepositoryRedis stores each conversation as a Redis list of JSON turns.
type ConversationRepositoryRedis struct {
	client *redis.Client
}

// NewConversationRepositoryRedis wraps a connected client.
func NewConversationRepositoryRedis(client *redis.Client) *ConversationRepositoryRedis {
	return &ConversationRepositoryRedis{client: client}
}

// Append pushes the turns to the tail of the list in one RPUSH.
func (r *ConversationRepositoryRedis) Append(ctx context.Context, conversationID string, turns ...domain.ConversationTurn) error {
	if len(turns) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(turns))
	for _, turn := range turns {
		raw, err := json.Marshal(turn)
		if err != nil {
			return fmt.Errorf("conversation repo: encode turn: %w", err)
		}
		values = append(values, raw)
	}
	if err := r.client.RPush(ctx, conversationKeyPrefix+conversationID, values...).Err(); err != nil {
		return fmt.Errorf("conversation repo: rpush: %w", err)
	}
	return nil
}

// Load reads the whole list, or returns domain.ErrNotFound for an empty key.
func (r *ConversationRepositoryRedis) Load(ctx context.Context, conversationID string) ([]domain.ConversationTurn, error) {
	raw, err := r.client.LRange(ctx, conversationKeyPrefix+conversationID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("conversation repo: lrange: %w", err)
	}
	if len(raw) == 0 {
		return nil, domain.ErrNotFound
	}
	turns := make([]domain.ConversationTurn, 0, len(raw))
	for _, item := range raw {
		var turn domain.ConversationTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("conversation repo: decode turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

var _ domain.ConversationRepository = (*ConversationRepositoryRedis)(nil)
