package repo

import (
	"context"
	"sync"

	"mediagen/internal/domain"
)

// ConversationRepositoryMemory keeps chat history in process memory.
type ConversationRepositoryMemory struct {
	mu    sync.RWMutex
	turns map[string][]domain.ConversationTurn
}

// NewConversationRepositoryMemory creates an empty store.
func NewConversationRepositoryMemory() *ConversationRepositoryMemory {
	return &ConversationRepositoryMemory{turns: make(map[string][]domain.ConversationTurn)}
}

// Append adds turns to the end of the conversation.
func (r *ConversationRepositoryMemory) Append(ctx context.Context, conversationID string, turns ...domain.ConversationTurn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(turns) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns[conversationID] = append(r.turns[conversationID], turns...)
	return nil
}

// Load returns the full history, or domain.ErrNotFound for an unknown id.
func (r *ConversationRepositoryMemory) Load(ctx context.Context, conversationID string) ([]domain.ConversationTurn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	turns, ok := r.turns[conversationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]domain.ConversationTurn, len(turns))
	copy(out, turns)
	return out, nil
}

var _ domain.ConversationRepository = (*ConversationRepositoryMemory)(nil)
