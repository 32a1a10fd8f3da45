package domain

import "context"

// JobRepository persists asynchronous jobs. Implementations must be safe for
// concurrent use and must enforce ApplyJobUpdate on every update.
type JobRepository interface {
	Create(ctx context.Context, job *Job) (string, error)
	Update(ctx context.Context, jobID string, upd JobUpdate) (*Job, error)
	Get(ctx context.Context, jobID string) (*Job, error)
	ListActive(ctx context.Context) ([]Job, error)
}

// ConversationRepository persists append-only chat history.
type ConversationRepository interface {
	Append(ctx context.Context, conversationID string, turns ...ConversationTurn) error
	Load(ctx context.Context, conversationID string) ([]ConversationTurn, error)
}
