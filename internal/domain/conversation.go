package domain

import "time"

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ContextWindow is the number of most recent turns handed to a chat provider.
const ContextWindow = 10

// ConversationTurn is one persisted message in a conversation.
type ConversationTurn struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// RecentTurns returns at most n of the latest turns without modifying turns.
func RecentTurns(turns []ConversationTurn, n int) []ConversationTurn {
	if n <= 0 || len(turns) == 0 {
		return nil
	}
	start := 0
	if len(turns) > n {
		start = len(turns) - n
	}
	out := make([]ConversationTurn, len(turns)-start)
	copy(out, turns[start:])
	return out
}
