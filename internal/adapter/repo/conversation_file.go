package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"mediagen/internal/domain"
)

var conversationIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ConversationRepositoryFile stores each conversation as a JSON document under dir.
type ConversationRepositoryFile struct {
	dir string
	mu  sync.Mutex
}

// NewConversationRepositoryFile creates the directory when needed.
func NewConversationRepositoryFile(dir string) (*ConversationRepositoryFile, error) {
	if dir == "" {
		return nil, fmt.Errorf("conversation dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create conversation dir: %w", err)
	}
	return &ConversationRepositoryFile{dir: dir}, nil
}

// Append rewrites the conversation file with the new turns added.
func (r *ConversationRepositoryFile) Append(ctx context.Context, conversationID string, turns ...domain.ConversationTurn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := r.path(conversationID)
	if err != nil {
		return err
	}
	if len(turns) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := readTurns(path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	payload, err := json.MarshalIndent(append(existing, turns...), "", "  ")
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	tmp, err := os.CreateTemp(r.dir, ".conv-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write conversation: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close conversation: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace conversation: %w", err)
	}
	return nil
}

// Load reads the conversation, or returns domain.ErrNotFound.
func (r *ConversationRepositoryFile) Load(ctx context.Context, conversationID string) ([]domain.ConversationTurn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := r.path(conversationID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return readTurns(path)
}

func (r *ConversationRepositoryFile) path(conversationID string) (string, error) {
	if !conversationIDPattern.MatchString(conversationID) {
		return "", domain.NewValidationError("conversationId", "must match [A-Za-z0-9_-]{1,128}")
	}
	return filepath.Join(r.dir, conversationID+".json"), nil
}

func readTurns(path string) ([]domain.ConversationTurn, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read conversation: %w", err)
	}
	var turns []domain.ConversationTurn
	if err := json.Unmarshal(raw, &turns); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", filepath.Base(path), err)
	}
	return turns, nil
}

var _ domain.ConversationRepository = (*ConversationRepositoryFile)(nil)
