package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"mediagen/internal/domain"
	"mediagen/internal/providers"
)

// SystemPrompt opens every chat context.
const SystemPrompt = "You are a professional AI assistant for GEM Assist Enterprise, a cybersecurity and real estate services company. " +
	"You provide helpful, accurate information about our services including: 24/7 threat monitoring and cybersecurity; " +
	"Real estate investment and management; Asset recovery services; Telegram automation solutions; Legal and trust services. " +
	"Maintain a professional, knowledgeable tone while being approachable and helpful."

// ChatResult is the assistant reply and the size of the stored conversation.
type ChatResult struct {
	Reply          string
	ConversationID string
	MessageCount   int
}

// Chat answers in.Message using the recent conversation history and records
// both turns once the provider replied.
func (s *Service) Chat(ctx context.Context, in ChatInput) (*ChatResult, error) {
	in.normalize()
	log := s.opLogger(domain.CapabilityChat, in.CorrelationID)
	if err := validateInput(&in); err != nil {
		return nil, fail(log, err, "chat request rejected")
	}
	responder, err := s.registry.Chat()
	if err != nil {
		return nil, fail(log, err, "chat provider unavailable")
	}
	if in.ConversationID == "" {
		in.ConversationID = s.newID()
	}
	req := domain.NewGenerationRequest(domain.CapabilityChat, in.CorrelationID, map[string]any{
		"conversationId": in.ConversationID,
		"context":        in.Context,
	})
	log = log.With().Str("conversation_id", in.ConversationID).Logger()

	history, err := s.conversations.Load(ctx, in.ConversationID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fail(log, fmt.Errorf("orchestrator: load conversation: %w", err), "chat history unavailable")
	}
	userTurn := domain.ConversationTurn{Role: domain.RoleUser, Text: in.Message, Timestamp: s.now()}
	window := domain.RecentTurns(append(history[:len(history):len(history)], userTurn), domain.ContextWindow)

	reply, err := withRetry(ctx, s.retry, func(ctx context.Context) (*providers.ChatReply, error) {
		return responder.Reply(ctx, providers.ChatRequest{
			Messages:      chatMessages(in.Context, window),
			CorrelationID: req.CorrelationID,
		})
	})
	if err != nil {
		return nil, fail(log, err, "chat reply failed")
	}

	assistantTurn := domain.ConversationTurn{Role: domain.RoleAssistant, Text: reply.Text, Timestamp: s.now()}
	if err := s.conversations.Append(ctx, in.ConversationID, userTurn, assistantTurn); err != nil {
		return nil, fail(log, fmt.Errorf("orchestrator: append conversation: %w", err), "chat history not saved")
	}
	count := len(history) + 2
	log.Info().Int("turns", count).Int("context_turns", len(window)).Msg("chat replied")
	return &ChatResult{Reply: reply.Text, ConversationID: in.ConversationID, MessageCount: count}, nil
}

func chatMessages(label string, window []domain.ConversationTurn) []providers.ChatMessage {
	system := SystemPrompt
	if label != "" {
		system += " Context: " + label
	}
	out := make([]providers.ChatMessage, 0, len(window)+1)
	out = append(out, providers.ChatMessage{Role: domain.RoleSystem, Content: system})
	for _, turn := range window {
		out = append(out, providers.ChatMessage{Role: turn.Role, Content: turn.Text})
	}
	return out
}
