package orchestrator

import "strings"

// ImageInput requests a single generated image.
type ImageInput struct {
	Prompt        string `json:"prompt" validate:"required"`
	Size          string `json:"size" validate:"omitempty,oneof=256x256 512x512 1024x1024 1792x1024 1024x1792"`
	Quality       string `json:"quality" validate:"omitempty,oneof=standard hd"`
	Style         string `json:"style" validate:"omitempty,oneof=natural photorealistic artistic corporate cybersecurity"`
	CorrelationID string `json:"-"`
}

func (in *ImageInput) normalize() {
	in.Prompt = strings.TrimSpace(in.Prompt)
	in.Size = strings.ToLower(strings.TrimSpace(in.Size))
	in.Quality = strings.ToLower(strings.TrimSpace(in.Quality))
	in.Style = strings.ToLower(strings.TrimSpace(in.Style))
}

// VideoInput requests an asynchronous video job.
type VideoInput struct {
	Prompt        string `json:"prompt" validate:"required"`
	Duration      int    `json:"duration" validate:"omitempty,min=1,max=30"`
	Width         int    `json:"width" validate:"omitempty,min=1,max=4096"`
	Height        int    `json:"height" validate:"omitempty,min=1,max=4096"`
	CorrelationID string `json:"-"`
}

func (in *VideoInput) normalize() {
	in.Prompt = strings.TrimSpace(in.Prompt)
}

// SpeechInput requests synthesized audio for Text.
type SpeechInput struct {
	Text          string `json:"text" validate:"required,max=2000"`
	Voice         string `json:"voice"`
	Model         string `json:"model"`
	CorrelationID string `json:"-"`
}

func (in *SpeechInput) normalize() {
	in.Text = strings.TrimSpace(in.Text)
	in.Voice = strings.TrimSpace(in.Voice)
	in.Model = strings.TrimSpace(in.Model)
}

// ChatInput is one user message in a conversation.
type ChatInput struct {
	Message        string `json:"message" validate:"required"`
	ConversationID string `json:"conversationId" validate:"omitempty,conversation_id"`
	Context        string `json:"context"`
	CorrelationID  string `json:"-"`
}

func (in *ChatInput) normalize() {
	in.Message = strings.TrimSpace(in.Message)
	in.ConversationID = strings.TrimSpace(in.ConversationID)
	in.Context = strings.TrimSpace(in.Context)
}

// CallInput requests an outbound call that speaks Message.
type CallInput struct {
	To            string `json:"to" validate:"required,e164phone"`
	Message       string `json:"message" validate:"required"`
	Voice         string `json:"voice"`
	CallbackURL   string `json:"callbackUrl" validate:"omitempty,url"`
	CorrelationID string `json:"-"`
	// BaseURL is used for the script URL when no public base URL is configured.
	BaseURL string `json:"-"`
}

func (in *CallInput) normalize() {
	in.To = strings.TrimSpace(in.To)
	in.Message = strings.TrimSpace(in.Message)
	in.Voice = strings.TrimSpace(in.Voice)
	in.CallbackURL = strings.TrimSpace(in.CallbackURL)
}
