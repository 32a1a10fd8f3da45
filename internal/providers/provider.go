// Package providers defines the contracts every external capability adapter
// implements, plus the registry that maps capabilities to configured adapters.
package providers

import "context"

// ImageRequest is the normalized input for an image provider.
type ImageRequest struct {
	Prompt        string
	Size          string
	Quality       string
	CorrelationID string
}

// ImageResult carries the generated image bytes.
type ImageResult struct {
	Data          []byte
	ContentType   string
	RevisedPrompt string
}

// ImageGenerator produces one image per call.
type ImageGenerator interface {
	Name() string
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error)
}

// VideoRequest is the normalized input for a video provider.
type VideoRequest struct {
	Prompt        string
	Duration      int
	Width         int
	Height        int
	CorrelationID string
}

// VideoState is the provider status reduced to what the poller acts upon.
type VideoState string

const (
	VideoStateRunning   VideoState = "running"
	VideoStateSucceeded VideoState = "succeeded"
	VideoStateFailed    VideoState = "failed"
)

// VideoStatus is a snapshot of a remote video job.
type VideoStatus struct {
	ExternalID     string
	ProviderStatus string
	State          VideoState
	OutputURL      string
	Error          string
}

// VideoGenerator creates remote video jobs. It never polls on its own.
type VideoGenerator interface {
	Name() string
	CreateVideo(ctx context.Context, req VideoRequest) (string, error)
	VideoStatus(ctx context.Context, externalID string) (*VideoStatus, error)
	Download(ctx context.Context, outputURL string) ([]byte, string, error)
}

// SpeechRequest is the normalized input for a speech provider.
type SpeechRequest struct {
	Text          string
	Voice         string
	Model         string
	CorrelationID string
}

// SpeechResult carries synthesized audio.
type SpeechResult struct {
	Data        []byte
	ContentType string
}

// SpeechSynthesizer converts text to audio.
type SpeechSynthesizer interface {
	Name() string
	Synthesize(ctx context.Context, req SpeechRequest) (*SpeechResult, error)
}

// ChatMessage is one entry of the provider context.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatRequest is the normalized input for a chat provider.
type ChatRequest struct {
	Messages      []ChatMessage
	CorrelationID string
}

// ChatReply is the assistant message returned by a chat provider.
type ChatReply struct {
	Text string
}

// ChatResponder answers a conversation.
type ChatResponder interface {
	Name() string
	Reply(ctx context.Context, req ChatRequest) (*ChatReply, error)
}

// CallRequest is the normalized input for a telephony provider.
type CallRequest struct {
	To            string
	ScriptURL     string
	CallbackURL   string
	CorrelationID string
}

// CallResult identifies a placed call.
type CallResult struct {
	CallID string
	Status string
}

// CallPlacer places outbound voice calls.
type CallPlacer interface {
	Name() string
	PlaceCall(ctx context.Context, req CallRequest) (*CallResult, error)
}
