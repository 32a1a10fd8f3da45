package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mediagen/internal/domain"
	"mediagen/internal/infra"
	"mediagen/internal/providers"
)

const providerName = "elevenlabs"

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("elevenlabs: api key is required")

// Voices maps the public voice names to ElevenLabs voice ids.
var Voices = map[string]string{
	"default":      "pNInz6obpgDQGcFmaJgB",
	"male":         "pNInz6obpgDQGcFmaJgB",
	"female":       "EXAVITQu4vr4xnSDxMaL",
	"professional": "EXAVITQu4vr4xnSDxMaL",
}

// VoiceID resolves a voice alias. Empty selects the default voice; anything
// that is not an alias is taken as a raw voice id.
func VoiceID(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return Voices["default"]
	}
	if id, ok := Voices[strings.ToLower(name)]; ok {
		return id
	}
	return name
}

// Options configures the ElevenLabs client.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client calls the ElevenLabs text-to-speech endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// NewClient constructs a client with defaults applied.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "eleven_monolingual_v1"
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     infra.LoggerOrDiscard(opts.Logger),
	}, nil
}

// Name identifies the provider in logs and errors.
func (c *Client) Name() string { return providerName }

// Synthesize converts text to MP3 audio.
func (c *Client) Synthesize(ctx context.Context, req providers.SpeechRequest) (*providers.SpeechResult, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}
	payload := speechRequest{
		Text:          req.Text,
		ModelID:       model,
		VoiceSettings: voiceSettings{Stability: 0.75, SimilarityBoost: 0.75},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: encode request: %w", err)
	}
	voiceID := VoiceID(req.Voice)
	endpoint := c.baseURL + "/text-to-speech/" + url.PathEscape(voiceID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.Transport(providerName, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, providers.StatusError(providerName, resp, providers.ReadErrorBody(resp.Body))
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ProviderError{Provider: providerName, StatusCode: resp.StatusCode, Detail: "read audio: " + err.Error()}
	}
	if len(audio) == 0 {
		return nil, &domain.ProviderError{Provider: providerName, StatusCode: resp.StatusCode, Detail: "empty audio response"}
	}
	c.logger.Debug().
		Str("voice_id", voiceID).
		Str("correlation_id", req.CorrelationID).
		Int("bytes", len(audio)).
		Msg("elevenlabs: synthesized speech")
	return &providers.SpeechResult{Data: audio, ContentType: "audio/mpeg"}, nil
}

var _ providers.SpeechSynthesizer = (*Client)(nil)
