package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mediagen/internal/domain"
	"mediagen/internal/infra"
	"mediagen/internal/providers"
)

const providerName = "openai"

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("openai: api key is required")

// Options configures the OpenAI client.
type Options struct {
	APIKey         string
	BaseURL        string
	ImageModel     string
	ChatModel      string
	MaxTokens      int
	Temperature    float64
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the OpenAI images and chat completions APIs.
type Client struct {
	apiKey      string
	baseURL     string
	imageModel  string
	chatModel   string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	logger      *infra.Logger
}

type imageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size,omitempty"`
	Quality        string `json:"quality,omitempty"`
	ResponseFormat string `json:"response_format"`
}

type imageGenerationResponse struct {
	Data []struct {
		B64JSON       string `json:"b64_json"`
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
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
		baseURL = "https://api.openai.com/v1"
	}
	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = "dall-e-3"
	}
	chatModel := strings.TrimSpace(opts.ChatModel)
	if chatModel == "" {
		chatModel = "gpt-3.5-turbo"
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 500
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}
	return &Client{
		apiKey:      strings.TrimSpace(opts.APIKey),
		baseURL:     baseURL,
		imageModel:  imageModel,
		chatModel:   chatModel,
		maxTokens:   maxTokens,
		temperature: temperature,
		httpClient:  httpClient,
		logger:      infra.LoggerOrDiscard(opts.Logger),
	}, nil
}

// Name identifies the provider in logs and errors.
func (c *Client) Name() string { return providerName }

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool { return c.apiKey != "" }

// GenerateImage requests a single image. Base64 payloads are decoded inline;
// URL payloads are downloaded once.
func (c *Client) GenerateImage(ctx context.Context, req providers.ImageRequest) (*providers.ImageResult, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	payload := imageGenerationRequest{
		Model:          c.imageModel,
		Prompt:         strings.TrimSpace(req.Prompt),
		N:              1,
		Size:           strings.TrimSpace(req.Size),
		Quality:        strings.TrimSpace(req.Quality),
		ResponseFormat: "b64_json",
	}
	var decoded imageGenerationResponse
	if err := c.postJSON(ctx, "/images/generations", req.CorrelationID, payload, &decoded); err != nil {
		return nil, err
	}
	if len(decoded.Data) == 0 {
		return nil, &domain.ProviderError{Provider: providerName, Detail: "empty image response"}
	}
	item := decoded.Data[0]
	result := &providers.ImageResult{ContentType: "image/png", RevisedPrompt: item.RevisedPrompt}
	switch {
	case item.B64JSON != "":
		data, err := base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			return nil, &domain.ProviderError{Provider: providerName, Detail: "decode image payload: " + err.Error()}
		}
		result.Data = data
	case item.URL != "":
		data, contentType, err := providers.Download(ctx, c.httpClient, providerName, item.URL)
		if err != nil {
			return nil, err
		}
		result.Data = data
		if strings.HasPrefix(contentType, "image/") {
			result.ContentType = contentType
		}
	default:
		return nil, &domain.ProviderError{Provider: providerName, Detail: "image response has neither data nor url"}
	}
	c.logger.Debug().
		Str("model", c.imageModel).
		Str("correlation_id", req.CorrelationID).
		Int("bytes", len(result.Data)).
		Msg("openai: generated image")
	return result, nil
}

// Reply sends the conversation context to the chat completions API.
func (c *Client) Reply(ctx context.Context, req providers.ChatRequest) (*providers.ChatReply, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	messages := make([]chatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	payload := chatCompletionRequest{
		Model:       c.chatModel,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	var decoded chatCompletionResponse
	if err := c.postJSON(ctx, "/chat/completions", req.CorrelationID, payload, &decoded); err != nil {
		return nil, err
	}
	if len(decoded.Choices) == 0 {
		return nil, &domain.ProviderError{Provider: providerName, Detail: "empty chat response"}
	}
	text := strings.TrimSpace(decoded.Choices[0].Message.Content)
	c.logger.Debug().
		Str("model", c.chatModel).
		Str("completion_id", decoded.ID).
		Str("correlation_id", req.CorrelationID).
		Msg("openai: chat completion")
	return &providers.ChatReply{Text: text}, nil
}

func (c *Client) postJSON(ctx context.Context, path, correlationID string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("openai: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if correlationID != "" {
		httpReq.Header.Set("X-Request-ID", correlationID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return providers.Transport(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return providers.StatusError(providerName, resp, providers.ReadErrorBody(resp.Body))
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.ProviderError{Provider: providerName, StatusCode: resp.StatusCode, Detail: "read response: " + err.Error()}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.ProviderError{Provider: providerName, StatusCode: resp.StatusCode, Detail: "decode response: " + err.Error()}
	}
	return nil
}

var (
	_ providers.ImageGenerator = (*Client)(nil)
	_ providers.ChatResponder  = (*Client)(nil)
)
