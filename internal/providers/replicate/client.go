package replicate

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

const (
	providerName = "replicate"

	// DefaultModelVersion is the text-to-video model used when none is configured.
	DefaultModelVersion = "028c75e7-4001-43d5-8e4f-5f56b3c6b1e8"
)

// ErrMissingToken indicates that the client was configured without credentials.
var ErrMissingToken = errors.New("replicate: api token is required")

// Options configures the Replicate client.
type Options struct {
	APIToken       string
	BaseURL        string
	ModelVersion   string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client creates predictions and reads their status. It never polls.
type Client struct {
	token      string
	baseURL    string
	version    string
	httpClient *http.Client
	logger     *infra.Logger
}

type predictionInput struct {
	Prompt   string `json:"prompt"`
	Duration int    `json:"duration"`
	Seed     int    `json:"seed"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

type createPredictionRequest struct {
	Version string          `json:"version"`
	Input   predictionInput `json:"input"`
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  json.RawMessage `json:"error"`
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
		baseURL = "https://api.replicate.com/v1"
	}
	version := strings.TrimSpace(opts.ModelVersion)
	if version == "" {
		version = DefaultModelVersion
	}
	return &Client{
		token:      strings.TrimSpace(opts.APIToken),
		baseURL:    baseURL,
		version:    version,
		httpClient: httpClient,
		logger:     infra.LoggerOrDiscard(opts.Logger),
	}, nil
}

// Name identifies the provider in logs and errors.
func (c *Client) Name() string { return providerName }

// CreateVideo submits a prediction and returns its external id.
func (c *Client) CreateVideo(ctx context.Context, req providers.VideoRequest) (string, error) {
	if c.token == "" {
		return "", ErrMissingToken
	}
	payload := createPredictionRequest{
		Version: c.version,
		Input: predictionInput{
			Prompt:   strings.TrimSpace(req.Prompt),
			Duration: req.Duration,
			Seed:     -1,
			Width:    req.Width,
			Height:   req.Height,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("replicate: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predictions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("replicate: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.CorrelationID != "" {
		httpReq.Header.Set("X-Request-ID", req.CorrelationID)
	}

	var pred prediction
	if err := c.do(httpReq, &pred); err != nil {
		return "", err
	}
	if strings.TrimSpace(pred.ID) == "" {
		return "", &domain.ProviderError{Provider: providerName, Detail: "prediction response missing id"}
	}
	c.logger.Info().
		Str("prediction_id", pred.ID).
		Str("status", pred.Status).
		Str("correlation_id", req.CorrelationID).
		Msg("replicate: prediction created")
	return pred.ID, nil
}

// VideoStatus reads the current state of a prediction.
func (c *Client) VideoStatus(ctx context.Context, externalID string) (*providers.VideoStatus, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}
	id := strings.TrimSpace(externalID)
	if id == "" {
		return nil, fmt.Errorf("replicate: external id is required")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/predictions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("replicate: build request: %w", err)
	}
	var pred prediction
	if err := c.do(httpReq, &pred); err != nil {
		return nil, err
	}
	return toVideoStatus(id, pred), nil
}

// Download fetches the finished video document.
func (c *Client) Download(ctx context.Context, outputURL string) ([]byte, string, error) {
	return providers.Download(ctx, c.httpClient, providerName, outputURL)
}

func (c *Client) do(httpReq *http.Request, out *prediction) error {
	httpReq.Header.Set("Authorization", "Token "+c.token)
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

func toVideoStatus(id string, pred prediction) *providers.VideoStatus {
	status := &providers.VideoStatus{
		ExternalID:     id,
		ProviderStatus: pred.Status,
	}
	switch strings.ToLower(pred.Status) {
	case "succeeded":
		status.OutputURL = outputURL(pred.Output)
		if status.OutputURL == "" {
			status.State = providers.VideoStateFailed
			status.Error = "prediction succeeded without output"
			return status
		}
		status.State = providers.VideoStateSucceeded
	case "failed", "canceled", "cancelled":
		status.State = providers.VideoStateFailed
		status.Error = errorText(pred.Error)
		if status.Error == "" {
			status.Error = "prediction " + strings.ToLower(pred.Status)
		}
	default:
		status.State = providers.VideoStateRunning
	}
	return status
}

// outputURL accepts either a single URL or a list whose first entry is used.
func outputURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.TrimSpace(single)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if s := strings.TrimSpace(item); s != "" {
				return s
			}
		}
	}
	return ""
}

func errorText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(string(raw))
}

var _ providers.VideoGenerator = (*Client)(nil)
