package twilio

import (
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

const providerName = "twilio"

// ErrMissingCredentials indicates that the account sid, token or caller number is absent.
var ErrMissingCredentials = errors.New("twilio: account sid, auth token and phone number are required")

// Options configures the Twilio client.
type Options struct {
	AccountSID     string
	AuthToken      string
	FromNumber     string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client places outbound calls through the Twilio REST API.
type Client struct {
	sid        string
	token      string
	from       string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

type callResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// NewClient constructs a client with defaults applied.
func NewClient(opts Options) (*Client, error) {
	c := &Client{
		sid:    strings.TrimSpace(opts.AccountSID),
		token:  strings.TrimSpace(opts.AuthToken),
		from:   strings.TrimSpace(opts.FromNumber),
		logger: infra.LoggerOrDiscard(opts.Logger),
	}
	if c.sid == "" || c.token == "" || c.from == "" {
		return nil, ErrMissingCredentials
	}
	c.httpClient = opts.HTTPClient
	if c.httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	c.baseURL = strings.TrimRight(opts.BaseURL, "/")
	if c.baseURL == "" {
		c.baseURL = "https://api.twilio.com/2010-04-01"
	}
	return c, nil
}

// Name identifies the provider in logs and errors.
func (c *Client) Name() string { return providerName }

// PlaceCall asks Twilio to dial the number and fetch its script from ScriptURL.
func (c *Client) PlaceCall(ctx context.Context, req providers.CallRequest) (*providers.CallResult, error) {
	form := url.Values{}
	form.Set("To", req.To)
	form.Set("From", c.from)
	form.Set("Url", req.ScriptURL)
	form.Set("Method", http.MethodGet)
	if req.CallbackURL != "" {
		form.Set("StatusCallback", req.CallbackURL)
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls.json", c.baseURL, url.PathEscape(c.sid))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("twilio: build request: %w", err)
	}
	httpReq.SetBasicAuth(c.sid, c.token)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.Transport(providerName, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, providers.StatusError(providerName, resp, providers.ReadErrorBody(resp.Body))
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ProviderError{Provider: providerName, StatusCode: resp.StatusCode, Detail: "read response: " + err.Error()}
	}
	var decoded callResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &domain.ProviderError{Provider: providerName, StatusCode: resp.StatusCode, Detail: "decode response: " + err.Error()}
	}
	if decoded.SID == "" {
		return nil, &domain.ProviderError{Provider: providerName, StatusCode: resp.StatusCode, Detail: "call response missing sid"}
	}
	c.logger.Info().
		Str("call_sid", decoded.SID).
		Str("status", decoded.Status).
		Str("correlation_id", req.CorrelationID).
		Msg("twilio: call placed")
	return &providers.CallResult{CallID: decoded.SID, Status: decoded.Status}, nil
}

var _ providers.CallPlacer = (*Client)(nil)
