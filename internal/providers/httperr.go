package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"mediagen/internal/domain"
)

// maxErrorBody bounds how much of a failing response body is kept as detail.
const maxErrorBody = 64 << 10

// StatusError converts a non-2xx response into a ProviderError carrying the
// body verbatim, or the status text when the body is empty.
func StatusError(provider string, resp *http.Response, body []byte) error {
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}
	return &domain.ProviderError{Provider: provider, StatusCode: resp.StatusCode, Detail: detail}
}

// ReadErrorBody drains up to maxErrorBody bytes of a failing response.
func ReadErrorBody(r io.Reader) []byte {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return raw
}

// Transport wraps a client-side failure that happened before any response.
func Transport(provider string, err error) error {
	return &domain.TransportError{Provider: provider, Err: err}
}

// Download retrieves a generated document. Failures here happen after the
// provider already produced output, so they are reported as ProviderError and
// never classified as retryable.
func Download(ctx context.Context, client *http.Client, provider, rawURL string) ([]byte, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Scheme == "" {
		return nil, "", &domain.ProviderError{Provider: provider, Detail: fmt.Sprintf("invalid output url: %s", rawURL)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("%s: build download request: %w", provider, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", &domain.ProviderError{Provider: provider, Detail: "download: " + err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, "", StatusError(provider, resp, ReadErrorBody(resp.Body))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &domain.ProviderError{Provider: provider, Detail: "read download: " + err.Error()}
	}
	return data, resp.Header.Get("Content-Type"), nil
}
