package polly

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"

	"mediagen/internal/domain"
	"mediagen/internal/providers"
)

type fakeAPI struct {
	input *polly.SynthesizeSpeechInput
	audio string
	err   error
}

func (f *fakeAPI) SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &polly.SynthesizeSpeechOutput{AudioStream: io.NopCloser(strings.NewReader(f.audio))}, nil
}

func TestSynthesizeUsesVoiceMap(t *testing.T) {
	tests := []struct {
		voice string
		want  types.VoiceId
	}{
		{voice: "", want: types.VoiceIdJoanna},
		{voice: "female", want: types.VoiceIdJoanna},
		{voice: "male", want: types.VoiceIdMatthew},
		{voice: "professional", want: types.VoiceIdSalli},
		{voice: "Brian", want: types.VoiceIdBrian},
	}
	for _, tt := range tests {
		api := &fakeAPI{audio: "mp3"}
		result, err := New(api, nil).Synthesize(context.Background(), providers.SpeechRequest{Text: "hello", Voice: tt.voice})
		if err != nil {
			t.Fatalf("voice %q: %v", tt.voice, err)
		}
		if api.input.VoiceId != tt.want {
			t.Fatalf("voice %q mapped to %q, want %q", tt.voice, api.input.VoiceId, tt.want)
		}
		if api.input.OutputFormat != types.OutputFormatMp3 {
			t.Fatalf("output format = %q", api.input.OutputFormat)
		}
		if string(result.Data) != "mp3" || result.ContentType != "audio/mpeg" {
			t.Fatalf("result = %+v", result)
		}
	}
}

// countingClient fails every request before a response arrives.
type countingClient struct {
	calls int32
}

func (c *countingClient) Do(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&c.calls, 1)
	return nil, errors.New("read tcp 10.0.0.1:443: connection reset by peer")
}

func testConfig(httpClient aws.HTTPClient, endpoint string) aws.Config {
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
		HTTPClient:  httpClient,
	}
	if endpoint != "" {
		cfg.BaseEndpoint = aws.String(endpoint)
	}
	return cfg
}

func TestSynthesizeTransportFailureIsSingleAttempt(t *testing.T) {
	client := &countingClient{}
	synth := NewFromConfig(testConfig(client, ""), nil)

	_, err := synth.Synthesize(context.Background(), providers.SpeechRequest{Text: "hello"})
	if !domain.IsTransient(err) {
		t.Fatalf("error = %v, want transport error", err)
	}
	if errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("transport failure classified as provider failure: %v", err)
	}
	if n := atomic.LoadInt32(&client.calls); n != 1 {
		t.Fatalf("network calls = %d, want 1", n)
	}
}

func TestSynthesizeServiceErrorIsSingleAttempt(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Amzn-ErrorType", "ServiceFailureException")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"internal failure"}`))
	}))
	defer srv.Close()

	synth := NewFromConfig(testConfig(srv.Client(), srv.URL), nil)
	_, err := synth.Synthesize(context.Background(), providers.SpeechRequest{Text: "hello"})
	var perr *domain.ProviderError
	if !errors.As(err, &perr) || perr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("error = %v, want provider error with status 500", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("requests = %d, want 1", n)
	}
}

func TestSynthesizeEmptyStream(t *testing.T) {
	api := &fakeAPI{audio: ""}
	_, err := New(api, nil).Synthesize(context.Background(), providers.SpeechRequest{Text: "hello"})
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("error = %v, want provider failure", err)
	}
}
