package elevenlabs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"mediagen/internal/domain"
	"mediagen/internal/providers"
)

func TestVoiceID(t *testing.T) {
	tests := map[string]string{
		"":                     "pNInz6obpgDQGcFmaJgB",
		"default":              "pNInz6obpgDQGcFmaJgB",
		"Male":                 "pNInz6obpgDQGcFmaJgB",
		"female":               "EXAVITQu4vr4xnSDxMaL",
		"professional":         "EXAVITQu4vr4xnSDxMaL",
		"21m00Tcm4TlvDq8ikWAM": "21m00Tcm4TlvDq8ikWAM",
	}
	for name, want := range tests {
		if got := VoiceID(name); got != want {
			t.Errorf("VoiceID(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestSynthesizeReturnsAudio(t *testing.T) {
	var captured speechRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/text-to-speech/EXAVITQu4vr4xnSDxMaL" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "el-test" {
			t.Errorf("api key header = %q", r.Header.Get("xi-api-key"))
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3audio"))
	}))
	defer srv.Close()

	client, _ := NewClient(Options{APIKey: "el-test", BaseURL: srv.URL})
	result, err := client.Synthesize(context.Background(), providers.SpeechRequest{Text: "Welcome", Voice: "female"})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(result.Data) != "ID3audio" || result.ContentType != "audio/mpeg" {
		t.Fatalf("result = %+v", result)
	}
	if captured.Text != "Welcome" || captured.ModelID != "eleven_monolingual_v1" {
		t.Fatalf("payload = %+v", captured)
	}
	if captured.VoiceSettings.Stability != 0.75 || captured.VoiceSettings.SimilarityBoost != 0.75 {
		t.Fatalf("voice settings = %+v", captured.VoiceSettings)
	}
}

func TestSynthesizeErrorVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":{"status":"invalid_api_key"}}`)
	}))
	defer srv.Close()

	client, _ := NewClient(Options{APIKey: "bad", BaseURL: srv.URL})
	_, err := client.Synthesize(context.Background(), providers.SpeechRequest{Text: "x"})
	var perr *domain.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want ProviderError", err)
	}
	if perr.StatusCode != http.StatusUnauthorized || perr.Detail != `{"detail":{"status":"invalid_api_key"}}` {
		t.Fatalf("provider error = %+v", perr)
	}
}

func TestSynthesizeEmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	client, _ := NewClient(Options{APIKey: "el-test", BaseURL: srv.URL})
	if _, err := client.Synthesize(context.Background(), providers.SpeechRequest{Text: "x"}); !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("error = %v, want provider failure", err)
	}
}
