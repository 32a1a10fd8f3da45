package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"mediagen/internal/infra"
	"mediagen/internal/providers/elevenlabs"
	"mediagen/internal/providers/polly"
)

func TestBuildRegistryWithoutCredentials(t *testing.T) {
	var hits int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer upstream.Close()

	cfg := &infra.Config{
		OpenAIBaseURL:     upstream.URL,
		ElevenLabsBaseURL: upstream.URL,
		ReplicateBaseURL:  upstream.URL,
		TwilioBaseURL:     upstream.URL,
		AWSRegion:         "us-east-1",
		ProviderTimeout:   time.Second,
	}
	registry, mirror, err := buildRegistry(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	if mirror != nil {
		t.Fatalf("mirror configured without credentials")
	}
	for name, ok := range registry.Capabilities() {
		if ok {
			t.Fatalf("capability %s enabled without credentials", name)
		}
	}
	for name, ok := range registry.Services() {
		if ok {
			t.Fatalf("service %s reported configured", name)
		}
	}
	if _, err := registry.Image(); err == nil {
		t.Fatalf("image adapter returned without credentials")
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("upstream received %d requests", hits)
	}
}

func TestBuildRegistrySpeechPrefersElevenLabs(t *testing.T) {
	cfg := &infra.Config{
		ElevenLabsKey:      "xi-key",
		ElevenLabsBaseURL:  "https://api.elevenlabs.io/v1",
		AWSAccessKeyID:     "AKIDEXAMPLE",
		AWSSecretAccessKey: "secret",
		AWSRegion:          "us-east-1",
		ProviderTimeout:    time.Second,
	}
	registry, mirror, err := buildRegistry(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	speech, err := registry.Speech()
	if err != nil {
		t.Fatalf("speech: %v", err)
	}
	if _, ok := speech.(*elevenlabs.Client); !ok {
		t.Fatalf("speech adapter = %T, want elevenlabs", speech)
	}
	if mirror != nil {
		t.Fatalf("mirror configured without a bucket")
	}

	cfg.ElevenLabsKey = ""
	cfg.AWSBucketName = "media"
	registry, mirror, err = buildRegistry(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	speech, err = registry.Speech()
	if err != nil {
		t.Fatalf("speech: %v", err)
	}
	if _, ok := speech.(*polly.Synthesizer); !ok {
		t.Fatalf("speech adapter = %T, want polly", speech)
	}
	if mirror == nil || !registry.Services()["s3"] || !registry.Services()["polly"] {
		t.Fatalf("services = %v", registry.Services())
	}
}
