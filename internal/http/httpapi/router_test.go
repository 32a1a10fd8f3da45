package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"mediagen/internal/adapter/repo"
	"mediagen/internal/domain"
	"mediagen/internal/http/handlers"
	"mediagen/internal/orchestrator"
	"mediagen/internal/providers"
	"mediagen/internal/storage"
)

type stubImage struct{ calls int }

func (s *stubImage) Name() string { return "stub" }

func (s *stubImage) GenerateImage(ctx context.Context, req providers.ImageRequest) (*providers.ImageResult, error) {
	s.calls++
	return &providers.ImageResult{Data: []byte("png"), ContentType: "image/png"}, nil
}

type stubChat struct{}

func (stubChat) Name() string { return "stub" }

func (stubChat) Reply(ctx context.Context, req providers.ChatRequest) (*providers.ChatReply, error) {
	return &providers.ChatReply{Text: "Hello there"}, nil
}

type panickingChat struct{}

func (panickingChat) Name() string { return "stub" }

func (panickingChat) Reply(ctx context.Context, req providers.ChatRequest) (*providers.ChatReply, error) {
	panic("chat adapter exploded")
}

type stubCall struct{ calls int }

func (s *stubCall) Name() string { return "stub" }

func (s *stubCall) PlaceCall(ctx context.Context, req providers.CallRequest) (*providers.CallResult, error) {
	s.calls++
	return &providers.CallResult{CallID: "CA1", Status: "queued"}, nil
}

type noopPoller struct{}

func (noopPoller) Start(string) {}

type testServer struct {
	*httptest.Server
	jobs  *repo.JobRepositoryMemory
	image *stubImage
	call  *stubCall
	dir   string
}

func newTestServer(t *testing.T, set providers.Set) *testServer {
	t.Helper()
	ts := &testServer{jobs: repo.NewJobRepositoryMemory(), dir: t.TempDir()}
	if img, ok := set.Image.(*stubImage); ok {
		ts.image = img
	}
	if c, ok := set.Call.(*stubCall); ok {
		ts.call = c
	}
	files, err := storage.NewFileStore(ts.dir)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	persister, err := storage.NewPersister(storage.PersisterOptions{Files: files, BaseURL: "/static/generated-assets"})
	if err != nil {
		t.Fatalf("persister: %v", err)
	}
	svc, err := orchestrator.New(orchestrator.Options{
		Registry:      providers.NewRegistry(set, map[string]bool{"openai": set.Image != nil, "twilio": set.Call != nil}),
		Jobs:          ts.jobs,
		Conversations: repo.NewConversationRepositoryMemory(),
		Persister:     persister,
		Poller:        noopPoller{},
		ScriptPath:    "/api/media/call/twiml",
	})
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	router := NewRouter(handlers.NewApp(svc, nil), RouterConfig{
		MediaPathPrefix: "/api/media",
		ArtifactBaseURL: "/static/generated-assets",
		ArtifactDir:     ts.dir,
	})
	ts.Server = httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp, out
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp, out
}

func TestImageEndpointServesArtifact(t *testing.T) {
	ts := newTestServer(t, providers.Set{Image: &stubImage{}})
	resp, body := postJSON(t, ts.URL+"/api/media/image", `{"prompt":"city skyline","style":"artistic"}`)
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}
	if _, ok := body["durableUrl"]; ok {
		t.Fatalf("durableUrl present without mirror: %v", body)
	}
	if _, err := os.Stat(body["localPath"].(string)); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}

	file, err := http.Get(ts.URL + body["url"].(string))
	if err != nil {
		t.Fatalf("fetch artifact: %v", err)
	}
	defer file.Body.Close()
	data, _ := io.ReadAll(file.Body)
	if file.StatusCode != http.StatusOK || string(data) != "png" {
		t.Fatalf("static file = %d %q", file.StatusCode, data)
	}
}

func TestErrorStatusCodes(t *testing.T) {
	ts := newTestServer(t, providers.Set{Image: &stubImage{}, Call: &stubCall{}})
	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{name: "malformed json", path: "/api/media/image", body: `{"prompt":`, want: http.StatusBadRequest},
		{name: "missing prompt", path: "/api/media/image", body: `{}`, want: http.StatusBadRequest},
		{name: "local phone number", path: "/api/media/call/place", body: `{"to":"5551234567","message":"hi"}`, want: http.StatusBadRequest},
		{name: "unconfigured speech", path: "/api/media/tts", body: `{"text":"hello"}`, want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postJSON(t, ts.URL+tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d (%v)", resp.StatusCode, tt.want, body)
			}
			if body["success"] != false || body["error"] == "" {
				t.Fatalf("body = %v", body)
			}
		})
	}
	if ts.image.calls != 0 || ts.call.calls != 0 {
		t.Fatalf("providers called: image=%d call=%d", ts.image.calls, ts.call.calls)
	}

	resp, body := getJSON(t, ts.URL+"/api/media/video/status/unknown")
	if resp.StatusCode != http.StatusNotFound || body["success"] != false {
		t.Fatalf("unknown job = %d %v", resp.StatusCode, body)
	}
}

func TestVideoStatusReportsFailedJob(t *testing.T) {
	ts := newTestServer(t, providers.Set{})
	ctx := context.Background()
	id, err := ts.jobs.Create(ctx, &domain.Job{Capability: domain.CapabilityVideo, ExternalID: "pred-9"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	attempts := 60
	status := "processing"
	msg := "video generation timed out after 60 status checks (last provider status: processing)"
	if _, err := ts.jobs.Update(ctx, id, domain.JobUpdate{Status: domain.JobStatusRunning, Attempts: &attempts, ProviderStatus: &status}); err != nil {
		t.Fatalf("running: %v", err)
	}
	if _, err := ts.jobs.Update(ctx, id, domain.JobUpdate{Status: domain.JobStatusTimedOut, Error: &msg}); err != nil {
		t.Fatalf("timed out: %v", err)
	}

	resp, body := getJSON(t, ts.URL+"/api/media/video/status/"+id)
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}
	if body["status"] != "timed_out" || body["error"] != msg || body["attempts"] != float64(60) {
		t.Fatalf("body = %v", body)
	}
	if _, ok := body["localPath"]; ok {
		t.Fatalf("timed out job reports a result: %v", body)
	}
}

func TestChatEndpoint(t *testing.T) {
	ts := newTestServer(t, providers.Set{Chat: stubChat{}})
	_, first := postJSON(t, ts.URL+"/api/media/chat", `{"message":"hi"}`)
	convID, _ := first["conversationId"].(string)
	if first["success"] != true || convID == "" || first["messageCount"] != float64(2) {
		t.Fatalf("first = %v", first)
	}
	_, second := postJSON(t, ts.URL+"/api/media/chat", `{"message":"again","conversationId":"`+convID+`"}`)
	if second["response"] != "Hello there" || second["messageCount"] != float64(4) {
		t.Fatalf("second = %v", second)
	}
}

func TestPanicBecomesJSONError(t *testing.T) {
	ts := newTestServer(t, providers.Set{Chat: panickingChat{}})
	resp, body := postJSON(t, ts.URL+"/api/media/chat", `{"message":"hi"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if body["success"] != false || body["error"] == "" {
		t.Fatalf("body = %v", body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("missing request id on panic response")
	}
}

func TestCallPlacementAndTwiML(t *testing.T) {
	ts := newTestServer(t, providers.Set{Call: &stubCall{}})
	resp, body := postJSON(t, ts.URL+"/api/media/call/place", `{"to":"+15551234567","message":"Meeting at <noon>"}`)
	if resp.StatusCode != http.StatusOK || body["callId"] != "CA1" || body["status"] != "queued" {
		t.Fatalf("place = %d %v", resp.StatusCode, body)
	}

	twiml, err := http.Get(ts.URL + "/api/media/call/twiml?call_id=missing")
	if err != nil {
		t.Fatalf("twiml: %v", err)
	}
	defer twiml.Body.Close()
	data, _ := io.ReadAll(twiml.Body)
	if !strings.HasPrefix(twiml.Header.Get("Content-Type"), "application/xml") {
		t.Fatalf("content type = %q", twiml.Header.Get("Content-Type"))
	}
	if !strings.Contains(string(data), "Hello from GEM Enterprise.") || !strings.Contains(string(data), "<Hangup") {
		t.Fatalf("twiml = %s", data)
	}
}

func TestHealthReportsDisabledProviders(t *testing.T) {
	ts := newTestServer(t, providers.Set{Image: &stubImage{}})
	resp, body := getJSON(t, ts.URL+"/api/media/health")
	if resp.StatusCode != http.StatusOK || body["status"] != "healthy" {
		t.Fatalf("health = %d %v", resp.StatusCode, body)
	}
	caps := body["capabilities"].(map[string]any)
	if caps["image"] != true || caps["video"] != false || caps["call"] != false {
		t.Fatalf("capabilities = %v", caps)
	}
	services := body["services"].(map[string]any)
	if services["twilio"] != false {
		t.Fatalf("services = %v", services)
	}
	if _, ok := body["timestamp"]; !ok {
		t.Fatalf("missing timestamp: %v", body)
	}
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	ts := newTestServer(t, providers.Set{})
	resp, err := http.Get(ts.URL + "/api/media/nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
