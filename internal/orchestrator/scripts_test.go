package orchestrator

import (
	"testing"
	"time"

	"mediagen/internal/providers/twilio"
)

func TestScriptStoreExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewScriptStore(time.Minute)
	store.now = func() time.Time { return now }

	store.Put("a", twilio.Script{Message: "hello"})
	if s, ok := store.Get("a"); !ok || s.Message != "hello" {
		t.Fatalf("get = %+v, %v", s, ok)
	}
	now = now.Add(2 * time.Minute)
	if _, ok := store.Get("a"); ok {
		t.Fatalf("expired script returned")
	}
	store.Put("b", twilio.Script{Message: "bye"})
	if store.Len() != 1 {
		t.Fatalf("len = %d, want expired entry swept", store.Len())
	}
}
