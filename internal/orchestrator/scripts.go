package orchestrator

import (
	"sync"
	"time"

	"mediagen/internal/providers/twilio"
)

// DefaultScriptTTL bounds how long a call script stays retrievable.
const DefaultScriptTTL = time.Hour

type scriptEntry struct {
	script  twilio.Script
	expires time.Time
}

// ScriptStore keeps the spoken message of placed calls until the telephony
// provider fetches it.
type ScriptStore struct {
	mu    sync.Mutex
	items map[string]scriptEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewScriptStore returns an empty store. ttl <= 0 uses DefaultScriptTTL.
func NewScriptStore(ttl time.Duration) *ScriptStore {
	if ttl <= 0 {
		ttl = DefaultScriptTTL
	}
	return &ScriptStore{items: make(map[string]scriptEntry), ttl: ttl, now: time.Now}
}

// Put stores s under id and drops expired entries.
func (s *ScriptStore) Put(id string, script twilio.Script) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, e := range s.items {
		if now.After(e.expires) {
			delete(s.items, key)
		}
	}
	s.items[id] = scriptEntry{script: script, expires: now.Add(s.ttl)}
}

// Get returns the script for id if it has not expired.
func (s *ScriptStore) Get(id string) (twilio.Script, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok || s.now().After(e.expires) {
		return twilio.Script{}, false
	}
	return e.script, true
}

// Delete removes id.
func (s *ScriptStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

// Len reports the number of stored scripts, expired ones included.
func (s *ScriptStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
