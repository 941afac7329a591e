package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is a development-only Store used when no Redis is configured.
// Records are copied on the way in and out.
type MemoryStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	data map[string]memEntry
}

type memEntry struct {
	raw     []byte
	version int64
	expires time.Time
}

// NewMemoryStore returns an empty store; ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, data: make(map[string]memEntry)}
}

func (m *MemoryStore) Load(ctx context.Context, id string) (*Record, error) {
	m.mu.Lock()
	e, ok := m.live(id)
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	var rec Record
	if err := json.Unmarshal(e.raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *MemoryStore) Save(ctx context.Context, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.live(rec.ID); ok {
		if err := checkVersion(e.version, rec.Version); err != nil {
			return fmt.Errorf("save session %s v%d: %w", rec.ID, rec.Version, err)
		}
	}
	entry := memEntry{raw: raw, version: rec.Version}
	if m.ttl > 0 {
		entry.expires = m.now().Add(m.ttl)
	}
	m.data[rec.ID] = entry
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.data, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// live must be called with mu held.
func (m *MemoryStore) live(id string) (memEntry, bool) {
	e, ok := m.data[id]
	if !ok {
		return memEntry{}, false
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.data, id)
		return memEntry{}, false
	}
	return e, true
}
