package store

import (
	"context"
	"sync"
	"time"

	"github.com/insightdelivered/transfer-extractor/internal/models"
)

// Memory is an in-process Store. Entries older than the TTL are dropped
// lazily on access; a zero TTL keeps them forever.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]Entry
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

func (m *Memory) expired(e Entry) bool {
	return m.ttl > 0 && m.now().Sub(e.UpdatedAt) > m.ttl
}

func (m *Memory) Save(_ context.Context, session string, revision int64, res models.Result) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.entries[session]; ok && !m.expired(cur) && cur.Revision > revision {
		return false, nil
	}
	m.entries[session] = Entry{
		Revision:  revision,
		Result:    res,
		UpdatedAt: m.now(),
	}
	return true, nil
}

func (m *Memory) Load(_ context.Context, session string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[session]
	if !ok {
		return Entry{}, ErrNotFound
	}
	if m.expired(e) {
		delete(m.entries, session)
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (m *Memory) Delete(_ context.Context, session string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, session)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
