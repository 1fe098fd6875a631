package ledger

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-memory Store for tests and dry runs. Same append-only
// semantics as the SQLite store.
type Memory struct {
	mu      sync.Mutex
	entries map[string][]Entry // platform/external_id -> attempts in order
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]Entry)}
}

func key(platform, externalID string) string {
	return platform + "/" + externalID
}

func (m *Memory) Lookup(_ context.Context, platform, externalID string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	es := m.entries[key(platform, externalID)]
	if len(es) == 0 {
		return nil, nil
	}
	e := es[len(es)-1]
	return &e, nil
}

func (m *Memory) Append(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(e.Platform, e.ExternalID)
	m.entries[k] = append(m.entries[k], e)
	return nil
}

func (m *Memory) CountSucceededSince(_ context.Context, platform string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, es := range m.entries {
		for _, e := range es {
			if e.Platform == platform && e.Outcome == OutcomeSucceeded && !e.AppliedAt.Before(since) {
				n++
			}
		}
	}
	return n, nil
}

// All returns every entry for a platform, oldest first. Test helper.
func (m *Memory) All(platform string) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Entry
	for _, es := range m.entries {
		for _, e := range es {
			if e.Platform == platform {
				out = append(out, e)
			}
		}
	}
	return out
}

func (m *Memory) Close() error { return nil }
