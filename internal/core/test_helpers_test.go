package core

import (
	"sync"
	"testing"
)

type recordingWriter struct {
	mu    sync.Mutex
	lines []string
}

func (w *recordingWriter) WriteLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines = append(w.lines, line)
	return nil
}

func newTestClient(id string) *Client {
	return NewClient(id, "127.0.0.1:0", &recordingWriter{})
}

func mustRegister(t *testing.T, r *Registry, names ...string) map[string]*Client {
	t.Helper()

	clients := make(map[string]*Client, len(names))
	for _, name := range names {
		c := newTestClient(name)
		if err := r.Register(name, c); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
		clients[name] = c
	}
	return clients
}

// assertSymmetric fails if any pairing in the snapshot is one-sided.
func assertSymmetric(t *testing.T, r *Registry) {
	t.Helper()

	states := r.Snapshot()
	byName := make(map[string]string, len(states))
	for _, s := range states {
		byName[s.Name] = s.Partner
	}
	for name, partner := range byName {
		if partner == "" {
			continue
		}
		back, ok := byName[partner]
		if !ok || back != name {
			t.Fatalf("asymmetric pairing: %s -> %s, %s -> %q", name, partner, partner, back)
		}
	}
}
