package http

import (
	"database/sql"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/pairchat/internal/config"
	"github.com/vovakirdan/pairchat/internal/core"
	"github.com/vovakirdan/pairchat/internal/session"
	"github.com/vovakirdan/pairchat/internal/store"
	"github.com/vovakirdan/pairchat/internal/store/sqlite"
)

// createTestStore creates an in-memory SQLite store with schema applied.
func createTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", func(db *sql.DB) error {
		_, err := db.Exec(sqlite.Schema)
		return err
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return st
}

type testEnv struct {
	ts       *httptest.Server
	registry *core.Registry
}

// startTestServer wires a registry, a session handler and the admin router.
// events may be nil to run without an audit log.
func startTestServer(t *testing.T, events store.EventStore) *testEnv {
	t.Helper()

	disabledLogger := zerolog.New(nil)
	cfg := config.Default()
	cfg.AdminAddr = ":0"

	registry := core.NewRegistry()
	opts := session.Options{MaxLineBytes: cfg.MaxLineBytes, WriteTimeout: time.Second}
	if events != nil {
		opts.Recorder = events
	}
	handler := session.NewHandler(registry, opts, &disabledLogger)

	server := NewServer(registry, events, handler, &cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, registry: registry}
}
