package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/vovakirdan/pairchat/internal/core"
	"github.com/vovakirdan/pairchat/internal/store"
)

type nopWriter struct{}

func (nopWriter) WriteLine(string) error { return nil }

func getJSON(t *testing.T, env *testEnv, path string, wantStatus int, out any) {
	t.Helper()

	resp, err := env.ts.Client().Get(env.ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s: expected status %d, got %d: %s", path, wantStatus, resp.StatusCode, body)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := startTestServer(t, nil)

	resp, err := env.ts.Client().Get(env.ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected health response: %d %q", resp.StatusCode, body)
	}
}

func TestListUsers(t *testing.T) {
	env := startTestServer(t, nil)

	for _, name := range []string{"carol", "alice", "bob"} {
		if err := env.registry.Register(name, core.NewClient(name, "10.0.0.1:1", nopWriter{})); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	if _, err := env.registry.Pair("alice", "bob"); err != nil {
		t.Fatalf("pair: %v", err)
	}

	var users []UserResponse
	getJSON(t, env, "/api/users", http.StatusOK, &users)

	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	want := map[string]string{"alice": "bob", "bob": "alice", "carol": ""}
	for i, u := range users {
		if u.Partner != want[u.Name] {
			t.Errorf("user %s: partner %q, want %q", u.Name, u.Partner, want[u.Name])
		}
		if i > 0 && users[i-1].Name > u.Name {
			t.Errorf("users not sorted: %s before %s", users[i-1].Name, u.Name)
		}
	}
}

func TestListEventsDisabled(t *testing.T) {
	env := startTestServer(t, nil)

	var errResp ErrorResponse
	getJSON(t, env, "/api/events", http.StatusServiceUnavailable, &errResp)
	if errResp.Error == "" {
		t.Fatalf("expected error message")
	}
}

func TestListEvents(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()
	for _, user := range []string{"alice", "bob", "carol"} {
		if err := st.RecordEvent(ctx, &store.Event{Kind: store.EventLogin, User: user}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	env := startTestServer(t, st)

	var events []EventResponse
	getJSON(t, env, "/api/events?limit=2", http.StatusOK, &events)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].User != "carol" || events[0].Kind != string(store.EventLogin) {
		t.Fatalf("unexpected newest event: %+v", events[0])
	}

	getJSON(t, env, "/api/events", http.StatusOK, &events)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	for _, bad := range []string{"0", "-3", "many"} {
		getJSON(t, env, "/api/events?limit="+bad, http.StatusBadRequest, nil)
	}
}
