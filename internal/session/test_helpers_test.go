package session

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/pairchat/internal/core"
	"github.com/vovakirdan/pairchat/internal/proto"
	"github.com/vovakirdan/pairchat/internal/store"
)

const waitTimeout = 2 * time.Second

type testServer struct {
	registry *core.Registry
	handler  *Handler
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	disabledLogger := zerolog.New(nil)
	registry := core.NewRegistry()

	ts := &testServer{
		registry: registry,
		handler:  NewHandler(registry, opts, &disabledLogger),
		ctx:      ctx,
		cancel:   cancel,
	}
	t.Cleanup(func() {
		cancel()
		ts.wg.Wait()
	})
	return ts
}

type testClient struct {
	conn  net.Conn
	w     *proto.Writer
	lines chan string
	done  chan struct{}
}

// connect serves a fresh in-memory connection and consumes the welcome line.
func (ts *testServer) connect(t *testing.T) *testClient {
	t.Helper()

	serverSide, clientSide := net.Pipe()
	c := &testClient{
		conn:  clientSide,
		w:     proto.NewWriter(clientSide, waitTimeout),
		lines: make(chan string, 64),
		done:  make(chan struct{}),
	}

	ts.wg.Add(1)
	go func() {
		defer ts.wg.Done()
		defer close(c.done)
		ts.handler.Serve(ts.ctx, serverSide, "pipe")
	}()

	go func() {
		defer close(c.lines)
		r := proto.NewReader(clientSide, 0)
		for {
			line, err := r.ReadLine()
			if err != nil {
				return
			}
			c.lines <- line
		}
	}()

	t.Cleanup(func() { _ = clientSide.Close() })

	c.expect(t, proto.Welcome)
	return c
}

func (c *testClient) send(t *testing.T, line string) {
	t.Helper()
	if err := c.w.WriteLine(line); err != nil {
		t.Fatalf("send %q: %v", line, err)
	}
}

func (c *testClient) next(t *testing.T) string {
	t.Helper()
	select {
	case line, ok := <-c.lines:
		if !ok {
			t.Fatalf("connection closed while waiting for a line")
		}
		return line
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for a line")
		return ""
	}
}

func (c *testClient) expect(t *testing.T, want string) {
	t.Helper()
	if got := c.next(t); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func (c *testClient) roundTrip(t *testing.T, line, want string) {
	t.Helper()
	c.send(t, line)
	c.expect(t, want)
}

func (c *testClient) login(t *testing.T, name string) {
	t.Helper()
	c.roundTrip(t, "HELLO "+name, "OK Logged in as "+name)
}

func (c *testClient) expectSilence(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case line, ok := <-c.lines:
		if ok {
			t.Fatalf("expected no line, got %q", line)
		}
	case <-time.After(d):
	}
}

func (c *testClient) expectClosed(t *testing.T) {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(waitTimeout):
		t.Fatalf("server did not close the connection")
	}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met: %s", msg)
}

type memoryRecorder struct {
	mu     sync.Mutex
	events []store.Event
}

func (m *memoryRecorder) RecordEvent(_ context.Context, ev *store.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *ev)
	return nil
}

func (m *memoryRecorder) kinds() []store.EventKind {
	m.mu.Lock()
	defer m.mu.Unlock()

	kinds := make([]store.EventKind, 0, len(m.events))
	for _, ev := range m.events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

type panickingRecorder struct{}

func (panickingRecorder) RecordEvent(context.Context, *store.Event) error {
	panic("recorder exploded")
}
