package store

import (
	"context"
	"time"
)

// EventKind names a session lifecycle transition.
type EventKind string

const (
	EventLogin       EventKind = "login"
	EventLogout      EventKind = "logout"
	EventChatStarted EventKind = "chat_started"
	EventChatEnded   EventKind = "chat_ended"
)

// Event is one audit record. Chat text is never stored.
type Event struct {
	ID        int64
	Kind      EventKind
	User      string
	Peer      string // empty unless the event involves a chat partner
	Remote    string
	CreatedAt time.Time
}

// EventStore persists session lifecycle events.
type EventStore interface {
	// RecordEvent inserts ev and fills in its ID and CreatedAt.
	RecordEvent(ctx context.Context, ev *Event) error
	// ListEvents returns up to limit events, newest first.
	ListEvents(ctx context.Context, limit int) ([]Event, error)
	Close() error
}
