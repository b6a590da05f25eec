package http

import (
	"time"

	"github.com/samber/lo"

	"github.com/vovakirdan/pairchat/internal/core"
	"github.com/vovakirdan/pairchat/internal/store"
)

// UserResponse is one online user.
type UserResponse struct {
	Name        string    `json:"name"`
	Partner     string    `json:"partner,omitempty"`
	Remote      string    `json:"remote"`
	ConnectedAt time.Time `json:"connected_at"`
}

// EventResponse is one audit record.
type EventResponse struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	User      string    `json:"user"`
	Peer      string    `json:"peer,omitempty"`
	Remote    string    `json:"remote,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func usersToResponse(states []core.UserState) []UserResponse {
	return lo.Map(states, func(s core.UserState, _ int) UserResponse {
		return UserResponse{
			Name:        s.Name,
			Partner:     s.Partner,
			Remote:      s.Remote,
			ConnectedAt: s.ConnectedAt,
		}
	})
}

func eventsToResponse(events []store.Event) []EventResponse {
	return lo.Map(events, func(ev store.Event, _ int) EventResponse {
		return EventResponse{
			ID:        ev.ID,
			Kind:      string(ev.Kind),
			User:      ev.User,
			Peer:      ev.Peer,
			Remote:    ev.Remote,
			CreatedAt: ev.CreatedAt,
		}
	})
}
