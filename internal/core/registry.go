package core

import (
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Registry maps logged-in display names to their connections and chat partners.
//
// Both maps are guarded by one mutex and every exported method runs in a single
// critical section, so pairings are always observed symmetric: partners[a] == b
// iff partners[b] == a. Callers never write to a client while holding the lock;
// methods hand back resolved handles instead.
type Registry struct {
	mu       sync.Mutex
	clients  map[string]*Client
	partners map[string]string // "" means not chatting
}

// Peer is the other side of a chat, resolved under the registry lock.
type Peer struct {
	Name   string
	Client *Client
}

// UserState is a point-in-time view of one registered name.
type UserState struct {
	Name        string
	Partner     string
	Remote      string
	ConnectedAt time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients:  make(map[string]*Client),
		partners: make(map[string]string),
	}
}

// Register claims name for c with no partner.
func (r *Registry) Register(name string, c *Client) error {
	if name == "" || c == nil {
		return ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.clients[name]; taken {
		return ErrNameTaken
	}
	r.clients[name] = c
	r.partners[name] = ""
	return nil
}

// Unregister releases name. If name was chatting, the partner is detached and
// returned so the caller can notify it. Unregistering an absent name is a no-op.
func (r *Registry) Unregister(name string) (Peer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[name]; !ok {
		return Peer{}, false
	}

	partner := r.partners[name]
	delete(r.clients, name)
	delete(r.partners, name)

	if partner == "" {
		return Peer{}, false
	}
	pc, ok := r.clients[partner]
	if !ok {
		return Peer{}, false
	}
	r.partners[partner] = ""
	return Peer{Name: partner, Client: pc}, true
}

// Pair starts a chat between a and b and returns b's handle.
// A busy initiator is reported before anything about b.
func (r *Registry) Pair(a, b string) (Peer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[a]; !ok {
		return Peer{}, ErrUserNotFound
	}
	if r.partners[a] != "" {
		return Peer{}, ErrAlreadyInChat
	}
	bc, ok := r.clients[b]
	if !ok {
		return Peer{}, ErrUserNotFound
	}
	if a == b {
		return Peer{}, ErrSelfChat
	}
	if r.partners[b] != "" {
		return Peer{}, ErrPeerInChat
	}

	r.partners[a] = b
	r.partners[b] = a
	return Peer{Name: b, Client: bc}, nil
}

// Unpair ends a's chat on both sides and returns the former partner.
func (r *Registry) Unpair(a string) (Peer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	partner := r.partners[a]
	if partner == "" {
		return Peer{}, ErrNoActiveChat
	}

	r.partners[a] = ""
	pc, ok := r.clients[partner]
	if !ok {
		return Peer{Name: partner}, nil
	}
	r.partners[partner] = ""
	return Peer{Name: partner, Client: pc}, nil
}

// Partner resolves the current chat partner of name together with its handle.
func (r *Registry) Partner(name string) (Peer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	partner := r.partners[name]
	if partner == "" {
		return Peer{}, ErrNoActiveChat
	}
	pc, ok := r.clients[partner]
	if !ok {
		return Peer{}, ErrNoActiveChat
	}
	return Peer{Name: partner, Client: pc}, nil
}

// PartnerOf returns the name name is chatting with.
func (r *Registry) PartnerOf(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	partner := r.partners[name]
	return partner, partner != ""
}

// Lookup returns the connection registered under name.
func (r *Registry) Lookup(name string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[name]
	return c, ok
}

// Len reports the number of registered names.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Snapshot returns every registered name sorted by name.
func (r *Registry) Snapshot() []UserState {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := lo.Keys(r.clients)
	slices.Sort(names)

	return lo.Map(names, func(name string, _ int) UserState {
		c := r.clients[name]
		return UserState{
			Name:        name,
			Partner:     r.partners[name],
			Remote:      c.Remote,
			ConnectedAt: c.ConnectedAt,
		}
	})
}
