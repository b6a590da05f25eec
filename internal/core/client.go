package core

import "time"

// LineWriter delivers one protocol line to a connection.
type LineWriter interface {
	WriteLine(line string) error
}

// Client is an accepted connection as seen by the core layer.
// Send is safe to call from any goroutine.
type Client struct {
	ID          string
	Remote      string
	ConnectedAt time.Time
	out         LineWriter
}

// NewClient constructs a client handle around out.
func NewClient(id, remote string, out LineWriter) *Client {
	return &Client{
		ID:          id,
		Remote:      remote,
		ConnectedAt: time.Now(),
		out:         out,
	}
}

// Send writes one line to the client.
func (c *Client) Send(line string) error {
	return c.out.WriteLine(line)
}
