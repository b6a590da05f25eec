// Package session drives the line protocol for one accepted connection.
package session

import (
	"context"
	"errors"
	"io"
	"net"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/pairchat/internal/core"
	"github.com/vovakirdan/pairchat/internal/proto"
	"github.com/vovakirdan/pairchat/internal/store"
	"github.com/vovakirdan/pairchat/internal/utils"
)

const recordTimeout = 2 * time.Second

// State is the protocol state of one connection. Being in a chat is not a
// separate state; it is read from the registry's partner entry.
type State int

const (
	StateAnonymous State = iota
	StateLoggedIn
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateLoggedIn:
		return "logged_in"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Recorder receives session lifecycle events. store.EventStore satisfies it.
type Recorder interface {
	RecordEvent(ctx context.Context, ev *store.Event) error
}

// Options tunes per-connection behaviour.
type Options struct {
	MaxLineBytes     int
	WriteTimeout     time.Duration
	MsgRatePerMinute int
	// Recorder is optional.
	Recorder Recorder
}

// Handler serves accepted connections against a shared registry.
type Handler struct {
	registry *core.Registry
	opts     Options
	log      *zerolog.Logger
}

// NewHandler builds a handler. All connections it serves share registry.
func NewHandler(registry *core.Registry, opts Options, logger *zerolog.Logger) *Handler {
	return &Handler{registry: registry, opts: opts, log: logger}
}

// Serve runs the protocol on conn until QUIT, end of stream, an I/O error or
// ctx cancellation. conn is always closed when Serve returns.
func (h *Handler) Serve(ctx context.Context, conn io.ReadWriteCloser, remote string) {
	id := utils.NewID()
	writer := proto.NewWriter(conn, h.opts.WriteTimeout)

	s := &session{
		h:       h,
		ctx:     ctx,
		conn:    conn,
		reader:  proto.NewReader(conn, h.opts.MaxLineBytes),
		client:  core.NewClient(id, remote, writer),
		log:     h.log.With().Str("conn_id", id).Str("remote", remote).Logger(),
		limiter: newRateLimiter(h.opts.MsgRatePerMinute),
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	s.log.Info().Msg("connection accepted")
	s.run()
}

type session struct {
	h       *Handler
	ctx     context.Context
	conn    io.ReadWriteCloser
	reader  *proto.Reader
	client  *core.Client
	log     zerolog.Logger
	limiter *rateLimiter

	state State
	name  string
}

func (s *session) run() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("connection handler panicked")
		}
		s.cleanup()
	}()

	s.reply(proto.Welcome)

	for s.state != StateClosed {
		line, err := s.reader.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.log.Debug().Err(err).Msg("read line")
			}
			return
		}

		cmd, ok := proto.ParseCommand(line)
		if !ok {
			continue
		}
		s.dispatch(cmd)
	}
}

func (s *session) dispatch(cmd proto.Command) {
	switch cmd.Kind {
	case proto.CommandQuit:
		s.reply(proto.OK(textBye))
		s.state = StateClosed
		return
	case proto.CommandUnknown:
		s.reply(proto.Err("Unknown command: " + cmd.Keyword))
		return
	}

	if s.state == StateAnonymous {
		if cmd.Kind != proto.CommandHello {
			s.reply(proto.Err(textMustLogin))
			return
		}
		s.hello(cmd)
		return
	}

	switch cmd.Kind {
	case proto.CommandHello:
		s.reply(proto.Err("Already logged in as " + s.name))
	case proto.CommandChat:
		s.chat(cmd)
	case proto.CommandMsg:
		s.msg(cmd)
	case proto.CommandEnd:
		s.end()
	}
}

func (s *session) hello(cmd proto.Command) {
	name := cmd.Arg()
	if name == "" {
		s.reply(proto.Err(textMissingName))
		return
	}

	if err := s.h.registry.Register(name, s.client); err != nil {
		if errors.Is(err, core.ErrNameTaken) {
			s.reply(proto.Err(textNameTaken))
			return
		}
		s.reply(proto.Err(textMissingName))
		return
	}

	s.name = name
	s.state = StateLoggedIn
	s.log = s.log.With().Str("user", name).Logger()
	s.log.Info().Msg("user logged in")

	s.reply(proto.OK("Logged in as " + name))
	s.record(store.EventLogin, "")
}

func (s *session) chat(cmd proto.Command) {
	target := cmd.Arg()
	if target == "" {
		s.reply(proto.Err(textChatUsage))
		return
	}

	peer, err := s.h.registry.Pair(s.name, target)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrUserNotFound):
			s.reply(proto.Err(textUserNotFound))
		case errors.Is(err, core.ErrSelfChat):
			s.reply(proto.Err(textSelfChat))
		case errors.Is(err, core.ErrAlreadyInChat):
			s.reply(proto.Err(textAlreadyInChat))
		case errors.Is(err, core.ErrPeerInChat):
			s.reply(proto.Err(target + " is already in a chat"))
		default:
			s.log.Error().Err(err).Str("target", target).Msg("pair failed")
			s.reply(proto.Err(err.Error()))
		}
		return
	}

	s.log.Debug().Str("peer", target).Msg("chat started")
	s.reply(proto.OK("Chat started with " + target))
	s.notify(peer, proto.Info(s.name+" started a chat with you"))
	s.record(store.EventChatStarted, target)
}

func (s *session) msg(cmd proto.Command) {
	if cmd.Payload == "" {
		s.reply(proto.Err(textMsgUsage))
		return
	}

	peer, err := s.h.registry.Partner(s.name)
	if err != nil {
		s.reply(proto.Err(textNoChatForMsg))
		return
	}

	if !s.limiter.allow() {
		s.reply(proto.Err(textRateLimited))
		return
	}

	s.notify(peer, proto.From(s.name, cmd.Payload))
	s.reply(proto.OK(textSent))
}

func (s *session) end() {
	peer, err := s.h.registry.Unpair(s.name)
	if err != nil {
		s.reply(proto.Err(textNoChat))
		return
	}

	s.log.Debug().Str("peer", peer.Name).Msg("chat ended")
	s.reply(proto.OK(textChatEnded))
	s.notify(peer, proto.Info(s.name+" ended the chat"))
	s.record(store.EventChatEnded, peer.Name)
}

// cleanup releases the registry entry and closes the stream. It runs once, from run.
func (s *session) cleanup() {
	s.state = StateClosed

	if s.name != "" {
		if peer, ok := s.h.registry.Unregister(s.name); ok {
			s.notify(peer, proto.Info(s.name+" disconnected. Chat ended."))
			s.record(store.EventChatEnded, peer.Name)
		}
		s.record(store.EventLogout, "")
	}

	if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.log.Debug().Err(err).Msg("close connection")
	}
	s.log.Info().Msg("connection closed")
}

// reply writes to this connection. A failed write ends the session.
func (s *session) reply(line string) {
	if s.state == StateClosed {
		return
	}
	if err := s.client.Send(line); err != nil {
		s.log.Debug().Err(err).Msg("write reply")
		s.state = StateClosed
	}
}

// notify is fire-and-forget: a failed relay is dropped and never reported to
// the sender. The peer's broken Writer closes its stream, so the peer's own
// session notices and runs its cleanup.
func (s *session) notify(peer core.Peer, line string) {
	if peer.Client == nil {
		return
	}
	if err := peer.Client.Send(line); err != nil {
		s.log.Debug().Err(err).Str("peer", peer.Name).Msg("relay dropped")
	}
}

func (s *session) record(kind store.EventKind, peer string) {
	rec := s.h.opts.Recorder
	if rec == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("event", string(kind)).Msg("recorder panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), recordTimeout)
	defer cancel()

	ev := &store.Event{Kind: kind, User: s.name, Peer: peer, Remote: s.client.Remote}
	if err := rec.RecordEvent(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("event", string(kind)).Msg("failed to record session event")
	}
}
