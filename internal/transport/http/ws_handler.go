package http

import (
	"context"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
)

// ConnServer serves one line-protocol stream. session.Handler satisfies it.
type ConnServer interface {
	Serve(ctx context.Context, conn io.ReadWriteCloser, remote string)
}

// WSHandler upgrades HTTP connections and serves them as line-protocol streams.
// Inbound text frames are concatenated into one byte stream, so a line may span
// frames; every outbound line is sent as its own frame.
type WSHandler struct {
	conns     ConnServer
	readLimit int64
	log       *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler. readLimit caps a single frame.
func NewWSHandler(conns ConnServer, readLimit int64, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{conns: conns, readLimit: readLimit, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	if h.readLimit > 0 {
		conn.SetReadLimit(h.readLimit)
	}

	ctx := r.Context()
	h.conns.Serve(ctx, websocket.NetConn(ctx, conn, websocket.MessageText), "ws:"+r.RemoteAddr)
}
