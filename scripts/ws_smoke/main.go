package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/vovakirdan/pairchat/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

type peer struct {
	name string
	ws   *websocket.Conn
	r    *proto.Reader
	w    *proto.Writer
}

func dial(ctx context.Context, addr, name string) (*peer, error) {
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", name, err)
	}
	nc := websocket.NetConn(ctx, conn, websocket.MessageText)
	return &peer{
		name: name,
		ws:   conn,
		r:    proto.NewReader(nc, 0),
		w:    proto.NewWriter(nc, 0),
	}, nil
}

// expect sends line (when non-empty) and reads until a line with prefix arrives.
func (p *peer) expect(line, prefix string) error {
	if line != "" {
		if err := p.w.WriteLine(line); err != nil {
			return fmt.Errorf("%s send %q: %w", p.name, line, err)
		}
	}
	for {
		got, err := p.r.ReadLine()
		if err != nil {
			return fmt.Errorf("%s waiting for %q: %w", p.name, prefix, err)
		}
		fmt.Printf("[%s] %s\n", p.name, got)
		if strings.HasPrefix(got, prefix) {
			return nil
		}
		if proto.Kind(got) == proto.KindErr {
			return errors.New(p.name + ": " + got)
		}
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	first := flag.String("a", "smoke-a", "first user name")
	second := flag.String("b", "smoke-b", "second user name")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	a, err := dial(ctx, *addr, *first)
	if err != nil {
		return err
	}
	defer a.ws.Close(websocket.StatusNormalClosure, "bye")

	b, err := dial(ctx, *addr, *second)
	if err != nil {
		return err
	}
	defer b.ws.Close(websocket.StatusNormalClosure, "bye")

	steps := []struct {
		p      *peer
		line   string
		prefix string
	}{
		{a, "", "INFO Welcome"},
		{b, "", "INFO Welcome"},
		{a, "HELLO " + a.name, "OK Logged in"},
		{b, "HELLO " + b.name, "OK Logged in"},
		{a, "CHAT " + b.name, "OK Chat started"},
		{b, "", "INFO " + a.name + " started a chat"},
		{a, "MSG " + *text, "OK sent"},
		{b, "", "FROM " + a.name + " " + *text},
		{b, "END", "OK Chat ended"},
		{a, "", "INFO " + b.name + " ended the chat"},
		{a, "QUIT", "OK Bye"},
		{b, "QUIT", "OK Bye"},
	}
	for _, s := range steps {
		if err := s.p.expect(s.line, s.prefix); err != nil {
			return err
		}
	}

	fmt.Println("smoke test passed")
	return nil
}
