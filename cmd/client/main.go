package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/pairchat/internal/proto"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pairchat: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var addr, name string

	cmd := &cobra.Command{
		Use:           "pairchat",
		Short:         "Terminal client for the pairchat relay",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, addr, name, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5000", "server address")
	cmd.Flags().StringVar(&name, "name", "", "display name (prompted when empty)")
	return cmd
}

func run(ctx context.Context, addr, name string, in io.Reader, out io.Writer) error {
	input := proto.NewReader(in, 0)

	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Fprint(out, "Enter your name: ")
		line, err := input.ReadLine()
		if err != nil {
			return fmt.Errorf("read name: %w", err)
		}
		name = strings.TrimSpace(line)
	}
	if name == "" {
		return errors.New("name is required")
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		r := proto.NewReader(conn, 0)
		for {
			line, err := r.ReadLine()
			if err != nil {
				return
			}
			fmt.Fprintln(out, render(line))
		}
	}()

	w := proto.NewWriter(conn, 5*time.Second)
	if err := w.WriteLine("HELLO " + name); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  /chat <name>  - start chat")
	fmt.Fprintln(out, "  /end          - end chat")
	fmt.Fprintln(out, "  /quit         - quit")
	fmt.Fprintln(out, "Or type message text to send to your chat partner.")

	for {
		text, err := input.ReadLine()
		if err != nil {
			// stdin closed: leave politely
			_ = w.WriteLine("QUIT")
			break
		}

		line, quit, ok := translate(text)
		if !ok {
			continue
		}
		if err := w.WriteLine(line); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		if quit {
			break
		}
	}

	// give the server a moment to answer QUIT before closing
	select {
	case <-done:
	case <-time.After(time.Second):
	case <-ctx.Done():
	}
	return nil
}

// translate maps a line typed by the user to a protocol line.
func translate(input string) (line string, quit, ok bool) {
	input = strings.TrimSpace(input)
	switch {
	case input == "":
		return "", false, false
	case input == "/quit":
		return "QUIT", true, true
	case input == "/end":
		return "END", false, true
	case strings.HasPrefix(input, "/chat "):
		return "CHAT " + strings.TrimSpace(strings.TrimPrefix(input, "/chat ")), false, true
	default:
		return "MSG " + input, false, true
	}
}

// render colours a server line by its kind.
func render(line string) string {
	switch proto.Kind(line) {
	case proto.KindOK:
		return color.Green.Sprint(line)
	case proto.KindErr:
		return color.Red.Sprint(line)
	case proto.KindInfo:
		return color.Yellow.Sprint(line)
	case proto.KindFrom:
		return color.Cyan.Sprint(line)
	default:
		return line
	}
}
