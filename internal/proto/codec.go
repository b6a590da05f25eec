package proto

import (
	"bufio"
	"errors"
	"io"
	"sync"
	"time"
	"unicode/utf8"
)

// DefaultMaxLineBytes bounds a single inbound line when no limit is configured.
const DefaultMaxLineBytes = 64 * 1024

var (
	// ErrLineTooLong is returned when an inbound line exceeds the reader limit.
	ErrLineTooLong = errors.New("line too long")
	// ErrInvalidUTF8 is returned when an inbound line is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("line is not valid utf-8")
)

// Reader splits a byte stream into text lines with terminators stripped.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r. Lines longer than maxLineBytes end the stream with ErrLineTooLong.
func NewReader(r io.Reader, maxLineBytes int) *Reader {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}
	initial := 4096
	if initial > maxLineBytes {
		initial = maxLineBytes
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initial), maxLineBytes)
	return &Reader{scanner: scanner}
}

// ReadLine returns the next line. It returns io.EOF once the stream is exhausted.
// Any error is final: the caller treats it as a disconnect.
func (r *Reader) ReadLine() (string, error) {
	if !r.scanner.Scan() {
		err := r.scanner.Err()
		switch {
		case err == nil:
			return "", io.EOF
		case errors.Is(err, bufio.ErrTooLong):
			return "", ErrLineTooLong
		default:
			return "", err
		}
	}

	line := r.scanner.Text()
	if !utf8.ValidString(line) {
		return "", ErrInvalidUTF8
	}
	return line, nil
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// Writer emits one line per Write call on the underlying stream.
// It is safe for concurrent use; lines from different goroutines never interleave.
//
// A failed write may leave part of a line on the stream, so the first error is
// final: the Writer closes the stream when it is an io.Closer and every later
// WriteLine returns that error without writing.
type Writer struct {
	mu      sync.Mutex
	w       io.Writer
	timeout time.Duration
	buf     []byte
	err     error
}

// NewWriter wraps w. When timeout is positive and w supports write deadlines,
// every line must be written within timeout.
func NewWriter(w io.Writer, timeout time.Duration) *Writer {
	return &Writer{w: w, timeout: timeout}
}

// WriteLine writes line followed by a single '\n'.
func (w *Writer) WriteLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return w.err
	}

	if w.timeout > 0 {
		if d, ok := w.w.(writeDeadliner); ok {
			_ = d.SetWriteDeadline(time.Now().Add(w.timeout))
		}
	}

	w.buf = append(w.buf[:0], line...)
	w.buf = append(w.buf, '\n')
	if _, err := w.w.Write(w.buf); err != nil {
		w.err = err
		if c, ok := w.w.(io.Closer); ok {
			_ = c.Close()
		}
		return err
	}
	return nil
}

// Err returns the error that broke the Writer, or nil.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}
