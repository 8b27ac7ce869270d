package ipc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Transport moves envelopes between the agent and the host.
type Transport interface {
	ReadEnvelope() (Envelope, error)
	WriteEnvelope(env Envelope) error
	Close() error
}

// StreamTransport frames envelopes with a length prefix over any byte
// stream, typically a unix socket.
type StreamTransport struct {
	rwc io.ReadWriteCloser
}

func NewStreamTransport(rwc io.ReadWriteCloser) *StreamTransport {
	return &StreamTransport{rwc: rwc}
}

func (t *StreamTransport) ReadEnvelope() (Envelope, error)  { return ReadEnvelope(t.rwc) }
func (t *StreamTransport) WriteEnvelope(env Envelope) error { return WriteEnvelope(t.rwc, env) }
func (t *StreamTransport) Close() error                     { return t.rwc.Close() }

// LineTransport speaks the game kit's stdio protocol: each input line is a
// bare step object and each reply is a bare {"action": ...} line. There is
// no envelope on the wire, so reads are wrapped as TypeStep and only
// TypeActions replies are written; acks have no place in the protocol.
type LineTransport struct {
	r *bufio.Reader

	mu sync.Mutex
	w  *bufio.Writer
	c  io.Closer
}

// NewLineTransport reads from r and writes to w. If w is also an io.Closer
// it is closed by Close.
func NewLineTransport(r io.Reader, w io.Writer) *LineTransport {
	t := &LineTransport{
		r: bufio.NewReaderSize(r, 1<<20),
		w: bufio.NewWriter(w),
	}
	if c, ok := w.(io.Closer); ok {
		t.c = c
	}
	return t
}

func (t *LineTransport) ReadEnvelope() (Envelope, error) {
	for {
		line, err := t.r.ReadBytes('\n')
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			// Malformed lines are passed on; the step handler answers them
			// with a fallback so the host is never left waiting.
			if !json.Valid(line) {
				slog.Warn("invalid step line", "bytes", len(line))
			}
			return Envelope{Type: TypeStep, Data: json.RawMessage(line)}, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Envelope{}, io.EOF
			}
			return Envelope{}, fmt.Errorf("read line: %w", err)
		}
	}
}

func (t *LineTransport) WriteEnvelope(env Envelope) error {
	if env.Type != TypeActions {
		slog.Debug("line transport dropping reply", "type", env.Type)
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.w.Write(env.Data); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	if err := t.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return t.w.Flush()
}

func (t *LineTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.w.Flush(); err != nil {
		return err
	}
	if t.c != nil {
		return t.c.Close()
	}
	return nil
}
