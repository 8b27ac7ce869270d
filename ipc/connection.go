package ipc

import (
	"fmt"
	"log/slog"
)

// Handler processes a received envelope. Return nil to send no reply.
// A handler may return a reply together with an error; the reply is still
// sent, which lets a step handler answer with a safe fallback.
type Handler func(env Envelope) (*Envelope, error)

// Connection represents a single host session. Each player gets its own
// connection, identified after the hello handshake or its first step.
type Connection struct {
	t        Transport
	handlers map[string]Handler
	Player   string
}

func NewConnection(t Transport, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{
		t:        t,
		handlers: handlers,
	}
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	if err := c.t.WriteEnvelope(env); err != nil {
		return fmt.Errorf("send %s: %w", msgType, err)
	}
	return nil
}

// ReadLoop blocks until the transport closes or errors. It owns the
// transport lifetime so callers don't need to track cleanup.
func (c *Connection) ReadLoop() {
	defer c.t.Close()

	for {
		env, err := c.t.ReadEnvelope()
		if err != nil {
			slog.Info("connection read ended", "player", c.Player, "error", err)
			return
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			slog.Warn("no handler for message type", "type", env.Type)
			continue
		}

		resp, err := handler(env)
		if err != nil {
			slog.Error("handler error", "type", env.Type, "player", c.Player, "error", err)
		}

		if resp != nil {
			if err := c.t.WriteEnvelope(*resp); err != nil {
				slog.Error("failed to send response", "type", resp.Type, "error", err)
				return
			}
			slog.Debug("sent response", "type", resp.Type, "player", c.Player)
		}
	}
}
