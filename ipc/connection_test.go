package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func echoHandlers() map[string]Handler {
	return map[string]Handler{
		TypeHello: func(env Envelope) (*Envelope, error) {
			ack, err := NewEnvelope(TypeAck, AckMessage{Status: "ok"})
			return &ack, err
		},
		TypeStep: func(env Envelope) (*Envelope, error) {
			fallback, _ := NewEnvelope(TypeActions, ActionsMessage{})
			return &fallback, errors.New("bad step")
		},
	}
}

func TestConnectionStreamReadLoop(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	conn := NewConnection(NewStreamTransport(server), echoHandlers())
	done := make(chan struct{})
	go func() {
		conn.ReadLoop()
		close(done)
	}()

	_ = client.SetDeadline(time.Now().Add(5 * time.Second))

	// Unknown types are skipped without a reply; the next message still works.
	unknown, _ := NewEnvelope("mystery", struct{}{})
	if err := WriteEnvelope(client, unknown); err != nil {
		t.Fatalf("write unknown: %v", err)
	}

	hello, _ := NewEnvelope(TypeHello, HelloMessage{Player: "player_0"})
	if err := WriteEnvelope(client, hello); err != nil {
		t.Fatalf("write hello: %v", err)
	}
	resp, err := ReadEnvelope(client)
	if err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if resp.Type != TypeAck {
		t.Errorf("reply type = %q, want ack", resp.Type)
	}

	// A handler error still delivers its fallback reply.
	step, _ := NewEnvelope(TypeStep, StepMessage{Step: 3})
	if err := WriteEnvelope(client, step); err != nil {
		t.Fatalf("write step: %v", err)
	}
	resp, err = ReadEnvelope(client)
	if err != nil {
		t.Fatalf("read fallback: %v", err)
	}
	if resp.Type != TypeActions {
		t.Errorf("fallback type = %q, want actions", resp.Type)
	}

	client.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ReadLoop did not return after the peer closed")
	}
}

func TestConnectionLineReadLoop(t *testing.T) {
	var out strings.Builder
	in := strings.NewReader("{\"step\":0}\n{\"step\":1}\n")
	conn := NewConnection(NewLineTransport(in, &out), echoHandlers())
	conn.ReadLoop()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d reply lines, want 2: %q", len(lines), out.String())
	}
	for _, l := range lines {
		var msg ActionsMessage
		if err := json.Unmarshal([]byte(l), &msg); err != nil {
			t.Errorf("reply %q: %v", l, err)
		}
	}
}

func TestWebSocketTransport(t *testing.T) {
	upgrader := websocket.Upgrader{}
	hostGot := make(chan Envelope, 1)

	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ws := NewWSTransport(c)
		defer ws.Close()

		hello, _ := NewEnvelope(TypeHello, HelloMessage{Player: "player_1"})
		if err := ws.WriteEnvelope(hello); err != nil {
			return
		}
		reply, err := ws.ReadEnvelope()
		if err != nil {
			return
		}
		hostGot <- reply
	}))
	defer host.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(host.URL, "http")
	tr, err := DialWebSocket(ctx, url)
	if err != nil {
		t.Fatalf("DialWebSocket: %v", err)
	}

	conn := NewConnection(tr, echoHandlers())
	go conn.ReadLoop()

	select {
	case reply := <-hostGot:
		if reply.Type != TypeAck {
			t.Errorf("host received %q, want ack", reply.Type)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for ack over websocket")
	}
}
