package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// newEchoServer upgrades /chat/ws/{chat}/{user} and echoes every text frame
// back with an "echo:" prefix.
func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/chat/ws/") {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, append([]byte("echo:"), data...)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDialer_SendReceive(t *testing.T) {
	srv := newEchoServer(t)
	d := NewDialer(wsURL(srv))

	ch, err := d.Dial(context.Background(), "chat-1", "42")
	if err != nil {
		t.Fatalf("Dial returned error: %v", err)
	}
	defer ch.Close()

	if err := ch.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	got, err := ch.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive returned error: %v", err)
	}
	if got != "echo:hello" {
		t.Fatalf("expected echoed frame, got %q", got)
	}
}

func TestDialer_DialFailure(t *testing.T) {
	d := NewDialer("ws://127.0.0.1:1")
	if _, err := d.Dial(context.Background(), "chat-1", "42"); err == nil {
		t.Fatalf("expected dial error")
	}
}

func TestChannel_CloseIsIdempotent(t *testing.T) {
	srv := newEchoServer(t)
	d := NewDialer(wsURL(srv))

	ch, err := d.Dial(context.Background(), "chat-1", "42")
	if err != nil {
		t.Fatalf("Dial returned error: %v", err)
	}

	if err := ch.Close(); err != nil {
		t.Fatalf("first Close returned error: %v", err)
	}
	_ = ch.Close()

	done := make(chan struct{})
	go func() {
		_, _ = ch.Receive(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Receive did not return after Close")
	}
}
