package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"golang.org/x/oauth2"
)

func TestReconnectDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 1, want: 2 * time.Second},
		{attempt: 2, want: 4 * time.Second},
		{attempt: 3, want: 8 * time.Second},
		{attempt: 4, want: 16 * time.Second},
		{attempt: 5, want: 30 * time.Second},
		{attempt: 6, want: 30 * time.Second},
		{attempt: 20, want: 30 * time.Second},
		{attempt: 63, want: 30 * time.Second},
	}

	for _, tt := range tests {
		if got := reconnectDelay(tt.attempt); got != tt.want {
			t.Errorf("reconnectDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func staticToken(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
}

func TestConnectWithoutTokenIsNoop(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://127.0.0.1:0", staticToken(""))

	called := false
	err := c.Connect(context.Background(), func(Event) { called = true })
	if err != nil {
		t.Fatalf("Connect() error = %v, want nil", err)
	}
	if called {
		t.Error("handler called without a token")
	}
	if got := c.State(); got != StateIdle {
		t.Errorf("State() = %v, want %v", got, StateIdle)
	}
}

func TestConnectExhaustsRetries(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		states []State
	)

	// nothing listens here, so every dial fails; zero attempts fails terminally
	c := NewClient("ws://127.0.0.1:1", staticToken("tok"),
		WithMaxAttempts(0),
		WithStateFunc(func(s State) {
			mu.Lock()
			states = append(states, s)
			mu.Unlock()
		}),
	)

	err := c.Connect(context.Background(), func(Event) {})
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("Connect() error = %v, want ErrRetriesExhausted", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(states) == 0 || states[len(states)-1] != StateClosed {
		t.Errorf("state transitions = %v, want final StateClosed", states)
	}
}

func TestConnectCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient("ws://127.0.0.1:1", staticToken("tok"))

	err := c.Connect(ctx, func(Event) {})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Connect() error = %v, want context.Canceled", err)
	}
}

func TestDisconnectIdempotent(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://127.0.0.1:1", staticToken("tok"))

	c.Disconnect()
	c.Disconnect()

	if got := c.State(); got != StateClosed {
		t.Errorf("State() = %v, want %v", got, StateClosed)
	}

	// a closed client never dials
	if err := c.Connect(context.Background(), func(Event) {}); err != nil {
		t.Errorf("Connect() after Disconnect = %v, want nil", err)
	}
}

func TestMarkReadNotConnected(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://127.0.0.1:1", staticToken("tok"))

	if err := c.MarkRead("n1"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("MarkRead() error = %v, want ErrNotConnected", err)
	}
}

func TestConnectDeliversEventsAndCommands(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	commandCh := make(chan command, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/notifications" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("token") != "tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		frame := `{"type":"new_notification","notification":{"id":"n1","title":"hello"}}`
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			return
		}

		// the client answers with a mark_read command
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd command
		if err := go_json.Unmarshal(data, &cmd); err == nil {
			commandCh <- cmd
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	c := NewClient(wsURL, staticToken("tok"))

	events := make(chan Event, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.Connect(context.Background(), func(ev Event) {
			events <- ev
		})
	}()

	var ev Event
	select {
	case ev = <-events:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	if ev.Kind != KindNewNotification || ev.Notification == nil || ev.Notification.ID != "n1" {
		t.Fatalf("event = %+v, want new_notification n1", ev)
	}

	if err := c.MarkRead("n1"); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}

	select {
	case cmd := <-commandCh:
		if cmd.Action != "mark_read" || cmd.NotificationID != "n1" {
			t.Errorf("command = %+v, want mark_read n1", cmd)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for command")
	}

	c.Disconnect()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Connect() after Disconnect = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Connect to return")
	}
}
