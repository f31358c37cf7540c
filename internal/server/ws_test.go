package server

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kestrelhq/nfeed/internal/client/kestrel"
	"github.com/kestrelhq/nfeed/internal/storage"
)

func dialStream(t *testing.T, httpURL string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(httpURL, "http") + "/ws/notifications?token=" + testToken
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) storage.Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev storage.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return ev
}

func TestStreamPushesEvents(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t)
	conn := dialStream(t, srv.URL)
	ctx := context.Background()

	if err := store.Add(ctx, kestrel.Notification{ID: "n1", Title: "hello"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	ev := readEvent(t, conn)
	if ev.Kind != storage.EventNewNotification || ev.Notification == nil || ev.Notification.ID != "n1" {
		t.Fatalf("event = %+v, want new_notification n1", ev)
	}

	if err := store.SetRead(ctx, "n1", true); err != nil {
		t.Fatalf("SetRead() error = %v", err)
	}

	ev = readEvent(t, conn)
	if ev.Kind != storage.EventNotificationRead || ev.NotificationID != "n1" {
		t.Fatalf("event = %+v, want notification_read n1", ev)
	}
}

func TestStreamAcceptsMarkReadCommand(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t)
	ctx := context.Background()

	if err := store.Add(ctx, kestrel.Notification{ID: "n1", Title: "hello"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	conn := dialStream(t, srv.URL)

	msg := `{"action": "mark_read", "notification_id": "n1"}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}

	// the command is applied by the read goroutine; poll until visible
	deadline := time.Now().Add(5 * time.Second)
	for {
		result, err := store.List(ctx, 1, 10)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if result.UnreadCount == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("mark_read command never applied")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStreamRejectsBadToken(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications?token=wrong"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		_ = conn.Close()
		t.Fatal("Dial() succeeded with a bad token")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Errorf("handshake response = %+v, want 401", resp)
	}
	if resp != nil {
		_ = resp.Body.Close()
	}
}
