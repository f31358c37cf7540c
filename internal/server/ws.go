package server

import (
	"net/http"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/kestrelhq/nfeed/internal/xcontext"
	"github.com/kestrelhq/nfeed/internal/xslog"
)

const (
	wsReadLimit    = 10 * 1024
	wsPongWait     = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteWait    = 10 * time.Second
)

type wsCommand struct {
	Action         string `json:"action"`
	NotificationID string `json:"notification_id"`
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := xslog.FromContext(ctx)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnContext(ctx, "websocket upgrade failed", xslog.Error(err))
		return
	}
	defer func() {
		_ = conn.Close()
		logger.InfoContext(ctx, "websocket connection closed")
	}()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	eventCh, unsubscribe, err := s.store.Subscribe(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to subscribe to feed events", xslog.Error(err))
		return
	}
	defer unsubscribe()

	logger.InfoContext(ctx, "websocket connection established")

	// inbound commands: best-effort read receipts from the client
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseNormalClosure,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure) {
					logger.WarnContext(ctx, "websocket read error", xslog.Error(err))
				}
				return
			}

			var cmd wsCommand
			if err := go_json.Unmarshal(message, &cmd); err != nil {
				continue
			}

			switch cmd.Action {
			case "mark_read":
				if cmd.NotificationID == "" {
					continue
				}
				if err := s.store.SetRead(ctx, cmd.NotificationID, true); err != nil {
					logger.WarnContext(ctx, "failed to apply mark_read command",
						xslog.Error(err),
						xslog.NotificationID(cmd.NotificationID),
					)
				}
			case "mark_all_read":
				if err := s.store.MarkAllRead(ctx); err != nil {
					logger.WarnContext(ctx, "failed to apply mark_all_read command", xslog.Error(err))
				}
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			if xcontext.IsShutdownInProgress(ctx) {
				logger.InfoContext(ctx, "websocket graceful shutdown initiated")
			}
			// best effort: tell the client we are going away
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server-restart"))
			return

		case event, ok := <-eventCh:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				logger.WarnContext(ctx, "websocket write error", xslog.Error(err))
				return
			}

		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}
