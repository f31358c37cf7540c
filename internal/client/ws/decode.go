package ws

import (
	go_json "github.com/goccy/go-json"
	"github.com/kestrelhq/nfeed/internal/client/kestrel"
)

// Frame types pushed by the server. Anything else is tolerated and ignored
// so the protocol can grow without breaking older clients.
const (
	frameNewNotification  = "new_notification"
	frameNotificationRead = "notification_read"
)

type EventKind int

const (
	KindNewNotification EventKind = iota
	KindNotificationRead
)

type Event struct {
	Kind           EventKind
	Notification   *kestrel.Notification
	NotificationID string
}

type frame struct {
	Type           string                `json:"type"`
	Notification   *kestrel.Notification `json:"notification,omitempty"`
	NotificationID string                `json:"notification_id,omitempty"`
}

// decodeFrame classifies a raw inbound frame. Malformed JSON, unknown types,
// and recognized types missing their payload all report ok=false; the stream
// is best-effort and such frames are dropped.
func decodeFrame(data []byte) (Event, bool) {
	var f frame
	if err := go_json.Unmarshal(data, &f); err != nil {
		return Event{}, false
	}

	switch f.Type {
	case frameNewNotification:
		if f.Notification == nil {
			return Event{}, false
		}
		return Event{Kind: KindNewNotification, Notification: f.Notification}, true

	case frameNotificationRead:
		if f.NotificationID == "" {
			return Event{}, false
		}
		return Event{Kind: KindNotificationRead, NotificationID: f.NotificationID}, true

	default:
		return Event{}, false
	}
}

type command struct {
	Action         string `json:"action"`
	NotificationID string `json:"notification_id"`
}
