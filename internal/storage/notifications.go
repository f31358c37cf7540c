package storage

import (
	"context"

	"github.com/kestrelhq/nfeed/internal/client/kestrel"
)

type EventKind string

const (
	EventNewNotification  EventKind = "new_notification"
	EventNotificationRead EventKind = "notification_read"
)

// Event is a live feed change fanned out to connected sockets.
type Event struct {
	Kind           EventKind             `json:"type"`
	Notification   *kestrel.Notification `json:"notification,omitempty"`
	NotificationID string                `json:"notification_id,omitempty"`
}

type ListResult struct {
	Records     []kestrel.Notification
	TotalCount  int
	UnreadCount int
	HasMore     bool
}

type NotificationStore interface {
	// Add persists a notification and publishes it to live subscribers.
	Add(ctx context.Context, n kestrel.Notification) error

	// List returns one page of records, newest first. Pages are 1-based.
	List(ctx context.Context, page, pageSize int) (*ListResult, error)

	// SetRead updates a record's read flag. Transitions to read are
	// published so other connected clients can sync their feeds.
	SetRead(ctx context.Context, id string, read bool) error

	MarkAllRead(ctx context.Context) error

	Delete(ctx context.Context, id string) error

	// Subscribe returns a channel that receives live feed events.
	// The returned function must be called to unsubscribe.
	Subscribe(ctx context.Context) (<-chan Event, func(), error)

	Close() error

	Ping(ctx context.Context) error
}
