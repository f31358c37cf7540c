package storage

import (
	"context"
	"sync"

	"github.com/kestrelhq/nfeed/internal/client/kestrel"
)

var _ NotificationStore = (*MemoryStore)(nil)

// MemoryStore keeps the feed in process memory. Used by tests and for
// redis-less dev runs; state is lost on restart.
type MemoryStore struct {
	mu          sync.Mutex
	records     []kestrel.Notification // newest first
	subscribers map[int]chan Event
	nextSub     int
	closed      bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subscribers: make(map[int]chan Event),
	}
}

func (m *MemoryStore) Add(_ context.Context, n kestrel.Notification) error {
	m.mu.Lock()
	for i := range m.records {
		if m.records[i].ID == n.ID {
			m.records[i] = n
			m.mu.Unlock()
			return nil
		}
	}
	m.records = append([]kestrel.Notification{n}, m.records...)
	m.mu.Unlock()

	m.publish(Event{Kind: EventNewNotification, Notification: &n})
	return nil
}

func (m *MemoryStore) List(_ context.Context, page, pageSize int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	total := len(m.records)
	unread := 0
	for i := range m.records {
		if !m.records[i].Read {
			unread++
		}
	}

	offset := (page - 1) * pageSize
	if offset > total {
		offset = total
	}
	end := offset + pageSize
	if end > total {
		end = total
	}

	return &ListResult{
		Records:     append([]kestrel.Notification(nil), m.records[offset:end]...),
		TotalCount:  total,
		UnreadCount: unread,
		HasMore:     end < total,
	}, nil
}

func (m *MemoryStore) SetRead(_ context.Context, id string, read bool) error {
	m.mu.Lock()
	changed := false
	for i := range m.records {
		if m.records[i].ID == id {
			changed = m.records[i].Read != read
			m.records[i].Read = read
			break
		}
	}
	m.mu.Unlock()

	if changed && read {
		m.publish(Event{Kind: EventNotificationRead, NotificationID: id})
	}
	return nil
}

func (m *MemoryStore) MarkAllRead(_ context.Context) error {
	m.mu.Lock()
	var ids []string
	for i := range m.records {
		if !m.records[i].Read {
			m.records[i].Read = true
			ids = append(ids, m.records[i].ID)
		}
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.publish(Event{Kind: EventNotificationRead, NotificationID: id})
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	for i := range m.records {
		if m.records[i].ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	ch := make(chan Event, 16)

	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = ch
	m.mu.Unlock()

	unsubscribe := func() {
		m.mu.Lock()
		if _, ok := m.subscribers[id]; ok {
			delete(m.subscribers, id)
			close(ch)
		}
		m.mu.Unlock()
	}

	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	return ch, unsubscribe, nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for id, ch := range m.subscribers {
		delete(m.subscribers, id)
		close(ch)
	}
	return nil
}

func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// publish fans an event out to subscribers. Slow subscribers are skipped
// rather than blocking the publisher.
func (m *MemoryStore) publish(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
