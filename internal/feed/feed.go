// Package feed holds the client's in-memory notification feed: a paginated
// REST-backed list merged with live-pushed records, plus the optimistic
// read-state mutations the UI triggers.
package feed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kestrelhq/nfeed/internal/client/kestrel"
	"github.com/kestrelhq/nfeed/internal/client/ws"
	"github.com/kestrelhq/nfeed/internal/xslog"
)

const DefaultPageSize = 20

// API is the slice of the REST client the feed depends on.
type API interface {
	List(ctx context.Context, params *kestrel.ListParams) (*kestrel.NotificationPage, error)
	MarkRead(ctx context.Context, id string) error
	MarkUnread(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
}

// Sender pushes best-effort read commands over the live socket.
type Sender interface {
	MarkRead(id string) error
}

// Cache mirrors feed state into local storage so the list survives offline.
type Cache interface {
	UpsertAll(ctx context.Context, records []kestrel.Notification) error
	SetRead(ctx context.Context, id string, read bool) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
}

// Snapshot is a copy of feed state for rendering.
type Snapshot struct {
	Records   []kestrel.Notification
	Unread    int
	HasMore   bool
	Loading   bool
	LastError string
}

// Feed is owned by a single consumer. All exported methods are safe for
// concurrent use; mutations are applied locally before their authoritative
// REST call is issued, and the unread counter is recomputed after every
// mutation so it always equals the count of unread records.
type Feed struct {
	api      API
	sender   Sender
	cache    Cache
	logger   *slog.Logger
	pageSize int

	mu      sync.Mutex
	records []kestrel.Notification // newest first
	unread  int
	hasMore bool
	loading bool
	page    int
	lastErr string

	wg sync.WaitGroup
}

func New(api API, opts ...Option) *Feed {
	f := &Feed{
		api:      api,
		logger:   slog.Default(),
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type Option func(*Feed)

func WithSender(s Sender) Option {
	return func(f *Feed) { f.sender = s }
}

func WithCache(c Cache) Option {
	return func(f *Feed) { f.cache = c }
}

func WithLogger(logger *slog.Logger) Option {
	return func(f *Feed) { f.logger = logger }
}

func WithPageSize(n int) Option {
	return func(f *Feed) {
		if n > 0 {
			f.pageSize = n
		}
	}
}

// Prime seeds the feed from locally cached records. It only applies while
// the feed is empty, so a completed LoadInitial always wins.
func (f *Feed) Prime(records []kestrel.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.records) > 0 || len(records) == 0 {
		return
	}
	f.records = append([]kestrel.Notification(nil), records...)
	f.recountUnread()
}

// LoadInitial replaces the feed wholesale from the first page.
func (f *Feed) LoadInitial(ctx context.Context) error {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return nil
	}
	f.loading = true
	f.mu.Unlock()

	page, err := f.api.List(ctx, &kestrel.ListParams{Page: 1, PageSize: f.pageSize})

	f.mu.Lock()
	f.loading = false
	if err != nil {
		f.lastErr = err.Error()
		f.mu.Unlock()
		return err
	}
	f.records = append([]kestrel.Notification(nil), page.Items...)
	f.page = 1
	f.hasMore = page.HasMore
	f.lastErr = ""
	f.recountUnread()
	f.mu.Unlock()

	f.cacheUpsert(ctx, page.Items)
	return nil
}

// LoadMore appends the next page of older records. It is a no-op while a
// load is in flight or when the feed is exhausted, so rapid calls issue a
// single network request.
func (f *Feed) LoadMore(ctx context.Context) error {
	f.mu.Lock()
	if f.loading || !f.hasMore {
		f.mu.Unlock()
		return nil
	}
	f.loading = true
	next := f.page + 1
	f.mu.Unlock()

	page, err := f.api.List(ctx, &kestrel.ListParams{Page: next, PageSize: f.pageSize})

	f.mu.Lock()
	f.loading = false
	if err != nil {
		f.lastErr = err.Error()
		f.mu.Unlock()
		return err
	}
	for _, n := range page.Items {
		// a record already prepended live may come back in a later page
		if f.index(n.ID) >= 0 {
			continue
		}
		f.records = append(f.records, n)
	}
	f.page = next
	f.hasMore = page.HasMore
	f.lastErr = ""
	f.recountUnread()
	f.mu.Unlock()

	f.cacheUpsert(ctx, page.Items)
	return nil
}

// Apply merges a live stream event into the feed.
func (f *Feed) Apply(ctx context.Context, event ws.Event) {
	switch event.Kind {
	case ws.KindNewNotification:
		n := *event.Notification

		f.mu.Lock()
		if f.index(n.ID) >= 0 {
			f.mu.Unlock()
			return
		}
		f.records = append([]kestrel.Notification{n}, f.records...)
		f.recountUnread()
		f.mu.Unlock()

		f.cacheUpsert(ctx, []kestrel.Notification{n})

	case ws.KindNotificationRead:
		f.mu.Lock()
		i := f.index(event.NotificationID)
		if i < 0 || f.records[i].Read {
			f.mu.Unlock()
			return
		}
		f.records[i].Read = true
		f.recountUnread()
		f.mu.Unlock()

		f.cacheSetRead(ctx, event.NotificationID, true)
	}
}

// MarkRead flips the record read locally, fires a best-effort socket
// command, and issues the authoritative REST call in the background.
func (f *Feed) MarkRead(ctx context.Context, id string) {
	f.mu.Lock()
	if i := f.index(id); i >= 0 {
		f.records[i].Read = true
	}
	f.recountUnread()
	f.mu.Unlock()

	if f.sender != nil {
		if err := f.sender.MarkRead(id); err != nil {
			f.logger.DebugContext(ctx, "stream mark_read skipped", xslog.Error(err), xslog.NotificationID(id))
		}
	}

	f.authoritative(ctx, func(ctx context.Context) error {
		if err := f.api.MarkRead(ctx, id); err != nil {
			return err
		}
		f.cacheSetRead(ctx, id, true)
		return nil
	})
}

func (f *Feed) MarkUnread(ctx context.Context, id string) {
	f.mu.Lock()
	if i := f.index(id); i >= 0 {
		f.records[i].Read = false
	}
	f.recountUnread()
	f.mu.Unlock()

	f.authoritative(ctx, func(ctx context.Context) error {
		if err := f.api.MarkUnread(ctx, id); err != nil {
			return err
		}
		f.cacheSetRead(ctx, id, false)
		return nil
	})
}

func (f *Feed) MarkAllRead(ctx context.Context) {
	f.mu.Lock()
	for i := range f.records {
		f.records[i].Read = true
	}
	f.recountUnread()
	f.mu.Unlock()

	f.authoritative(ctx, func(ctx context.Context) error {
		if err := f.api.MarkAllRead(ctx); err != nil {
			return err
		}
		if f.cache != nil {
			if err := f.cache.MarkAllRead(ctx); err != nil {
				f.logger.WarnContext(ctx, "failed to cache read state", xslog.Error(err))
			}
		}
		return nil
	})
}

func (f *Feed) Delete(ctx context.Context, id string) {
	f.mu.Lock()
	if i := f.index(id); i >= 0 {
		f.records = append(f.records[:i], f.records[i+1:]...)
	}
	f.recountUnread()
	f.mu.Unlock()

	f.authoritative(ctx, func(ctx context.Context) error {
		if err := f.api.Delete(ctx, id); err != nil {
			return err
		}
		if f.cache != nil {
			if err := f.cache.Delete(ctx, id); err != nil {
				f.logger.WarnContext(ctx, "failed to delete cached record", xslog.Error(err))
			}
		}
		return nil
	})
}

func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		Records:   append([]kestrel.Notification(nil), f.records...),
		Unread:    f.unread,
		HasMore:   f.hasMore,
		Loading:   f.loading,
		LastError: f.lastErr,
	}
}

// Wait blocks until in-flight authoritative calls complete. Called on
// shutdown so pending mutations are not torn down mid-request.
func (f *Feed) Wait() {
	f.wg.Wait()
}

// authoritative runs the server mutation in the background. On failure the
// error is recorded for the UI but the optimistic local change stays in
// place; the server remains the final arbiter on the next full load.
func (f *Feed) authoritative(ctx context.Context, fn func(context.Context) error) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		if err := fn(ctx); err != nil {
			f.logger.WarnContext(ctx, "notification mutation failed", xslog.Error(err))
			f.mu.Lock()
			f.lastErr = err.Error()
			f.mu.Unlock()
		}
	}()
}

// index returns the position of the record with the given id, or -1.
// Callers hold mu.
func (f *Feed) index(id string) int {
	for i := range f.records {
		if f.records[i].ID == id {
			return i
		}
	}
	return -1
}

// recountUnread re-derives the unread counter from the records.
// Callers hold mu.
func (f *Feed) recountUnread() {
	n := 0
	for i := range f.records {
		if !f.records[i].Read {
			n++
		}
	}
	f.unread = n
}

func (f *Feed) cacheUpsert(ctx context.Context, records []kestrel.Notification) {
	if f.cache == nil || len(records) == 0 {
		return
	}
	if err := f.cache.UpsertAll(ctx, records); err != nil {
		f.logger.WarnContext(ctx, "failed to cache records", xslog.Error(err), xslog.Count(len(records)))
	}
}

func (f *Feed) cacheSetRead(ctx context.Context, id string, read bool) {
	if f.cache == nil {
		return
	}
	if err := f.cache.SetRead(ctx, id, read); err != nil {
		f.logger.WarnContext(ctx, "failed to cache read state", xslog.Error(err), xslog.NotificationID(id))
	}
}
