package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kestrelhq/nfeed/internal/client/kestrel"
	"github.com/kestrelhq/nfeed/internal/client/ws"
)

type fakeAPI struct {
	mu        sync.Mutex
	pages     map[int]*kestrel.NotificationPage
	listCalls []int
	readIDs   []string
	unreadIDs []string
	deleteIDs []string
	allReads  int
	err       error
}

func (f *fakeAPI) List(_ context.Context, params *kestrel.ListParams) (*kestrel.NotificationPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, params.Page)
	if f.err != nil {
		return nil, f.err
	}
	page, ok := f.pages[params.Page]
	if !ok {
		return &kestrel.NotificationPage{Page: params.Page, PageSize: params.PageSize}, nil
	}
	return page, nil
}

func (f *fakeAPI) MarkRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readIDs = append(f.readIDs, id)
	return f.err
}

func (f *fakeAPI) MarkUnread(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unreadIDs = append(f.unreadIDs, id)
	return f.err
}

func (f *fakeAPI) MarkAllRead(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allReads++
	return f.err
}

func (f *fakeAPI) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteIDs = append(f.deleteIDs, id)
	return f.err
}

type fakeSender struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (s *fakeSender) MarkRead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
	return s.err
}

func notif(id string, read bool) kestrel.Notification {
	return kestrel.Notification{
		ID:        id,
		Title:     "title " + id,
		Message:   "message " + id,
		Category:  kestrel.CategorySystem,
		Priority:  kestrel.PriorityNormal,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Read:      read,
	}
}

func TestLoadInitial(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{pages: map[int]*kestrel.NotificationPage{
		1: {
			Items:       []kestrel.Notification{notif("a", false), notif("b", true), notif("c", false)},
			TotalCount:  5,
			UnreadCount: 2,
			Page:        1,
			PageSize:    3,
			HasMore:     true,
		},
	}}
	f := New(api, WithPageSize(3))

	if err := f.LoadInitial(context.Background()); err != nil {
		t.Fatalf("LoadInitial() error = %v", err)
	}

	snap := f.Snapshot()
	if len(snap.Records) != 3 {
		t.Errorf("records = %d, want 3", len(snap.Records))
	}
	if snap.Unread != 2 {
		t.Errorf("unread = %d, want 2", snap.Unread)
	}
	if !snap.HasMore {
		t.Error("HasMore = false, want true")
	}
}

func TestLoadInitialError(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{err: errors.New("boom")}
	f := New(api)

	if err := f.LoadInitial(context.Background()); err == nil {
		t.Fatal("LoadInitial() error = nil, want error")
	}

	snap := f.Snapshot()
	if snap.LastError == "" {
		t.Error("LastError empty, want populated")
	}
	if snap.Loading {
		t.Error("Loading = true after failed load")
	}
}

func TestLoadMoreSkipsWhileInFlight(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{pages: map[int]*kestrel.NotificationPage{}}
	f := New(api)
	f.hasMore = true
	f.loading = true

	if err := f.LoadMore(context.Background()); err != nil {
		t.Fatalf("LoadMore() error = %v", err)
	}
	if len(api.listCalls) != 0 {
		t.Errorf("List called %d times while loading, want 0", len(api.listCalls))
	}
}

func TestLoadMoreSkipsWhenExhausted(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{pages: map[int]*kestrel.NotificationPage{}}
	f := New(api)

	if err := f.LoadMore(context.Background()); err != nil {
		t.Fatalf("LoadMore() error = %v", err)
	}
	if len(api.listCalls) != 0 {
		t.Errorf("List called %d times when exhausted, want 0", len(api.listCalls))
	}
}

func TestLoadMoreDeduplicates(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{pages: map[int]*kestrel.NotificationPage{
		1: {
			Items:   []kestrel.Notification{notif("a", false), notif("b", false)},
			Page:    1,
			HasMore: true,
		},
		// "b" slid into page 2 after a live prepend shifted the offset
		2: {
			Items:   []kestrel.Notification{notif("b", false), notif("c", false)},
			Page:    2,
			HasMore: false,
		},
	}}
	f := New(api, WithPageSize(2))

	if err := f.LoadInitial(context.Background()); err != nil {
		t.Fatalf("LoadInitial() error = %v", err)
	}
	if err := f.LoadMore(context.Background()); err != nil {
		t.Fatalf("LoadMore() error = %v", err)
	}

	snap := f.Snapshot()
	var ids []string
	for _, n := range snap.Records {
		ids = append(ids, n.ID)
	}
	want := []string{"a", "b", "c"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("record ids mismatch (-want +got):\n%s", diff)
	}
	if snap.HasMore {
		t.Error("HasMore = true, want false")
	}
}

func TestApplyNewNotification(t *testing.T) {
	t.Parallel()

	f := New(&fakeAPI{})
	f.records = []kestrel.Notification{notif("b", true)}
	f.recountUnread()

	n := notif("a", false)
	f.Apply(context.Background(), ws.Event{Kind: ws.KindNewNotification, Notification: &n})

	snap := f.Snapshot()
	if len(snap.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(snap.Records))
	}
	if snap.Records[0].ID != "a" {
		t.Errorf("newest record = %q, want %q", snap.Records[0].ID, "a")
	}
	if snap.Unread != 1 {
		t.Errorf("unread = %d, want 1", snap.Unread)
	}

	// a redelivered frame must not duplicate the record
	f.Apply(context.Background(), ws.Event{Kind: ws.KindNewNotification, Notification: &n})
	if got := len(f.Snapshot().Records); got != 2 {
		t.Errorf("records after redelivery = %d, want 2", got)
	}
}

func TestApplyNotificationRead(t *testing.T) {
	t.Parallel()

	f := New(&fakeAPI{})
	f.records = []kestrel.Notification{notif("a", false), notif("b", false)}
	f.recountUnread()

	f.Apply(context.Background(), ws.Event{Kind: ws.KindNotificationRead, NotificationID: "a"})

	snap := f.Snapshot()
	if !snap.Records[0].Read {
		t.Error("record a still unread after read event")
	}
	if snap.Unread != 1 {
		t.Errorf("unread = %d, want 1", snap.Unread)
	}

	// unknown id is dropped
	f.Apply(context.Background(), ws.Event{Kind: ws.KindNotificationRead, NotificationID: "zzz"})
	if got := f.Snapshot().Unread; got != 1 {
		t.Errorf("unread after unknown id = %d, want 1", got)
	}
}

func TestMarkReadOptimistic(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	sender := &fakeSender{}
	f := New(api, WithSender(sender))
	f.records = []kestrel.Notification{notif("a", false)}
	f.recountUnread()

	f.MarkRead(context.Background(), "a")

	// local state flips before the REST call resolves
	snap := f.Snapshot()
	if !snap.Records[0].Read {
		t.Error("record not read immediately after MarkRead")
	}
	if snap.Unread != 0 {
		t.Errorf("unread = %d, want 0", snap.Unread)
	}

	f.Wait()

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.readIDs) != 1 || api.readIDs[0] != "a" {
		t.Errorf("api.readIDs = %v, want [a]", api.readIDs)
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.ids) != 1 || sender.ids[0] != "a" {
		t.Errorf("sender.ids = %v, want [a]", sender.ids)
	}
}

func TestMarkReadKeepsLocalStateOnServerError(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{err: errors.New("boom")}
	f := New(api)
	f.records = []kestrel.Notification{notif("a", false)}
	f.recountUnread()

	f.MarkRead(context.Background(), "a")
	f.Wait()

	snap := f.Snapshot()
	if !snap.Records[0].Read {
		t.Error("optimistic read state rolled back on server error")
	}
	if snap.LastError == "" {
		t.Error("LastError empty after failed mutation")
	}
}

func TestMarkReadThenUnreadLastWriteWins(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	f := New(api)
	f.records = []kestrel.Notification{notif("a", false)}
	f.recountUnread()

	f.MarkRead(context.Background(), "a")
	f.MarkUnread(context.Background(), "a")
	f.Wait()

	snap := f.Snapshot()
	if snap.Records[0].Read {
		t.Error("record read after MarkRead then MarkUnread, want unread")
	}
	if snap.Unread != 1 {
		t.Errorf("unread = %d, want 1", snap.Unread)
	}
}

func TestMarkAllRead(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	f := New(api)
	f.records = []kestrel.Notification{notif("a", false), notif("b", true), notif("c", false)}
	f.recountUnread()

	f.MarkAllRead(context.Background())

	snap := f.Snapshot()
	if snap.Unread != 0 {
		t.Errorf("unread = %d, want 0", snap.Unread)
	}
	for _, n := range snap.Records {
		if !n.Read {
			t.Errorf("record %s unread after MarkAllRead", n.ID)
		}
	}

	f.Wait()
	api.mu.Lock()
	defer api.mu.Unlock()
	if api.allReads != 1 {
		t.Errorf("MarkAllRead calls = %d, want 1", api.allReads)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	f := New(api)
	f.records = []kestrel.Notification{notif("a", false), notif("b", false)}
	f.recountUnread()

	f.Delete(context.Background(), "a")

	snap := f.Snapshot()
	if len(snap.Records) != 1 || snap.Records[0].ID != "b" {
		t.Errorf("records after delete = %+v, want only b", snap.Records)
	}
	if snap.Unread != 1 {
		t.Errorf("unread = %d, want 1", snap.Unread)
	}

	f.Wait()
	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.deleteIDs) != 1 || api.deleteIDs[0] != "a" {
		t.Errorf("api.deleteIDs = %v, want [a]", api.deleteIDs)
	}
}

func TestPrimeOnlyWhenEmpty(t *testing.T) {
	t.Parallel()

	f := New(&fakeAPI{})

	f.Prime([]kestrel.Notification{notif("a", false)})
	if got := len(f.Snapshot().Records); got != 1 {
		t.Fatalf("records after prime = %d, want 1", got)
	}

	// a second prime must not clobber live state
	f.Prime([]kestrel.Notification{notif("x", false), notif("y", false)})
	if got := len(f.Snapshot().Records); got != 1 {
		t.Errorf("records after second prime = %d, want 1", got)
	}
}

func TestSenderFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	sender := &fakeSender{err: errors.New("not connected")}
	f := New(api, WithSender(sender))
	f.records = []kestrel.Notification{notif("a", false)}
	f.recountUnread()

	f.MarkRead(context.Background(), "a")
	f.Wait()

	snap := f.Snapshot()
	if !snap.Records[0].Read {
		t.Error("record unread after MarkRead with failing sender")
	}
	if snap.LastError != "" {
		t.Errorf("LastError = %q, want empty for best-effort sender failure", snap.LastError)
	}
}
