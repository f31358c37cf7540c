package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	go_json "github.com/goccy/go-json"

	"github.com/kestrelhq/nfeed/internal/client/kestrel"
	"github.com/kestrelhq/nfeed/internal/storage"
)

const testToken = "dev-token"

func newTestServer(t *testing.T) (*httptest.Server, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(New(store, testToken, logger).Routes())
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		auth       string
		wantStatus int
	}{
		{
			name:       "missing token",
			path:       "/api/notifications",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong token",
			path:       "/api/notifications",
			auth:       "Bearer nope",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bearer token",
			path:       "/api/notifications",
			auth:       "Bearer " + testToken,
			wantStatus: http.StatusOK,
		},
		{
			name:       "query token",
			path:       "/api/notifications?token=" + testToken,
			wantStatus: http.StatusOK,
		},
		{
			name:       "health is public",
			path:       "/health",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req, err := http.NewRequest(http.MethodGet, srv.URL+tt.path, nil)
			if err != nil {
				t.Fatalf("NewRequest() error = %v", err)
			}
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestCreateAndList(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/notifications",
		`{"title": "Invoice due", "message": "Pay up", "category": "billing", "priority": "high"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}

	var created kestrel.Notification
	if err := go_json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" {
		t.Error("created notification has empty id")
	}
	if created.CreatedAt.IsZero() {
		t.Error("created notification has zero timestamp")
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/notifications?page=1&page_size=10", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d, want 200", resp.StatusCode)
	}

	var page kestrel.NotificationPage
	if err := go_json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.TotalCount != 1 || page.UnreadCount != 1 {
		t.Errorf("total = %d unread = %d, want 1/1", page.TotalCount, page.UnreadCount)
	}
	if len(page.Items) != 1 || page.Items[0].ID != created.ID {
		t.Errorf("items = %+v, want the created notification", page.Items)
	}
}

func TestCreateRejectsMissingTitle(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/notifications", `{"message": "no title"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestReadStateEndpoints(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t)
	ctx := context.Background()

	for _, id := range []string{"n1", "n2"} {
		if err := store.Add(ctx, kestrel.Notification{ID: id, Title: id}); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/notifications/n1/read", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("mark read status = %d, want 204", resp.StatusCode)
	}

	result, err := store.List(ctx, 1, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.UnreadCount != 1 {
		t.Errorf("unread after mark read = %d, want 1", result.UnreadCount)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/notifications/n1/unread", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("mark unread status = %d, want 204", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/notifications/read-all", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("read-all status = %d, want 204", resp.StatusCode)
	}

	result, err = store.List(ctx, 1, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.UnreadCount != 0 {
		t.Errorf("unread after read-all = %d, want 0", result.UnreadCount)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/notifications/n2", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}

	result, err = store.List(ctx, 1, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.TotalCount != 1 {
		t.Errorf("total after delete = %d, want 1", result.TotalCount)
	}
}
