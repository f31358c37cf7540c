package server

import (
	"net/http"
	"strconv"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/kestrelhq/nfeed/internal/client/kestrel"
	"github.com/kestrelhq/nfeed/internal/xhttp"
	"github.com/kestrelhq/nfeed/internal/xslog"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := 1
	pageSize := defaultPageSize

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxPageSize {
			pageSize = n
		}
	}

	result, err := s.store.List(ctx, page, pageSize)
	if err != nil {
		xslog.FromContext(ctx).ErrorContext(ctx, "failed to list notifications", xslog.Error(err))
		xhttp.Error(w, http.StatusInternalServerError)
		return
	}

	items := result.Records
	if items == nil {
		items = []kestrel.Notification{}
	}

	xhttp.WriteOK(w, kestrel.NotificationPage{
		Items:       items,
		TotalCount:  result.TotalCount,
		UnreadCount: result.UnreadCount,
		Page:        page,
		PageSize:    pageSize,
		HasMore:     result.HasMore,
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var n kestrel.Notification
	if err := go_json.NewDecoder(r.Body).Decode(&n); err != nil {
		xhttp.Error(w, http.StatusBadRequest)
		return
	}
	if n.Title == "" {
		xhttp.Error(w, http.StatusBadRequest)
		return
	}

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Priority == "" {
		n.Priority = kestrel.PriorityNormal
	}
	if n.Category == "" {
		n.Category = kestrel.CategorySystem
	}

	if err := s.store.Add(ctx, n); err != nil {
		xslog.FromContext(ctx).ErrorContext(ctx, "failed to add notification", xslog.Error(err))
		xhttp.Error(w, http.StatusInternalServerError)
		return
	}

	xhttp.WriteJSON(w, http.StatusCreated, n)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	s.setRead(w, r, true)
}

func (s *Server) handleMarkUnread(w http.ResponseWriter, r *http.Request) {
	s.setRead(w, r, false)
}

func (s *Server) setRead(w http.ResponseWriter, r *http.Request, read bool) {
	ctx := r.Context()

	id := r.PathValue("id")
	if id == "" {
		xhttp.Error(w, http.StatusBadRequest)
		return
	}

	if err := s.store.SetRead(ctx, id, read); err != nil {
		xslog.FromContext(ctx).ErrorContext(ctx, "failed to update read state",
			xslog.Error(err),
			xslog.NotificationID(id),
		)
		xhttp.Error(w, http.StatusInternalServerError)
		return
	}

	xhttp.WriteNoContent(w)
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.store.MarkAllRead(ctx); err != nil {
		xslog.FromContext(ctx).ErrorContext(ctx, "failed to mark all read", xslog.Error(err))
		xhttp.Error(w, http.StatusInternalServerError)
		return
	}

	xhttp.WriteNoContent(w)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.PathValue("id")
	if id == "" {
		xhttp.Error(w, http.StatusBadRequest)
		return
	}

	if err := s.store.Delete(ctx, id); err != nil {
		xslog.FromContext(ctx).ErrorContext(ctx, "failed to delete notification",
			xslog.Error(err),
			xslog.NotificationID(id),
		)
		xhttp.Error(w, http.StatusInternalServerError)
		return
	}

	xhttp.WriteNoContent(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		xhttp.Error(w, http.StatusServiceUnavailable)
		return
	}
	xhttp.WriteOK(w, map[string]string{"status": "ok"})
}
