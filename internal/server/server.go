// Package server implements the nfeedd development broker: the REST feed
// endpoints and the live WebSocket stream, backed by a NotificationStore.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/kestrelhq/nfeed/internal/storage"
	"github.com/kestrelhq/nfeed/internal/xhttp/middleware"
)

type Server struct {
	store    storage.NotificationStore
	token    string
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func New(store storage.NotificationStore, token string, logger *slog.Logger) *Server {
	return &Server{
		store:  store,
		token:  token,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				// dev broker, all origins welcome
				return true
			},
		},
	}
}

// Routes assembles the handler tree. The WebSocket route skips the
// response-logging wrapper: the upgrader needs the raw http.Hijacker.
func (s *Server) Routes() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/notifications", s.handleList)
	api.HandleFunc("POST /api/notifications", s.handleCreate)
	api.HandleFunc("PUT /api/notifications/{id}/read", s.handleMarkRead)
	api.HandleFunc("PUT /api/notifications/{id}/unread", s.handleMarkUnread)
	api.HandleFunc("PUT /api/notifications/read-all", s.handleMarkAllRead)
	api.HandleFunc("DELETE /api/notifications/{id}", s.handleDelete)

	mux := http.NewServeMux()
	mux.Handle("/api/", middleware.Chain(api,
		middleware.Logging,
		s.auth,
	))
	mux.Handle("GET /ws/notifications", middleware.Chain(http.HandlerFunc(s.handleStream),
		s.auth,
	))
	mux.HandleFunc("GET /health", s.handleHealth)

	return middleware.Chain(mux,
		middleware.Recovery,
		middleware.Logger(s.logger),
		middleware.ShutdownContext,
		middleware.RequestID(),
	)
}
