package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/kestrelhq/nfeed/internal/xhttp"
)

// auth accepts the broker's static token either as a bearer header or as
// a token query parameter (the WebSocket path: browsers and the gorilla
// dialer cannot set headers on the upgrade request portably).
func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			// auth disabled, local development only
			next.ServeHTTP(w, r)
			return
		}

		token := r.URL.Query().Get("token")
		if token == "" {
			token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}

		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
			xhttp.Error(w, http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
