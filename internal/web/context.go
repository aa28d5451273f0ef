package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/SheetEdit/internal/core"
	"github.com/JonMunkholm/SheetEdit/internal/logging"
	"github.com/go-chi/chi/v5"
)

type ctxKey int

const ctxKeySession ctxKey = iota

// WithRequestMetadata adds IP and User-Agent to context for audit logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClient(ctx, clientIP(r), r.UserAgent())
}

// clientIP strips the port from RemoteAddr, which TrustedRealIP has
// already rewritten for trusted proxies.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// loadSession resolves the {id} route parameter and attaches the session,
// its id for logging, and the client details for auditing.
func (s *Server) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		sess, err := s.service.Session(id)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		ctx := logging.WithSession(r.Context(), id)
		ctx = WithRequestMetadata(ctx, r)
		ctx = context.WithValue(ctx, ctxKeySession, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the session loadSession attached to the request.
func sessionFrom(r *http.Request) *core.Session {
	sess, _ := r.Context().Value(ctxKeySession).(*core.Session)
	return sess
}
