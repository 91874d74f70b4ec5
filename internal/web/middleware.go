package web

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/session"
	"github.com/absolutefisio/clinic-admin/pkg/logging"
)

// RequestLogger emits structured logs for every HTTP request.
func RequestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = uuid.NewString()
			}
			logger.Info("request started",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", reqID,
				"remote_ip", r.RemoteAddr,
			)
			next.ServeHTTP(w, r)
			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", reqID,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// RequireAuth redirects to the login page when no session is stored, and
// destroys sessions whose token already expired so they land there too.
func RequireAuth(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := store.Token()
			if token == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if session.TokenExpired(token, time.Now()) {
				store.Logout()
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles renders the forbidden page unless the session's role is in
// the allow-list; an empty list admits any authenticated role. It runs after
// RequireAuth, so a missing profile means the cached profile file was lost:
// the user is sent back through login.
func RequireRoles(store *session.Store, allowed ...api.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := store.Role()
			if role == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			for _, a := range allowed {
				if role == a {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Redirect(w, r, "/prohibido", http.StatusSeeOther)
		})
	}
}
