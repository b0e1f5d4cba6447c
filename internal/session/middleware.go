package session

import (
	"context"
	"encoding/json"
	"net/http"
)

type contextKey string

const ctxKey contextKey = "session"

// Middleware adds session data to the request context when a valid session
// cookie is present. Requests without a session pass through untouched.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := m.GetSession(r.Context(), r)
		if err == nil {
			r = r.WithContext(context.WithValue(r.Context(), ctxKey, data))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects requests without a valid customer session.
func (m *Manager) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := m.GetSession(r.Context(), r)
		if err != nil {
			unauthorized(w)
			return
		}
		r = r.WithContext(context.WithValue(r.Context(), ctxKey, data))
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests without a valid admin session. Admin access is
// its own session flag, independent of customer accounts.
func (m *Manager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := m.GetSession(r.Context(), r)
		if err != nil || !data.IsAdmin {
			unauthorized(w)
			return
		}
		r = r.WithContext(context.WithValue(r.Context(), ctxKey, data))
		next.ServeHTTP(w, r)
	})
}

// FromContext retrieves session data from the request context.
func FromContext(ctx context.Context) *Data {
	if ctx == nil {
		return nil
	}
	data, ok := ctx.Value(ctxKey).(*Data)
	if !ok {
		return nil
	}
	return data
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}
