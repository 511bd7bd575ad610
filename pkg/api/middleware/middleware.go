package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/log"
	"github.com/google/uuid"
)

type ContextKey int

const (
	// RequestIDContextKey is the key used to store the request id in the request context
	RequestIDContextKey ContextKey = iota
	// UserContextKey is the key used to store the user in the request context
	UserContextKey
)

// User is the identity threaded through handlers. There is no real
// authentication in this application; the auth middleware is a stub.
type User struct {
	ID   string
	Name string
}

// RequestID assigns a unique id to each request and echoes it in the
// X-Request-ID response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logging logs each request with its id and duration.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		requestID, _ := r.Context().Value(RequestIDContextKey).(string)
		log.Debug("%s %s %s %s", r.Method, r.URL.Path, time.Since(start), requestID)
	})
}

// NewAuthMiddleware returns the auth middleware. Authentication is
// deliberately bypassed: every request is attributed to the table's shared
// identity. The middleware exists so handlers keep the same shape as a
// deployment that verifies tokens.
func NewAuthMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := &User{
				ID:   "local",
				Name: "Game Master",
			}
			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
