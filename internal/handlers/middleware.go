package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"habitforge/internal/models"
	"habitforge/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ChildContextKey holds the authenticated child id
	ChildContextKey ContextKey = "child"
	// RoleContextKey holds the caller's resolved role
	RoleContextKey ContextKey = "role"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	issuer  *security.TokenIssuer
	limiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(issuer *security.TokenIssuer, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		issuer:  issuer,
		limiter: limiter,
	}
}

// RequireChild validates the bearer token and resolves the child identity
// once, here at the boundary. Downstream code reads the validated child id
// from the context and never re-derives identity or role.
func (m *Middleware) RequireChild(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing access token", nil)
			return
		}

		subjectID, role, err := m.issuer.Verify(token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid access token", err)
			return
		}
		if role != models.RoleChild {
			respondWithError(w, http.StatusForbidden, "Child access required", nil)
			return
		}

		ctx := context.WithValue(r.Context(), ChildContextKey, subjectID)
		ctx = context.WithValue(ctx, RoleContextKey, role)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin validates the bearer token and requires the admin role.
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing access token", nil)
			return
		}

		_, role, err := m.issuer.Verify(token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid access token", err)
			return
		}
		if role != models.RoleAdmin {
			respondWithError(w, http.StatusForbidden, "Admin access required", nil)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), RoleContextKey, role)))
	}
}

// RateLimit throttles by authenticated child where available, client IP
// otherwise.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := security.GetClientIP(r)
		if childID, ok := ChildFromContext(r.Context()); ok {
			key = "child:" + strconv.FormatInt(childID, 10)
		}

		if !m.limiter.Allow(key) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests", nil)
			return
		}

		next(w, r)
	}
}

// ChildFromContext retrieves the authenticated child id from the context
func ChildFromContext(ctx context.Context) (int64, bool) {
	childID, ok := ctx.Value(ChildContextKey).(int64)
	return childID, ok
}

// Logging wraps a handler with request logging
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// bearerToken extracts the token from the Authorization header
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
