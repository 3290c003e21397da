package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"cifra/api/internal/core/domain"
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (*domain.UserClaims, error)
}

type visitor struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

type AuthMiddleware struct {
	Tokens TokenValidator // nil disables authentication
	Logger *slog.Logger

	rps      rate.Limit
	burst    int
	visitors sync.Map // ip -> *visitor
}

func NewAuthMiddleware(tokens TokenValidator, logger *slog.Logger, rps float64, burst int) *AuthMiddleware {
	return &AuthMiddleware{
		Tokens: tokens,
		Logger: logger,
		rps:    rate.Limit(rps),
		burst:  burst,
	}
}

// ==============================================================================
// 1. Identity
// ==============================================================================

// RequireAuthentication rejects requests without a valid bearer token. It is
// a pass-through when no validator is configured.
func (m *AuthMiddleware) RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Tokens == nil {
			next.ServeHTTP(w, r)
			return
		}

		tokenString := extractToken(r)
		if tokenString == "" {
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := m.Tokens.ValidateAccessToken(r.Context(), tokenString)
		if err != nil {
			m.Logger.Warn("Rejected bearer token", slog.String("error", err.Error()))
			writeJSONError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), domain.UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ==============================================================================
// 2. DoS Protection
// ==============================================================================

// RateLimit applies a per-IP token bucket.
func (m *AuthMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		v, _ := m.visitors.LoadOrStore(ip, &visitor{
			limiter:  rate.NewLimiter(m.rps, m.burst),
			lastSeen: time.Now(),
		})
		vis := v.(*visitor)
		vis.mu.Lock()
		vis.lastSeen = time.Now()
		vis.mu.Unlock()

		if !vis.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CleanupVisitors evicts idle limiter entries until ctx is done.
func (m *AuthMiddleware) CleanupVisitors(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.evictIdle(idle)
		}
	}
}

func (m *AuthMiddleware) evictIdle(idle time.Duration) {
	m.visitors.Range(func(key, value interface{}) bool {
		vis := value.(*visitor)
		vis.mu.Lock()
		stale := time.Since(vis.lastSeen) > idle
		vis.mu.Unlock()
		if stale {
			m.visitors.Delete(key)
		}
		return true
	})
}

// clientIP reads RemoteAddr only; chi's RealIP middleware is the single
// place that trusts forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	// Browsers cannot set headers on WebSocket and EventSource requests.
	if cookie, err := r.Cookie("cifra_access_token"); err == nil {
		return cookie.Value
	}
	return ""
}
