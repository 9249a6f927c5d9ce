package apihttp

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"maintenance-cloud/internal/audit"
	"maintenance-cloud/internal/auth"
)

// LoggingMiddleware logs one line per request.
func LoggingMiddleware(next http.Handler, logger *zap.Logger) http.Handler {
	logger = nopIfNil(logger)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", resp.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// AuditMiddleware records every non-GET request to next as action on
// resourceType. Audit failures are logged and never fail the request.
func AuditMiddleware(next http.Handler, auditLog audit.Logger, action, resourceType string, logger *zap.Logger) http.Handler {
	if auditLog == nil {
		return next
	}
	logger = nopIfNil(logger)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)

		entry := audit.Entry{
			Actor:        auth.SubjectFromContext(r.Context()),
			Role:         string(auth.RoleFromContext(r.Context())),
			Action:       action,
			ResourceType: resourceType,
			Status:       resp.status,
			IP:           clientIP(r),
			UserAgent:    r.UserAgent(),
		}
		if r.URL.RawQuery != "" {
			entry.Metadata, _ = json.Marshal(map[string]string{"query": r.URL.RawQuery})
		}
		if err := auditLog.Log(r.Context(), entry); err != nil {
			logger.Warn("audit log failed", zap.String("action", action), zap.Error(err))
		}
	})
}

// ClientRateLimiter limits write requests per client IP.
type ClientRateLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	limit       rate.Limit
	burst       int
	lastCleanup time.Time
}

// NewClientRateLimiter allows perMinute writes per client. It returns nil,
// which disables limiting, when perMinute is not positive.
func NewClientRateLimiter(perMinute int) *ClientRateLimiter {
	if perMinute <= 0 {
		return nil
	}
	burst := perMinute / 6
	if burst < 1 {
		burst = 1
	}
	return &ClientRateLimiter{
		limiters:    make(map[string]*rate.Limiter),
		limit:       rate.Every(time.Minute / time.Duration(perMinute)),
		burst:       burst,
		lastCleanup: time.Now(),
	}
}

// Wrap rejects POST requests over the client's budget with 429.
func (l *ClientRateLimiter) Wrap(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && !l.limiter(clientIP(r)).Allow() {
			w.Header().Set("Retry-After", "60")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *ClientRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastCleanup) > time.Hour {
		l.limiters = make(map[string]*rate.Limiter)
		l.lastCleanup = time.Now()
	}
	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = limiter
	}
	return limiter
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}
