package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"clinic/internal/transport/http/api"
	"clinic/internal/transport/http/shared"
)

// maxTrackedKeys triggers a sweep of expired windows before a new key is added.
const maxTrackedKeys = 4096

type window struct {
	count int
	reset time.Time
}

// limiter is a fixed-window counter per key.
type limiter struct {
	mu      sync.Mutex
	limit   int
	period  time.Duration
	key     func(*http.Request) string
	windows map[string]*window
}

func newLimiter(limit int, period time.Duration, key func(*http.Request) string) *limiter {
	return &limiter{limit: limit, period: period, key: key, windows: map[string]*window{}}
}

// take counts one hit for key and reports what is left of its window.
func (l *limiter) take(key string, now time.Time) (remaining int, reset time.Duration, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	win, found := l.windows[key]
	if !found || now.After(win.reset) {
		if !found && len(l.windows) >= maxTrackedKeys {
			for k, w := range l.windows {
				if now.After(w.reset) {
					delete(l.windows, k)
				}
			}
		}
		win = &window{reset: now.Add(l.period)}
		l.windows[key] = win
	}
	win.count++
	return l.limit - win.count, win.reset.Sub(now), win.count <= l.limit
}

// allow writes the rate headers and answers 429 once the caller is over the limit.
func (l *limiter) allow(w http.ResponseWriter, r *http.Request) bool {
	if l.limit <= 0 {
		return true
	}
	key := l.key(r)
	if key == "" {
		key = "ip:" + shared.ClientIP(r)
	}
	remaining, reset, ok := l.take(key, time.Now())
	resetSec := int((reset + time.Second - 1) / time.Second)

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(max(resetSec, 0)))
	if ok {
		return true
	}
	w.Header().Set("Retry-After", strconv.Itoa(max(resetSec, 1)))
	slog.Warn("rate limit exceeded", "key", key, "method", r.Method, "path", r.URL.Path, "limit", l.limit)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

// RateLimit caps every request per authenticated caller, or per client IP
// before login.
func RateLimit(limit int, period time.Duration) func(http.Handler) http.Handler {
	l := newLimiter(limit, period, callerKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.allow(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// SensitiveMutationRateLimit adds tighter limits on login (per IP and per
// email) and on the leave review and payroll write routes (per caller).
func SensitiveMutationRateLimit(baseLimit int, period time.Duration) func(http.Handler) http.Handler {
	loginByIP := newLimiter(max(baseLimit/4, 1), period, ipKey)
	loginByEmail := newLimiter(max(baseLimit/4, 1), period, loginEmailKey)
	writes := newLimiter(max(baseLimit/2, 1), period, callerKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch classifyRoute(r) {
			case routeLogin:
				if !loginByIP.allow(w, r) || !loginByEmail.allow(w, r) {
					return
				}
			case routeSensitiveWrite:
				if !writes.allow(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.TenantID + ":" + user.UserID
	}
	return ipKey(r)
}

func ipKey(r *http.Request) string {
	return "ip:" + shared.ClientIP(r)
}

// loginEmailKey peeks at the login body and restores it for the handler.
func loginEmailKey(r *http.Request) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ipKey(r)
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ipKey(r)
	}
	var body struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(raw, &body) != nil || strings.TrimSpace(body.Email) == "" {
		return ipKey(r)
	}
	return "email:" + strings.ToLower(strings.TrimSpace(body.Email))
}

type routeClass int

const (
	routeOther routeClass = iota
	routeLogin
	routeSensitiveWrite
)

func classifyRoute(r *http.Request) routeClass {
	if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
		return routeOther
	}
	path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v1"), "/")
	switch {
	case path == "/auth/login":
		return routeLogin
	case path == "/leaves" && r.Method == http.MethodPatch,
		path == "/leaves/balances/run",
		path == "/payroll":
		return routeSensitiveWrite
	}
	return routeOther
}
