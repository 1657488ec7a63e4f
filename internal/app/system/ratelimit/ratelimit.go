// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts requests per key in fixed windows. Safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	now      func() time.Time
	lastGC   time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing limit requests per key every duration.
// Expired windows are swept lazily on Allow, so no goroutine is started.
func New(limit int, duration time.Duration) *Limiter {
	return &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
}

// Allow records one request for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many requests key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	if rem := l.limit - w.count; rem > 0 {
		return rem
	}
	return 0
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// sweep drops expired windows at most once per window duration. Caller holds mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastGC) < l.duration {
		return
	}
	l.lastGC = now
	for k, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, k)
		}
	}
}

// ClientIP returns the caller's address, preferring X-Forwarded-For and
// X-Real-IP when a proxy sets them.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles sign-in attempts per IP and per username.
type LoginLimiter struct {
	ip   *Limiter
	user *Limiter
}

// NewLoginLimiter allows 10 attempts per IP per minute and 5 per username
// every 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{
		ip:   New(10, time.Minute),
		user: New(5, 5*time.Minute),
	}
}

// Check reports whether the attempt may proceed, with a French message for
// the form when it may not.
func (ll *LoginLimiter) Check(r *http.Request, username string) (bool, string) {
	if !ll.ip.Allow(ClientIP(r)) {
		return false, "Trop de tentatives de connexion. Réessayez dans une minute."
	}
	if key := normalize(username); key != "" && !ll.user.Allow(key) {
		return false, "Trop de tentatives pour ce compte. Réessayez dans quelques minutes."
	}
	return true, ""
}

// ResetUser clears the per-username window after a successful sign-in.
func (ll *LoginLimiter) ResetUser(username string) {
	if key := normalize(username); key != "" {
		ll.user.Reset(key)
	}
}

// FormLimiter guards the public newsletter forms, per IP.
type FormLimiter struct {
	l *Limiter
}

// NewFormLimiter allows limit submissions per IP every duration.
func NewFormLimiter(limit int, duration time.Duration) *FormLimiter {
	return &FormLimiter{l: New(limit, duration)}
}

func (f *FormLimiter) Allow(r *http.Request) bool {
	return f.l.Allow(ClientIP(r))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
