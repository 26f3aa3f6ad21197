package handlers

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// LoggingMiddleware logs the details of each HTTP request
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		// Wrap ResponseWriter to capture status code
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)
		slog.Info("HTTP Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.statusCode,
			"duration", time.Since(start),
			"ip", r.RemoteAddr,
		)
	})
}

// Custom ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// SecurityHeadersMiddleware adds standard security headers
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "same-origin")
		// The API only ever serves JSON.
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// RateLimiter allows one request per window from each IP.
type RateLimiter struct {
	visitors sync.Map
	window   time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewRateLimiter creates a new rate limiter with a cleanup goroutine. Call
// Stop to end it.
func NewRateLimiter(window time.Duration) *RateLimiter {
	return newRateLimiter(window, time.Now)
}

func newRateLimiter(window time.Duration, now func() time.Time) *RateLimiter {
	rl := &RateLimiter{
		window: window,
		now:    now,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go rl.cleanup(time.Minute)
	return rl
}

// cleanup removes old entries to prevent memory leaks
func (rl *RateLimiter) cleanup(every time.Duration) {
	defer close(rl.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	now := rl.now()
	rl.visitors.Range(func(key, value any) bool {
		if now.Sub(value.(time.Time)) > rl.window {
			rl.visitors.Delete(key)
		}
		return true
	})
}

// Stop ends the cleanup goroutine and waits for it.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
	<-rl.done
}

// Middleware enforces the rate limit
func (rl *RateLimiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.allow(ip, rl.now()) {
			slog.Warn("Rate limit exceeded", "ip", ip)
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "Too many requests. Please try again later."})
			return
		}
		next(w, r)
	}
}

// allow records a request from ip at now. Of several concurrent callers
// inside one window exactly one is admitted.
func (rl *RateLimiter) allow(ip string, now time.Time) bool {
	for {
		lastSeen, loaded := rl.visitors.LoadOrStore(ip, now)
		if !loaded {
			return true
		}
		if now.Sub(lastSeen.(time.Time)) < rl.window {
			return false
		}
		if rl.visitors.CompareAndSwap(ip, lastSeen, now) {
			return true
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
