package http

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"streaky-relay/internal/handler/http/requestid"
	"streaky-relay/internal/handler/http/respond"
	"streaky-relay/internal/handler/http/responsewriter"
	"streaky-relay/internal/observability/logging"
	"streaky-relay/internal/observability/metrics"
)

// Logging returns middleware that stores a request-scoped logger in the
// context and logs one line per completed request.
// Headers, bodies and query strings are never logged: they carry the API
// secret and encrypted credentials.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logging.WithRequestID(r.Context(), logger)
			ctx := logging.WithLogger(r.Context(), reqLogger)

			wrapped := responsewriter.Wrap(w)
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			duration := time.Since(start)
			logging.FromContext(ctx).Info("request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.Header.Get("User-Agent")),
				slog.Int("status", wrapped.StatusCode()),
				slog.Int("bytes", wrapped.BytesWritten()),
				slog.Duration("duration", duration),
			)
		})
	}
}

// Recover returns middleware that turns handler panics into 500 responses.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				metrics.RecordPanicRecovered()
				// スタックトレースを記録
				logger.Error("panic recovered",
					slog.String("request_id", requestid.FromContext(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)

				rw := responsewriter.Wrap(w)
				if !rw.Written() {
					respond.SafeError(rw, http.StatusInternalServerError, errors.New("internal error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LimitRequestBody caps request bodies at maxBytes. Reads beyond the cap fail
// with *http.MaxBytesError, which handlers map to 413.
func LimitRequestBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respond.Error(w, http.StatusRequestEntityTooLarge, errors.New("request body too large"))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// requestRecord stores request timestamps for one client.
type requestRecord struct {
	mu         sync.Mutex
	timestamps []time.Time
}

// RateLimiter limits requests per client IP with a sliding window.
type RateLimiter struct {
	records    sync.Map // map[string]*requestRecord
	limit      int
	window     time.Duration
	trustProxy bool
	now        func() time.Time
}

// NewRateLimiter allows limit requests per window per client IP.
// With trustProxy, X-Forwarded-For and X-Real-IP identify the client; only
// enable it behind a proxy that overwrites those headers.
func NewRateLimiter(limit int, window time.Duration, trustProxy bool) *RateLimiter {
	return &RateLimiter{
		limit:      limit,
		window:     window,
		trustProxy: trustProxy,
		now:        time.Now,
	}
}

// Limit rejects requests over the limit with 429 and a Retry-After header.
// Public probe endpoints are never limited.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isProbe(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r, rl.trustProxy)
		if retryAfter, ok := rl.allow(ip); !ok {
			metrics.RecordRateLimitRejection()
			logging.FromContext(r.Context()).Warn("rate limit exceeded",
				slog.String("client_ip", ip),
				slog.Duration("retry_after", retryAfter))
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds()+0.999)))
			respond.SafeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow records a request from ip if permitted. When refused it returns how
// long until the oldest request leaves the window.
func (rl *RateLimiter) allow(ip string) (time.Duration, bool) {
	now := rl.now()

	val, _ := rl.records.LoadOrStore(ip, &requestRecord{})
	record := val.(*requestRecord)

	record.mu.Lock()
	defer record.mu.Unlock()

	// 時間窓外のタイムスタンプを削除
	cutoff := now.Add(-rl.window)
	kept := record.timestamps[:0]
	for _, ts := range record.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	record.timestamps = kept

	if len(record.timestamps) >= rl.limit {
		return record.timestamps[0].Sub(cutoff), false
	}

	record.timestamps = append(record.timestamps, now)
	return 0, true
}

// Cleanup drops clients with no request inside the window and returns how
// many were removed.
func (rl *RateLimiter) Cleanup() int {
	cutoff := rl.now().Add(-rl.window)
	removed := 0

	rl.records.Range(func(key, value any) bool {
		record := value.(*requestRecord)
		record.mu.Lock()
		stale := true
		for _, ts := range record.timestamps {
			if ts.After(cutoff) {
				stale = false
				break
			}
		}
		if stale {
			rl.records.Delete(key)
			removed++
		}
		record.mu.Unlock()
		return true
	})
	return removed
}

// ActiveClients returns the number of tracked client IPs.
func (rl *RateLimiter) ActiveClients() int {
	n := 0
	rl.records.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func isProbe(path string) bool {
	switch path {
	case "/health", "/ready", "/live", "/metrics":
		return true
	}
	return false
}

// clientIP returns the client address. Proxy headers are consulted only when
// trustProxy is set.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
