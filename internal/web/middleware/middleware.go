package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/foxzi/leadboard/internal/session"
)

// RateLimiter counts attempts per key in one-minute and one-hour windows
type RateLimiter struct {
	mu          sync.Mutex
	counters    map[string]*rateLimitCounter
	limitMinute int
	limitHour   int
	now         func() time.Time
}

type rateLimitCounter struct {
	minuteCount int
	hourCount   int
	minuteReset time.Time
	hourReset   time.Time
}

// NewRateLimiter creates a limiter. A zero limit disables that window.
func NewRateLimiter(limitMinute, limitHour int) *RateLimiter {
	return &RateLimiter{
		counters:    make(map[string]*rateLimitCounter),
		limitMinute: limitMinute,
		limitHour:   limitHour,
		now:         time.Now,
	}
}

// Allow checks if a request is allowed and increments counters
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	counter, exists := rl.counters[key]
	if !exists {
		counter = &rateLimitCounter{
			minuteReset: now.Add(time.Minute),
			hourReset:   now.Add(time.Hour),
		}
		rl.counters[key] = counter
	}

	if now.After(counter.minuteReset) {
		counter.minuteCount = 0
		counter.minuteReset = now.Add(time.Minute)
	}
	if now.After(counter.hourReset) {
		counter.hourCount = 0
		counter.hourReset = now.Add(time.Hour)
	}

	if rl.limitMinute > 0 && counter.minuteCount >= rl.limitMinute {
		return false
	}
	if rl.limitHour > 0 && counter.hourCount >= rl.limitHour {
		return false
	}

	counter.minuteCount++
	counter.hourCount++
	return true
}

// Run removes expired counters every interval until ctx is done
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, counter := range rl.counters {
		if now.After(counter.minuteReset) && now.After(counter.hourReset) {
			delete(rl.counters, key)
		}
	}
}

// Limit rejects requests from a client IP that exceeded the limiter
func Limit(rl *RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if !rl.Allow(ip) {
				logger.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
				http.Error(w, "Too many attempts, try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Logger middleware logs HTTP requests
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.status,
				"duration", time.Since(start),
				"ip", ClientIP(r),
			)
		})
	}
}

// Recovery middleware recovers from panics
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic recovered",
						"error", err,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// MethodOverride middleware allows overriding HTTP method via _method form field.
// Only URL-encoded forms are inspected so uploads are left for their handler to parse.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			switch method := strings.ToUpper(r.FormValue("_method")); method {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = method
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth guards pages by the session state: signed-in users get the
// page, signed-out users are sent to the login form, and sessions still
// loading get the placeholder.
func RequireAuth(placeholder http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch session.Decide(stateOf(r)) {
			case session.DecisionRender:
				next.ServeHTTP(w, r)
			case session.DecisionRedirectLogin:
				http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusSeeOther)
			default:
				w.Header().Set("Retry-After", "1")
				placeholder.ServeHTTP(w, r)
			}
		})
	}
}

// RequireAuthAPI is RequireAuth for JSON endpoints
func RequireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch session.Decide(stateOf(r)) {
		case session.DecisionRender:
			next.ServeHTTP(w, r)
		case session.DecisionRedirectLogin:
			sendAPIError(w, http.StatusUnauthorized, "Authentication required")
		default:
			w.Header().Set("Retry-After", "1")
			sendAPIError(w, http.StatusServiceUnavailable, "Session is loading")
		}
	})
}

func stateOf(r *http.Request) session.State {
	s := session.FromContext(r.Context())
	if s == nil {
		return session.State{Status: session.StatusUnauthenticated}
	}
	return s.State()
}

// LoginURL returns the login page address that comes back to next afterwards
func LoginURL(next string) string {
	if next == "" || next == "/" || !SafeRedirect(next) {
		return "/auth/login"
	}
	return "/auth/login?next=" + url.QueryEscape(next)
}

// SafeRedirect reports whether target is a local path
func SafeRedirect(target string) bool {
	return strings.HasPrefix(target, "/") &&
		!strings.HasPrefix(target, "//") &&
		!strings.HasPrefix(target, "/\\")
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// sendAPIError sends a JSON error response
func sendAPIError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// IPFilter middleware restricts access to allowed IPs
func IPFilter(allowedIPs []string, logger *slog.Logger) func(http.Handler) http.Handler {
	var allowedNets []*net.IPNet
	var allowedAddrs []net.IP

	for _, ip := range allowedIPs {
		if strings.Contains(ip, "/") {
			_, ipNet, err := net.ParseCIDR(ip)
			if err != nil {
				logger.Warn("invalid CIDR in allowed_ips", "cidr", ip, "error", err)
				continue
			}
			allowedNets = append(allowedNets, ipNet)
		} else {
			parsed := net.ParseIP(ip)
			if parsed == nil {
				logger.Warn("invalid IP in allowed_ips", "ip", ip)
				continue
			}
			allowedAddrs = append(allowedAddrs, parsed)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowedNets) == 0 && len(allowedAddrs) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := ClientIP(r)
			ip := net.ParseIP(clientIP)
			if ip == nil {
				logger.Warn("could not parse client IP", "ip", clientIP)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			for _, allowed := range allowedAddrs {
				if allowed.Equal(ip) {
					next.ServeHTTP(w, r)
					return
				}
			}
			for _, ipNet := range allowedNets {
				if ipNet.Contains(ip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Warn("access denied by IP filter", "ip", clientIP, "path", r.URL.Path)
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

// ClientIP returns the client address of r without the port.
// chi's RealIP middleware has already applied X-Forwarded-For / X-Real-IP.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
