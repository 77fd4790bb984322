package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"moneywise/internal/auth"
	"moneywise/internal/cache"
	"moneywise/internal/core"
	"moneywise/internal/log"
	"moneywise/internal/services"
)

// Options configures the API server.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	CacheSize          int
	CacheTTL           time.Duration
}

// Server is the JSON API server. List and dashboard responses are cached and
// the caches are flushed on every mutation.
type Server struct {
	http.Server
	service     *services.TransactionService
	auth        *auth.Authenticator
	rateLimiter *rateLimiter

	listCache      cache.Cache[core.Page]
	dashboardCache cache.Cache[services.Report]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, service *services.TransactionService, authenticator *auth.Authenticator) *Server {
	mux := http.NewServeMux()

	listCache := cache.NewLRUCache[core.Page](opts.CacheSize, opts.CacheTTL)
	dashboardCache := cache.NewLRUCache[services.Report](opts.CacheSize, opts.CacheTTL)

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: mux,
		},
		service:        service,
		auth:           authenticator,
		rateLimiter:    newRateLimiter(opts.RateLimitPerMinute),
		listCache:      listCache,
		dashboardCache: dashboardCache,
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(listCache)
	s.cacheManager.Register(dashboardCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("/api/logout", s.withSecurityHeaders(s.handleLogout))
	mux.HandleFunc("/api/transactions", s.withSecurityHeaders(s.handleTransactions))
	mux.HandleFunc("/api/transactions/", s.withSecurityHeaders(s.handleTransactionByID))
	mux.HandleFunc("/api/dashboard", s.withSecurityHeaders(s.handleDashboard))
	mux.HandleFunc("/api/categories", s.withSecurityHeaders(s.handleCategories))
	mux.HandleFunc("/api/export", s.withSecurityHeaders(s.handleExport))
	mux.HandleFunc("/api/reset", s.withSecurityHeaders(s.handleReset))

	return s
}

// withSecurityHeaders adds security headers, rate limiting on mutating
// methods, and request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		slog.InfoContext(ctx, "Request started", log.NewFields().
			WithComponent(log.ComponentHTTP).
			WithRequestID(requestID).
			WithClientIP(clientIP).
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
			ToSlice()...)

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", log.NewFields().
				WithComponent(log.ComponentRateLimit).
				WithRequestID(requestID).
				WithClientIP(clientIP).
				WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
				ToSlice()...)
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").
				Header("Retry-After", "60").
				Write(w)
			return
		}

		w.Header().Set("X-Request-ID", requestID)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		level := slog.LevelInfo
		switch {
		case rw.statusCode >= 500:
			level = slog.LevelError
		case rw.statusCode >= 400:
			level = slog.LevelWarn
		}
		slog.Default().Log(ctx, level, "Request completed", log.NewFields().
			WithComponent(log.ComponentHTTP).
			WithRequestID(requestID).
			WithClientIP(clientIP).
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
			WithHTTPResponse(rw.statusCode, time.Since(start).Milliseconds(), rw.statusCode < 400).
			ToSlice()...)
	}
}

// authorized checks the bearer token on mutating operations. It writes the
// 401 itself and reports whether the handler may proceed.
func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	token := bearerToken(r)
	if token == "" {
		UnauthorizedError("missing bearer token").Write(w)
		return false
	}
	if _, err := s.auth.Verify(token); err != nil {
		UnauthorizedError("invalid or expired token").Write(w)
		return false
	}
	return true
}

// invalidateCaches drops every cached derived view. Called after mutations.
func (s *Server) invalidateCaches() {
	s.listCache.Clear()
	s.dashboardCache.Clear()
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
