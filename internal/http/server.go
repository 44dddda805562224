package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"eventi/internal/cache"
	"eventi/internal/clock"
	"eventi/internal/core"
	applog "eventi/internal/log"
	"eventi/internal/services"
	appweb "eventi/web"
)

// EventAPI is the slice of the service layer the handlers drive.
type EventAPI interface {
	SelectDate(ctx context.Context, date core.Date) (services.DayView, error)
	AddEvent(ctx context.Context, e core.NewEvent) (int64, error)
	RemoveEvent(ctx context.Context, id int64) (core.Date, error)
	ToggleCompletion(ctx context.Context, id int64, completed bool) (core.Date, core.Money, error)
	EarningsForMonth(ctx context.Context, date core.Date) (core.Money, error)
	MonthEvents(ctx context.Context, year, month int) ([]core.Event, error)
}

type Server struct {
	http.Server
	templates *template.Template
	api       EventAPI
	clk       clock.Clock

	rateLimiter *rateLimiter

	// dayCache holds per-date event lists; icsCache holds serialized month
	// exports. Both are invalidated on every mutation touching their key.
	dayCache *cache.LRUCache[[]core.Event]
	icsCache *cache.LRUCache[string]
	caches   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
// Cache sizing comes from configuration so small deployments can shrink it.
func NewServer(addr string, api EventAPI, clk clock.Clock, cacheMaxSize int, cacheTTL time.Duration) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		api:         api,
		clk:         clk,
		rateLimiter: newRateLimiter(),
		dayCache:    cache.NewLRUCache[[]core.Event](cacheMaxSize, cacheTTL),
		icsCache:    cache.NewLRUCache[string](cacheMaxSize, cacheTTL),
		caches:      cache.NewManager(),
	}

	s.caches.Register(s.dayCache)
	s.caches.Register(s.icsCache)
	s.caches.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/events", s.withSecurityHeaders(s.handleCreateEvent))
	mux.HandleFunc("/events/delete", s.withSecurityHeaders(s.handleDeleteEvent))
	mux.HandleFunc("/events/completed", s.withSecurityHeaders(s.handleToggleCompleted))
	mux.HandleFunc("/export/ics", s.withSecurityHeaders(s.handleExportICS))
	// UI partials
	mux.HandleFunc("/ui/events", s.withSecurityHeaders(s.handleDayEvents))
	mux.HandleFunc("/ui/earnings", s.withSecurityHeaders(s.handleEarnings))

	return s
}

// Shutdown stops the HTTP server and the cache and rate limiter goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.caches != nil {
			s.caches.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting and request
// logging to a handler.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limiting applies to mutations only.
		if (r.Method == http.MethodPost || r.Method == http.MethodDelete) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil || s.api == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not_ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateDay drops cached state for a mutated date: its event list and
// its month's calendar export.
func (s *Server) invalidateDay(date core.Date) {
	s.dayCache.Delete(date.ISO())
	s.icsCache.Delete(monthKey(date.Year(), date.Month()))
}
