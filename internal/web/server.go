// Package web provides the HTTP server and handlers for the spreadsheet editor.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/JonMunkholm/SheetEdit/internal/audit"
	"github.com/JonMunkholm/SheetEdit/internal/codec"
	"github.com/JonMunkholm/SheetEdit/internal/config"
	"github.com/JonMunkholm/SheetEdit/internal/core"
	mw "github.com/JonMunkholm/SheetEdit/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// AuditReader lists recorded audit entries. *audit.PostgresSink implements it.
type AuditReader interface {
	Query(ctx context.Context, opts audit.QueryOptions) ([]core.AuditEntry, error)
}

// Options wires a Server to its dependencies.
type Options struct {
	Config  *config.Config
	Service *core.Service
	Encoder codec.Encoder
	// Accept lists the upload extensions offered by the file picker.
	Accept []string
	// History is optional; without it the audit endpoint reports 501.
	History AuditReader
}

// Server is the HTTP server for the editor.
type Server struct {
	cfg     *config.Config
	service *core.Service
	encoder codec.Encoder
	accept  []string
	history AuditReader

	router   *chi.Mux
	server   *http.Server
	limiters []*rateLimiter
	upload   *rateLimiter
}

// NewServer creates a new Server instance.
func NewServer(opts Options) *Server {
	s := &Server{
		cfg:     opts.Config,
		service: opts.Service,
		encoder: opts.Encoder,
		accept:  opts.Accept,
		history: opts.History,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		general := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.upload = newRateLimiter(s.cfg.Rate.UploadLimit, time.Minute)
		s.limiters = append(s.limiters, general, s.upload)
		s.router.Use(general.middleware)
	}
}

// setupRoutes configures all HTTP routes. The workbook routes are served
// twice: as HTML pages with form posts, and under /api as JSON.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/", s.handleHome)
	s.router.Route("/workbooks", s.workbookRoutes)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))
		r.Route("/workbooks", s.workbookRoutes)
	})
}

func (s *Server) workbookRoutes(r chi.Router) {
	r.With(s.uploadLimit).Post("/", s.handleUpload)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(s.loadSession)

		r.Get("/", s.handleView)
		r.Delete("/", s.handleClose)
		r.Post("/close", s.handleClose)

		r.Post("/sheet", s.handleSelectSheet)
		r.Post("/cells", s.handleEditCell)
		r.Post("/rows", s.handleAddRow)
		r.Post("/filters", s.handleApplyFilters)
		r.Post("/filters/clear", s.handleClearFilters)
		r.Post("/expression", s.handleApplyExpression)

		r.Get("/export/{format}", s.handleExport)
		r.Get("/original", s.handleOriginal)
		r.Get("/audit", s.handleAuditHistory)
	})
}

// uploadLimit applies the stricter upload rate when rate limiting is on.
func (s *Server) uploadLimit(next http.Handler) http.Handler {
	if s.upload == nil {
		return next
	}
	return s.upload.middleware(next)
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its rate limiter cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, rl := range s.limiters {
		rl.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

const contentSecurityPolicy = "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; form-action 'self'; frame-ancestors 'none'"

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				w.Header().Set("Content-Security-Policy", contentSecurityPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter implements a fixed-window rate limiter per client IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
	done     chan struct{}
	once     sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every window until stopped.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1,
			lastReset: time.Now(),
		}
		return true
	}

	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by client IP.
// TrustedRealIP has already rewritten RemoteAddr for proxied requests.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded", "RATE001")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeError writes a JSON error response for failures that happen before
// a handler runs.
func writeError(w http.ResponseWriter, status int, message, code string) {
	slog.Warn("http error", "status", status, "message", message, "code", code)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Message: message, Code: code})
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
