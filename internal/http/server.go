// Package http exposes the debt tracker as a small JSON API. Screens,
// forms, and navigation live in the mobile client; this is the seam it
// talks to.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"deudas/internal/attachments"
	"deudas/internal/cache"
	"deudas/internal/middleware/ratelimit"
	"deudas/internal/middleware/trace"
	"deudas/internal/services"
)

type Server struct {
	http.Server

	svc      *services.DebtService
	receipts *attachments.Store
	limiter  *ratelimit.Limiter

	// Month views are memoized per year-month and dropped on any write so
	// reconciliation state is never stale.
	monthCache *cache.LRUCache[[]services.DebtMonthView]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// Options tunes the HTTP surface; zero values fall back to defaults.
type Options struct {
	RequestsPerMinute int
	MonthCacheTTL     time.Duration
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *services.DebtService, receipts *attachments.Store, opts Options) *Server {
	if opts.MonthCacheTTL <= 0 {
		opts.MonthCacheTTL = 30 * time.Second
	}

	mux := http.NewServeMux()
	tracer := trace.NewMiddleware(extractClientIP)

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: tracer.Middleware(mux),
		},
		svc:      svc,
		receipts: receipts,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RequestsPerMinute,
		}),
		monthCache:       cache.NewLRUCache[[]services.DebtMonthView](24, opts.MonthCacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/deudas", s.withGuards(s.handleDebts))
	mux.HandleFunc("/api/deudas/", s.withGuards(s.handleDebtActions))
	mux.HandleFunc("/api/comprobantes/", s.withGuards(s.handleReceipt))

	return s
}

// withGuards applies rate limiting to writes and the standard response
// headers to everything.
func (s *Server) withGuards(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && !s.limiter.Allow(extractClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next(w, r)
	}
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.monthCache.CleanExpired()
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
