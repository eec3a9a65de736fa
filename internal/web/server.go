// Package web provides the HTTP server, routes and handlers of the dashboard.
package web

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/JonMunkholm/imgdash/internal/config"
	"github.com/JonMunkholm/imgdash/internal/core"
	"github.com/JonMunkholm/imgdash/internal/intake"
	"github.com/JonMunkholm/imgdash/internal/preview"
	"github.com/JonMunkholm/imgdash/internal/theme"
	webmw "github.com/JonMunkholm/imgdash/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

//go:embed static
var staticFiles embed.FS

// Deps are the long-lived collaborators the server hands to upload pages.
type Deps struct {
	Previews  *preview.Table
	Limiter   *core.UploadLimiter
	Processor core.Processor
}

// Server is the dashboard HTTP server.
type Server struct {
	cfg      *config.Config
	previews *preview.Table
	limiter  *core.UploadLimiter
	pages    *PageStore
	themes   theme.Set

	router     *chi.Mux
	server     *http.Server
	rate       *rateLimiter
	uploadRate *rateLimiter
}

// NewServer wires routes and middleware.
func NewServer(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:      cfg,
		previews: deps.Previews,
		limiter:  deps.Limiter,
		pages: NewPageStore(
			deps.Previews,
			intake.ImagePolicy(cfg.Upload.MaxFileSize),
			deps.Processor,
			cfg.Session.IdleTTL,
		),
		themes: theme.NewSet(cfg.Theme.Default, cfg.Theme.Available),
		router: chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.rate = newRateLimiter(cfg.Rate.RequestsPerMinute, time.Minute)
		s.uploadRate = newRateLimiter(cfg.Rate.UploadLimit, time.Minute)
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	// Closing the pages ends their event streams, which Shutdown waits on.
	s.server.RegisterOnShutdown(s.pages.CloseAll)
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(webmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.rate != nil {
		s.router.Use(s.rate.middleware)
	}
}

func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.router.Get("/healthz", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
		})
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/dashboard/usage-example", s.handleUsageExample)
		r.Post("/theme", s.handleTheme)
		r.Get(preview.PathPrefix+"{previewID}", s.handlePreview)

		r.Get("/api/upload/limiter", s.handleLimiterStatus)
		r.Get("/api/previews/stats", s.handlePreviewStats)

		r.Group(func(r chi.Router) {
			r.Use(s.withSession)

			r.Get("/dashboard/upload", s.handleUploadPage)
			r.Get("/dashboard/upload/status", s.handleUploadStatus)
			r.Get("/api/upload/state", s.handleUploadState)

			r.Group(func(r chi.Router) {
				if s.uploadRate != nil {
					r.Use(s.uploadRate.middleware)
				}
				r.Post("/dashboard/upload/drop", s.handleDrop)
				r.Post("/dashboard/upload/drag", s.handleDrag)
				r.Post("/dashboard/upload/submit", s.handleSubmit)
				r.Post("/dashboard/upload/remove", s.handleRemove)
			})
		})
	})

	// The event stream outlives the request timeout.
	s.router.With(s.withSession).Get("/dashboard/upload/events", s.handleUploadEvents)
}

// Start listens until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RunBackground sweeps idle sessions and stale rate-limit entries until ctx
// is done.
func (s *Server) RunBackground(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.pages.Run(ctx, s.cfg.Session.SweepInterval)
	})
	for _, rl := range []*rateLimiter{s.rate, s.uploadRate} {
		if rl == nil {
			continue
		}
		rl := rl
		g.Go(func() error {
			rl.cleanup(ctx)
			return nil
		})
	}

	return g.Wait()
}

// Shutdown stops accepting requests, closes every upload session and waits
// for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	s.pages.CloseAll()
	return err
}

// Router returns the router for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Pages returns the session store.
func (s *Server) Pages() *PageStore {
	return s.pages
}

const cspPolicy = "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data: blob:; connect-src 'self'; font-src 'self'; form-action 'self'; frame-ancestors 'none'"

func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				h.Set("Content-Security-Policy", cspPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter is a fixed-window request counter per client IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration
	now      func() time.Time
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		now:      time.Now,
	}
}

// cleanup drops visitors idle for two windows until ctx is done.
func (rl *rateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if rl.now().Sub(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// allow consumes one token for ip.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[ip]
	if !ok || now.Sub(v.lastReset) > rl.window {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: now}
		return true
	}
	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := core.IPAddressFromContext(r.Context())
		if ip == "" {
			ip = r.RemoteAddr
			if host, _, err := net.SplitHostPort(ip); err == nil {
				ip = host
			}
		}

		if !rl.allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window/time.Second)))
			respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

var errRateLimited = errors.New("rate limit exceeded")
