package web

// sessions.go keeps one upload page per browser, keyed by a session cookie.
//
// Pages are swept after SessionConfig.IdleTTL without a request, unless a
// submission is still in flight. Sweeping closes the page, which releases its
// preview.

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/JonMunkholm/imgdash/internal/core"
	"github.com/JonMunkholm/imgdash/internal/intake"
	"github.com/JonMunkholm/imgdash/internal/preview"
	"github.com/google/uuid"
)

// PageStore owns the upload pages of all browser sessions.
type PageStore struct {
	previews  *preview.Table
	policy    intake.Policy
	processor core.Processor
	idleTTL   time.Duration

	mu     sync.Mutex
	pages  map[string]*storedPage
	closed bool
}

type storedPage struct {
	page     *core.Page
	lastSeen time.Time
}

// NewPageStore returns an empty store creating pages with the given
// dependencies.
func NewPageStore(previews *preview.Table, policy intake.Policy, p core.Processor, idleTTL time.Duration) *PageStore {
	return &PageStore{
		previews:  previews,
		policy:    policy,
		processor: p,
		idleTTL:   idleTTL,
		pages:     make(map[string]*storedPage),
	}
}

// Get returns the page for id and marks it as seen.
func (s *PageStore) Get(id string) (*core.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.pages[id]
	if !ok {
		return nil, false
	}
	sp.lastSeen = time.Now()
	return sp.page, true
}

// GetOrCreate returns the page for id, creating a page under a fresh ID when
// id is unknown. created reports whether the caller must hand out the new ID.
func (s *PageStore) GetOrCreate(id string) (page *core.Page, created bool, err error) {
	if page, ok := s.Get(id); ok {
		return page, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false, core.ErrClosed
	}

	newID := uuid.NewString()
	page = core.NewPage(newID, s.previews, s.policy, s.processor)
	s.pages[newID] = &storedPage{page: page, lastSeen: time.Now()}

	slog.Debug("upload session created", "session_id", newID)
	return page, true, nil
}

// Len returns the number of live pages.
func (s *PageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// Sweep closes pages idle since before now-idleTTL and returns how many it
// removed. Pages with a submission in flight are kept.
func (s *PageStore) Sweep(now time.Time) int {
	var expired []*core.Page

	s.mu.Lock()
	for id, sp := range s.pages {
		last := sp.lastSeen
		if t := sp.page.LastActive(); t.After(last) {
			last = t
		}
		if now.Sub(last) < s.idleTTL || !sp.page.Idle() {
			continue
		}
		delete(s.pages, id)
		expired = append(expired, sp.page)
	}
	s.mu.Unlock()

	for _, p := range expired {
		p.Close()
		slog.Debug("upload session expired", "session_id", p.ID())
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (s *PageStore) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 {
				slog.Info("swept idle upload sessions", "count", n, "remaining", s.Len())
			}
		}
	}
}

// CloseAll closes every page and refuses new ones.
func (s *PageStore) CloseAll() {
	s.mu.Lock()
	pages := s.pages
	s.pages = make(map[string]*storedPage)
	s.closed = true
	s.mu.Unlock()

	for _, sp := range pages {
		sp.page.Close()
	}
}

type pageCtxKey struct{}

// withSession resolves the caller's upload page from the session cookie,
// issuing a new cookie when needed, and stores it in the request context.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			id = c.Value
		}

		page, created, err := s.pages.GetOrCreate(id)
		if err != nil {
			respondError(w, r, err, http.StatusServiceUnavailable)
			return
		}
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     s.cfg.Session.CookieName,
				Value:    page.ID(),
				Path:     "/",
				HttpOnly: true,
				Secure:   s.cfg.Security.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), pageCtxKey{}, page)
		ctx = core.ContextWithSessionID(ctx, page.ID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// pageFrom returns the page stored by withSession.
func pageFrom(r *http.Request) *core.Page {
	page, _ := r.Context().Value(pageCtxKey{}).(*core.Page)
	return page
}
