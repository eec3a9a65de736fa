// Package preview maintains the process-local table of revocable preview
// references handed out for selected files.
//
// A reference is acquired when a file is accepted and must be released when
// the file is discarded, replaced, or its owner is torn down. Released
// references stop resolving immediately, so a stale preview URI returns 404.
package preview

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// PathPrefix is the URL prefix previews are served under.
const PathPrefix = "/previews/"

// ErrNotFound is returned for unknown or already released previews.
var ErrNotFound = errors.New("preview not found")

// Table holds the live preview entries keyed by reference ID.
type Table struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]entry

	acquired atomic.Int64
	released atomic.Int64
}

type entry struct {
	contentType string
	data        []byte
}

// Stats is a snapshot of the table counters.
type Stats struct {
	Acquired int64 `json:"acquired"`
	Released int64 `json:"released"`
	Live     int   `json:"live"`
}

// NewTable creates an empty preview table.
func NewTable() *Table {
	return &Table{entries: make(map[uuid.UUID]entry)}
}

// Acquire registers data under a fresh reference. The table keeps the slice,
// not a copy; callers must not mutate it while the reference is live.
func (t *Table) Acquire(data []byte, contentType string) *Ref {
	id := uuid.New()

	t.mu.Lock()
	t.entries[id] = entry{contentType: contentType, data: data}
	t.mu.Unlock()

	t.acquired.Add(1)
	slog.Debug("preview acquired", "preview_id", id, "content_type", contentType, "bytes", len(data))

	return &Ref{id: id, table: t}
}

// Open returns the content type and bytes of a live preview.
func (t *Table) Open(id uuid.UUID) (string, []byte, error) {
	t.mu.RLock()
	e, ok := t.entries[id]
	t.mu.RUnlock()

	if !ok {
		return "", nil, ErrNotFound
	}
	return e.contentType, e.data, nil
}

// Live returns the number of unreleased references.
func (t *Table) Live() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Stats returns the acquisition counters.
func (t *Table) Stats() Stats {
	return Stats{
		Acquired: t.acquired.Load(),
		Released: t.released.Load(),
		Live:     t.Live(),
	}
}

func (t *Table) revoke(id uuid.UUID) {
	t.mu.Lock()
	delete(t.entries, id)
	t.mu.Unlock()

	t.released.Add(1)
	slog.Debug("preview released", "preview_id", id)
}

// Ref is one acquisition in a Table. Release must be called exactly once.
type Ref struct {
	id    uuid.UUID
	table *Table

	once     sync.Once
	released atomic.Bool
}

// ID returns the reference ID.
func (r *Ref) ID() uuid.UUID {
	return r.id
}

// URI returns the address the preview is served at.
func (r *Ref) URI() string {
	return PathPrefix + r.id.String()
}

// Released reports whether Release has been called.
func (r *Ref) Released() bool {
	return r.released.Load()
}

// Release revokes the reference. Extra calls are ignored but logged, since
// they point at an ownership bug in the caller.
func (r *Ref) Release() {
	if r == nil {
		return
	}

	first := false
	r.once.Do(func() {
		first = true
		r.released.Store(true)
		r.table.revoke(r.id)
	})

	if !first {
		slog.Warn("preview released twice", "preview_id", r.id)
	}
}
