package core

// orchestrator.go holds the per-session upload state machine:
//
//	idle -> ready (file selected) -> pending (submitted) -> succeeded | failed
//
// The Orchestrator is the single owner of the selected FileHandle. Every
// change of the handle is pushed to the registered observer (the page wires
// its Dropzone here), which releases the preview of the handle it replaces.
// Success discards the handle; failure keeps it so the user can resubmit.

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/imgdash/internal/intake"
)

// Status is the session status.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Phase is the page state derived from a Snapshot.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseReady     Phase = "ready"
	PhasePending   Phase = "pending"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// Snapshot is a copy of the session state.
type Snapshot struct {
	SessionID     string `json:"session_id"`
	Status        Status `json:"status"`
	HasFile       bool   `json:"has_file"`
	FileName      string `json:"file_name,omitempty"`
	PreviewURI    string `json:"preview_uri,omitempty"`
	ResultLocator string `json:"result_locator,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
	Version       uint64 `json:"version"`
}

// Phase folds the file selection into the status.
func (s Snapshot) Phase() Phase {
	switch s.Status {
	case StatusPending:
		return PhasePending
	case StatusSucceeded:
		return PhaseSucceeded
	case StatusFailed:
		return PhaseFailed
	}
	if s.HasFile {
		return PhaseReady
	}
	return PhaseIdle
}

// Pending reports whether a submission is in flight.
func (s Snapshot) Pending() bool {
	return s.Status == StatusPending
}

const listenerBuffer = 8

// Orchestrator sequences one upload session.
type Orchestrator struct {
	id        string
	processor Processor
	logger    *slog.Logger

	mu         sync.Mutex
	handle     *intake.FileHandle
	status     Status
	result     string
	errMsg     string
	version    uint64
	closed     bool
	lastActive time.Time
	observer   func(*intake.FileHandle)
	listeners  []chan Snapshot
}

// NewOrchestrator creates an idle session that processes with p.
func NewOrchestrator(id string, p Processor) *Orchestrator {
	return &Orchestrator{
		id:         id,
		processor:  p,
		logger:     slog.Default().With("session_id", id),
		status:     StatusIdle,
		lastActive: time.Now(),
	}
}

// ID returns the session ID.
func (o *Orchestrator) ID() string {
	return o.id
}

// OnHandleChange registers fn to receive every new handle value, including
// nil. fn runs under the session lock and must not call back into o. Without
// an observer the orchestrator releases replaced handles itself.
func (o *Orchestrator) OnHandleChange(fn func(*intake.FileHandle)) {
	o.mu.Lock()
	o.observer = fn
	o.mu.Unlock()
}

// SelectFile replaces the current handle with h (nil clears it) and resets
// any previous result or error. It fails with ErrBusy while pending; the
// caller keeps ownership of h in that case.
func (o *Orchestrator) SelectFile(h *intake.FileHandle) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if o.status == StatusPending {
		return ErrBusy
	}

	o.setHandleLocked(h)
	o.status = StatusIdle
	o.result = ""
	o.errMsg = ""
	o.changedLocked()

	if h != nil {
		o.logger.Debug("file selected", "file", h.Name(), "handle_id", h.ID)
	}
	return nil
}

// Submit processes the selected file and blocks until the processor returns.
// It returns ErrBusy without side effects while another submission is in
// flight, and ErrNoFile (recording MsgNoFile) when nothing is selected.
// Processor failures are returned wrapped in ErrProcessing.
func (o *Orchestrator) Submit(ctx context.Context) error {
	f, err := o.begin()
	if err != nil {
		return err
	}
	return o.run(ctx, f)
}

// SubmitAsync performs Submit's checks and the move to pending before
// returning, then processes in the background. The channel receives the
// outcome and is closed.
func (o *Orchestrator) SubmitAsync(ctx context.Context) (<-chan error, error) {
	f, err := o.begin()
	if err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- o.run(ctx, f)
	}()
	return done, nil
}

func (o *Orchestrator) begin() (*intake.RawFile, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, ErrClosed
	}
	if o.status == StatusPending {
		return nil, ErrBusy
	}
	if o.handle == nil || o.handle.File == nil {
		o.status = StatusIdle
		o.result = ""
		o.errMsg = MsgNoFile
		o.changedLocked()
		o.logger.Debug("submit without file")
		return nil, ErrNoFile
	}

	o.status = StatusPending
	o.result = ""
	o.errMsg = ""
	o.changedLocked()
	o.logger.Info("processing started", "file", o.handle.Name(), "bytes", o.handle.File.Size)

	return o.handle.File, nil
}

// run calls the processor outside the lock and settles the session exactly
// once. Cancellation of ctx does not reach the processor.
func (o *Orchestrator) run(ctx context.Context, f *intake.RawFile) error {
	start := time.Now()
	res, err := o.processor.Process(context.WithoutCancel(ctx), f)

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		o.status = StatusFailed
		o.result = ""
		o.errMsg = MsgProcessingFailed
		o.changedLocked()
		o.logger.Error("processing failed",
			"file", f.Name,
			"duration", time.Since(start),
			"error", err,
		)
		return fmt.Errorf("%w: %w", ErrProcessing, err)
	}

	o.status = StatusSucceeded
	o.result = res.ResultLocator
	o.errMsg = ""
	o.setHandleLocked(nil)
	o.changedLocked()
	o.logger.Info("processing succeeded",
		"file", f.Name,
		"locator", res.ResultLocator,
		"duration", time.Since(start),
	)
	return nil
}

// Remove clears the handle, result and error. While pending only the handle
// is cleared; the in-flight call still settles the status.
func (o *Orchestrator) Remove() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}

	o.setHandleLocked(nil)
	if o.status != StatusPending {
		o.status = StatusIdle
		o.result = ""
		o.errMsg = ""
	}
	o.changedLocked()
}

// Snapshot returns the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// LastActive returns the time of the last state change.
func (o *Orchestrator) LastActive() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastActive
}

// Subscribe returns a channel that receives the current snapshot and then one
// per change. Slow receivers miss intermediate snapshots. The channel is
// closed by cancel or Close.
func (o *Orchestrator) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, listenerBuffer)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		close(ch)
		return ch, func() {}
	}

	ch <- o.snapshotLocked()
	o.listeners = append(o.listeners, ch)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			for i, l := range o.listeners {
				if l == ch {
					o.listeners = append(o.listeners[:i], o.listeners[i+1:]...)
					close(ch)
					return
				}
			}
		})
	}
	return ch, cancel
}

// Close tears the session down: the handle is released and subscribers are
// closed. An in-flight call still runs to completion.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.setHandleLocked(nil)
	o.closed = true

	for _, ch := range o.listeners {
		close(ch)
	}
	o.listeners = nil
}

func (o *Orchestrator) setHandleLocked(h *intake.FileHandle) {
	if h == o.handle {
		return
	}
	prev := o.handle
	o.handle = h

	if o.observer != nil {
		o.observer(h)
		return
	}
	if prev != nil {
		prev.Release()
	}
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:     o.id,
		Status:        o.status,
		HasFile:       o.handle != nil,
		FileName:      o.handle.Name(),
		PreviewURI:    o.handle.PreviewURI(),
		ResultLocator: o.result,
		ErrorMessage:  o.errMsg,
		Version:       o.version,
	}
}

// changedLocked bumps the version and fans the new snapshot out to
// subscribers without blocking.
func (o *Orchestrator) changedLocked() {
	o.version++
	o.lastActive = time.Now()

	snap := o.snapshotLocked()
	for _, ch := range o.listeners {
		select {
		case ch <- snap:
		default:
			// Slow listener: replace its oldest snapshot so the latest
			// state always arrives.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
