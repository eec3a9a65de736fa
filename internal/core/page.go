package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/imgdash/internal/intake"
	"github.com/JonMunkholm/imgdash/internal/preview"
)

// Page is one upload page: a Dropzone controlled by an Orchestrator.
type Page struct {
	policy intake.Policy
	orch   *Orchestrator
	drop   *intake.Dropzone
}

// PageView is everything the upload page renders.
type PageView struct {
	Snapshot
	Dropzone intake.View
}

// NewPage wires a Dropzone to a new Orchestrator. Dropped files are
// classified with policy and processed by p.
func NewPage(id string, previews *preview.Table, policy intake.Policy, p Processor) *Page {
	orch := NewOrchestrator(id, p)
	drop := intake.NewDropzone(previews, orch.SelectFile)
	orch.OnHandleChange(drop.SetValue)

	return &Page{policy: policy, orch: orch, drop: drop}
}

// ID returns the session ID.
func (p *Page) ID() string {
	return p.orch.ID()
}

// Drop classifies files and hands them to the dropzone. It returns the
// rejections, if any.
func (p *Page) Drop(files []*intake.RawFile) []intake.Rejection {
	p.syncDisabled()
	accepted, rejected := p.policy.Classify(files)
	p.drop.OnDrop(accepted, rejected)
	return rejected
}

func (p *Page) DragEnter() {
	p.syncDisabled()
	p.drop.DragEnter()
}

func (p *Page) DragLeave() {
	p.drop.DragLeave()
}

// Submit processes the current file and waits for the outcome.
func (p *Page) Submit(ctx context.Context) error {
	return p.orch.Submit(ctx)
}

// SubmitAsync starts processing and returns once the session is pending.
func (p *Page) SubmitAsync(ctx context.Context) (<-chan error, error) {
	done, err := p.orch.SubmitAsync(ctx)
	if err == nil {
		p.drop.SetDisabled(true)
	}
	return done, err
}

// Remove resets the session and dismisses any rejection message.
func (p *Page) Remove() {
	p.orch.Remove()
	p.drop.ClearRejection()
}

// Snapshot returns the session state.
func (p *Page) Snapshot() Snapshot {
	return p.orch.Snapshot()
}

// Subscribe streams session snapshots; see Orchestrator.Subscribe.
func (p *Page) Subscribe() (<-chan Snapshot, func()) {
	return p.orch.Subscribe()
}

// View renders the combined page state.
func (p *Page) View() PageView {
	p.syncDisabled()
	return PageView{
		Snapshot: p.orch.Snapshot(),
		Dropzone: p.drop.View(),
	}
}

// LastActive returns the time of the last session change.
func (p *Page) LastActive() time.Time {
	return p.orch.LastActive()
}

// Idle reports whether the page can be swept: nothing is in flight.
func (p *Page) Idle() bool {
	return !p.orch.Snapshot().Pending()
}

// Close tears down the orchestrator and the dropzone, releasing any preview.
func (p *Page) Close() {
	p.orch.Close()
	p.drop.Close()
}

// syncDisabled keeps the dropzone disabled exactly while a submission is
// pending.
func (p *Page) syncDisabled() {
	p.drop.SetDisabled(p.orch.Snapshot().Pending())
}
