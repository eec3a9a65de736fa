package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JonMunkholm/imgdash/internal/intake"
	"github.com/JonMunkholm/imgdash/internal/preview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func pngFile(name string) *intake.RawFile {
	return &intake.RawFile{Name: name, Size: int64(len(pngMagic)), ContentType: "image/png", Data: pngMagic}
}

type processorMock struct {
	mock.Mock
}

func (m *processorMock) Process(ctx context.Context, f *intake.RawFile) (Result, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(Result), args.Error(1)
}

// gatedProcessor blocks every call until release is closed.
type gatedProcessor struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	result  Result
	err     error
}

func newGatedProcessor() *gatedProcessor {
	return &gatedProcessor{
		started: make(chan struct{}, 4),
		release: make(chan struct{}),
		result:  Result{ResultLocator: DefaultMockLocator},
	}
}

func (g *gatedProcessor) Process(ctx context.Context, f *intake.RawFile) (Result, error) {
	g.calls.Add(1)
	g.started <- struct{}{}
	<-g.release
	return g.result, g.err
}

func newTestPage(p Processor) (*Page, *preview.Table) {
	table := preview.NewTable()
	return NewPage("test-session", table, intake.ImagePolicy(10<<20), p), table
}

func named(name string) any {
	return mock.MatchedBy(func(f *intake.RawFile) bool { return f.Name == name })
}

func TestPage_SubmitSucceeds(t *testing.T) {
	pm := &processorMock{}
	pm.On("Process", mock.Anything, named("photo.png")).
		Return(Result{ResultLocator: "/mock/ocr-result.xlsx"}, nil).Once()

	page, table := newTestPage(pm)
	page.Drop([]*intake.RawFile{pngFile("photo.png")})
	require.Equal(t, PhaseReady, page.View().Phase())

	require.NoError(t, page.Submit(context.Background()))

	snap := page.Snapshot()
	assert.Equal(t, StatusSucceeded, snap.Status)
	assert.Equal(t, "/mock/ocr-result.xlsx", snap.ResultLocator)
	assert.Empty(t, snap.ErrorMessage)
	assert.False(t, snap.HasFile)
	assert.Equal(t, 0, table.Live())
	assert.Equal(t, intake.StateIdle, page.View().Dropzone.State)
	pm.AssertExpectations(t)
}

func TestPage_RejectedDropLeavesNoHandle(t *testing.T) {
	pm := &processorMock{}
	page, table := newTestPage(pm)

	rejected := page.Drop([]*intake.RawFile{{Name: "document.pdf", Size: 10, ContentType: "application/pdf"}})

	require.Len(t, rejected, 1)
	v := page.View()
	assert.False(t, v.HasFile)
	assert.Equal(t, intake.StateRejected, v.Dropzone.State)
	assert.Contains(t, v.Dropzone.Detail, "não suportado")
	assert.Equal(t, 0, table.Live())
}

func TestPage_SubmitWithoutFile(t *testing.T) {
	pm := &processorMock{}
	page, _ := newTestPage(pm)

	err := page.Submit(context.Background())

	assert.ErrorIs(t, err, ErrNoFile)
	snap := page.Snapshot()
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Equal(t, MsgNoFile, snap.ErrorMessage)
	assert.Empty(t, snap.ResultLocator)
	pm.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestPage_SubmitAfterSuccessWithoutFile(t *testing.T) {
	pm := &processorMock{}
	pm.On("Process", mock.Anything, mock.Anything).Return(Result{ResultLocator: "/r"}, nil).Once()
	page, _ := newTestPage(pm)
	page.Drop([]*intake.RawFile{pngFile("photo.png")})
	require.NoError(t, page.Submit(context.Background()))

	err := page.Submit(context.Background())

	assert.ErrorIs(t, err, ErrNoFile)
	snap := page.Snapshot()
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Empty(t, snap.ResultLocator, "validation error clears the previous result")
	assert.Equal(t, MsgNoFile, snap.ErrorMessage)
	pm.AssertNumberOfCalls(t, "Process", 1)
}

func TestPage_FailureKeepsHandleThenRemove(t *testing.T) {
	cause := errors.New("ocr backend unavailable")
	pm := &processorMock{}
	pm.On("Process", mock.Anything, named("photo.png")).Return(Result{}, cause).Once()

	page, table := newTestPage(pm)
	page.Drop([]*intake.RawFile{pngFile("photo.png")})
	before := page.Snapshot()

	err := page.Submit(context.Background())

	assert.ErrorIs(t, err, ErrProcessing)
	assert.ErrorIs(t, err, cause)

	snap := page.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, MsgProcessingFailed, snap.ErrorMessage)
	assert.NotContains(t, snap.ErrorMessage, cause.Error())
	assert.Empty(t, snap.ResultLocator)
	assert.True(t, snap.HasFile)
	assert.Equal(t, before.FileName, snap.FileName)
	assert.Equal(t, before.PreviewURI, snap.PreviewURI)
	assert.Equal(t, 1, table.Live())

	page.Remove()

	snap = page.Snapshot()
	assert.Equal(t, StatusIdle, snap.Status)
	assert.False(t, snap.HasFile)
	assert.Empty(t, snap.ErrorMessage)
	assert.Equal(t, PhaseIdle, snap.Phase())
	assert.Equal(t, 0, table.Live())
}

func TestPage_ResubmitAfterFailure(t *testing.T) {
	pm := &processorMock{}
	pm.On("Process", mock.Anything, mock.Anything).Return(Result{}, errors.New("boom")).Once()
	pm.On("Process", mock.Anything, mock.Anything).Return(Result{ResultLocator: "/r"}, nil).Once()

	page, _ := newTestPage(pm)
	page.Drop([]*intake.RawFile{pngFile("photo.png")})
	require.Error(t, page.Submit(context.Background()))

	require.NoError(t, page.Submit(context.Background()))

	assert.Equal(t, StatusSucceeded, page.Snapshot().Status)
	pm.AssertExpectations(t)
}

func TestPage_SecondSubmitWhilePendingIsNoop(t *testing.T) {
	gp := newGatedProcessor()
	page, table := newTestPage(gp)
	page.Drop([]*intake.RawFile{pngFile("photo.png")})

	done, err := page.SubmitAsync(context.Background())
	require.NoError(t, err)
	<-gp.started

	assert.Equal(t, PhasePending, page.View().Phase())
	assert.ErrorIs(t, page.Submit(context.Background()), ErrBusy)
	_, err = page.SubmitAsync(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	// The dropzone is disabled while pending.
	page.Drop([]*intake.RawFile{pngFile("other.png")})
	assert.Equal(t, "photo.png", page.Snapshot().FileName)
	assert.True(t, page.View().Dropzone.Disabled)
	assert.Equal(t, 1, table.Live())

	close(gp.release)
	require.NoError(t, <-done)

	assert.Equal(t, int32(1), gp.calls.Load())
	assert.Equal(t, StatusSucceeded, page.Snapshot().Status)
	assert.False(t, page.View().Dropzone.Disabled)
}

func TestPage_RemoveWhilePending(t *testing.T) {
	gp := newGatedProcessor()
	page, table := newTestPage(gp)
	page.Drop([]*intake.RawFile{pngFile("photo.png")})

	done, err := page.SubmitAsync(context.Background())
	require.NoError(t, err)
	<-gp.started

	page.Remove()

	snap := page.Snapshot()
	assert.Equal(t, StatusPending, snap.Status)
	assert.False(t, snap.HasFile)
	assert.Equal(t, 0, table.Live())

	close(gp.release)
	require.NoError(t, <-done)

	snap = page.Snapshot()
	assert.Equal(t, StatusSucceeded, snap.Status)
	assert.Equal(t, DefaultMockLocator, snap.ResultLocator)
	assert.Equal(t, int64(1), table.Stats().Released)
}

func TestPage_CancelledRequestStillCompletes(t *testing.T) {
	var sawCancel atomic.Bool
	p := ProcessorFunc(func(ctx context.Context, f *intake.RawFile) (Result, error) {
		sawCancel.Store(ctx.Err() != nil)
		return Result{ResultLocator: "/done"}, nil
	})
	page, _ := newTestPage(p)
	page.Drop([]*intake.RawFile{pngFile("photo.png")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, page.Submit(ctx))
	assert.False(t, sawCancel.Load())
	assert.Equal(t, StatusSucceeded, page.Snapshot().Status)
}

func TestPage_AtMostOneHandle(t *testing.T) {
	page, table := newTestPage(&processorMock{})
	const drops = 6

	for i := 0; i < drops; i++ {
		page.Drop([]*intake.RawFile{pngFile("photo.png")})
		require.Equal(t, 1, table.Live())
	}

	stats := table.Stats()
	assert.Equal(t, int64(drops), stats.Acquired)
	assert.Equal(t, int64(drops-1), stats.Released)

	page.Close()
	assert.Equal(t, int64(drops), table.Stats().Released)
	assert.Equal(t, 0, table.Live())
}

func TestPage_RejectionClearsAnyPriorState(t *testing.T) {
	pm := &processorMock{}
	pm.On("Process", mock.Anything, mock.Anything).Return(Result{}, errors.New("boom")).Once()
	page, table := newTestPage(pm)

	page.Drop([]*intake.RawFile{pngFile("photo.png")})
	require.Error(t, page.Submit(context.Background()))
	require.True(t, page.Snapshot().HasFile)

	page.Drop([]*intake.RawFile{pngFile("a.png"), pngFile("b.png")})

	v := page.View()
	assert.False(t, v.HasFile)
	assert.Equal(t, StatusIdle, v.Status)
	assert.Empty(t, v.ErrorMessage)
	assert.Equal(t, intake.StateRejected, v.Dropzone.State)
	assert.NotEmpty(t, v.Dropzone.Detail)
	assert.Equal(t, 0, table.Live())
}

func TestPage_RemoveClearsRejection(t *testing.T) {
	page, _ := newTestPage(&processorMock{})
	page.Drop([]*intake.RawFile{{Name: "document.pdf", ContentType: "application/pdf"}})
	require.Equal(t, intake.StateRejected, page.View().Dropzone.State)

	page.Remove()

	assert.Equal(t, intake.StateIdle, page.View().Dropzone.State)
}

func TestOrchestrator_SelectFileClearsStaleState(t *testing.T) {
	pm := &processorMock{}
	pm.On("Process", mock.Anything, mock.Anything).Return(Result{}, errors.New("boom")).Once()
	table := preview.NewTable()
	o := NewOrchestrator("s", pm)

	require.NoError(t, o.SelectFile(intake.NewHandle(table, pngFile("a.png"))))
	require.Error(t, o.Submit(context.Background()))

	require.NoError(t, o.SelectFile(intake.NewHandle(table, pngFile("b.png"))))

	snap := o.Snapshot()
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Empty(t, snap.ErrorMessage)
	assert.Equal(t, "b.png", snap.FileName)
	assert.Equal(t, PhaseReady, snap.Phase())
	// Without an observer the orchestrator releases replaced handles itself.
	assert.Equal(t, 1, table.Live())

	o.Close()
	assert.Equal(t, 0, table.Live())
}

func TestOrchestrator_ClosedRejectsCalls(t *testing.T) {
	o := NewOrchestrator("s", &processorMock{})
	o.Close()
	o.Close()

	assert.ErrorIs(t, o.SelectFile(nil), ErrClosed)
	assert.ErrorIs(t, o.Submit(context.Background()), ErrClosed)
	o.Remove()

	ch, cancel := o.Subscribe()
	defer cancel()
	_, ok := <-ch
	assert.False(t, ok)
}

func TestOrchestrator_Subscribe(t *testing.T) {
	table := preview.NewTable()
	o := NewOrchestrator("s", &processorMock{})
	ch, cancel := o.Subscribe()
	defer cancel()

	first := <-ch
	assert.Equal(t, StatusIdle, first.Status)

	require.NoError(t, o.SelectFile(intake.NewHandle(table, pngFile("photo.png"))))

	select {
	case snap := <-ch:
		assert.Equal(t, "photo.png", snap.FileName)
		assert.Greater(t, snap.Version, first.Version)
	case <-time.After(time.Second):
		t.Fatal("no snapshot after SelectFile")
	}

	o.Close()
	_, ok := <-ch
	assert.False(t, ok, "Close closes subscriber channels")
}

func TestOrchestrator_UnsubscribeClosesChannel(t *testing.T) {
	o := NewOrchestrator("s", &processorMock{})
	ch, cancel := o.Subscribe()
	<-ch

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	o.Close()
}

func TestSnapshot_Phase(t *testing.T) {
	tests := []struct {
		snap Snapshot
		want Phase
	}{
		{Snapshot{Status: StatusIdle}, PhaseIdle},
		{Snapshot{Status: StatusIdle, HasFile: true}, PhaseReady},
		{Snapshot{Status: StatusPending, HasFile: true}, PhasePending},
		{Snapshot{Status: StatusSucceeded}, PhaseSucceeded},
		{Snapshot{Status: StatusFailed, HasFile: true}, PhaseFailed},
	}
	for _, tt := range tests {
		if got := tt.snap.Phase(); got != tt.want {
			t.Errorf("Phase(%+v) = %q, want %q", tt.snap, got, tt.want)
		}
	}
}
