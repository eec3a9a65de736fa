package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JonMunkholm/imgdash/internal/intake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMockProcessor_ReturnsLocator(t *testing.T) {
	p := NewMockProcessor(0, "")

	res, err := p.Process(context.Background(), pngFile("photo.png"))

	require.NoError(t, err)
	assert.Equal(t, DefaultMockLocator, res.ResultLocator)
}

func TestMockProcessor_Defaults(t *testing.T) {
	p := NewMockProcessor(-1, "")
	assert.Equal(t, DefaultMockDelay, p.Delay)
	assert.Equal(t, DefaultMockLocator, p.Locator)
}

func TestMockProcessor_WaitsDelay(t *testing.T) {
	p := NewMockProcessor(30*time.Millisecond, "/custom.xlsx")

	start := time.Now()
	res, err := p.Process(context.Background(), pngFile("photo.png"))

	require.NoError(t, err)
	assert.Equal(t, "/custom.xlsx", res.ResultLocator)
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestMockProcessor_HonoursContext(t *testing.T) {
	p := NewMockProcessor(time.Minute, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, pngFile("photo.png"))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestLimitedProcessor_HoldsSlot(t *testing.T) {
	limiter := NewUploadLimiter(1, time.Second)
	var during int
	next := ProcessorFunc(func(ctx context.Context, f *intake.RawFile) (Result, error) {
		during = limiter.ActiveCount()
		return Result{ResultLocator: "/r"}, nil
	})

	res, err := LimitedProcessor{Next: next, Limiter: limiter}.Process(context.Background(), pngFile("a.png"))

	require.NoError(t, err)
	assert.Equal(t, "/r", res.ResultLocator)
	assert.Equal(t, 1, during)
	assert.Equal(t, 0, limiter.ActiveCount())
}

func TestLimitedProcessor_SaturatedFailsSubmission(t *testing.T) {
	limiter := NewUploadLimiter(1, 20*time.Millisecond)
	require.True(t, limiter.TryAcquire())
	defer limiter.Release()

	next := &processorMock{}
	page, table := newTestPage(LimitedProcessor{Next: next, Limiter: limiter})
	page.Drop([]*intake.RawFile{pngFile("photo.png")})

	err := page.Submit(context.Background())

	assert.True(t, errors.Is(err, ErrProcessing))
	assert.True(t, errors.Is(err, ErrTooManyUploads))
	snap := page.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, MsgProcessingFailed, snap.ErrorMessage)
	assert.Equal(t, 1, table.Live())
	next.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}
