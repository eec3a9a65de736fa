package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/imgdash/internal/intake"
)

// Result is what a successful processing call produces.
type Result struct {
	// ResultLocator is an opaque address the UI renders as a download link.
	ResultLocator string `json:"result_locator"`
}

// Processor turns one image into a downloadable result. Implementations may
// block for as long as they need; callers never cancel an in-flight call.
type Processor interface {
	Process(ctx context.Context, f *intake.RawFile) (Result, error)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, f *intake.RawFile) (Result, error)

// Process calls fn.
func (fn ProcessorFunc) Process(ctx context.Context, f *intake.RawFile) (Result, error) {
	return fn(ctx, f)
}

const (
	DefaultMockDelay   = 2 * time.Second
	DefaultMockLocator = "/mock/ocr-result.xlsx"
)

// MockProcessor stands in for the OCR backend: it waits Delay and returns
// Locator. It never fails on its own.
type MockProcessor struct {
	Delay   time.Duration
	Locator string
}

// NewMockProcessor returns a mock with the given delay and locator. A
// negative delay or empty locator falls back to the default.
func NewMockProcessor(delay time.Duration, locator string) *MockProcessor {
	if delay < 0 {
		delay = DefaultMockDelay
	}
	if locator == "" {
		locator = DefaultMockLocator
	}
	return &MockProcessor{Delay: delay, Locator: locator}
}

func (m *MockProcessor) Process(ctx context.Context, f *intake.RawFile) (Result, error) {
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}

	slog.Debug("mock processing complete", "file", f.Name, "bytes", f.Size, "locator", m.Locator)
	return Result{ResultLocator: m.Locator}, nil
}

// LimitedProcessor runs Next only while holding a slot from Limiter.
type LimitedProcessor struct {
	Next    Processor
	Limiter *UploadLimiter
}

func (p LimitedProcessor) Process(ctx context.Context, f *intake.RawFile) (Result, error) {
	if err := p.Limiter.Acquire(ctx); err != nil {
		return Result{}, fmt.Errorf("acquire processing slot: %w", err)
	}
	defer p.Limiter.Release()

	return p.Next.Process(ctx, f)
}
