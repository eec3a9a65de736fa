package web

import (
	"context"
	"testing"
	"time"

	"github.com/JonMunkholm/imgdash/internal/core"
	"github.com/JonMunkholm/imgdash/internal/intake"
	"github.com/JonMunkholm/imgdash/internal/preview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(p core.Processor, ttl time.Duration) (*PageStore, *preview.Table) {
	previews := preview.NewTable()
	return NewPageStore(previews, intake.ImagePolicy(10<<20), p, ttl), previews
}

func TestPageStore_GetOrCreate(t *testing.T) {
	store, _ := newTestStore(instant("/r.xlsx"), time.Minute)
	defer store.CloseAll()

	page, created, err := store.GetOrCreate("")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := store.GetOrCreate(page.ID())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, page, again)

	other, created, err := store.GetOrCreate("forged-id")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, "forged-id", other.ID(), "unknown IDs are never adopted")
	assert.Equal(t, 2, store.Len())
}

func TestPageStore_SweepReleasesIdlePages(t *testing.T) {
	store, previews := newTestStore(instant("/r.xlsx"), time.Minute)
	defer store.CloseAll()

	page, _, err := store.GetOrCreate("")
	require.NoError(t, err)
	page.Drop([]*intake.RawFile{{Name: "a.png", Size: int64(len(pngMagic)), ContentType: "image/png", Data: pngMagic}})
	require.Equal(t, 1, previews.Live())

	assert.Zero(t, store.Sweep(time.Now()))
	assert.Equal(t, 1, store.Len())

	assert.Equal(t, 1, store.Sweep(time.Now().Add(2*time.Minute)))
	assert.Zero(t, store.Len())
	assert.Zero(t, previews.Live())
}

func TestPageStore_SweepKeepsPendingPages(t *testing.T) {
	release := make(chan struct{})
	blocking := core.ProcessorFunc(func(ctx context.Context, f *intake.RawFile) (core.Result, error) {
		<-release
		return core.Result{ResultLocator: "/r.xlsx"}, nil
	})
	store, _ := newTestStore(blocking, time.Minute)
	defer store.CloseAll()

	page, _, err := store.GetOrCreate("")
	require.NoError(t, err)
	page.Drop([]*intake.RawFile{{Name: "a.png", Size: int64(len(pngMagic)), ContentType: "image/png", Data: pngMagic}})

	done, err := page.SubmitAsync(context.Background())
	require.NoError(t, err)

	assert.Zero(t, store.Sweep(time.Now().Add(time.Hour)))
	assert.Equal(t, 1, store.Len())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, store.Sweep(time.Now().Add(time.Hour)))
}

func TestPageStore_CloseAllRefusesNewPages(t *testing.T) {
	store, previews := newTestStore(instant("/r.xlsx"), time.Minute)

	page, _, err := store.GetOrCreate("")
	require.NoError(t, err)
	page.Drop([]*intake.RawFile{{Name: "a.png", Size: int64(len(pngMagic)), ContentType: "image/png", Data: pngMagic}})

	store.CloseAll()
	assert.Zero(t, store.Len())
	assert.Zero(t, previews.Live())

	_, _, err = store.GetOrCreate("")
	assert.ErrorIs(t, err, core.ErrClosed)
}

func TestPageStore_RunStopsWithContext(t *testing.T) {
	store, _ := newTestStore(instant("/r.xlsx"), time.Minute)
	defer store.CloseAll()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- store.Run(ctx, 10*time.Millisecond) }()

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
