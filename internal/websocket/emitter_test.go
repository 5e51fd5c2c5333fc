package websocket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luciancaetano/aminokit"
)

// TestEmitterOrder tests that handlers run in registration order
func TestEmitterOrder(t *testing.T) {
	t.Parallel()

	e := NewEmitter(nil, false)

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		e.On("k", func(context.Context, *aminokit.Event) { got = append(got, i) })
	}

	e.Emit(context.Background(), &aminokit.Event{Key: "k"})
	require.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

// TestEmitterPanicIsolation tests that a panicking handler does not prevent later handlers
func TestEmitterPanicIsolation(t *testing.T) {
	t.Parallel()

	e := NewEmitter(nil, false)

	var called []string
	e.On("k", func(context.Context, *aminokit.Event) { called = append(called, "first") })
	e.On("k", func(context.Context, *aminokit.Event) { panic("handler bug") })
	e.On("k", func(context.Context, *aminokit.Event) { called = append(called, "third") })

	require.NotPanics(t, func() {
		e.Emit(context.Background(), &aminokit.Event{Key: "k"})
	})
	require.Equal(t, []string{"first", "third"}, called)
}

func TestEmitterKeysAreIsolated(t *testing.T) {
	t.Parallel()

	e := NewEmitter(nil, false)

	var calls int
	e.On("a", func(context.Context, *aminokit.Event) { calls++ })

	e.Emit(context.Background(), &aminokit.Event{Key: "b"})
	require.Zero(t, calls)
	require.True(t, e.Has("a"))
	require.False(t, e.Has("b"))
}

func TestEmitterOff(t *testing.T) {
	t.Parallel()

	e := NewEmitter(nil, false)

	var got []string
	first := e.On("k", func(context.Context, *aminokit.Event) { got = append(got, "first") })
	e.On("k", func(context.Context, *aminokit.Event) { got = append(got, "second") })

	require.True(t, e.Off("k", first))
	require.False(t, e.Off("k", first))
	require.False(t, e.Off("missing", first))

	e.Emit(context.Background(), &aminokit.Event{Key: "k"})
	require.Equal(t, []string{"second"}, got)
}

func TestEmitterAsync(t *testing.T) {
	t.Parallel()

	e := NewEmitter(nil, true)

	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(3)

	var mu sync.Mutex
	var got []int
	e.On("k", func(_ context.Context, ev *aminokit.Event) {
		<-release
		mu.Lock()
		got = append(got, ev.FrameType)
		mu.Unlock()
		wg.Done()
	})

	// Emit returns even though every handler is blocked.
	done := make(chan struct{})
	go func() {
		for i := 1; i <= 3; i++ {
			e.Emit(context.Background(), &aminokit.Event{Key: "k", FrameType: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async Emit blocked on handler")
	}

	close(release)
	wg.Wait()
	require.ElementsMatch(t, []int{1, 2, 3}, got)
}

func TestEmitterConcurrentRegistration(t *testing.T) {
	t.Parallel()

	e := NewEmitter(nil, false)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			e.On("k", func(context.Context, *aminokit.Event) {})
		}()
		go func() {
			defer wg.Done()
			e.Emit(context.Background(), &aminokit.Event{Key: "k"})
		}()
	}
	wg.Wait()

	e.mu.RLock()
	defer e.mu.RUnlock()
	require.Len(t, e.handlers["k"], 50)
}
