package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/focusveil/internal/geometry"
	"github.com/1broseidon/focusveil/internal/overlay"
	"github.com/1broseidon/focusveil/internal/platform"
	"github.com/1broseidon/focusveil/internal/settings"
)

type fakeSurface struct {
	mu    sync.Mutex
	masks int
	ticks int
	shown bool
}

func (s *fakeSurface) Show() error { s.mu.Lock(); defer s.mu.Unlock(); s.shown = true; return nil }
func (s *fakeSurface) Hide()       { s.mu.Lock(); defer s.mu.Unlock(); s.shown = false }
func (s *fakeSurface) Destroy()    {}
func (s *fakeSurface) ApplyVisuals(v overlay.VisualState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks++
}
func (s *fakeSurface) ApplyMask(m overlay.Mask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.masks++
}
func (s *fakeSurface) PreferredMask() overlay.MaskKind { return overlay.MaskRects }

func (s *fakeSurface) snapshot() (masks, ticks int, shown bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.masks, s.ticks, s.shown
}

type fakeFactory struct {
	mu       sync.Mutex
	surfaces []*fakeSurface
}

func (f *fakeFactory) NewSurface(d platform.Display) (overlay.Surface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &fakeSurface{}
	f.surfaces = append(f.surfaces, s)
	return s, nil
}
func (f *fakeFactory) Flush() {}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newTestEngine(t *testing.T) (*Engine, *fakeFactory, context.CancelFunc) {
	t.Helper()

	displays := []platform.Display{
		{ID: 0, Bounds: geometry.Rect{Width: 1920, Height: 1080}},
	}
	factory := &fakeFactory{}
	logger := slog.New(slog.DiscardHandler)

	mgr := overlay.NewManager(
		func() ([]platform.Display, error) { return displays, nil },
		factory, logger,
	)
	store, err := settings.NewStore(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	// High cadence keeps the test fast; nil tracker means "no target".
	e := New(nil, mgr, store, 200, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return e, factory, cancel
}

func TestToggleActivatesAndTicks(t *testing.T) {
	e, factory, _ := newTestEngine(t)

	if e.Active() {
		t.Fatal("engine must start inactive")
	}

	e.Toggle()
	waitFor(t, "activation", e.Active)
	if e.OverlayCount() != 1 {
		t.Fatalf("overlay count = %d, want 1", e.OverlayCount())
	}

	// Periodic ticks refresh visuals while active.
	waitFor(t, "periodic ticks", func() bool {
		factory.mu.Lock()
		defer factory.mu.Unlock()
		if len(factory.surfaces) == 0 {
			return false
		}
		_, ticks, _ := factory.surfaces[0].snapshot()
		return ticks >= 3
	})

	// Stable no-target geometry: the activation mask plus the first tick
	// rebuild, then the memo holds.
	factory.mu.Lock()
	masks, _, _ := factory.surfaces[0].snapshot()
	factory.mu.Unlock()
	if masks > 2 {
		t.Fatalf("geometry rebuilt %d times for an unchanged target", masks)
	}
}

func TestToggleDeactivates(t *testing.T) {
	e, factory, _ := newTestEngine(t)

	e.Toggle()
	waitFor(t, "activation", e.Active)

	e.Toggle()
	waitFor(t, "deactivation", func() bool { return !e.Active() })
	if e.OverlayCount() != 0 {
		t.Fatalf("overlay count = %d after deactivate, want 0", e.OverlayCount())
	}
	factory.mu.Lock()
	_, _, shown := factory.surfaces[0].snapshot()
	factory.mu.Unlock()
	if shown {
		t.Fatal("surface still shown after deactivate")
	}

	// No ticks arrive while inactive.
	factory.mu.Lock()
	_, ticksBefore, _ := factory.surfaces[0].snapshot()
	factory.mu.Unlock()
	time.Sleep(50 * time.Millisecond)
	factory.mu.Lock()
	_, ticksAfter, _ := factory.surfaces[0].snapshot()
	factory.mu.Unlock()
	if ticksAfter != ticksBefore {
		t.Fatalf("ticks continued while inactive: %d -> %d", ticksBefore, ticksAfter)
	}
}

func TestFocusChangeForcesGeometryRebuild(t *testing.T) {
	e, factory, _ := newTestEngine(t)

	e.Toggle()
	waitFor(t, "activation", e.Active)
	waitFor(t, "first tick", func() bool {
		factory.mu.Lock()
		defer factory.mu.Unlock()
		_, ticks, _ := factory.surfaces[0].snapshot()
		return ticks >= 1
	})

	factory.mu.Lock()
	masksBefore, _, _ := factory.surfaces[0].snapshot()
	factory.mu.Unlock()

	// The target is unchanged ("none" both times), but a focus-change
	// notification must still force a geometry rebuild.
	e.NotifyFocusChange()
	waitFor(t, "forced rebuild", func() bool {
		factory.mu.Lock()
		defer factory.mu.Unlock()
		masks, _, _ := factory.surfaces[0].snapshot()
		return masks > masksBefore
	})
}

func TestFocusChangeWhileInactiveIsIgnored(t *testing.T) {
	e, factory, _ := newTestEngine(t)

	e.NotifyFocusChange()
	time.Sleep(30 * time.Millisecond)
	if e.Active() {
		t.Fatal("focus change must not activate the engine")
	}
	factory.mu.Lock()
	created := len(factory.surfaces)
	factory.mu.Unlock()
	if created != 0 {
		t.Fatal("no surfaces should exist while inactive")
	}
}

func TestShutdownReleasesOverlays(t *testing.T) {
	e, factory, cancel := newTestEngine(t)

	e.Toggle()
	waitFor(t, "activation", e.Active)

	cancel()
	waitFor(t, "shutdown deactivation", func() bool { return !e.Active() })
	factory.mu.Lock()
	_, _, shown := factory.surfaces[0].snapshot()
	factory.mu.Unlock()
	if shown {
		t.Fatal("surfaces must be released on shutdown")
	}
}
