// Package engine drives the tracker -> overlay update pipeline. One
// consumer loop owns all overlay mutation; the timer, the focus-change
// watcher, the hotkey, and the gesture monitor only post messages to it,
// so ticks never overlap and teardown is always observed in full.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/1broseidon/focusveil/internal/geometry"
	"github.com/1broseidon/focusveil/internal/overlay"
	"github.com/1broseidon/focusveil/internal/settings"
	"github.com/1broseidon/focusveil/internal/tracker"
)

// DefaultPollHz is the periodic refresh cadence while active.
const DefaultPollHz = 30

// Engine owns the activation state and the update loop.
type Engine struct {
	tracker  *tracker.Tracker
	overlays *overlay.Manager
	store    *settings.Store
	logger   *slog.Logger
	interval time.Duration

	// Buffered size-1 channels: posting coalesces instead of blocking
	// the producer (hotkey callback, gesture goroutine, X event loop).
	toggleCh chan struct{}
	focusCh  chan struct{}

	active       atomic.Bool
	overlayCount atomic.Int32
}

// New creates an engine. pollHz <= 0 selects the default cadence.
func New(tr *tracker.Tracker, ov *overlay.Manager, store *settings.Store, pollHz int, logger *slog.Logger) *Engine {
	if pollHz <= 0 {
		pollHz = DefaultPollHz
	}
	return &Engine{
		tracker:  tr,
		overlays: ov,
		store:    store,
		logger:   logger,
		interval: time.Second / time.Duration(pollHz),
		toggleCh: make(chan struct{}, 1),
		focusCh:  make(chan struct{}, 1),
	}
}

// Toggle requests an activation flip. Safe from any goroutine; the flip
// happens on the engine loop.
func (e *Engine) Toggle() {
	select {
	case e.toggleCh <- struct{}{}:
	default:
	}
}

// NotifyFocusChange requests an immediate out-of-cadence tick with the
// geometry memo invalidated, so an application switch never waits out a
// poll interval. Safe from any goroutine.
func (e *Engine) NotifyFocusChange() {
	select {
	case e.focusCh <- struct{}{}:
	default:
	}
}

// Active reports whether the veil is currently shown.
func (e *Engine) Active() bool {
	return e.active.Load()
}

// OverlayCount returns the number of live per-display overlays.
func (e *Engine) OverlayCount() int {
	return int(e.overlayCount.Load())
}

// Run executes the consumer loop until ctx is cancelled. Deactivation on
// shutdown is synchronous: every overlay is released before Run returns.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	ticker.Stop() // starts paused; Reset on activation

	defer func() {
		ticker.Stop()
		e.deactivate()
	}()

	e.logger.Info("engine loop started", "interval", e.interval)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine loop stopped")
			return

		case <-e.toggleCh:
			if e.active.Load() {
				e.deactivate()
				ticker.Stop()
			} else {
				if e.activate() {
					ticker.Reset(e.interval)
					e.tick()
				}
			}

		case <-e.focusCh:
			if e.active.Load() {
				e.overlays.Invalidate()
				e.tick()
			}

		case <-ticker.C:
			if e.active.Load() {
				e.tick()
			}
		}
	}
}

func (e *Engine) activate() bool {
	if err := e.overlays.Activate(); err != nil {
		e.logger.Error("activation failed", "error", err)
		return false
	}
	e.active.Store(true)
	e.overlayCount.Store(int32(e.overlays.Count()))
	return true
}

func (e *Engine) deactivate() {
	if !e.active.Load() {
		return
	}
	e.overlays.Deactivate()
	e.active.Store(false)
	e.overlayCount.Store(0)
}

// tick runs one pass of the tracker -> overlay pipeline with a fresh
// settings snapshot.
func (e *Engine) tick() {
	snap := e.store.Snapshot()
	var target geometry.Rect
	if e.tracker != nil {
		target = e.tracker.ComputeTarget(snap.Excluded)
	}
	e.overlays.SetMargin(snap.Margin)
	e.overlays.Tick(target, snap.Visual)
}
