// Package tracker determines, once per tick, which window should stay
// unobscured and where it is in the shared global coordinate space.
package tracker

import (
	"log/slog"

	"github.com/1broseidon/focusveil/internal/geometry"
	"github.com/1broseidon/focusveil/internal/platform"
)

// Tracker resolves the current target frame. Failure is never fatal:
// any backend error collapses to "no target" (the zero Rect), which the
// overlay manager renders as full treatment with no cutout.
type Tracker struct {
	backend platform.Backend
	ownPID  int
	logger  *slog.Logger
}

// New creates a tracker. ownPID is this process's PID; the daemon's own
// windows (settings TUI, dialogs) never become the target.
func New(backend platform.Backend, ownPID int, logger *slog.Logger) *Tracker {
	return &Tracker{backend: backend, ownPID: ownPID, logger: logger}
}

// ComputeTarget returns the focused window's frame in global top-left
// coordinates, or the zero Rect when there is no eligible target:
// no focused window, the window belongs to this process, its application
// identifier is excluded, or any backend query fails.
func (t *Tracker) ComputeTarget(excluded map[string]struct{}) geometry.Rect {
	win, err := t.backend.ActiveWindow()
	if err != nil || win == 0 {
		return geometry.Rect{}
	}

	if pid, err := t.backend.WindowPID(win); err == nil && pid == t.ownPID {
		return geometry.Rect{}
	}

	if len(excluded) > 0 {
		class, err := t.backend.WindowClass(win)
		if err == nil {
			if _, skip := excluded[class]; skip {
				return geometry.Rect{}
			}
		}
	}

	frame, err := t.backend.WindowFrame(win)
	if err != nil || frame.Empty() {
		return geometry.Rect{}
	}

	origin := t.backend.FrameOrigin()
	if origin == geometry.OriginTopLeft {
		return frame
	}

	primaryHeight, err := t.backend.PrimaryHeight()
	if err != nil {
		t.logger.Debug("primary height unavailable", "error", err)
		return geometry.Rect{}
	}
	return geometry.FromNative(frame, origin, primaryHeight)
}
