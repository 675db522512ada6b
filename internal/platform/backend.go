package platform

import "github.com/1broseidon/focusveil/internal/geometry"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Display describes a physical display in the shared global coordinate
// space. The frame set is re-read from the backend each time the overlays
// are (re)created, never cached across an activate/deactivate cycle.
type Display struct {
	ID     int
	Name   string
	Bounds geometry.Rect
}

// Backend abstracts window-system queries across platforms. Every call
// must be fast and non-blocking; a query that would block or fail returns
// an error and the caller treats the result as unavailable.
type Backend interface {
	// Displays enumerates active displays with their global frames.
	Displays() ([]Display, error)
	// ActiveWindow returns the currently focused top-level window.
	ActiveWindow() (WindowID, error)
	// WindowFrame returns the on-screen frame of a window in the
	// backend's native coordinate convention (see FrameOrigin).
	WindowFrame(id WindowID) (geometry.Rect, error)
	// WindowClass returns the application identifier (WM_CLASS class
	// name on X11) owning the window.
	WindowClass(id WindowID) (string, error)
	// WindowPID returns the process ID owning the window, or an error
	// when the window server does not know it.
	WindowPID(id WindowID) (int, error)
	// FrameOrigin reports the vertical origin convention WindowFrame
	// uses. X11 reports top-left; Quartz-style servers report
	// bottom-left and need the flip in geometry.FromNative.
	FrameOrigin() geometry.Origin
	// PrimaryHeight returns the primary display's height, the anchor for
	// bottom-left-origin conversion.
	PrimaryHeight() (int, error)
	// PointerPosition returns the global pointer location.
	PointerPosition() (x, y int, err error)
}
