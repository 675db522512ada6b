package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/focusveil/internal/geometry"
	"github.com/1broseidon/focusveil/internal/platform"
)

// Backend exposes the X11 connection through the platform Backend
// interface.
type Backend struct {
	conn *Connection
}

var _ platform.Backend = (*Backend)(nil)

// NewBackend creates a platform backend from an existing X11 connection.
func NewBackend(conn *Connection) *Backend {
	return &Backend{conn: conn}
}

// Displays enumerates active monitors via RandR.
func (b *Backend) Displays() ([]platform.Display, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no active monitors")
	}

	displays := make([]platform.Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, platform.Display{
			ID:   m.ID,
			Name: m.Name,
			Bounds: geometry.Rect{
				X: m.X, Y: m.Y, Width: m.Width, Height: m.Height,
			},
		})
	}
	return displays, nil
}

// ActiveWindow returns the focused top-level window.
func (b *Backend) ActiveWindow() (platform.WindowID, error) {
	win, err := b.conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return platform.WindowID(win), nil
}

// WindowFrame returns a window's frame in root coordinates.
func (b *Backend) WindowFrame(id platform.WindowID) (geometry.Rect, error) {
	x, y, w, h, err := b.conn.GetWindowGeometry(xproto.Window(id))
	if err != nil {
		return geometry.Rect{}, err
	}
	return geometry.Rect{X: x, Y: y, Width: w, Height: h}, nil
}

// WindowClass returns the WM_CLASS class name.
func (b *Backend) WindowClass(id platform.WindowID) (string, error) {
	return b.conn.GetWindowClass(xproto.Window(id))
}

// WindowPID returns the owning process via _NET_WM_PID.
func (b *Backend) WindowPID(id platform.WindowID) (int, error) {
	return b.conn.GetWindowPID(xproto.Window(id))
}

// FrameOrigin reports X11's top-left-origin convention; no vertical
// flip is needed on this backend.
func (b *Backend) FrameOrigin() geometry.Origin {
	return geometry.OriginTopLeft
}

// PrimaryHeight returns the primary monitor's height.
func (b *Backend) PrimaryHeight() (int, error) {
	return b.conn.PrimaryHeight()
}

// PointerPosition returns the global pointer location.
func (b *Backend) PointerPosition() (int, int, error) {
	return b.conn.QueryPointer()
}
