package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/1broseidon/focusveil/internal/geometry"
	"github.com/1broseidon/focusveil/internal/overlay"
	"github.com/1broseidon/focusveil/internal/platform"
)

// blurRegionProp is the compositor hint carrying the region to blur
// behind the window. KWin and several wlroots compositors honor it; the
// blur itself happens entirely in the compositor (this process never
// touches pixels).
const blurRegionProp = "_KDE_NET_WM_BLUR_BEHIND_REGION"

// Surface is one full-screen overlay window on one display. With a
// composited ARGB visual the treatment is a translucent fill whose
// visible region is shaped with band rectangles; without one it falls
// back to a solid window shaped through a 1-bit pixmap mask.
type Surface struct {
	conn    *Connection
	display platform.Display
	win     xproto.Window

	maskKind overlay.MaskKind
	mapped   bool

	lastFill uint32
	haveFill bool
}

// SurfaceFactory creates overlay surfaces on an X11 connection and
// batches their mutations behind one Sync per tick.
type SurfaceFactory struct {
	conn *Connection

	// ARGB rendering resources, resolved once.
	resolved bool
	depth    byte
	visual   xproto.Visualid
	colormap xproto.Colormap
	argb     bool
}

// NewSurfaceFactory creates a factory bound to an X11 connection.
func NewSurfaceFactory(conn *Connection) *SurfaceFactory {
	return &SurfaceFactory{conn: conn}
}

var _ overlay.Factory = (*SurfaceFactory)(nil)

// Flush pushes every buffered surface mutation to the server in one
// batch, so all displays update in visual lock-step.
func (f *SurfaceFactory) Flush() {
	f.conn.Sync()
}

// NewSurface creates a hidden overlay window covering the display.
func (f *SurfaceFactory) NewSurface(d platform.Display) (overlay.Surface, error) {
	if err := f.conn.requireShape(); err != nil {
		return nil, err
	}
	if err := f.resolveVisual(); err != nil {
		return nil, err
	}

	conn := f.conn.XUtil.Conn()
	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}

	// Override-redirect bypasses the window manager entirely: the
	// surface never takes focus and never appears in switcher UI.
	// Value list order follows the bit positions of the mask (low to
	// high): back pixel, border pixel, override-redirect, colormap.
	err = xproto.CreateWindowChecked(
		conn,
		f.depth,
		wid,
		f.conn.Root,
		int16(d.Bounds.X), int16(d.Bounds.Y),
		uint16(d.Bounds.Width), uint16(d.Bounds.Height),
		0,
		xproto.WindowClassInputOutput,
		f.visual,
		xproto.CwBackPixel|xproto.CwBorderPixel|xproto.CwOverrideRedirect|xproto.CwColormap,
		[]uint32{0, 0, 1, uint32(f.colormap)},
	).Check()
	if err != nil {
		return nil, fmt.Errorf("create overlay window: %w", err)
	}

	s := &Surface{
		conn:     f.conn,
		display:  d,
		win:      wid,
		maskKind: overlay.MaskRects,
	}
	if !f.argb {
		s.maskKind = overlay.MaskBitmap
	}

	// Empty input shape: every pointer and keyboard event passes
	// through to whatever is underneath.
	shape.Rectangles(conn, shape.SoSet, shape.SkInput,
		xproto.ClipOrderingUnsorted, wid, 0, 0, nil)

	// Advisory only for override-redirect windows, but some compositors
	// read these for stacking and switcher policy.
	ewmh.WmNameSet(f.conn.XUtil, wid, "focusveil-overlay")
	ewmh.WmStateSet(f.conn.XUtil, wid, []string{
		"_NET_WM_STATE_ABOVE",
		"_NET_WM_STATE_SKIP_TASKBAR",
		"_NET_WM_STATE_SKIP_PAGER",
	})

	return s, nil
}

// resolveVisual finds a 32-bit ARGB visual for translucent rendering,
// falling back to the root visual (solid fill, bitmap-shaped) when the
// screen has none.
func (f *SurfaceFactory) resolveVisual() error {
	if f.resolved {
		return nil
	}

	screen := f.conn.XUtil.Screen()
	conn := f.conn.XUtil.Conn()

	for _, depthInfo := range screen.AllowedDepths {
		if depthInfo.Depth != 32 || len(depthInfo.Visuals) == 0 {
			continue
		}
		cmid, err := xproto.NewColormapId(conn)
		if err != nil {
			return err
		}
		visual := depthInfo.Visuals[0].VisualId
		err = xproto.CreateColormapChecked(
			conn, xproto.ColormapAllocNone, cmid, f.conn.Root, visual,
		).Check()
		if err != nil {
			return fmt.Errorf("create ARGB colormap: %w", err)
		}
		f.depth = 32
		f.visual = visual
		f.colormap = cmid
		f.argb = true
		f.resolved = true
		return nil
	}

	f.depth = screen.RootDepth
	f.visual = screen.RootVisual
	f.colormap = screen.DefaultColormap
	f.argb = false
	f.resolved = true
	return nil
}

var _ overlay.Surface = (*Surface)(nil)

// PreferredMask implements overlay.Surface.
func (s *Surface) PreferredMask() overlay.MaskKind {
	return s.maskKind
}

// Show maps the surface and raises it to the top of the stack.
func (s *Surface) Show() error {
	conn := s.conn.XUtil.Conn()
	if err := xproto.MapWindowChecked(conn, s.win).Check(); err != nil {
		return fmt.Errorf("map overlay window: %w", err)
	}
	xproto.ConfigureWindow(conn, s.win,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove})
	s.mapped = true
	return nil
}

// Hide unmaps the surface.
func (s *Surface) Hide() {
	if !s.mapped {
		return
	}
	xproto.UnmapWindow(s.conn.XUtil.Conn(), s.win)
	s.mapped = false
}

// Destroy releases the window.
func (s *Surface) Destroy() {
	if s.win != 0 {
		xproto.DestroyWindow(s.conn.XUtil.Conn(), s.win)
		s.win = 0
	}
}

// ApplyVisuals repaints the treatment fill. Called every tick; skipped
// at the protocol level when the composed fill did not change.
func (s *Surface) ApplyVisuals(v overlay.VisualState) {
	fill := v.Fill
	if s.maskKind == overlay.MaskBitmap {
		// No alpha channel on the fallback visual; drop to opaque RGB.
		fill &= 0x00ffffff
	}
	if s.haveFill && fill == s.lastFill {
		return
	}

	conn := s.conn.XUtil.Conn()
	xproto.ChangeWindowAttributes(conn, s.win, xproto.CwBackPixel, []uint32{fill})
	xproto.ClearArea(conn, false, s.win, 0, 0, 0, 0)
	s.lastFill = fill
	s.haveFill = true
}

// ApplyMask replaces the surface's treated region: the bounding shape of
// the window plus the compositor blur-behind region.
func (s *Surface) ApplyMask(m overlay.Mask) {
	switch m.Kind {
	case overlay.MaskRects:
		s.applyRects(m.Rects)
	case overlay.MaskBitmap:
		s.applyBitmap(m.Bitmap)
	}
}

// applyRects sets the bounding shape from band rectangles, the
// rectangle-set form of an even-odd path with a hole.
func (s *Surface) applyRects(rects []geometry.Rect) {
	conn := s.conn.XUtil.Conn()

	xrects := make([]xproto.Rectangle, 0, len(rects))
	blurRegion := make([]uint, 0, len(rects)*4)
	for _, r := range rects {
		xrects = append(xrects, xproto.Rectangle{
			X:      int16(r.X),
			Y:      int16(r.Y),
			Width:  uint16(r.Width),
			Height: uint16(r.Height),
		})
		blurRegion = append(blurRegion,
			uint(r.X), uint(r.Y), uint(r.Width), uint(r.Height))
	}

	shape.Rectangles(conn, shape.SoSet, shape.SkBounding,
		xproto.ClipOrderingYXBanded, s.win, 0, 0, xrects)
	xprop.ChangeProp32(s.conn.XUtil, s.win, blurRegionProp, "CARDINAL", blurRegion...)
}

// applyBitmap sets the bounding shape from a 1-bit pixmap mask.
func (s *Surface) applyBitmap(bm geometry.Bitmap) {
	conn := s.conn.XUtil.Conn()

	pid, err := xproto.NewPixmapId(conn)
	if err != nil {
		return
	}
	xproto.CreatePixmap(conn, 1, pid, xproto.Drawable(s.win),
		uint16(bm.Width), uint16(bm.Height))

	gid, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.FreePixmap(conn, pid)
		return
	}
	xproto.CreateGC(conn, gid, xproto.Drawable(pid),
		xproto.GcForeground, []uint32{0})
	xproto.PolyFillRectangle(conn, xproto.Drawable(pid), gid,
		[]xproto.Rectangle{{X: 0, Y: 0, Width: uint16(bm.Width), Height: uint16(bm.Height)}})

	xproto.ChangeGC(conn, gid, xproto.GcForeground, []uint32{1})
	spans := bm.Spans()
	xrects := make([]xproto.Rectangle, 0, len(spans))
	for _, r := range spans {
		xrects = append(xrects, xproto.Rectangle{
			X:      int16(r.X),
			Y:      int16(r.Y),
			Width:  uint16(r.Width),
			Height: uint16(r.Height),
		})
	}
	xproto.PolyFillRectangle(conn, xproto.Drawable(pid), gid, xrects)

	shape.Mask(conn, shape.SoSet, shape.SkBounding, s.win, 0, 0, pid)

	xproto.FreeGC(conn, gid)
	xproto.FreePixmap(conn, pid)
}
