package overlay

import "github.com/1broseidon/focusveil/internal/geometry"

// MaskKind selects the technique a surface uses to realize its cutout.
type MaskKind int

const (
	// MaskRects cuts the hole with a set of band rectangles, the
	// rectangle-set form of an even-odd filled path.
	MaskRects MaskKind = iota
	// MaskBitmap cuts the hole with a rasterized 1-bit alpha mask.
	MaskBitmap
)

// Mask is the materialized visible (treated) region of one surface, in
// that surface's local coordinate space. Exactly one of Rects or Bitmap
// is populated, per Kind. Both forms must select the identical effective
// region for the same bounds/hole input.
type Mask struct {
	Kind   MaskKind
	Bounds geometry.Rect
	Rects  []geometry.Rect
	Bitmap geometry.Bitmap
}

// BuildMask computes the treated region of a surface: its full local
// bounds minus the optional cutout hole.
func BuildMask(kind MaskKind, bounds geometry.Rect, hole *geometry.Rect) Mask {
	m := Mask{Kind: kind, Bounds: bounds}
	switch kind {
	case MaskRects:
		m.Rects = geometry.CutoutBands(bounds, hole)
	case MaskBitmap:
		m.Bitmap = geometry.RenderMask(bounds, hole)
	}
	return m
}

// Covers reports whether the treatment covers the local pixel (x, y).
// This is the shared semantics both mask kinds must agree on.
func (m Mask) Covers(x, y int) bool {
	switch m.Kind {
	case MaskRects:
		for _, r := range m.Rects {
			if r.Contains(x, y) {
				return true
			}
		}
		return false
	case MaskBitmap:
		return m.Bitmap.Set(x-m.Bounds.X, y-m.Bounds.Y)
	}
	return false
}
