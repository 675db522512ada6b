package geometry

// CutoutBands decomposes "bounds minus hole" into at most four disjoint
// rectangles: the bands above, below, left of, and right of the hole.
// This is the rectangle-set equivalent of an even-odd filled region
// (full-surface rectangle minus the cutout rectangle).
//
// The hole is clipped to bounds first. A nil or non-intersecting hole
// yields a single rectangle covering all of bounds.
func CutoutBands(bounds Rect, hole *Rect) []Rect {
	if bounds.Empty() {
		return nil
	}
	if hole == nil {
		return []Rect{bounds}
	}

	h := bounds.Intersect(*hole)
	if h.Empty() {
		return []Rect{bounds}
	}

	bands := make([]Rect, 0, 4)

	// Top band: full width of bounds, above the hole.
	if h.Y > bounds.Y {
		bands = append(bands, Rect{
			X: bounds.X, Y: bounds.Y,
			Width: bounds.Width, Height: h.Y - bounds.Y,
		})
	}
	// Bottom band: full width of bounds, below the hole.
	if h.Y+h.Height < bounds.Y+bounds.Height {
		bands = append(bands, Rect{
			X: bounds.X, Y: h.Y + h.Height,
			Width: bounds.Width, Height: bounds.Y + bounds.Height - (h.Y + h.Height),
		})
	}
	// Left band: within the hole's vertical span.
	if h.X > bounds.X {
		bands = append(bands, Rect{
			X: bounds.X, Y: h.Y,
			Width: h.X - bounds.X, Height: h.Height,
		})
	}
	// Right band: within the hole's vertical span.
	if h.X+h.Width < bounds.X+bounds.Width {
		bands = append(bands, Rect{
			X: h.X + h.Width, Y: h.Y,
			Width: bounds.X + bounds.Width - (h.X + h.Width), Height: h.Height,
		})
	}

	return bands
}

// Bitmap is a 1-bit mask over a surface's local coordinate space.
// Set pixels mark the region covered by the visual treatment.
type Bitmap struct {
	Width  int
	Height int
	Bits   []bool
}

// RenderMask rasterizes "bounds minus hole" into a bitmap of the bounds'
// size, in the bounds' local coordinate space. It must select the exact
// same effective region as CutoutBands for the same input.
func RenderMask(bounds Rect, hole *Rect) Bitmap {
	if bounds.Empty() {
		return Bitmap{}
	}

	bm := Bitmap{
		Width:  bounds.Width,
		Height: bounds.Height,
		Bits:   make([]bool, bounds.Width*bounds.Height),
	}
	for i := range bm.Bits {
		bm.Bits[i] = true
	}

	if hole == nil {
		return bm
	}
	h := bounds.Intersect(*hole)
	if h.Empty() {
		return bm
	}

	for y := h.Y - bounds.Y; y < h.Y+h.Height-bounds.Y; y++ {
		row := y * bm.Width
		for x := h.X - bounds.X; x < h.X+h.Width-bounds.X; x++ {
			bm.Bits[row+x] = false
		}
	}
	return bm
}

// Set reports whether the pixel at (x, y) is part of the mask.
// Coordinates are local to the bitmap; out-of-range points are unset.
func (b Bitmap) Set(x, y int) bool {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return false
	}
	return b.Bits[y*b.Width+x]
}

// Spans converts the bitmap into horizontal span rectangles in local
// coordinates, one per maximal run of set pixels. Useful for painting
// the mask onto a 1-bit drawable without per-pixel requests.
func (b Bitmap) Spans() []Rect {
	var spans []Rect
	for y := 0; y < b.Height; y++ {
		row := y * b.Width
		start := -1
		for x := 0; x <= b.Width; x++ {
			set := x < b.Width && b.Bits[row+x]
			if set && start < 0 {
				start = x
			}
			if !set && start >= 0 {
				spans = append(spans, Rect{X: start, Y: y, Width: x - start, Height: 1})
				start = -1
			}
		}
	}
	return spans
}
