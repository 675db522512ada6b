package geometry

// Origin identifies the vertical origin convention of a coordinate source.
type Origin int

const (
	// OriginTopLeft means y grows downward from the top edge of the
	// primary display. This is the shared global convention.
	OriginTopLeft Origin = iota
	// OriginBottomLeft means y grows upward from the bottom edge of the
	// primary display (Quartz-style window servers report frames this way).
	OriginBottomLeft
)

// FromNative converts a window frame from a query adapter's native
// coordinate convention into the shared global top-left space used for
// display frames. primaryHeight is the height of the primary display,
// which anchors the vertical flip. The flip must account for the window
// height, not just its origin: a bottom-left y names the window's bottom
// edge, so the top edge lands at primaryHeight - y - height.
func FromNative(native Rect, origin Origin, primaryHeight int) Rect {
	if origin == OriginTopLeft {
		return native
	}
	return Rect{
		X:      native.X,
		Y:      primaryHeight - native.Y - native.Height,
		Width:  native.Width,
		Height: native.Height,
	}
}
