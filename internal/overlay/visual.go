package overlay

import "github.com/1broseidon/focusveil/internal/settings"

// VisualState is the fully composed per-surface appearance for one
// tick: a single premultiplied ARGB fill. Composition happens once per
// tick, not per display.
type VisualState struct {
	// Fill is the premultiplied ARGB color painted over the treated
	// region. It already folds together the frost, desaturation, and
	// tint layers.
	Fill uint32
}

// Frost layer constants: the base dimming wash under the blur. Alpha
// scales with intensity; the compositor contributes the actual blur.
const (
	frostMaxAlpha = 0.45
	grayAlpha     = 0.35
)

// ComposeVisual folds the visual config into one paintable state.
// Layer order matches the rendering stack: frost (intensity), then
// desaturation, then tint, composited with the standard over operator.
func ComposeVisual(v settings.VisualConfig) VisualState {
	// Frost: neutral dark wash.
	a, r, g, b := v.Intensity*frostMaxAlpha, 0.0, 0.0, 0.0

	if v.Grayscale {
		a, r, g, b = over(a, r, g, b, grayAlpha, 0.5, 0.5, 0.5)
	}
	if v.TintEnabled {
		a, r, g, b = over(a, r, g, b, v.TintOpacity, v.TintR, v.TintG, v.TintB)
	}

	return VisualState{Fill: premultiply(a, r, g, b)}
}

// over composites layer (la, lr, lg, lb) over base (ba, br, bg, bb),
// all straight-alpha, returning straight-alpha.
func over(ba, br, bg, bb, la, lr, lg, lb float64) (a, r, g, b float64) {
	a = la + ba*(1-la)
	if a <= 0 {
		return 0, 0, 0, 0
	}
	r = (lr*la + br*ba*(1-la)) / a
	g = (lg*la + bg*ba*(1-la)) / a
	b = (lb*la + bb*ba*(1-la)) / a
	return a, r, g, b
}

// premultiply packs straight-alpha floats into premultiplied ARGB32, the
// pixel format composited ARGB visuals expect.
func premultiply(a, r, g, b float64) uint32 {
	ab := channel(a)
	return uint32(ab)<<24 |
		uint32(channel(r*a))<<16 |
		uint32(channel(g*a))<<8 |
		uint32(channel(b*a))
}

func channel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
