package overlay

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/focusveil/internal/geometry"
	"github.com/1broseidon/focusveil/internal/platform"
	"github.com/1broseidon/focusveil/internal/settings"
)

// Surface is one full-display, click-through overlay window. Mutations
// are buffered; nothing reaches the screen until the factory's Flush.
type Surface interface {
	// Show maps the surface without taking keyboard or mouse focus and
	// without appearing in window-switching UI.
	Show() error
	// Hide unmaps the surface.
	Hide()
	// Destroy releases every window-system resource the surface owns.
	Destroy()
	// ApplyVisuals updates the treatment appearance. Cheap; called every
	// tick regardless of geometry changes.
	ApplyVisuals(v VisualState)
	// ApplyMask replaces the treated region. Called only when the target
	// geometry actually changed.
	ApplyMask(m Mask)
	// PreferredMask reports which cutout technique this surface's layer
	// stack requires.
	PreferredMask() MaskKind
}

// Factory creates surfaces and batches their mutations.
type Factory interface {
	NewSurface(d platform.Display) (Surface, error)
	// Flush applies all buffered surface mutations in one non-animated
	// batch so every display updates in visual lock-step.
	Flush()
}

// DisplayEnumerator returns the active displays. Re-read on every
// Activate, never between activations.
type DisplayEnumerator func() ([]platform.Display, error)

// DefaultMargin is the default cutout outset in pixels, keeping the
// treatment edge from hugging the focused window's border.
const DefaultMargin = 4

// Manager owns one overlay surface per display and reconciles the cutout
// geometry against the current target frame.
//
// Display configuration changes during an active session are not
// re-enumerated until the next Deactivate/Activate cycle; until then the
// overlays keep the frames observed at the last Activate.
type Manager struct {
	displays DisplayEnumerator
	factory  Factory
	logger   *slog.Logger
	margin   int

	active   bool
	overlays []*screenOverlay

	// prev memoizes the last applied target so geometry work is skipped
	// at the polling rate when nothing moved. The zero Rect doubles as
	// "no target".
	prev      geometry.Rect
	prevValid bool
}

type screenOverlay struct {
	display platform.Display
	surface Surface
}

// Option configures a Manager.
type Option func(*Manager)

// WithMargin overrides the cutout outset.
func WithMargin(px int) Option {
	return func(m *Manager) {
		if px >= 0 {
			m.margin = px
		}
	}
}

// NewManager creates an overlay manager. It starts inactive.
func NewManager(displays DisplayEnumerator, factory Factory, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		displays: displays,
		factory:  factory,
		logger:   logger,
		margin:   DefaultMargin,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Activate enumerates displays and builds one overlay per display, each
// starting fully treated with no cutout. No-op when already active.
func (m *Manager) Activate() error {
	if m.active {
		return nil
	}

	displays, err := m.displays()
	if err != nil {
		return fmt.Errorf("display enumeration failed: %w", err)
	}
	if len(displays) == 0 {
		return fmt.Errorf("no displays found")
	}

	for _, d := range displays {
		surface, err := m.factory.NewSurface(d)
		if err != nil {
			m.teardown()
			return fmt.Errorf("overlay for display %d (%s): %w", d.ID, d.Name, err)
		}
		o := &screenOverlay{display: d, surface: surface}

		local := geometry.Rect{Width: d.Bounds.Width, Height: d.Bounds.Height}
		surface.ApplyMask(BuildMask(surface.PreferredMask(), local, nil))
		if err := surface.Show(); err != nil {
			surface.Destroy()
			m.teardown()
			return fmt.Errorf("show overlay for display %d: %w", d.ID, err)
		}
		m.overlays = append(m.overlays, o)
	}
	m.factory.Flush()

	m.active = true
	m.prevValid = false
	m.logger.Info("overlays activated", "displays", len(m.overlays))
	return nil
}

// Deactivate hides and releases every overlay synchronously. No-op when
// already inactive.
func (m *Manager) Deactivate() {
	if !m.active {
		return
	}
	m.teardown()
	m.active = false
	m.prevValid = false
	m.logger.Info("overlays deactivated")
}

func (m *Manager) teardown() {
	for _, o := range m.overlays {
		o.surface.Hide()
		o.surface.Destroy()
	}
	m.factory.Flush()
	m.overlays = nil
}

// Active reports whether overlays currently exist.
func (m *Manager) Active() bool {
	return m.active
}

// Count returns the number of live overlays.
func (m *Manager) Count() int {
	return len(m.overlays)
}

// SetMargin updates the cutout outset. A change invalidates the memo so
// the next tick rebuilds geometry with the new margin.
func (m *Manager) SetMargin(px int) {
	if px >= 0 && px != m.margin {
		m.margin = px
		m.prevValid = false
	}
}

// Invalidate forces the next Tick to rebuild geometry even if the target
// rectangle coincides with the previous one. Used on application-switch
// events so the cutout never waits out a poll interval.
func (m *Manager) Invalidate() {
	m.prevValid = false
}

// Tick reconciles every overlay against the current target frame. The
// zero Rect means "no eligible target": full treatment, no cutout.
//
// Visual parameters are refreshed unconditionally; cutout geometry is
// recomputed only when the target differs from the previous tick.
func (m *Manager) Tick(target geometry.Rect, v settings.VisualConfig) {
	if !m.active {
		return
	}

	visual := ComposeVisual(v)
	for _, o := range m.overlays {
		o.surface.ApplyVisuals(visual)
	}

	if m.prevValid && target == m.prev {
		m.factory.Flush()
		return
	}

	for _, o := range m.overlays {
		o.surface.ApplyMask(m.buildMask(o, target))
	}
	m.factory.Flush()

	m.prev = target
	m.prevValid = true
}

// buildMask computes one display's treated region for the given global
// target. The cutout is the target outset by the margin and translated
// into display-local space; a cutout that misses the display entirely
// leaves that display fully treated, independent of other displays.
func (m *Manager) buildMask(o *screenOverlay, target geometry.Rect) Mask {
	local := geometry.Rect{Width: o.display.Bounds.Width, Height: o.display.Bounds.Height}

	if target.Empty() {
		return BuildMask(o.surface.PreferredMask(), local, nil)
	}

	hole := target.Outset(m.margin).Translate(-o.display.Bounds.X, -o.display.Bounds.Y)
	if !hole.Intersects(local) {
		return BuildMask(o.surface.PreferredMask(), local, nil)
	}
	return BuildMask(o.surface.PreferredMask(), local, &hole)
}
