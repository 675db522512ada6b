package tracker

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/1broseidon/focusveil/internal/geometry"
	"github.com/1broseidon/focusveil/internal/platform"
)

type fakeBackend struct {
	active    platform.WindowID
	activeErr error

	frames  map[platform.WindowID]geometry.Rect
	classes map[platform.WindowID]string
	pids    map[platform.WindowID]int

	origin        geometry.Origin
	primaryHeight int
	primaryErr    error
}

func (f *fakeBackend) Displays() ([]platform.Display, error) { return nil, nil }
func (f *fakeBackend) ActiveWindow() (platform.WindowID, error) {
	return f.active, f.activeErr
}
func (f *fakeBackend) WindowFrame(id platform.WindowID) (geometry.Rect, error) {
	r, ok := f.frames[id]
	if !ok {
		return geometry.Rect{}, errors.New("no frame")
	}
	return r, nil
}
func (f *fakeBackend) WindowClass(id platform.WindowID) (string, error) {
	c, ok := f.classes[id]
	if !ok {
		return "", errors.New("no class")
	}
	return c, nil
}
func (f *fakeBackend) WindowPID(id platform.WindowID) (int, error) {
	p, ok := f.pids[id]
	if !ok {
		return 0, errors.New("no pid")
	}
	return p, nil
}
func (f *fakeBackend) FrameOrigin() geometry.Origin { return f.origin }
func (f *fakeBackend) PrimaryHeight() (int, error)  { return f.primaryHeight, f.primaryErr }
func (f *fakeBackend) PointerPosition() (int, int, error) {
	return 0, 0, errors.New("not implemented")
}

func newTracker(b platform.Backend) *Tracker {
	return New(b, 4242, slog.New(slog.DiscardHandler))
}

func TestComputeTarget_HappyPath(t *testing.T) {
	b := &fakeBackend{
		active:  7,
		frames:  map[platform.WindowID]geometry.Rect{7: {X: 100, Y: 200, Width: 640, Height: 480}},
		classes: map[platform.WindowID]string{7: "firefox"},
		pids:    map[platform.WindowID]int{7: 1000},
	}
	got := newTracker(b).ComputeTarget(nil)
	want := geometry.Rect{X: 100, Y: 200, Width: 640, Height: 480}
	if got != want {
		t.Fatalf("target = %+v, want %+v", got, want)
	}
}

func TestComputeTarget_NoActiveWindow(t *testing.T) {
	tests := []struct {
		name string
		b    *fakeBackend
	}{
		{"query error", &fakeBackend{activeErr: errors.New("permission denied")}},
		{"zero window", &fakeBackend{active: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newTracker(tt.b).ComputeTarget(nil); !got.Empty() {
				t.Fatalf("target = %+v, want none", got)
			}
		})
	}
}

func TestComputeTarget_SelfExclusion(t *testing.T) {
	b := &fakeBackend{
		active: 7,
		frames: map[platform.WindowID]geometry.Rect{7: {X: 0, Y: 0, Width: 100, Height: 100}},
		pids:   map[platform.WindowID]int{7: 4242}, // our own PID
	}
	if got := newTracker(b).ComputeTarget(nil); !got.Empty() {
		t.Fatalf("own window must never be the target, got %+v", got)
	}
}

func TestComputeTarget_ExclusionSet(t *testing.T) {
	b := &fakeBackend{
		active:  7,
		frames:  map[platform.WindowID]geometry.Rect{7: {X: 0, Y: 0, Width: 100, Height: 100}},
		classes: map[platform.WindowID]string{7: "mpv"},
		pids:    map[platform.WindowID]int{7: 1000},
	}
	tr := newTracker(b)

	excluded := map[string]struct{}{"mpv": {}}
	if got := tr.ComputeTarget(excluded); !got.Empty() {
		t.Fatalf("excluded app must yield no target regardless of geometry, got %+v", got)
	}

	// Same window, not excluded: target comes back.
	if got := tr.ComputeTarget(map[string]struct{}{"firefox": {}}); got.Empty() {
		t.Fatal("non-excluded app should be targeted")
	}
}

func TestComputeTarget_FrameUnavailable(t *testing.T) {
	b := &fakeBackend{
		active:  7,
		classes: map[platform.WindowID]string{7: "firefox"},
		pids:    map[platform.WindowID]int{7: 1000},
		// no frame entry: query fails
	}
	if got := newTracker(b).ComputeTarget(nil); !got.Empty() {
		t.Fatalf("frame failure must collapse to none, got %+v", got)
	}
}

func TestComputeTarget_BottomLeftOriginFlipped(t *testing.T) {
	b := &fakeBackend{
		active:        7,
		frames:        map[platform.WindowID]geometry.Rect{7: {X: 100, Y: 200, Width: 640, Height: 480}},
		pids:          map[platform.WindowID]int{7: 1000},
		origin:        geometry.OriginBottomLeft,
		primaryHeight: 1080,
	}
	got := newTracker(b).ComputeTarget(nil)
	want := geometry.Rect{X: 100, Y: 400, Width: 640, Height: 480}
	if got != want {
		t.Fatalf("flipped target = %+v, want %+v", got, want)
	}
}

func TestComputeTarget_PrimaryHeightFailure(t *testing.T) {
	b := &fakeBackend{
		active:     7,
		frames:     map[platform.WindowID]geometry.Rect{7: {X: 0, Y: 0, Width: 10, Height: 10}},
		pids:       map[platform.WindowID]int{7: 1000},
		origin:     geometry.OriginBottomLeft,
		primaryErr: errors.New("no primary"),
	}
	if got := newTracker(b).ComputeTarget(nil); !got.Empty() {
		t.Fatalf("conversion failure must collapse to none, got %+v", got)
	}
}
