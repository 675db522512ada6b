package gesture

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

// feed runs the sample stream and returns the times at which the
// detector fired.
func feed(d *Detector, stream [][2]int) []time.Time {
	var fired []time.Time
	for _, s := range stream {
		if d.Observe(float64(s[1]), at(s[0])) {
			fired = append(fired, at(s[0]))
		}
	}
	return fired
}

func TestShake_ThreeFullRunsTrigger(t *testing.T) {
	d := NewDetector(DefaultOptions())

	// t=0.00 x=0, 0.10 x=40 (right), 0.20 x=0 (reversal 1), 0.30 x=40
	// (reversal 2), 0.40 x=0 (reversal 3) => fires at t=0.40.
	fired := feed(d, [][2]int{
		{0, 0}, {100, 40}, {200, 0}, {300, 40}, {400, 0},
	})
	if len(fired) != 1 {
		t.Fatalf("fired %d times, want 1", len(fired))
	}
	if !fired[0].Equal(at(400)) {
		t.Errorf("fired at %v, want t=0.40", fired[0])
	}
}

func TestShake_OneShortRunDropsBelowThreshold(t *testing.T) {
	d := NewDetector(DefaultOptions())

	// Middle run only reaches 20px (< 30): its reversal is jitter, so
	// the window never holds 3 reversals.
	fired := feed(d, [][2]int{
		{0, 0}, {100, 40}, {200, 20}, {300, 40}, {400, 0},
	})
	if len(fired) != 0 {
		t.Fatalf("fired %d times, want 0", len(fired))
	}
}

func TestShake_ReversalsOutsideWindowDoNotCount(t *testing.T) {
	d := NewDetector(DefaultOptions())

	// Same alternation but spread over 1.5s: at most two reversals ever
	// share the 0.55s window.
	fired := feed(d, [][2]int{
		{0, 0}, {500, 40}, {1000, 0}, {1500, 40}, {2000, 0},
	})
	if len(fired) != 0 {
		t.Fatalf("fired %d times, want 0", len(fired))
	}
}

func TestShake_CooldownSuppressesSecondTrigger(t *testing.T) {
	d := NewDetector(DefaultOptions())

	shake := func(startMS int) [][2]int {
		return [][2]int{
			{startMS, 0}, {startMS + 100, 40}, {startMS + 200, 0},
			{startMS + 300, 40}, {startMS + 400, 0},
		}
	}

	fired := feed(d, shake(0))
	if len(fired) != 1 {
		t.Fatalf("first shake fired %d times, want 1", len(fired))
	}

	// Second qualifying shake completing 0.4s later: inside the 0.8s
	// cooldown, suppressed.
	fired = feed(d, shake(400))
	if len(fired) != 0 {
		t.Fatalf("shake inside cooldown fired %d times, want 0", len(fired))
	}

	// Third shake well past the cooldown fires again.
	fired = feed(d, shake(2000))
	if len(fired) != 1 {
		t.Fatalf("shake after cooldown fired %d times, want 1", len(fired))
	}
}

func TestNoiseFloorIgnored(t *testing.T) {
	d := NewDetector(DefaultOptions())

	// 1-2px wobbles are below the noise floor: no direction state forms,
	// and the later legitimate run still measures from its true start.
	fired := feed(d, [][2]int{
		{0, 0}, {10, 1}, {20, 0}, {30, 2}, {40, 0},
		{100, 40}, {200, 0}, {300, 40}, {400, 0},
	})
	if len(fired) != 1 {
		t.Fatalf("fired %d times, want 1", len(fired))
	}
}

func TestJitterReversalKeepsSegmentStart(t *testing.T) {
	d := NewDetector(DefaultOptions())

	// A 5px wobble mid-run flips direction without logging a reversal or
	// resetting the segment start, so the resumed run still spans the
	// full distance when it finally reverses.
	fired := feed(d, [][2]int{
		{0, 0}, {50, 20}, {100, 15}, {150, 40}, // right run with a wobble
		{200, 0},  // reversal 1 (run 0->40)
		{250, 40}, // reversal 2
		{300, 0},  // reversal 3
	})
	if len(fired) != 1 {
		t.Fatalf("fired %d times, want 1", len(fired))
	}
}

func TestReset_ClearsHistory(t *testing.T) {
	d := NewDetector(DefaultOptions())

	// Two reversals accumulated, then a stop/start cycle.
	feed(d, [][2]int{{0, 0}, {100, 40}, {200, 0}, {300, 40}})
	d.Reset()

	// One more reversal alone must not trigger: history is gone.
	fired := feed(d, [][2]int{{400, 40}, {450, 80}, {500, 40}})
	if len(fired) != 0 {
		t.Fatalf("fired %d times after reset, want 0", len(fired))
	}

	// A complete fresh gesture still works.
	fired = feed(d, [][2]int{
		{1500, 0}, {1600, 40}, {1700, 0}, {1800, 40}, {1900, 0},
	})
	if len(fired) != 1 {
		t.Fatalf("fired %d times, want 1", len(fired))
	}
}

func TestTriggerResetsBuffers(t *testing.T) {
	d := NewDetector(DefaultOptions())

	feed(d, [][2]int{{0, 0}, {100, 40}, {200, 0}, {300, 40}, {400, 0}})

	// Immediately after a trigger the buffers are empty; a single new
	// reversal cannot ride on pre-trigger history even once the
	// cooldown has expired.
	fired := feed(d, [][2]int{{1300, 0}, {1400, 40}, {1500, 0}})
	if len(fired) != 0 {
		t.Fatalf("fired %d times on stale history, want 0", len(fired))
	}
}

func TestOptionsDefaults(t *testing.T) {
	d := NewDetector(Options{})
	want := DefaultOptions()
	if d.opts != want {
		t.Errorf("zero options = %+v, want defaults %+v", d.opts, want)
	}

	custom := NewDetector(Options{MinReversals: 5, MinSegment: 10})
	if custom.opts.MinReversals != 5 || custom.opts.MinSegment != 10 {
		t.Error("explicit options must survive")
	}
	if custom.opts.Cooldown != want.Cooldown {
		t.Error("unset options must fall back to defaults")
	}
}
