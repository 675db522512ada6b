// Package gesture recognizes rapid back-and-forth pointer motion as a
// discrete toggle gesture. The detector is a pure state machine over
// (position, time) samples on a single axis; feeding it samples and
// delivering its trigger to the owner loop is the caller's job.
package gesture

import "time"

// Options tunes the detector. Zero-valued fields fall back to the
// defaults; these are configuration defaults, not mandated constants.
type Options struct {
	// TimeWindow is the trailing window both the sample buffer and the
	// reversal log are pruned to.
	TimeWindow time.Duration
	// MinReversals is the reversal count inside the window that fires
	// the trigger.
	MinReversals int
	// MinSegment is the minimum distance a directional run must travel
	// for its ending reversal to count; shorter runs are jitter.
	MinSegment float64
	// Cooldown is the minimum spacing between two triggers.
	Cooldown time.Duration
	// NoiseFloor ignores motion deltas at or below this magnitude.
	NoiseFloor float64
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		TimeWindow:   550 * time.Millisecond,
		MinReversals: 3,
		MinSegment:   30,
		Cooldown:     800 * time.Millisecond,
		NoiseFloor:   2,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TimeWindow <= 0 {
		o.TimeWindow = d.TimeWindow
	}
	if o.MinReversals <= 0 {
		o.MinReversals = d.MinReversals
	}
	if o.MinSegment <= 0 {
		o.MinSegment = d.MinSegment
	}
	if o.Cooldown <= 0 {
		o.Cooldown = d.Cooldown
	}
	if o.NoiseFloor < 0 {
		o.NoiseFloor = d.NoiseFloor
	}
	return o
}

type direction int

const (
	dirUnknown direction = iota
	dirLeft
	dirRight
)

// Sample is one observed pointer position.
type Sample struct {
	Pos float64
	At  time.Time
}

// Detector accumulates samples and reports when the toggle gesture
// completes. Not safe for concurrent use; a single producer feeds it.
type Detector struct {
	opts Options

	samples   []Sample
	reversals []time.Time

	lastDir      direction
	segmentStart float64
	lastPos      float64
	havePos      bool

	lastTrigger time.Time
	haveTrigger bool
}

// NewDetector creates a detector with the given tuning.
func NewDetector(opts Options) *Detector {
	return &Detector{opts: opts.withDefaults()}
}

// Observe feeds one sample. It returns true exactly when the sample
// completes the gesture; the caller then owes a toggle event.
func (d *Detector) Observe(pos float64, now time.Time) bool {
	d.prune(now)
	d.samples = append(d.samples, Sample{Pos: pos, At: now})

	if !d.havePos {
		d.lastPos = pos
		d.havePos = true
		return false
	}

	dx := pos - d.lastPos
	if dx <= d.opts.NoiseFloor && dx >= -d.opts.NoiseFloor {
		// Below the noise floor: no state change at all.
		return false
	}

	dir := dirRight
	if dx < 0 {
		dir = dirLeft
	}

	switch {
	case d.lastDir == dirUnknown:
		// First qualifying delta: the run began at the previous sample.
		d.lastDir = dir
		d.segmentStart = d.lastPos
	case dir == d.lastDir:
		// Run continues.
	default:
		// Direction change: the just-ended run stretches from
		// segmentStart to the previous sample (the turning point).
		runDist := d.lastPos - d.segmentStart
		if runDist < 0 {
			runDist = -runDist
		}
		if runDist >= d.opts.MinSegment {
			d.reversals = append(d.reversals, now)
			d.segmentStart = d.lastPos
		}
		// Jitter-filtered reversals still update direction but keep the
		// original segment start, so a real run resumed after a wobble
		// is measured from where it truly began.
		d.lastDir = dir
	}

	d.lastPos = pos

	if len(d.reversals) >= d.opts.MinReversals && d.cooldownElapsed(now) {
		d.lastTrigger = now
		d.haveTrigger = true
		d.Reset()
		return true
	}
	return false
}

// Reset clears all buffers and direction state. The trigger cooldown
// stamp survives; history does not.
func (d *Detector) Reset() {
	d.samples = nil
	d.reversals = nil
	d.lastDir = dirUnknown
	d.segmentStart = 0
	d.havePos = false
}

func (d *Detector) cooldownElapsed(now time.Time) bool {
	return !d.haveTrigger || now.Sub(d.lastTrigger) >= d.opts.Cooldown
}

// prune drops samples and reversals older than the trailing window.
func (d *Detector) prune(now time.Time) {
	cutoff := now.Add(-d.opts.TimeWindow)

	keep := 0
	for keep < len(d.samples) && d.samples[keep].At.Before(cutoff) {
		keep++
	}
	if keep > 0 {
		d.samples = append(d.samples[:0], d.samples[keep:]...)
	}

	keep = 0
	for keep < len(d.reversals) && d.reversals[keep].Before(cutoff) {
		keep++
	}
	if keep > 0 {
		d.reversals = append(d.reversals[:0], d.reversals[keep:]...)
	}
}
