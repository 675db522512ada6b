package gesture

import (
	"log/slog"
	"sync"
	"time"
)

// PointerSource supplies the current global pointer position. Must be a
// fast, non-blocking query.
type PointerSource interface {
	PointerPosition() (x, y int, err error)
}

// Monitor polls the pointer on its own goroutine, feeds the horizontal
// axis into a Detector, and hands triggers to the notify callback. The
// callback must only forward to the owner loop (for example by sending
// on a channel); it runs on the monitor goroutine, never on the loop.
type Monitor struct {
	source   PointerSource
	detector *Detector
	interval time.Duration
	notify   func()
	logger   *slog.Logger

	mu   sync.Mutex
	done chan struct{}
	wg   sync.WaitGroup
}

// NewMonitor creates a pointer gesture monitor sampling at sampleHz.
func NewMonitor(source PointerSource, detector *Detector, sampleHz int, notify func(), logger *slog.Logger) *Monitor {
	if sampleHz <= 0 {
		sampleHz = 60
	}
	return &Monitor{
		source:   source,
		detector: detector,
		interval: time.Second / time.Duration(sampleHz),
		notify:   notify,
		logger:   logger,
	}
}

// Start launches the sampling goroutine. Starting a running monitor is a
// no-op. A fresh start begins with empty detector history.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done != nil {
		return
	}

	m.detector.Reset()
	m.done = make(chan struct{})
	m.wg.Add(1)
	go m.run(m.done)
	m.logger.Debug("gesture monitor started", "interval", m.interval)
}

// Stop halts sampling and clears detector state. Stopping a stopped
// monitor is a no-op. Returns after the sampling goroutine has exited.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.done == nil {
		m.mu.Unlock()
		return
	}
	close(m.done)
	m.done = nil
	m.mu.Unlock()

	m.wg.Wait()
	m.detector.Reset()
	m.logger.Debug("gesture monitor stopped")
}

func (m *Monitor) run(done chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			x, _, err := m.source.PointerPosition()
			if err != nil {
				// Pointer unavailable this sample; try again next tick.
				continue
			}
			if m.detector.Observe(float64(x), time.Now()) {
				m.logger.Debug("shake gesture recognized")
				m.notify()
			}
		}
	}
}
