package settings

import (
	"sync"
)

// VisualConfig is the per-tick snapshot of the visual parameters. It is a
// plain value: read fresh each tick, never cached beyond single-tick use.
type VisualConfig struct {
	Intensity   float64
	Grayscale   bool
	TintEnabled bool
	TintR       float64
	TintG       float64
	TintB       float64
	TintOpacity float64
}

// Snapshot bundles everything the update pipeline reads in one tick.
type Snapshot struct {
	Visual   VisualConfig
	Excluded map[string]struct{}
	Margin   int
}

// Store holds the live configuration and hands out immutable snapshots.
// Writes come from the settings editor and the IPC exclusion commands;
// the tick pipeline only ever reads.
type Store struct {
	mu   sync.RWMutex
	path string
	cfg  *Config
}

// NewStore loads the config at path into a store. Load failures fall back
// to defaults so a broken config file never prevents the daemon starting.
func NewStore(path string) (*Store, error) {
	cfg, err := Load(path)
	if err != nil {
		return &Store{path: path, cfg: Default()}, err
	}
	return &Store{path: path, cfg: cfg}, nil
}

// Snapshot returns an immutable copy of the tick-relevant settings.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	excluded := make(map[string]struct{}, len(s.cfg.Excluded))
	for _, id := range s.cfg.Excluded {
		if id != "" {
			excluded[id] = struct{}{}
		}
	}

	return Snapshot{
		Visual: VisualConfig{
			Intensity:   s.cfg.Intensity,
			Grayscale:   s.cfg.Grayscale,
			TintEnabled: s.cfg.Tint.Enabled,
			TintR:       s.cfg.Tint.R,
			TintG:       s.cfg.Tint.G,
			TintB:       s.cfg.Tint.B,
			TintOpacity: s.cfg.Tint.Opacity,
		},
		Excluded: excluded,
		Margin:   s.cfg.CutoutMargin,
	}
}

// Config returns a copy of the full config.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.cfg
}

// Reload re-reads the config file from disk.
func (s *Store) Reload() error {
	cfg, err := Load(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// AddExclusion appends an application identifier to the exclusion set and
// persists the change. Adding an existing entry is a no-op.
func (s *Store) AddExclusion(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.cfg.Excluded {
		if existing == id {
			return nil
		}
	}
	s.cfg.Excluded = append(s.cfg.Excluded, id)
	return Save(s.path, s.cfg)
}

// RemoveExclusion drops an application identifier from the exclusion set
// and persists the change. Removing a missing entry is a no-op.
func (s *Store) RemoveExclusion(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.cfg.Excluded[:0]
	found := false
	for _, existing := range s.cfg.Excluded {
		if existing == id {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		return nil
	}
	s.cfg.Excluded = kept
	return Save(s.path, s.cfg)
}

// Exclusions returns the current exclusion list.
func (s *Store) Exclusions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.cfg.Excluded))
	copy(out, s.cfg.Excluded)
	return out
}
