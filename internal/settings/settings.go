package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Effective ranges for the visual parameters. Values outside these are
// clamped on load, never rejected.
const (
	MinIntensity   = 0.05
	MaxIntensity   = 1.0
	MinTintOpacity = 0.05
	MaxTintOpacity = 0.5
)

// Tint configures the optional color wash layer.
type Tint struct {
	Enabled bool    `yaml:"enabled"`
	R       float64 `yaml:"r"`
	G       float64 `yaml:"g"`
	B       float64 `yaml:"b"`
	Opacity float64 `yaml:"opacity"`
}

// Gesture holds the shake-to-toggle detector tuning. These are defaults,
// not mandated constants; every knob can be overridden here.
type Gesture struct {
	Enabled      bool `yaml:"enabled"`
	TimeWindowMS int  `yaml:"time_window_ms"`
	MinReversals int  `yaml:"min_reversals"`
	MinSegmentPX int  `yaml:"min_segment_px"`
	CooldownMS   int  `yaml:"cooldown_ms"`
	NoiseFloorPX int  `yaml:"noise_floor_px"`
	SampleHz     int  `yaml:"sample_hz"`
}

// Logging configures the optional daemon log file.
type Logging struct {
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files"`
}

// Config is the focusveil configuration as stored on disk.
type Config struct {
	Intensity    float64 `yaml:"intensity"`
	Grayscale    bool    `yaml:"grayscale"`
	Tint         Tint    `yaml:"tint"`
	PollHz       int     `yaml:"poll_hz"`
	CutoutMargin int     `yaml:"cutout_margin"`
	Hotkey       string  `yaml:"hotkey"`
	Gesture      Gesture `yaml:"gesture"`
	Logging      Logging `yaml:"logging"`

	// Excluded is the list of application identifiers (WM_CLASS) whose
	// focused window never gets a cutout. Accepts either a YAML list or a
	// single JSON-encoded string ("[\"firefox\",\"mpv\"]"); malformed data
	// degrades to an empty set rather than failing the load.
	Excluded ExcludedList `yaml:"excluded"`
}

// ExcludedList decodes leniently: a YAML sequence of strings, or a scalar
// string holding a JSON array.
type ExcludedList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *ExcludedList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			*e = nil
			return nil
		}
		*e = items
	case yaml.ScalarNode:
		var raw string
		if err := value.Decode(&raw); err != nil {
			*e = nil
			return nil
		}
		var items []string
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			*e = nil
			return nil
		}
		*e = items
	default:
		*e = nil
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Intensity: 0.7,
		Grayscale: false,
		Tint: Tint{
			Enabled: false,
			R:       0.2,
			G:       0.4,
			B:       0.9,
			Opacity: 0.15,
		},
		PollHz:       30,
		CutoutMargin: 4,
		Hotkey:       "Mod4-shift-f",
		Gesture: Gesture{
			Enabled:      true,
			TimeWindowMS: 550,
			MinReversals: 3,
			MinSegmentPX: 30,
			CooldownMS:   800,
			NoiseFloorPX: 2,
			SampleHz:     60,
		},
		Logging: Logging{
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
	}
}

// DefaultConfigPath returns ~/.config/focusveil/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "focusveil", "config.yaml"), nil
}

// Load reads the config from path, merging over defaults. A missing file
// is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.clamp()
	return cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// clamp pulls out-of-range values back into their effective ranges.
func (c *Config) clamp() {
	c.Intensity = clampFloat(c.Intensity, MinIntensity, MaxIntensity)
	c.Tint.Opacity = clampFloat(c.Tint.Opacity, MinTintOpacity, MaxTintOpacity)
	c.Tint.R = clampFloat(c.Tint.R, 0, 1)
	c.Tint.G = clampFloat(c.Tint.G, 0, 1)
	c.Tint.B = clampFloat(c.Tint.B, 0, 1)

	if c.PollHz < 1 {
		c.PollHz = 30
	}
	if c.CutoutMargin < 0 {
		c.CutoutMargin = 0
	}
	d := Default().Gesture
	if c.Gesture.TimeWindowMS <= 0 {
		c.Gesture.TimeWindowMS = d.TimeWindowMS
	}
	if c.Gesture.MinReversals <= 0 {
		c.Gesture.MinReversals = d.MinReversals
	}
	if c.Gesture.MinSegmentPX <= 0 {
		c.Gesture.MinSegmentPX = d.MinSegmentPX
	}
	if c.Gesture.CooldownMS <= 0 {
		c.Gesture.CooldownMS = d.CooldownMS
	}
	if c.Gesture.NoiseFloorPX < 0 {
		c.Gesture.NoiseFloorPX = d.NoiseFloorPX
	}
	if c.Gesture.SampleHz <= 0 {
		c.Gesture.SampleHz = d.SampleHz
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Validate returns an error describing any value that had to be clamped.
// Used by `focusveil config validate` for user feedback; the daemon never
// calls this (it clamps silently).
func (c *Config) Validate() error {
	if c.Intensity < MinIntensity || c.Intensity > MaxIntensity {
		return fmt.Errorf("intensity %.2f outside [%.2f, %.2f]", c.Intensity, MinIntensity, MaxIntensity)
	}
	if c.Tint.Opacity < MinTintOpacity || c.Tint.Opacity > MaxTintOpacity {
		return fmt.Errorf("tint.opacity %.2f outside [%.2f, %.2f]", c.Tint.Opacity, MinTintOpacity, MaxTintOpacity)
	}
	if c.PollHz < 1 || c.PollHz > 240 {
		return fmt.Errorf("poll_hz %d outside [1, 240]", c.PollHz)
	}
	return nil
}
