package tui

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/focusveil/internal/ipc"
	"github.com/1broseidon/focusveil/internal/settings"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	statusOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusOffStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	noteStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
)

// TUI is an interactive settings editor. It edits the config file
// directly and asks a running daemon to reload when one is reachable.
type TUI struct {
	configPath string
	client     *ipc.Client

	// Form-bound values (strings for huh, converted on submit)
	fIntensity    string
	fGrayscale    bool
	fTintEnabled  bool
	fTintColor    string
	fTintOpacity  string
	fHotkey       string
	fCutoutMargin string
	fGesture      bool
	fExcluded     string
}

// New creates a TUI bound to a config path. An empty path uses the
// default location.
func New(configPath string) *TUI {
	return &TUI{
		configPath: configPath,
		client:     ipc.NewClient(),
	}
}

// Run loads the config, presents the form, and persists the result.
func (t *TUI) Run() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	path := t.configPath
	if path == "" {
		p, err := settings.DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to resolve config path: %w", err)
		}
		path = p
	}

	cfg, err := settings.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println(titleStyle.Render("focusveil settings"))
	fmt.Println(t.daemonLine())
	fmt.Println()

	t.bind(cfg)

	form := t.buildForm()
	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			fmt.Println(noteStyle.Render("aborted, nothing saved"))
			return nil
		}
		return err
	}

	if err := t.apply(cfg); err != nil {
		return err
	}
	if err := settings.Save(path, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("saved %s\n", path)

	// Best effort: a missing daemon is not an error here.
	if err := t.client.Reload(); err == nil {
		fmt.Println(noteStyle.Render("daemon reloaded"))
	}

	return nil
}

func (t *TUI) daemonLine() string {
	status, err := t.client.GetStatus()
	if err != nil {
		return statusOffStyle.Render("daemon: not running")
	}
	state := "idle"
	if status.DimmingActive {
		state = fmt.Sprintf("dimming (%d overlays)", status.OverlayCount)
	}
	return statusOnStyle.Render(fmt.Sprintf("daemon: running, %s", state))
}

func (t *TUI) bind(cfg *settings.Config) {
	t.fIntensity = strconv.FormatFloat(cfg.Intensity, 'f', 2, 64)
	t.fGrayscale = cfg.Grayscale
	t.fTintEnabled = cfg.Tint.Enabled
	t.fTintColor = fmt.Sprintf("#%02x%02x%02x",
		uint8(cfg.Tint.R*255+0.5), uint8(cfg.Tint.G*255+0.5), uint8(cfg.Tint.B*255+0.5))
	t.fTintOpacity = strconv.FormatFloat(cfg.Tint.Opacity, 'f', 2, 64)
	t.fHotkey = cfg.Hotkey
	t.fCutoutMargin = strconv.Itoa(cfg.CutoutMargin)
	t.fGesture = cfg.Gesture.Enabled
	t.fExcluded = strings.Join(cfg.Excluded, ", ")
}

func (t *TUI) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("intensity").
				Title("Dim Intensity").
				Description("Backdrop strength, 0.05 to 1.0").
				Value(&t.fIntensity).
				Validate(validateFloat(0.05, 1.0)),

			huh.NewConfirm().
				Key("grayscale").
				Title("Grayscale Backdrop").
				Description("Desaturate everything outside the focused window").
				Value(&t.fGrayscale),

			huh.NewConfirm().
				Key("tint_enabled").
				Title("Color Tint").
				Value(&t.fTintEnabled),

			huh.NewInput().
				Key("tint_color").
				Title("Tint Color").
				Description("Hex color, e.g. #1a2b3c").
				Value(&t.fTintColor).
				Validate(validateHexColor),

			huh.NewInput().
				Key("tint_opacity").
				Title("Tint Opacity").
				Description("0.05 to 0.5").
				Value(&t.fTintOpacity).
				Validate(validateFloat(0.05, 0.5)),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("hotkey").
				Title("Toggle Hotkey").
				Description("X11 keybinding, e.g. Mod4-shift-f").
				Value(&t.fHotkey),

			huh.NewInput().
				Key("cutout_margin").
				Title("Cutout Margin").
				Description("Pixels of breathing room around the focused window").
				Value(&t.fCutoutMargin).
				Validate(validateInt(0, 64)),

			huh.NewConfirm().
				Key("gesture").
				Title("Shake to Reveal").
				Description("Shake the pointer to toggle dimming").
				Value(&t.fGesture),

			huh.NewInput().
				Key("excluded").
				Title("Excluded Applications").
				Description("Comma-separated WM_CLASS names").
				Value(&t.fExcluded),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (t *TUI) apply(cfg *settings.Config) error {
	intensity, err := strconv.ParseFloat(t.fIntensity, 64)
	if err != nil {
		return fmt.Errorf("invalid intensity: %w", err)
	}
	cfg.Intensity = intensity
	cfg.Grayscale = t.fGrayscale

	cfg.Tint.Enabled = t.fTintEnabled
	r, g, b, err := parseHexColor(t.fTintColor)
	if err != nil {
		return err
	}
	cfg.Tint.R = float64(r) / 255
	cfg.Tint.G = float64(g) / 255
	cfg.Tint.B = float64(b) / 255
	opacity, err := strconv.ParseFloat(t.fTintOpacity, 64)
	if err != nil {
		return fmt.Errorf("invalid tint opacity: %w", err)
	}
	cfg.Tint.Opacity = opacity

	cfg.Hotkey = strings.TrimSpace(t.fHotkey)
	margin, err := strconv.Atoi(t.fCutoutMargin)
	if err != nil {
		return fmt.Errorf("invalid cutout margin: %w", err)
	}
	cfg.CutoutMargin = margin
	cfg.Gesture.Enabled = t.fGesture

	cfg.Excluded = cfg.Excluded[:0]
	for _, id := range strings.Split(t.fExcluded, ",") {
		if id = strings.TrimSpace(id); id != "" {
			cfg.Excluded = append(cfg.Excluded, id)
		}
	}

	return cfg.Validate()
}

func validateFloat(min, max float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		if v < min || v > max {
			return fmt.Errorf("must be between %g and %g", min, max)
		}
		return nil
	}
}

func validateInt(min, max int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("must be an integer")
		}
		if v < min || v > max {
			return fmt.Errorf("must be between %d and %d", min, max)
		}
		return nil
	}
}

func validateHexColor(s string) error {
	_, _, _, err := parseHexColor(s)
	return err
}

func parseHexColor(s string) (r, g, b uint8, err error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("color must be 6 hex digits")
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("color must be 6 hex digits")
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}
