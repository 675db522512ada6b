package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/focusveil/internal/engine"
	"github.com/1broseidon/focusveil/internal/gesture"
	"github.com/1broseidon/focusveil/internal/hotkeys"
	"github.com/1broseidon/focusveil/internal/ipc"
	"github.com/1broseidon/focusveil/internal/mcp"
	"github.com/1broseidon/focusveil/internal/overlay"
	"github.com/1broseidon/focusveil/internal/settings"
	"github.com/1broseidon/focusveil/internal/tracker"
	"github.com/1broseidon/focusveil/internal/tui"
	"github.com/1broseidon/focusveil/internal/x11"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "toggle":
		os.Exit(runToggle(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "displays":
		os.Exit(runDisplays(os.Args[2:]))
	case "exclude":
		os.Exit(runExclude(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: focusveil <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the focusveil daemon (foreground)")
	fmt.Fprintln(w, "  toggle              Toggle focus dimming on or off")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  displays            List connected displays")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  exclude add         Exclude an application from focus treatment")
	fmt.Fprintln(w, "  exclude remove      Remove an exclusion")
	fmt.Fprintln(w, "  exclude list        List excluded applications")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print effective configuration")
	fmt.Fprintln(w, "  config path         Print configuration file path")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open interactive settings editor")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'focusveil <command> --help' for command-specific options.")
}

func configPathFlag(fs *flag.FlagSet) *string {
	return fs.String("config", "", "config file path (default: ~/.config/focusveil/config.yaml)")
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return settings.DefaultConfigPath()
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cfgPath := configPathFlag(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: focusveil daemon [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the dimming daemon in the foreground.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	path, err := resolveConfigPath(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	store, err := settings.NewStore(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed, using defaults: %v\n", err)
	}
	cfg := store.Config()

	logger := newLogger(cfg.Logging)
	logger.Info("configuration loaded",
		"path", path,
		"intensity", cfg.Intensity,
		"hotkey", cfg.Hotkey,
		"poll_hz", cfg.PollHz)

	conn, err := x11.NewConnection()
	if err != nil {
		logger.Error("failed to connect to display", "error", err)
		return 1
	}
	defer conn.Close()

	backend := x11.NewBackend(conn)
	factory := x11.NewSurfaceFactory(conn)
	overlays := overlay.NewManager(backend.Displays, factory, logger,
		overlay.WithMargin(cfg.CutoutMargin))
	tr := tracker.New(backend, os.Getpid(), logger)
	eng := engine.New(tr, overlays, store, cfg.PollHz, logger)

	hotkeyHandler := hotkeys.NewHandler(conn.XUtil, conn.Root, logger)
	if cfg.Hotkey != "" {
		if err := hotkeyHandler.RegisterToggle(cfg.Hotkey, eng.Toggle); err != nil {
			logger.Warn("failed to register toggle hotkey", "sequence", cfg.Hotkey, "error", err)
		} else {
			logger.Info("toggle hotkey registered", "sequence", cfg.Hotkey)
		}
	}

	if err := conn.WatchActiveWindow(eng.NotifyFocusChange); err != nil {
		logger.Warn("focus-change watch unavailable, relying on polling", "error", err)
	}

	if cfg.Gesture.Enabled {
		detector := gesture.NewDetector(gestureOptions(cfg.Gesture))
		monitor := gesture.NewMonitor(backend, detector, cfg.Gesture.SampleHz, eng.Toggle, logger)
		monitor.Start()
		defer monitor.Stop()
		logger.Info("shake gesture enabled",
			"window_ms", cfg.Gesture.TimeWindowMS,
			"min_reversals", cfg.Gesture.MinReversals)
	}

	ipcServer, err := ipc.NewServer(store, eng, backend.Displays, logger)
	if err != nil {
		logger.Error("failed to create IPC server", "error", err)
		return 1
	}
	if err := ipcServer.Start(); err != nil {
		logger.Error("failed to start IPC server", "error", err)
		return 1
	}
	defer ipcServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				logger.Info("received SIGHUP, reloading config")
				if err := store.Reload(); err != nil {
					logger.Warn("config reload failed", "error", err)
				}
			case os.Interrupt, syscall.SIGTERM:
				logger.Info("shutting down")
				cancel()
				return
			}
		}
	}()

	// X events (hotkey presses, focus-change notifications) are handled
	// on their own goroutine; the engine loop owns all overlay state.
	go conn.EventLoop()

	logger.Info("focusveil daemon started")
	eng.Run(ctx)
	return 0
}

func gestureOptions(g settings.Gesture) gesture.Options {
	opts := gesture.DefaultOptions()
	if g.TimeWindowMS > 0 {
		opts.TimeWindow = time.Duration(g.TimeWindowMS) * time.Millisecond
	}
	if g.MinReversals > 0 {
		opts.MinReversals = g.MinReversals
	}
	if g.MinSegmentPX > 0 {
		opts.MinSegment = float64(g.MinSegmentPX)
	}
	if g.CooldownMS > 0 {
		opts.Cooldown = time.Duration(g.CooldownMS) * time.Millisecond
	}
	if g.NoiseFloorPX >= 0 {
		opts.NoiseFloor = float64(g.NoiseFloorPX)
	}
	return opts
}

// newLogger builds the daemon logger: stderr always, plus a rotated log
// file when one is configured.
func newLogger(cfg settings.Logging) *slog.Logger {
	var w io.Writer = os.Stderr
	if cfg.File != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxFiles,
		})
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func runToggle(args []string) int {
	fs := flag.NewFlagSet("toggle", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: focusveil toggle")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Toggle focus dimming via the running daemon.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	if err := client.Toggle(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: focusveil status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		data, _ := json.MarshalIndent(status, "", "  ")
		fmt.Println(string(data))
		return 0
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("dimming_active: %v\n", status.DimmingActive)
	fmt.Printf("overlay_count:  %d\n", status.OverlayCount)
	fmt.Printf("intensity:      %.2f\n", status.Intensity)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runDisplays(args []string) int {
	fs := flag.NewFlagSet("displays", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "print displays as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: focusveil displays [--json]")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	data, err := client.GetDisplays()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		out, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(out))
		return 0
	}
	for _, d := range data.Displays {
		fmt.Printf("%d: %s %dx%d at (%d,%d)\n", d.ID, d.Name, d.Width, d.Height, d.X, d.Y)
	}
	return 0
}

func printExcludeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  focusveil exclude add <identifier>")
	fmt.Fprintln(w, "  focusveil exclude remove <identifier>")
	fmt.Fprintln(w, "  focusveil exclude list")
}

func runExclude(args []string) int {
	if len(args) == 0 {
		printExcludeUsage(os.Stderr)
		return 2
	}

	client := ipc.NewClient()
	switch args[0] {
	case "add":
		if len(args) != 2 {
			printExcludeUsage(os.Stderr)
			return 2
		}
		if err := client.ExcludeAdd(args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "remove":
		if len(args) != 2 {
			printExcludeUsage(os.Stderr)
			return 2
		}
		if err := client.ExcludeRemove(args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "list":
		ids, err := client.ExcludeList()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown exclude command: %s\n\n", args[0])
		printExcludeUsage(os.Stderr)
		return 2
	}
}

func runConfig(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: focusveil config <validate|print|path> [--config PATH]")
		return 2
	}

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cfgPath := configPathFlag(fs)
	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	path, err := resolveConfigPath(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	switch args[0] {
	case "path":
		fmt.Println(path)
		return 0
	case "validate":
		cfg, err := settings.Load(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
			return 1
		}
		fmt.Println("config valid")
		return 0
	case "print":
		cfg, err := settings.Load(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		os.Stdout.Write(data)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		return 2
	}
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cfgPath := configPathFlag(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: focusveil tui [--config PATH]")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if err := tui.New(*cfgPath).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runMCP(args []string) int {
	if len(args) == 0 || args[0] != "serve" {
		fmt.Fprintln(os.Stderr, "Usage: focusveil mcp serve")
		return 2
	}

	srv := mcp.NewServer()
	if err := srv.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
