package ipc

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/1broseidon/focusveil/internal/geometry"
	"github.com/1broseidon/focusveil/internal/platform"
	"github.com/1broseidon/focusveil/internal/settings"
)

type fakeDaemon struct {
	active  bool
	toggles int
}

func (d *fakeDaemon) Toggle() {
	d.toggles++
	d.active = !d.active
}

func (d *fakeDaemon) Active() bool { return d.active }

func (d *fakeDaemon) OverlayCount() int { return 2 }

func startTestServer(t *testing.T, daemon *fakeDaemon) (*Server, *settings.Store) {
	t.Helper()

	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	store, err := settings.NewStore(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	displays := func() ([]platform.Display, error) {
		return []platform.Display{
			{ID: 0, Name: "eDP-1", Bounds: geometry.Rect{Width: 1920, Height: 1080}},
			{ID: 1, Name: "HDMI-1", Bounds: geometry.Rect{X: 1920, Width: 2560, Height: 1440}},
		}, nil
	}

	srv, err := NewServer(store, daemon, displays, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)

	return srv, store
}

func TestToggleRoundTrip(t *testing.T) {
	daemon := &fakeDaemon{}
	startTestServer(t, daemon)

	client := NewClient()
	if err := client.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if daemon.toggles != 1 {
		t.Fatalf("toggles = %d, want 1", daemon.toggles)
	}

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !status.DimmingActive {
		t.Error("expected dimming active after toggle")
	}
	if status.OverlayCount != 2 {
		t.Errorf("OverlayCount = %d, want 2", status.OverlayCount)
	}
	if !status.DaemonRunning {
		t.Error("expected daemon_running")
	}
}

func TestGetDisplays(t *testing.T) {
	startTestServer(t, &fakeDaemon{})

	client := NewClient()
	data, err := client.GetDisplays()
	if err != nil {
		t.Fatalf("GetDisplays: %v", err)
	}
	if len(data.Displays) != 2 {
		t.Fatalf("got %d displays, want 2", len(data.Displays))
	}
	if data.Displays[1].X != 1920 || data.Displays[1].Width != 2560 {
		t.Errorf("unexpected second display: %+v", data.Displays[1])
	}
}

func TestExclusionCommands(t *testing.T) {
	_, store := startTestServer(t, &fakeDaemon{})

	client := NewClient()
	if err := client.ExcludeAdd("org.example.player"); err != nil {
		t.Fatalf("ExcludeAdd: %v", err)
	}
	if err := client.ExcludeAdd(""); err == nil {
		t.Error("expected error for empty identifier")
	}

	ids, err := client.ExcludeList()
	if err != nil {
		t.Fatalf("ExcludeList: %v", err)
	}
	if len(ids) != 1 || ids[0] != "org.example.player" {
		t.Fatalf("exclusions = %v", ids)
	}

	if err := client.ExcludeRemove("org.example.player"); err != nil {
		t.Fatalf("ExcludeRemove: %v", err)
	}
	if got := store.Exclusions(); len(got) != 0 {
		t.Fatalf("exclusions after remove = %v", got)
	}
}

func TestUnknownCommand(t *testing.T) {
	srv, _ := startTestServer(t, &fakeDaemon{})

	resp := srv.handleCommand(&Request{Command: "NOPE"})
	if resp.Status != "ERROR" {
		t.Fatalf("status = %q, want ERROR", resp.Status)
	}
}
