package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection manages the X11 connection and core X resources.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	// hasShape records whether the SHAPE extension initialized; without
	// it there is no click-through and no cutout, so surface creation
	// fails early instead.
	hasShape bool
}

// NewConnection establishes a connection to the X11 server and
// initializes the extensions the overlay surfaces rely on.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	// Initialize keybind module (required for the global toggle hotkey)
	keybind.Initialize(xu)

	c := &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}
	if err := shape.Init(xu.Conn()); err == nil {
		c.hasShape = true
	}
	return c, nil
}

// EventLoop starts the main X11 event loop (blocking).
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Close cleanly disconnects from the X11 server.
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// Sync flushes all buffered requests and waits for the server to process
// them. Per-tick surface mutations are buffered and pushed out with one
// Sync so all displays update in lock-step.
func (c *Connection) Sync() {
	c.XUtil.Conn().Sync()
}

func (c *Connection) requireShape() error {
	if !c.hasShape {
		return fmt.Errorf("SHAPE extension unavailable")
	}
	return nil
}
