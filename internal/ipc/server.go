package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/focusveil/internal/platform"
	"github.com/1broseidon/focusveil/internal/runtimepath"
	"github.com/1broseidon/focusveil/internal/settings"
)

// Daemon is the engine surface the IPC server drives.
type Daemon interface {
	Toggle()
	Active() bool
	OverlayCount() int
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	listener   net.Listener
	store      *settings.Store
	daemon     Daemon
	displays   func() ([]platform.Display, error)
	startTime  time.Time
	logger     *slog.Logger

	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(store *settings.Store, daemon Daemon, displays func() ([]platform.Display, error), logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		store:      store,
		daemon:     daemon,
		displays:   displays,
		startTime:  time.Now(),
		logger:     logger,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

// Stop shuts the server down and removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandToggle:
		return s.handleToggle()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetDisplays:
		return s.handleGetDisplays()
	case CommandReload:
		return s.handleReload()
	case CommandExcludeAdd:
		return s.handleExcludeAdd(req.Payload)
	case CommandExcludeRemove:
		return s.handleExcludeRemove(req.Payload)
	case CommandExcludeList:
		return s.handleExcludeList()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleToggle() *Response {
	s.logger.Info("IPC: received TOGGLE command")
	s.daemon.Toggle()

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		DimmingActive: s.daemon.Active(),
		OverlayCount:  s.daemon.OverlayCount(),
		Intensity:     s.store.Config().Intensity,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleGetDisplays() *Response {
	displays, err := s.displays()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to enumerate displays: %v", err))
	}

	data := DisplaysData{Displays: make([]DisplayInfo, 0, len(displays))}
	for _, d := range displays {
		data.Displays = append(data.Displays, DisplayInfo{
			ID:     d.ID,
			Name:   d.Name,
			X:      d.Bounds.X,
			Y:      d.Bounds.Y,
			Width:  d.Bounds.Width,
			Height: d.Bounds.Height,
		})
	}

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleReload() *Response {
	s.logger.Info("IPC: received RELOAD command")

	if err := s.store.Reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleExcludeAdd(payload json.RawMessage) *Response {
	var p ExcludePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid payload: %v", err))
	}
	if p.Identifier == "" {
		return NewErrorResponse("Identifier must not be empty")
	}

	if err := s.store.AddExclusion(p.Identifier); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to add exclusion: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleExcludeRemove(payload json.RawMessage) *Response {
	var p ExcludePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid payload: %v", err))
	}

	if err := s.store.RemoveExclusion(p.Identifier); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to remove exclusion: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleExcludeList() *Response {
	resp, _ := NewOKResponse(ExclusionsData{Identifiers: s.store.Exclusions()})
	return resp
}

// sendError sends an error response directly over the connection.
func (s *Server) sendError(conn net.Conn, msg string) {
	resp := NewErrorResponse(msg)
	data, err := resp.Marshal()
	if err != nil {
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}
