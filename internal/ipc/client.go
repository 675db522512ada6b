package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/focusveil/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// Toggle flips dimming on or off.
func (c *Client) Toggle() error {
	_, err := c.sendRequest(&Request{Command: CommandToggle})
	return err
}

// Reload asks the daemon to re-read its configuration file.
func (c *Client) Reload() error {
	_, err := c.sendRequest(&Request{Command: CommandReload})
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// GetDisplays retrieves display information
func (c *Client) GetDisplays() (*DisplaysData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetDisplays})
	if err != nil {
		return nil, err
	}

	var displays DisplaysData
	if err := json.Unmarshal(resp.Data, &displays); err != nil {
		return nil, fmt.Errorf("failed to parse displays data: %w", err)
	}

	return &displays, nil
}

// ExcludeAdd registers an application identifier that should never be
// treated as the focus target.
func (c *Client) ExcludeAdd(identifier string) error {
	payload, err := json.Marshal(ExcludePayload{Identifier: identifier})
	if err != nil {
		return fmt.Errorf("failed to marshal exclude payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandExcludeAdd, Payload: payload})
	return err
}

// ExcludeRemove drops an identifier from the exclusion set.
func (c *Client) ExcludeRemove(identifier string) error {
	payload, err := json.Marshal(ExcludePayload{Identifier: identifier})
	if err != nil {
		return fmt.Errorf("failed to marshal exclude payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandExcludeRemove, Payload: payload})
	return err
}

// ExcludeList returns the current exclusion identifiers.
func (c *Client) ExcludeList() ([]string, error) {
	resp, err := c.sendRequest(&Request{Command: CommandExcludeList})
	if err != nil {
		return nil, err
	}

	var data ExclusionsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse exclusions data: %w", err)
	}

	return data.Identifiers, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
