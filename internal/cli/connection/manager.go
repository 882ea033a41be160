package connection

import (
	"context"
	"errors"
	"sync"
)

// ErrNotConnected is returned when no server connection is open.
var ErrNotConnected = errors.New("connection: not connected")

// Manager tracks the current server connection of the interactive mode.
type Manager struct {
	mu      sync.Mutex
	current *Client
	opts    []Option
}

// NewManager creates a new connection manager. opts are applied to every
// client it dials.
func NewManager(opts ...Option) *Manager {
	return &Manager{opts: opts}
}

// Connect dials addr and makes it the current connection, closing any
// previous one.
func (m *Manager) Connect(ctx context.Context, addr string) error {
	client, err := Dial(ctx, addr, m.opts...)
	if err != nil {
		return err
	}

	m.mu.Lock()
	prev := m.current
	m.current = client
	m.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// Disconnect closes the current connection.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	prev := m.current
	m.current = nil
	m.mu.Unlock()

	if prev == nil {
		return nil
	}
	return prev.Close()
}

// Current returns the current client, or ErrNotConnected.
func (m *Manager) Current() (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, ErrNotConnected
	}
	return m.current, nil
}

// IsConnected returns true if connected to a server.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}
