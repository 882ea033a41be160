package connection

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewManager(t *testing.T) {
	m := NewManager()
	if m == nil {
		t.Fatal("NewManager returned nil")
	}
	if m.IsConnected() {
		t.Error("new manager should not be connected")
	}
	if _, err := m.Current(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Current() error = %v, want ErrNotConnected", err)
	}
}

func TestManager_Connect(t *testing.T) {
	addr, _ := startServer(t)
	m := NewManager(WithTimeout(time.Second))
	t.Cleanup(func() { m.Disconnect() })

	ctx := context.Background()
	if err := m.Connect(ctx, addr); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if !m.IsConnected() {
		t.Error("IsConnected() should return true after Connect")
	}

	client, err := m.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if client.Addr() != addr {
		t.Errorf("Addr() = %q, want %q", client.Addr(), addr)
	}
	if _, err := client.Generate(ctx, 1, 7); err != nil {
		t.Errorf("Generate: %v", err)
	}
}

func TestManager_Reconnect(t *testing.T) {
	addr, _ := startServer(t)
	m := NewManager()
	t.Cleanup(func() { m.Disconnect() })

	ctx := context.Background()
	if err := m.Connect(ctx, addr); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	first, _ := m.Current()

	if err := m.Connect(ctx, addr); err != nil {
		t.Fatalf("second Connect: %v", err)
	}
	second, _ := m.Current()

	if first == second {
		t.Error("Connect should replace the current client")
	}
	if _, err := first.Use(ctx, "ABCD123"); !errors.Is(err, ErrClosed) {
		t.Errorf("previous client should be closed, got %v", err)
	}
}

func TestManager_Disconnect(t *testing.T) {
	addr, _ := startServer(t)
	m := NewManager()

	if err := m.Connect(context.Background(), addr); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := m.Disconnect(); err != nil {
		t.Errorf("Disconnect: %v", err)
	}
	if m.IsConnected() {
		t.Error("IsConnected() should return false after Disconnect")
	}

	// Disconnecting twice is harmless.
	if err := m.Disconnect(); err != nil {
		t.Errorf("second Disconnect: %v", err)
	}
}

func TestManager_ConnectFailureKeepsCurrent(t *testing.T) {
	addr, _ := startServer(t)
	m := NewManager()
	t.Cleanup(func() { m.Disconnect() })

	if err := m.Connect(context.Background(), addr); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := m.Connect(ctx, "127.0.0.1:1"); err == nil {
		t.Fatal("Connect to port 1 should fail")
	}
	if !m.IsConnected() {
		t.Error("failed Connect should keep the previous connection")
	}
}
