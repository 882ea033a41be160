package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Server struct {
		TCP struct {
			Addr                 string `koanf:"addr"`
			CloseOnUnknownOpcode bool   `koanf:"close_on_unknown_opcode"`
		} `koanf:"tcp"`
	} `koanf:"server"`
	Codes struct {
		MaxAttempts int `koanf:"max_attempts"`
	} `koanf:"codes"`
	Storage struct {
		RetryMax time.Duration `koanf:"retry_max"`
	} `koanf:"storage"`
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/path/to/config.yaml"),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if l.filePath != "/path/to/config.yaml" {
		t.Errorf("filePath = %q, want %q", l.filePath, "/path/to/config.yaml")
	}
}

func TestLoader_LoadFile(t *testing.T) {
	// Create temp config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
server:
  tcp:
    addr: "0.0.0.0:5000"
    close_on_unknown_opcode: true
codes:
  max_attempts: 50
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	l := NewLoader()
	if err := l.LoadFile(configPath); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	// Verify values were loaded
	if addr := l.GetString("server.tcp.addr"); addr != "0.0.0.0:5000" {
		t.Errorf("server.tcp.addr = %q, want %q", addr, "0.0.0.0:5000")
	}

	if !l.GetBool("server.tcp.close_on_unknown_opcode") {
		t.Error("server.tcp.close_on_unknown_opcode should be true")
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader()
	err := l.LoadFile("/nonexistent/config.yaml")
	if err == nil {
		t.Error("LoadFile() should return error for nonexistent file")
	}
}

func TestLoader_LoadFile_Empty(t *testing.T) {
	l := NewLoader()
	// Empty path should not error
	if err := l.LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") should not error, got: %v", err)
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	// Set environment variables
	t.Setenv("DISCOUNT_SERVER_TCP_ADDR", "127.0.0.1:6000")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	// Verify values were loaded
	if addr := l.GetString("server.tcp.addr"); addr != "127.0.0.1:6000" {
		t.Errorf("server.tcp.addr = %q, want %q", addr, "127.0.0.1:6000")
	}
}

func TestLoader_LoadEnv_CustomPrefix(t *testing.T) {
	t.Setenv("COUPON_METRICS_ADDR", "127.0.0.1:9600")

	l := NewLoader(WithEnvPrefix("COUPON_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if addr := l.GetString("metrics.addr"); addr != "127.0.0.1:9600" {
		t.Errorf("metrics.addr = %q, want %q", addr, "127.0.0.1:9600")
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()

	data := map[string]any{
		"server.tcp.addr": "localhost:3000",
		"debug":           true,
	}

	if err := l.LoadMap(data); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if addr := l.GetString("server.tcp.addr"); addr != "localhost:3000" {
		t.Errorf("server.tcp.addr = %q, want %q", addr, "localhost:3000")
	}

	if !l.GetBool("debug") {
		t.Error("debug should be true")
	}
}

func TestLoader_LoadMap_DottedKeysUnmarshal(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{
		"server.tcp.addr":                    "127.0.0.1:5001",
		"server.tcp.close_on_unknown_opcode": true,
		"codes.max_attempts":                 7,
		"storage.retry_max":                  "2s",
	}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	var cfg testConfig
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Server.TCP.Addr != "127.0.0.1:5001" || !cfg.Server.TCP.CloseOnUnknownOpcode {
		t.Errorf("Server.TCP = %+v", cfg.Server.TCP)
	}
	if cfg.Codes.MaxAttempts != 7 {
		t.Errorf("MaxAttempts = %d, want 7", cfg.Codes.MaxAttempts)
	}
	if cfg.Storage.RetryMax != 2*time.Second {
		t.Errorf("RetryMax = %v, want 2s", cfg.Storage.RetryMax)
	}
}

func TestMapProvider_ReadDoesNotMutateInput(t *testing.T) {
	in := map[string]any{"log.level": "debug"}
	p := newMapProvider(in)

	out, err := p.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if _, ok := out["log"].(map[string]any); !ok {
		t.Errorf("Read() = %v, want nested log section", out)
	}
	if in["log.level"] != "debug" || len(in) != 1 {
		t.Errorf("input mutated: %v", in)
	}
	if _, err := p.ReadBytes(); err == nil {
		t.Error("ReadBytes() should fail for a map provider")
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	// Create temp config file with low priority value
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
server:
  tcp:
    addr: "from-file:5000"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Set environment variable with high priority value
	t.Setenv("DISCOUNT_SERVER_TCP_ADDR", "from-env:6000")

	l := NewLoader(WithConfigFile(configPath))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Environment should override file
	if cfg.Server.TCP.Addr != "from-env:6000" {
		t.Errorf("Addr = %q, want %q (env should override file)",
			cfg.Server.TCP.Addr, "from-env:6000")
	}
}

func TestLoader_Unmarshal(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
server:
  tcp:
    addr: "0.0.0.0:5000"
    close_on_unknown_opcode: true
codes:
  max_attempts: 50
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	l := NewLoader(WithConfigFile(configPath))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.TCP.Addr != "0.0.0.0:5000" {
		t.Errorf("Addr = %q, want %q", cfg.Server.TCP.Addr, "0.0.0.0:5000")
	}
	if !cfg.Server.TCP.CloseOnUnknownOpcode {
		t.Error("CloseOnUnknownOpcode should be true")
	}
	if cfg.Codes.MaxAttempts != 50 {
		t.Errorf("MaxAttempts = %d, want 50", cfg.Codes.MaxAttempts)
	}
}

func TestLoader_IsLoaded(t *testing.T) {
	l := NewLoader()

	if l.IsLoaded() {
		t.Error("IsLoaded() should be false before Load()")
	}

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load()")
	}
}

func TestLoader_All(t *testing.T) {
	l := NewLoader()
	l.LoadMap(map[string]any{
		"key1": "value1",
		"key2": "value2",
	})

	all := l.All()
	if len(all) < 2 {
		t.Errorf("All() returned %d keys, want at least 2", len(all))
	}
}

func TestLoader_Keys(t *testing.T) {
	l := NewLoader()
	l.LoadMap(map[string]any{
		"key1": "value1",
		"key2": "value2",
	})

	keys := l.Keys()
	if len(keys) < 2 {
		t.Errorf("Keys() returned %d keys, want at least 2", len(keys))
	}
}

func TestLoader_GetInt(t *testing.T) {
	l := NewLoader()
	l.LoadMap(map[string]any{
		"codes.max_attempts": 1000,
	})

	if n := l.GetInt("codes.max_attempts"); n != 1000 {
		t.Errorf("GetInt(codes.max_attempts) = %d, want %d", n, 1000)
	}
}

func TestLoader_LoadEnv_UnderscoreKeys(t *testing.T) {
	t.Setenv("DISCOUNT_STORAGE_RETRY_MAX", "3s")

	l := NewLoader(WithDefaults(map[string]any{
		"storage.retry_max": "10s",
	}))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.RetryMax != 3*time.Second {
		t.Errorf("RetryMax = %v, want 3s", cfg.Storage.RetryMax)
	}
}

func TestLoader_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `
codes:
  max_attempts: 5
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	l := NewLoader(
		WithConfigFile(configPath),
		WithDefaults(map[string]any{
			"codes.max_attempts": 1000,
			"storage.retry_max":  "10s",
		}),
	)

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Codes.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5 (file overrides defaults)", cfg.Codes.MaxAttempts)
	}
	if cfg.Storage.RetryMax != 10*time.Second {
		t.Errorf("RetryMax = %v, want 10s from defaults", cfg.Storage.RetryMax)
	}
}
