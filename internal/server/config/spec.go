package config

import "time"

// ServerConfig is the root configuration for discount-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Storage  StorageSection  `koanf:"storage"`
	Codes    CodesSection    `koanf:"codes"`
	Metrics  MetricsSection  `koanf:"metrics"`
	Log      LogSection      `koanf:"log"`
	Shutdown ShutdownSection `koanf:"shutdown"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	TCP TCPConfig `koanf:"tcp"`
}

// TCPConfig configures the binary protocol listener.
type TCPConfig struct {
	Addr                 string        `koanf:"addr"`
	PollInterval         time.Duration `koanf:"poll_interval"`
	ReadTimeout          time.Duration `koanf:"read_timeout"`
	WriteTimeout         time.Duration `koanf:"write_timeout"`
	RateLimit            float64       `koanf:"rate_limit"`
	CloseOnUnknownOpcode bool          `koanf:"close_on_unknown_opcode"`
}

// StorageSection configures the snapshot file and write retries.
type StorageSection struct {
	File         string        `koanf:"file"`
	RetryInitial time.Duration `koanf:"retry_initial"`
	RetryMax     time.Duration `koanf:"retry_max"`
}

// CodesSection configures code generation.
type CodesSection struct {
	// MaxAttempts is the per-code draw budget before generate gives up.
	MaxAttempts int `koanf:"max_attempts"`
}

// MetricsSection configures the metrics and health endpoint. An empty Addr
// disables it.
type MetricsSection struct {
	Addr string `koanf:"addr"`
	// AllowList restricts clients to these IPs or CIDR blocks. Empty allows all.
	AllowList []string `koanf:"allow_list"`
}

// LogSection configures logging.
type LogSection struct {
	Level     string `koanf:"level"`
	Format    string `koanf:"format"`
	ShowCodes bool   `koanf:"show_codes"`
}

// ShutdownSection configures graceful shutdown.
type ShutdownSection struct {
	Timeout time.Duration `koanf:"timeout"`
}
