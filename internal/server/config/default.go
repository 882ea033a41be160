package config

import "time"

// Default configuration values.
const (
	DefaultTCPAddr      = "127.0.0.1:5000"
	DefaultPollInterval = 50 * time.Millisecond
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second

	DefaultStorageFile  = "discount_codes.json"
	DefaultRetryInitial = 100 * time.Millisecond
	DefaultRetryMax     = 10 * time.Second

	DefaultMaxAttempts = 1000

	DefaultMetricsAddr = "127.0.0.1:9500"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultShutdownTimeout = 30 * time.Second
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			TCP: TCPConfig{
				Addr:         DefaultTCPAddr,
				PollInterval: DefaultPollInterval,
				ReadTimeout:  DefaultReadTimeout,
				WriteTimeout: DefaultWriteTimeout,
			},
		},
		Storage: StorageSection{
			File:         DefaultStorageFile,
			RetryInitial: DefaultRetryInitial,
			RetryMax:     DefaultRetryMax,
		},
		Codes: CodesSection{
			MaxAttempts: DefaultMaxAttempts,
		},
		Metrics: MetricsSection{
			Addr: DefaultMetricsAddr,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Shutdown: ShutdownSection{
			Timeout: DefaultShutdownTimeout,
		},
	}
}

// ToMap flattens the defaults into koanf keys, for use as the lowest
// precedence layer of the loader.
func ToMap(cfg *ServerConfig) map[string]any {
	return map[string]any{
		"server.tcp.addr":                    cfg.Server.TCP.Addr,
		"server.tcp.poll_interval":           cfg.Server.TCP.PollInterval.String(),
		"server.tcp.read_timeout":            cfg.Server.TCP.ReadTimeout.String(),
		"server.tcp.write_timeout":           cfg.Server.TCP.WriteTimeout.String(),
		"server.tcp.rate_limit":              cfg.Server.TCP.RateLimit,
		"server.tcp.close_on_unknown_opcode": cfg.Server.TCP.CloseOnUnknownOpcode,
		"storage.file":                       cfg.Storage.File,
		"storage.retry_initial":              cfg.Storage.RetryInitial.String(),
		"storage.retry_max":                  cfg.Storage.RetryMax.String(),
		"codes.max_attempts":                 cfg.Codes.MaxAttempts,
		"metrics.addr":                       cfg.Metrics.Addr,
		"metrics.allow_list":                 append([]string{}, cfg.Metrics.AllowList...),
		"log.level":                          cfg.Log.Level,
		"log.format":                         cfg.Log.Format,
		"log.show_codes":                     cfg.Log.ShowCodes,
		"shutdown.timeout":                   cfg.Shutdown.Timeout.String(),
	}
}
