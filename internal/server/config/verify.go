package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/yndnr/discountd/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if cfg.Codes.MaxAttempts < 1 {
		return errors.New("codes.max_attempts must be at least 1")
	}
	if cfg.Metrics.Addr != "" {
		if err := verifyAddr("metrics.addr", cfg.Metrics.Addr); err != nil {
			return err
		}
		if cfg.Metrics.Addr == cfg.Server.TCP.Addr {
			return errors.New("metrics.addr conflicts with server.tcp.addr")
		}
		for _, entry := range cfg.Metrics.AllowList {
			if !validIPOrCIDR(entry) {
				return fmt.Errorf("metrics.allow_list: invalid IP or CIDR %q", entry)
			}
		}
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}
	if cfg.Shutdown.Timeout <= 0 {
		return errors.New("shutdown.timeout must be positive")
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	tcp := &cfg.TCP
	if err := verifyAddr("server.tcp.addr", tcp.Addr); err != nil {
		return err
	}
	if tcp.PollInterval <= 0 {
		return errors.New("server.tcp.poll_interval must be positive")
	}
	if tcp.ReadTimeout <= 0 {
		return errors.New("server.tcp.read_timeout must be positive")
	}
	if tcp.WriteTimeout <= 0 {
		return errors.New("server.tcp.write_timeout must be positive")
	}
	if tcp.RateLimit < 0 {
		return errors.New("server.tcp.rate_limit must not be negative")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.File == "" {
		return errors.New("storage.file is required")
	}

	// Check if the snapshot directory exists or can be created
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0750); err != nil {
		return errors.New("cannot create storage directory: " + err.Error())
	}

	if cfg.RetryInitial <= 0 {
		return errors.New("storage.retry_initial must be positive")
	}
	if cfg.RetryMax < cfg.RetryInitial {
		return errors.New("storage.retry_max must not be less than storage.retry_initial")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		return fmt.Errorf("log.format %q is not one of json, text", cfg.Format)
	}
	return nil
}

func verifyAddr(key, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", key)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func validIPOrCIDR(entry string) bool {
	if strings.Contains(entry, "/") {
		_, _, err := net.ParseCIDR(entry)
		return err == nil
	}
	return net.ParseIP(entry) != nil
}
