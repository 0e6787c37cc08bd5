package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrStorageProviderUnknown indicates an unsupported storage provider name.
var ErrStorageProviderUnknown = errors.New("mapsync config: storage provider is invalid")

// ErrStorageDSNRequired ensures database-backed providers carry a connection string.
var ErrStorageDSNRequired = errors.New("mapsync config: storage dsn is required for database providers")

// ErrStorageDriverUnknown indicates an unsupported database driver name.
var ErrStorageDriverUnknown = errors.New("mapsync config: storage driver is invalid")

// ErrCacheTTLInvalid ensures the cache TTL stays zero or positive.
var ErrCacheTTLInvalid = errors.New("mapsync config: cache ttl must be zero or positive")

// ErrCacheFeatureRequiresEnabledCache ensures the cache feature only builds when cache is enabled.
var ErrCacheFeatureRequiresEnabledCache = errors.New("mapsync config: cache feature requires cache to be enabled")

var ErrLoggingProviderRequired = errors.New("mapsync config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("mapsync config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("mapsync config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("mapsync config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the map sync module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled  bool
	Storage  StorageConfig
	Cache    CacheConfig
	Logging  LoggingConfig
	Features Features
}

// StorageConfig selects the persistence backend. Provider "memory" keeps
// everything in-process; "bun" expects Driver plus DSN.
type StorageConfig struct {
	Provider string
	Driver   string
	DSN      string
}

// CacheConfig captures read-cache behaviour for the store registry.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
}

// Features toggles module functionality. Logger gates the structured logging
// checks and provider construction; Cache builds a default in-process cache
// for store registry reads when the host injects none.
type Features struct {
	Logger bool
	Cache  bool
}

// DefaultConfig returns opinionated defaults: in-process storage, cache on,
// console logging at info.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Storage: StorageConfig{
			Provider: "memory",
			Driver:   "sqlite3",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	provider := strings.ToLower(strings.TrimSpace(cfg.Storage.Provider))
	switch provider {
	case "", "memory":
	case "bun":
		driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
		switch driver {
		case "sqlite3", "postgres":
		default:
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}

	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Features.Cache && !cfg.Cache.Enabled {
		return ErrCacheFeatureRequiresEnabledCache
	}

	if cfg.Features.Logger {
		logProvider := strings.ToLower(strings.TrimSpace(cfg.Logging.Provider))
		if logProvider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedLoggingProvider(logProvider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, logProvider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if logProvider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}

	return nil
}

func isSupportedLoggingProvider(provider string) bool {
	switch provider {
	case "console", "gologger", "noop":
		return true
	}
	return false
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	}
	return false
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	}
	return false
}
