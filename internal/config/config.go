package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/planetreboot/internal/core/observability/log"
	"github.com/zeusync/planetreboot/internal/core/planet"
	"github.com/zeusync/planetreboot/internal/core/storage"
)

var ErrInvalid = errors.New("config: invalid")

// Config holds all configuration for planetsim.
type Config struct {
	Log        LogConfig     `yaml:"log"`
	Simulation planet.Config `yaml:"simulation"`
	Storage    StorageConfig `yaml:"storage"`
	Stream     StreamConfig  `yaml:"stream"`
}

// LogConfig selects the log level and encoder.
type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"` // json or console
}

// StorageConfig selects where the simulation document is kept.
type StorageConfig struct {
	Backend string `yaml:"backend"` // memory, file or sqlite
	Path    string `yaml:"path"`
	Key     string `yaml:"key"`
}

// StreamConfig configures the websocket render stream and the tick loop.
type StreamConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`

	TickRate     int           `yaml:"tick_rate"`   // simulation ticks per second
	SendBuffer   int           `yaml:"send_buffer"` // per-viewer outbox capacity
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr is the listen address of the stream server.
func (s StreamConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// TickInterval is the wall-clock period between ticks.
func (s StreamConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(max(1, s.TickRate))
}

// Default returns Config with sensible defaults.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
		Simulation: planet.DefaultConfig(),
		Storage: StorageConfig{
			Backend: storage.BackendFile,
			Path:    "data",
			Key:     storage.DefaultKey,
		},
		Stream: StreamConfig{
			Enabled:      true,
			Host:         "127.0.0.1",
			Port:         8090,
			TickRate:     60,
			SendBuffer:   16,
			WriteTimeout: 5 * time.Second,
		},
	}
}

// Load reads config from a YAML file on top of the defaults. An empty path
// or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch c.Log.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("%w: unknown log encoding %q", ErrInvalid, c.Log.Encoding)
	}

	switch c.Storage.Backend {
	case storage.BackendMemory:
	case storage.BackendFile, storage.BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("%w: storage path is required for backend %q", ErrInvalid, c.Storage.Backend)
		}
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalid, c.Storage.Backend)
	}

	if c.Stream.Enabled && (c.Stream.Port < 0 || c.Stream.Port > 65535) {
		return fmt.Errorf("%w: stream port %d out of range", ErrInvalid, c.Stream.Port)
	}
	if c.Stream.TickRate <= 0 {
		return fmt.Errorf("%w: tick rate must be positive", ErrInvalid)
	}
	if c.Stream.SendBuffer <= 0 {
		return fmt.Errorf("%w: send buffer must be positive", ErrInvalid)
	}

	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
