package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
)

// Config selects and tunes a storage backend. It can be loaded from TOML:
//
//	backend = "bolt"
//	path    = "data/ids.db"
//	timeout = "10s"
type Config struct {
	Backend  string        `toml:"backend"`
	Path     string        `toml:"path"`      // bolt file, ignored for memory
	Timeout  time.Duration `toml:"timeout"`   // wait for the bolt file lock
	NoSync   bool          `toml:"no_sync"`   // skip fsync; tests and scratch data only
	MmapSize int           `toml:"mmap_size"` // initial bolt mmap size in bytes
}

// DefaultConfig returns an in-memory configuration.
func DefaultConfig() Config {
	return Config{
		Backend: BackendMemory,
		Timeout: 10 * time.Second,
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("store: config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("store: config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("store: config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports configuration errors before anything is opened.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendBolt:
		if c.Path == "" {
			return fmt.Errorf("%w: bolt backend needs a path", ErrUnknownBackend)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if c.Timeout < 0 || c.MmapSize < 0 {
		return fmt.Errorf("store: negative timeout or mmap size")
	}
	return nil
}
