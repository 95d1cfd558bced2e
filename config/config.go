package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"persondir/logger"
	"persondir/store"
)

// Config holds all persondir configuration.
type Config struct {
	Storage StorageConfig  `yaml:"storage"`
	Cache   CacheConfig    `yaml:"cache"`
	Server  ServerConfig   `yaml:"server"`
	Logging logger.Options `yaml:"logging"`
}

// StorageConfig selects where the person list is kept.
type StorageConfig struct {
	Backend string `yaml:"backend"` // memory, bolt, file, sqlite
	Path    string `yaml:"path"`
	Bucket  string `yaml:"bucket"` // bolt only
	Key     string `yaml:"key"`
	// LockTimeout bounds the wait for a bolt file held by another process.
	LockTimeout Duration `yaml:"lock_timeout"`
}

type CacheConfig struct {
	FreshFor Duration `yaml:"fresh_for"`
	// Watch reloads the list when the storage file changes outside this process.
	Watch         bool     `yaml:"watch"`
	WatchDebounce Duration `yaml:"watch_debounce"`
}

type ServerConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	EndpointsPrefix   string   `yaml:"endpoints_prefix"`
}

// Duration reads "5m" style strings from YAML.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:     store.BackendBolt,
			Path:        "persondir.db",
			Bucket:      "directory",
			Key:         store.DefaultKey,
			LockTimeout: Duration(store.DefaultLockTimeout),
		},
		Cache: CacheConfig{
			FreshFor:      Duration(5 * time.Minute),
			WatchDebounce: Duration(250 * time.Millisecond),
		},
		Server: ServerConfig{
			Addr:              ":8888",
			ReadHeaderTimeout: Duration(15 * time.Second),
			ShutdownTimeout:   Duration(time.Minute),
			EndpointsPrefix:   "/api",
		},
		Logging: logger.Options{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	return cfg, cfg.Validate()
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PERSONDIR_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("PERSONDIR_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("PERSONDIR_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PERSONDIR_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case store.BackendMemory:
	case store.BackendBolt, store.BackendFile, store.BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("config: storage.path is required for the %s backend", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("config: unknown storage.backend %q", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		return errors.New("config: storage.key must not be empty")
	}
	if c.Storage.LockTimeout < 0 {
		return errors.New("config: storage.lock_timeout must not be negative")
	}
	if c.Cache.FreshFor < 0 {
		return errors.New("config: cache.fresh_for must not be negative")
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
