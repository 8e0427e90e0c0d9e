// Package config loads the daemon configuration (TOML) and the ledger
// genesis document (YAML).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Log controls the optional rotating file sink next to stdout logging.
type Log struct {
	File       string `toml:"File"`
	MaxSizeMB  int    `toml:"MaxSizeMB"`
	MaxBackups int    `toml:"MaxBackups"`
	MaxAgeDays int    `toml:"MaxAgeDays"`
	Compress   bool   `toml:"Compress"`
}

type Config struct {
	ListenAddress      string `toml:"ListenAddress"`
	MetricsAddress     string `toml:"MetricsAddress"`
	DataDir            string `toml:"DataDir"`
	GenesisFile        string `toml:"GenesisFile"`
	Environment        string `toml:"Environment"`
	MetricsRefreshSecs int    `toml:"MetricsRefreshSecs"`
	Log                Log    `toml:"Log"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists. Unknown keys are rejected so typos surface at startup
// instead of silently falling back to defaults.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := &Config{}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("config file %s has unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.ListenAddress) == "" {
		c.ListenAddress = ":8080"
	}
	if strings.TrimSpace(c.MetricsAddress) == "" {
		c.MetricsAddress = ":9090"
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./veledger-data"
	}
	if strings.TrimSpace(c.Environment) == "" {
		c.Environment = "local"
	}
	if c.MetricsRefreshSecs <= 0 {
		c.MetricsRefreshSecs = 15
	}
}

// Validate checks the invariants a running daemon depends on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.GenesisFile) == "" {
		return fmt.Errorf("config: GenesisFile must be set")
	}
	if c.ListenAddress == c.MetricsAddress {
		return fmt.Errorf("config: ListenAddress and MetricsAddress must differ")
	}
	if c.Log.File != "" && c.Log.MaxSizeMB < 0 {
		return fmt.Errorf("config: Log.MaxSizeMB must not be negative")
	}
	return nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		ListenAddress:  ":8080",
		MetricsAddress: ":9090",
		DataDir:        "./veledger-data",
		GenesisFile:    "genesis.yaml",
		Environment:    "local",
	}
	cfg.applyDefaults()

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
