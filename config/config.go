// Package config loads netsweep settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// ErrCreatedDefault is returned by Load when the config file did not exist
// and a default one was written in its place. The returned Config holds the
// defaults and is usable.
var ErrCreatedDefault = errors.New("config: default file created")

// Config is the on-disk configuration, loaded over Default.
type Config struct {
	Scan    ScanConfig    `yaml:"scan"`
	DNS     DNSConfig     `yaml:"dns"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
}

// ScanConfig sets the sweep engine parameters. Ports uses the port spec
// syntax ("22,80,8000-8100" or "common").
type ScanConfig struct {
	Workers       int           `yaml:"workers"`
	Timeout       time.Duration `yaml:"timeout"`
	BannerTimeout time.Duration `yaml:"banner_timeout"`
	GrabBanner    bool          `yaml:"grab_banner"`
	RateLimit     float64       `yaml:"rate_limit"`
	Ports         string        `yaml:"ports"`
}

// DNSConfig selects the resolver. An empty Server means the system resolver.
type DNSConfig struct {
	Server  string        `yaml:"server"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig is passed to logging.New.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
}

// OutputConfig controls where results go. Relative export paths are placed
// under Dir; SQLite, when set, names a database that keeps every run.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
	SQLite string `yaml:"sqlite"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Workers:       10,
			Timeout:       5 * time.Second,
			BannerTimeout: 3 * time.Second,
			GrabBanner:    true,
			Ports:         "common",
		},
		DNS:     DNSConfig{Timeout: 3 * time.Second},
		Logging: LoggingConfig{Level: "info"},
		Output:  OutputConfig{Dir: "results", Format: "json"},
	}
}

const defaultFile = `# netsweep configuration

scan:
  workers: 10          # concurrent probes
  timeout: 5s          # per ping / port check
  banner_timeout: 3s   # per banner read on an open port
  grab_banner: true
  rate_limit: 0        # probe starts per second, 0 = unlimited
  ports: common        # e.g. "22,80,443" or "1-1024"; "common" = service table

dns:
  server: ""           # empty = system resolver, otherwise host[:port]
  timeout: 3s

logging:
  level: info          # debug | info | warn | error
  development: false
  file: ""             # optional log file, e.g. logs/netsweep.log

output:
  dir: results         # where -o relative paths are written
  format: json         # json | csv
  sqlite: ""           # optional results database, e.g. results/netsweep.db
`

// Load reads path over the defaults. A missing file is created with the
// commented defaults and ErrCreatedDefault is returned with them.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := writeDefault(path); err != nil {
			return nil, err
		}
		return cfg, ErrCreatedDefault
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func writeDefault(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(defaultFile), 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Scan.Workers < 1 {
		return fmt.Errorf("scan.workers must be >= 1, got %d", c.Scan.Workers)
	}
	if c.Scan.Timeout <= 0 {
		return errors.New("scan.timeout must be positive")
	}
	if c.Scan.BannerTimeout <= 0 {
		return errors.New("scan.banner_timeout must be positive")
	}
	if c.Scan.RateLimit < 0 {
		return errors.New("scan.rate_limit must not be negative")
	}
	if c.DNS.Timeout <= 0 {
		return errors.New("dns.timeout must be positive")
	}
	switch strings.ToLower(c.Output.Format) {
	case "", "json", "csv":
	default:
		return fmt.Errorf("output.format %q: want json or csv", c.Output.Format)
	}
	if c.Logging.Level != "" {
		if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
			return fmt.Errorf("logging.level: %w", err)
		}
	}
	return nil
}
