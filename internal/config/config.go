// Package config loads the reveries configuration from YAML and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/reveries/internal/core/observability/log"
	"github.com/zeusync/reveries/internal/core/text"
	"github.com/zeusync/reveries/pkg/encoding"
)

// EnvPrefix prefixes every environment override, e.g. REVERIES_LOG_LEVEL.
const EnvPrefix = "REVERIES_"

type Config struct {
	Log     LogConfig     `yaml:"log" envPrefix:"LOG_"`
	Monitor MonitorConfig `yaml:"monitor" envPrefix:"MONITOR_"`
	NPC     NPCConfig     `yaml:"npc" envPrefix:"NPC_"`
	// Messages overrides user-facing messages by id.
	Messages map[string]string `yaml:"messages"`
}

type LogConfig struct {
	Level       string `yaml:"level" env:"LEVEL"`
	Encoding    string `yaml:"encoding" env:"ENCODING"`
	Development bool   `yaml:"development" env:"DEVELOPMENT"`
	// ScanOnStart logs every NPC found on the host at start.
	ScanOnStart bool `yaml:"scan_on_start" env:"SCAN_ON_START"`
}

type MonitorConfig struct {
	InitialDelay time.Duration `yaml:"initial_delay" env:"INITIAL_DELAY"`
	Interval     time.Duration `yaml:"interval" env:"INTERVAL"`
	Shards       int           `yaml:"shards" env:"SHARDS"`
}

type NPCConfig struct {
	DefaultDisplayName string        `yaml:"default_display_name" env:"DEFAULT_DISPLAY_NAME"`
	SkinLookupTimeout  time.Duration `yaml:"skin_lookup_timeout" env:"SKIN_LOOKUP_TIMEOUT"`
	// Format is the persistence encoding of components: yaml or json.
	Format string `yaml:"format" env:"FORMAT"`
}

func Default() Config {
	return Config{
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		Monitor: MonitorConfig{
			InitialDelay: 50 * time.Millisecond,
			Interval:     50 * time.Millisecond,
			Shards:       16,
		},
		NPC: NPCConfig{
			DefaultDisplayName: "NPC",
			SkinLookupTimeout:  10 * time.Second,
			Format:             "yaml",
		},
	}
}

// Load reads YAML from r on top of Default. An empty document yields the
// defaults.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// LoadFile loads path, applies environment overrides and validates the
// result. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Load(bytes.NewReader(raw))
	if err != nil {
		return Config{}, err
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from REVERIES_* variables. A nil environment
// reads the process environment.
func (c *Config) ApplyEnv(environment map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Encoding {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.encoding: unknown encoding %q", c.Log.Encoding))
	}
	if c.Monitor.InitialDelay <= 0 {
		errs = append(errs, errors.New("monitor.initial_delay: must be positive"))
	}
	if c.Monitor.Interval <= 0 {
		errs = append(errs, errors.New("monitor.interval: must be positive"))
	}
	if c.Monitor.Shards < 0 {
		errs = append(errs, errors.New("monitor.shards: must not be negative"))
	}
	if c.NPC.SkinLookupTimeout <= 0 {
		errs = append(errs, errors.New("npc.skin_lookup_timeout: must be positive"))
	}
	if _, err := c.Format(); err != nil {
		errs = append(errs, fmt.Errorf("npc.format: %w", err))
	}
	if _, err := c.TextMessages(); err != nil {
		errs = append(errs, fmt.Errorf("messages: %w", err))
	}
	return errors.Join(errs...)
}

// LogOptions maps the log section onto logger options.
func (c Config) LogOptions() log.Options {
	level, _ := log.ParseLevel(c.Log.Level)
	return log.Options{
		Level:       level,
		Encoding:    c.Log.Encoding,
		Development: c.Log.Development,
	}
}

// Format returns the component persistence encoding.
func (c Config) Format() (encoding.Format, error) {
	switch c.NPC.Format {
	case "", "yaml":
		return encoding.FormatYAML, nil
	case "json":
		return encoding.FormatJSON, nil
	default:
		return encoding.FormatYAML, fmt.Errorf("unknown format %q", c.NPC.Format)
	}
}

// TextMessages builds the message catalogue: defaults, then the configured
// default display name, then per-id overrides.
func (c Config) TextMessages() (text.Messages, error) {
	msgs := text.DefaultMessages()
	if c.NPC.DefaultDisplayName != "" {
		msgs.DefaultDisplayName = text.FromFormattingCode(c.NPC.DefaultDisplayName)
	}
	return msgs.Override(c.Messages)
}
