package config

import (
	"fmt"
	"time"
)

// Config is the whole program configuration. The near-duplicate upstream
// variants diverged on cache path, thresholds, log sink, and output dialect;
// those knobs live here with the observed values as defaults.
//
// All durations are Go duration strings (e.g. "30s", "24h").
type Config struct {
	Cache     CacheConfig     `json:"cache"`
	Speedtest SpeedtestConfig `json:"speedtest"`
	Output    OutputConfig    `json:"output"`
	Logging   LoggingConfig   `json:"logging"`
}

// CacheConfig controls the measurement cache file.
type CacheConfig struct {
	// File overrides the cache path. Empty means
	// <user cache dir>/flux/speed.toml.
	File string `json:"file,omitempty"`

	// TTL is the staleness threshold. Default "24h". A cached measurement
	// exactly TTL old is still fresh.
	TTL string `json:"ttl,omitempty"`

	// Atomic selects write-temp-then-rename instead of plain overwrite.
	Atomic bool `json:"atomic,omitempty"`
}

// SpeedtestConfig controls the external tool invocation.
type SpeedtestConfig struct {
	Command string   `json:"command,omitempty"` // default "fast"
	Args    []string `json:"args,omitempty"`    // default ["--json"]

	// Timeout bounds the tool run. "0s" (the default) means unbounded.
	Timeout string `json:"timeout,omitempty"`
}

// OutputConfig controls the rendered status line.
type OutputConfig struct {
	// Format is one of: plain, polybar, waybar, pretty.
	Format string `json:"format,omitempty"`

	// Glyph leads the line in the color-capable formats. Default "↓".
	Glyph string `json:"glyph,omitempty"`

	Bands BandsConfig `json:"bands"`
}

// BandsConfig maps latency to a severity band and its color.
//
// good:    latency <= good_max_ms
// warning: good_max_ms < latency <= warning_max_ms
// bad:     latency > warning_max_ms
type BandsConfig struct {
	GoodMaxMs    uint64 `json:"good_max_ms,omitempty"`    // default 50
	WarningMaxMs uint64 `json:"warning_max_ms,omitempty"` // default 150

	GoodColor    string `json:"good_color,omitempty"`    // default "#b8bb26"
	WarningColor string `json:"warning_color,omitempty"` // default "#fabd2f"
	BadColor     string `json:"bad_color,omitempty"`     // default "#fb4934"
}

// LoggingConfig mirrors logx.Config.
type LoggingConfig struct {
	Level   string     `json:"level,omitempty"`
	Console bool       `json:"console,omitempty"`
	File    FileConfig `json:"file,omitempty"`
	Journal bool       `json:"journal,omitempty"`
}

type FileConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"` // default <tmpdir>/flux.log
}

// Formats accepted by output.format.
var knownFormats = map[string]bool{
	"plain":   true,
	"polybar": true,
	"waybar":  true,
	"pretty":  true,
}

const (
	DefaultTTL     = 24 * time.Hour
	DefaultCommand = "fast"
	DefaultFormat  = "plain"
	DefaultGlyph   = "↓"

	DefaultGoodMaxMs    = 50
	DefaultWarningMaxMs = 150

	DefaultGoodColor    = "#b8bb26"
	DefaultWarningColor = "#fabd2f"
	DefaultBadColor     = "#fb4934"
)

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields in place.
func (c *Config) ApplyDefaults() {
	if c.Speedtest.Command == "" {
		c.Speedtest.Command = DefaultCommand
	}
	if c.Speedtest.Args == nil {
		c.Speedtest.Args = []string{"--json"}
	}
	if c.Output.Format == "" {
		c.Output.Format = DefaultFormat
	}
	if c.Output.Glyph == "" {
		c.Output.Glyph = DefaultGlyph
	}
	if c.Output.Bands.GoodMaxMs == 0 {
		c.Output.Bands.GoodMaxMs = DefaultGoodMaxMs
	}
	if c.Output.Bands.WarningMaxMs == 0 {
		c.Output.Bands.WarningMaxMs = DefaultWarningMaxMs
	}
	if c.Output.Bands.GoodColor == "" {
		c.Output.Bands.GoodColor = DefaultGoodColor
	}
	if c.Output.Bands.WarningColor == "" {
		c.Output.Bands.WarningColor = DefaultWarningColor
	}
	if c.Output.Bands.BadColor == "" {
		c.Output.Bands.BadColor = DefaultBadColor
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if _, err := ParseDurationField("cache.ttl", c.Cache.TTL); err != nil {
		return err
	}
	if _, err := ParseDurationField("speedtest.timeout", c.Speedtest.Timeout); err != nil {
		return err
	}
	if c.Speedtest.Command == "" {
		return fmt.Errorf("speedtest.command: must not be empty")
	}
	if !knownFormats[c.Output.Format] {
		return fmt.Errorf("output.format: unknown format %q", c.Output.Format)
	}
	if c.Output.Bands.GoodMaxMs >= c.Output.Bands.WarningMaxMs {
		return fmt.Errorf("output.bands: good_max_ms (%d) must be below warning_max_ms (%d)",
			c.Output.Bands.GoodMaxMs, c.Output.Bands.WarningMaxMs)
	}
	return nil
}

// TTL returns the parsed staleness threshold.
func (c *Config) TTL() (time.Duration, error) {
	return ParseDurationOrDefault("cache.ttl", c.Cache.TTL, DefaultTTL)
}

// ProbeTimeout returns the parsed tool timeout; zero means unbounded.
func (c *Config) ProbeTimeout() (time.Duration, error) {
	return ParseDurationField("speedtest.timeout", c.Speedtest.Timeout)
}
