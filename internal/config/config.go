// Package config provides configuration types and defaults for the hmicap tools.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hmicap/hmicap-go/pkg/audio"
	"github.com/hmicap/hmicap-go/pkg/audio/output"
	"github.com/hmicap/hmicap-go/pkg/container"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. HMICAP_GLITCH_SEED
const EnvPrefix = "HMICAP"

// Config holds all configuration options for hmicap.
type Config struct {
	Backend          string        `mapstructure:"backend" yaml:"backend"`
	FramesPerBuffer  int           `mapstructure:"frames_per_buffer" yaml:"frames_per_buffer"`
	ProgressInterval time.Duration `mapstructure:"progress_interval" yaml:"progress_interval"`
	CompressionLevel int           `mapstructure:"compression_level" yaml:"compression_level"`
	Volume           int           `mapstructure:"volume" yaml:"volume"`
	LogFile          string        `mapstructure:"log_file" yaml:"log_file"`
	TUI              bool          `mapstructure:"tui" yaml:"tui"`
	Glitch           GlitchConfig  `mapstructure:"glitch" yaml:"glitch"`
	Convert          ConvertConfig `mapstructure:"convert" yaml:"convert"`
}

// GlitchConfig sets the glitch state a playback session starts with.
type GlitchConfig struct {
	// Seed replays a session's glitch pattern; 0 picks a random seed
	Seed    uint64 `mapstructure:"seed" yaml:"seed"`
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	// Intensity is 0.0 - 1.0
	Intensity float32 `mapstructure:"intensity" yaml:"intensity"`
}

// ConvertConfig holds defaults for the convert command.
type ConvertConfig struct {
	// Width is int32 or float32
	Width string `mapstructure:"width" yaml:"width"`
	// Format is the container kind used when the output has no extension
	Format string `mapstructure:"format" yaml:"format"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Backend:          "oto",
		FramesPerBuffer:  output.DefaultFramesPerBuffer,
		ProgressInterval: 100 * time.Millisecond,
		CompressionLevel: container.DefaultCompressionLevel,
		Volume:           100,
		LogFile:          "hmicap.log",
		Convert: ConvertConfig{
			Width:  "int32",
			Format: container.KindCompressed.String(),
		},
	}
}

// Validate checks configuration for errors.
func (c Config) Validate() error {
	if !output.Known(c.Backend) {
		return fmt.Errorf("backend: unknown output %q (available: %s)",
			c.Backend, strings.Join(output.Backends(), ", "))
	}
	if c.FramesPerBuffer <= 0 || c.FramesPerBuffer > 1<<16 {
		return fmt.Errorf("frames_per_buffer: %d is out of range 1-65536", c.FramesPerBuffer)
	}
	if c.ProgressInterval < 10*time.Millisecond {
		return fmt.Errorf("progress_interval: %v is shorter than 10ms", c.ProgressInterval)
	}
	if c.CompressionLevel < 1 || c.CompressionLevel > 22 {
		return fmt.Errorf("compression_level: %d is out of range 1-22", c.CompressionLevel)
	}
	if c.Volume < 0 || c.Volume > 100 {
		return fmt.Errorf("volume: %d is out of range 0-100", c.Volume)
	}
	if c.Glitch.Intensity < 0 || c.Glitch.Intensity > 1 {
		return fmt.Errorf("glitch.intensity: %v is out of range 0-1", c.Glitch.Intensity)
	}
	if _, err := audio.ParseWidth(c.Convert.Width); err != nil {
		return fmt.Errorf("convert.width: %w", err)
	}
	if _, err := container.ParseKind(c.Convert.Format); err != nil {
		return fmt.Errorf("convert.format: %w", err)
	}
	return nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "hmicap", "config.yaml")
}

// SetDefaults registers every default with v so environment variables and
// flags can override keys that no config file sets.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("backend", d.Backend)
	v.SetDefault("frames_per_buffer", d.FramesPerBuffer)
	v.SetDefault("progress_interval", d.ProgressInterval)
	v.SetDefault("compression_level", d.CompressionLevel)
	v.SetDefault("volume", d.Volume)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("tui", d.TUI)
	v.SetDefault("glitch.seed", d.Glitch.Seed)
	v.SetDefault("glitch.enabled", d.Glitch.Enabled)
	v.SetDefault("glitch.intensity", d.Glitch.Intensity)
	v.SetDefault("convert.width", d.Convert.Width)
	v.SetDefault("convert.format", d.Convert.Format)
}

// Load resolves the configuration from defaults, the config file, HMICAP_*
// environment variables and any flags already bound to v. An empty path
// reads DefaultPath when it exists; an explicit path must exist.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# HMICAP Configuration

# Audio output: oto, malgo, portaudio or null
backend: oto

# Frames per audio callback
frames_per_buffer: 256

# How often the progress line redraws
progress_interval: 100ms

# Software volume (0-100)
volume: 100

# Log file (use --verbose to also log to stderr)
log_file: hmicap.log

# Start playback in the full-screen TUI
tui: false

# Glitch state at the start of playback
glitch:
  seed: 0          # 0 = random; set to replay a session
  enabled: false
  intensity: 0.0   # 0.0 - 1.0

# zstd level for .hmicap7 and .hmica7 (1-22)
compression_level: 19

# Defaults for 'hmicap convert'
convert:
  width: int32     # int32 or float32
  format: hmicap7  # used when the output path has no known extension
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	// Create parent directory if needed
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file %s already exists", configPath)
	}

	// Write the template
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
