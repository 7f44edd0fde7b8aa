package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "scoreplay"

type Config struct {
	Score string `koanf:"score"` // default score file, overridden by the command line

	// MIDI output settings
	MIDI MIDIConfig `koanf:"midi"`

	// Playback tuning
	Playback PlaybackConfig `koanf:"playback"`

	// Logging
	Log LogConfig `koanf:"log"`

	// Terminal UI
	UI UIConfig `koanf:"ui"`
}

// MIDIConfig holds MIDI output configuration.
type MIDIConfig struct {
	Port string `koanf:"port"` // substring of the output port name, empty = first port
}

// PlaybackConfig holds scheduler settings.
type PlaybackConfig struct {
	SeekBufferMs int `koanf:"seek_buffer_ms"` // added to every seek target (0-1000, default: 50)
	SeekStepMs   int `koanf:"seek_step_ms"`   // host seek step (default: 1000)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `koanf:"level"` // "debug", "info", "warn", "error" (default: "info")
	File  string `koanf:"file"`  // log file path, empty = host default
}

// UIConfig holds TUI appearance settings.
type UIConfig struct {
	Icons string `koanf:"icons"` // "nerd", "unicode", "none" (default: "unicode")
}

func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom loads the given TOML files in order, later files overriding
// earlier ones. Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Score != "" {
		cfg.Score = expandPath(cfg.Score)
	}
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/scoreplay/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// SeekBuffer returns the seek buffer with defaults applied.
func (c *Config) SeekBuffer() time.Duration {
	ms := c.Playback.SeekBufferMs
	if ms <= 0 || ms > 1000 {
		ms = 50
	}
	return time.Duration(ms) * time.Millisecond
}

// SeekStep returns the host seek step with defaults applied.
func (c *Config) SeekStep() time.Duration {
	ms := c.Playback.SeekStepMs
	if ms <= 0 {
		ms = 1000
	}
	return time.Duration(ms) * time.Millisecond
}

// LogLevel returns the configured level name, "info" when unset or unknown.
func (c *Config) LogLevel() string {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
		return c.Log.Level
	default:
		return "info"
	}
}
