package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/packrat/internal/archive"
	"github.com/Iron-Ham/packrat/internal/fsx"
)

// Settings represents the complete packrat configuration
type Settings struct {
	// CompressFormat is the container format archive sessions produce
	// Options: "tar.gz", "zip"
	CompressFormat string `mapstructure:"compress_format" yaml:"compress_format"`

	// BaseDir is the directory relative paths resolve against.
	// Defaults to "." (the process working directory).
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`

	// LockBaseDir freezes BaseDir. Once true, attempts to change BaseDir or
	// to clear the lock through Apply are refused (and logged), not applied.
	LockBaseDir bool `mapstructure:"lock_base_dir" yaml:"lock_base_dir"`

	// Encoding is the payload encoding assumed when a write or read declares
	// none (default: "utf8")
	Encoding string `mapstructure:"encoding" yaml:"encoding"`

	// Excludes are glob patterns dropped from every hydration result
	Excludes []string `mapstructure:"excludes" yaml:"excludes"`

	Logging LoggingSettings `mapstructure:"logging" yaml:"logging"`
	Watch   WatchSettings   `mapstructure:"watch" yaml:"watch"`
}

// LoggingSettings controls log output and rotation
type LoggingSettings struct {
	// Enabled controls whether file logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
}

// WatchSettings controls the base-directory watcher
type WatchSettings struct {
	// DebounceMs is how long a path must stay quiet before its change is
	// reported, in milliseconds (default: 250)
	DebounceMs int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
	// Ignore lists glob patterns matched against path base names; matching
	// paths never produce change events (default: [".git"])
	Ignore []string `mapstructure:"ignore" yaml:"ignore"`
}

// Debounce returns the watch debounce window as a time.Duration
func (w *WatchSettings) Debounce() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// Format parses CompressFormat into an archive.Format
func (s *Settings) Format() (archive.Format, error) {
	return archive.ParseFormat(s.CompressFormat)
}

// Default returns a Settings with sensible default values
func Default() *Settings {
	return &Settings{
		CompressFormat: string(archive.FormatTarGz),
		BaseDir:        ".", // the process working directory
		LockBaseDir:    false,
		Encoding:       fsx.DefaultEncoding,
		Excludes:       []string{},
		Logging: LoggingSettings{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Watch: WatchSettings{
			DebounceMs: 250,
			Ignore:     []string{".git"},
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("compress_format", defaults.CompressFormat)
	viper.SetDefault("base_dir", defaults.BaseDir)
	viper.SetDefault("lock_base_dir", defaults.LockBaseDir)
	viper.SetDefault("encoding", defaults.Encoding)
	viper.SetDefault("excludes", defaults.Excludes)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	// Watch defaults
	viper.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
	viper.SetDefault("watch.ignore", defaults.Watch.Ignore)
}

// Load reads the configuration from viper into a Settings struct and validates it
func Load() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, err
	}

	if errs := s.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &s, nil
}

// Get returns the current configuration (convenience function)
func Get() *Settings {
	s, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return s
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "packrat")
	}
	// Fall back to ~/.config/packrat
	home, err := os.UserHomeDir()
	if err != nil {
		return ".packrat"
	}
	return filepath.Join(home, ".config", "packrat")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LogDir returns the directory packrat writes its log files to
func LogDir() string {
	return filepath.Join(ConfigDir(), "logs")
}
