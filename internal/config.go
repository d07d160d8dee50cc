package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/modsync/internal/apperr"
	pkgconfig "github.com/starford/modsync/pkg/config"
)

// ConfigFileName is the config file init writes into the data dir.
const ConfigFileName = "conf.toml"

// profileSubdir is where the game keeps modsettings.lsx under appdata.
var profileSubdir = filepath.Join("PlayerProfiles", "Public")

// Config represents the application configuration.
type Config struct {
	Paths   PathsConfig   `toml:"paths" yaml:"paths"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Journal JournalConfig `toml:"journal" yaml:"journal"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Paths.Validate(); err != nil {
		return fmt.Errorf("paths: %w", err)
	}
	return nil
}

// PathsConfig locates the game data and the tool workspace.
type PathsConfig struct {
	AppDataDir     string `toml:"appdata_dir" yaml:"appdata_dir"`
	ModsettingsDir string `toml:"modsettings_dir" yaml:"modsettings_dir"`
	DataDir        string `toml:"data_dir" yaml:"data_dir"`
}

// Validate validates the paths configuration.
func (c *PathsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AppDataDir, validation.Required),
		validation.Field(&c.DataDir, validation.Required),
	)
}

// ProfileDir returns the directory holding modsettings.lsx.
func (c *PathsConfig) ProfileDir() string {
	if c.ModsettingsDir != "" {
		return c.ModsettingsDir
	}
	return filepath.Join(c.AppDataDir, profileSubdir)
}

// LoggingConfig controls the console logger. The log file always records
// debug and above.
type LoggingConfig struct {
	LogLevel         slog.Level `toml:"log_level" yaml:"log_level"`
	LogLevelInStdout bool       `toml:"log_level_in_stdout" yaml:"log_level_in_stdout"`
}

// JournalConfig holds the SQLite operation journal settings.
type JournalConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// JournalPath returns the journal database path, defaulting into the data dir.
func (c *Config) JournalPath() string {
	if c.Journal.Path != "" {
		return c.Journal.Path
	}
	return filepath.Join(c.Paths.DataDir, "modsync.db")
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir: ".",
		},
		Logging: LoggingConfig{
			LogLevel: slog.LevelInfo,
		},
		Journal: JournalConfig{
			Enabled: true,
		},
	}
}

// LoadConfig reads the config file at path over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		if errors.Is(err, pkgconfig.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", path, apperr.ErrConfigNotFound)
		}
		return nil, err
	}
	return cfg, nil
}

// ConfigTemplate is written by init when no config file exists.
const ConfigTemplate = `# modsync configuration

[paths]
# Game data directory. modsettings.lsx is read from PlayerProfiles/Public
# below it and .pak files are copied into its Mods directory.
# Keep paths in literal strings (single quotes) so Windows backslashes
# are not read as escapes.
appdata_dir = '''${LOCALAPPDATA}/Larian Studios/Baldur's Gate 3'''
# Uncomment to read modsettings.lsx from somewhere else.
# modsettings_dir = ''
# Holds mod-data.json, mods/, dump/, inactive/ and logs/.
data_dir = "."

[logging]
# debug, info, warn or error
log_level = "info"
log_level_in_stdout = false

[journal]
enabled = true
# path = "modsync.db"
`
