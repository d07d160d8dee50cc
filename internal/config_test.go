package internal

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/starford/modsync/internal/apperr"
)

func TestPathsConfig_RequiresAppData(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing appdata_dir should fail")
	}
	cfg.Paths.AppDataDir = "/games/bg3"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestPathsConfig_ProfileDir(t *testing.T) {
	c := PathsConfig{AppDataDir: "/games/bg3"}
	want := filepath.Join("/games/bg3", "PlayerProfiles", "Public")
	if got := c.ProfileDir(); got != want {
		t.Errorf("ProfileDir = %q, want %q", got, want)
	}
	c.ModsettingsDir = "/elsewhere"
	if got := c.ProfileDir(); got != "/elsewhere" {
		t.Errorf("override ignored: %q", got)
	}
}

func TestConfig_JournalPath(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Paths.DataDir = "/work"
	if got := cfg.JournalPath(); got != filepath.Join("/work", "modsync.db") {
		t.Errorf("JournalPath = %q", got)
	}
	cfg.Journal.Path = "/tmp/j.db"
	if got := cfg.JournalPath(); got != "/tmp/j.db" {
		t.Errorf("JournalPath = %q", got)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	content := "[paths]\nappdata_dir = \"/games/bg3\"\n\n[logging]\nlog_level = \"debug\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Paths.AppDataDir != "/games/bg3" {
		t.Errorf("appdata_dir = %q", cfg.Paths.AppDataDir)
	}
	if cfg.Paths.DataDir != "." {
		t.Errorf("data_dir default lost: %q", cfg.Paths.DataDir)
	}
	if cfg.Logging.LogLevel != slog.LevelDebug {
		t.Errorf("log_level = %v", cfg.Logging.LogLevel)
	}
	if !cfg.Journal.Enabled {
		t.Error("journal should stay enabled by default")
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), ConfigFileName))
	if !errors.Is(err, apperr.ErrConfigNotFound) {
		t.Fatalf("err = %v, want ErrConfigNotFound", err)
	}
}

func TestConfigTemplate_Parses(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := toml.Unmarshal([]byte(ConfigTemplate), cfg); err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
	if cfg.Paths.AppDataDir == "" || cfg.Logging.LogLevel != slog.LevelInfo {
		t.Errorf("unexpected template values: %+v", cfg)
	}
}

func TestConfigTemplate_WindowsAppData(t *testing.T) {
	t.Setenv("LOCALAPPDATA", `C:\Users\Ana\AppData\Local`)
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(ConfigTemplate), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("template with backslashed appdata does not load: %v", err)
	}
	want := `C:\Users\Ana\AppData\Local/Larian Studios/Baldur's Gate 3`
	if cfg.Paths.AppDataDir != want {
		t.Errorf("appdata_dir = %q, want %q", cfg.Paths.AppDataDir, want)
	}
}
