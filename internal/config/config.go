package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	OutputAuto = "auto"
	OutputText = "text"
	OutputJSON = "json"

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type GlobalFlags struct {
	ConfigPath string
	Connect    string
	Output     string
	Color      string
	Pretty     bool
	Yes        bool
	NoTruncate bool
	Timeout    string
	Verbose    bool
}

type Settings struct {
	ConfigDir       string
	ContextsPath    string
	OutputMode      string
	ColorMode       string
	Pretty          bool
	NoTruncate      bool
	Yes             bool
	Timeout         time.Duration
	JournalPath     string
	JournalLockPath string
	LogLevel        slog.Level
}

type fileConfig struct {
	Output     string `yaml:"output"`
	Color      string `yaml:"color"`
	Pretty     *bool  `yaml:"pretty"`
	NoTruncate *bool  `yaml:"no_truncate"`
	Timeout    string `yaml:"timeout"`
	LogLevel   string `yaml:"log_level"`
	Journal    struct {
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"journal"`
}

// Load layers defaults, settings.yaml, RGBLDK_* environment and flags, later
// layers winning.
func Load(flags GlobalFlags) (Settings, error) {
	settings, err := defaultSettings()
	if err != nil {
		return Settings{}, err
	}

	cfgPath := flags.ConfigPath
	if strings.TrimSpace(cfgPath) == "" {
		cfgPath = filepath.Join(settings.ConfigDir, "settings.yaml")
	}
	if err := applyFileConfig(cfgPath, &settings); err != nil {
		return Settings{}, err
	}

	if err := applyEnv(&settings); err != nil {
		return Settings{}, err
	}

	if err := applyFlags(flags, &settings); err != nil {
		return Settings{}, err
	}

	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	return settings, nil
}

func defaultSettings() (Settings, error) {
	dir, err := Dir()
	if err != nil {
		return Settings{}, err
	}
	journalPath, lockPath, err := defaultJournalPaths()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		ConfigDir:       dir,
		ContextsPath:    filepath.Join(dir, "config.toml"),
		OutputMode:      OutputAuto,
		ColorMode:       ColorAuto,
		Timeout:         30 * time.Second,
		JournalPath:     journalPath,
		JournalLockPath: lockPath,
		LogLevel:        slog.LevelWarn,
	}, nil
}

// Dir is the CLI configuration directory: RGBLDK_CONFIG_DIR, else
// $XDG_CONFIG_HOME/rgbldk, else ~/.config/rgbldk.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("RGBLDK_CONFIG_DIR")); v != "" {
		return v, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine config dir (missing $HOME and $XDG_CONFIG_HOME): %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "rgbldk"), nil
}

func defaultJournalPaths() (string, string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, "rgbldk")
	return filepath.Join(dir, "events.db"), filepath.Join(dir, "events.lock"), nil
}

func applyFileConfig(path string, settings *Settings) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read settings: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("parse settings yaml: %w", err)
	}

	if cfg.Output != "" {
		settings.OutputMode = strings.ToLower(cfg.Output)
	}
	if cfg.Color != "" {
		settings.ColorMode = strings.ToLower(cfg.Color)
	}
	if cfg.Pretty != nil {
		settings.Pretty = *cfg.Pretty
	}
	if cfg.NoTruncate != nil {
		settings.NoTruncate = *cfg.NoTruncate
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return fmt.Errorf("settings timeout: %w", err)
		}
		settings.Timeout = d
	}
	if cfg.LogLevel != "" {
		if err := settings.LogLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return fmt.Errorf("settings log_level: %w", err)
		}
	}
	if cfg.Journal.Path != "" {
		settings.JournalPath = cfg.Journal.Path
	}
	if cfg.Journal.LockPath != "" {
		settings.JournalLockPath = cfg.Journal.LockPath
	}
	return nil
}

func applyEnv(settings *Settings) error {
	if v := os.Getenv("RGBLDK_OUTPUT"); v != "" {
		settings.OutputMode = strings.ToLower(v)
	}
	if v := os.Getenv("RGBLDK_COLOR"); v != "" {
		settings.ColorMode = strings.ToLower(v)
	}
	if v := os.Getenv("RGBLDK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.Timeout = d
		} else if secs, err := strconv.Atoi(v); err == nil {
			settings.Timeout = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("RGBLDK_JOURNAL_PATH"); v != "" {
		settings.JournalPath = v
		settings.JournalLockPath = strings.TrimSuffix(v, filepath.Ext(v)) + ".lock"
	}
	if v := os.Getenv("RGBLDK_LOG_LEVEL"); v != "" {
		if err := settings.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("RGBLDK_LOG_LEVEL: %w", err)
		}
	}
	return nil
}

func applyFlags(flags GlobalFlags, settings *Settings) error {
	if flags.Output != "" {
		settings.OutputMode = strings.ToLower(flags.Output)
	}
	if flags.Color != "" {
		settings.ColorMode = strings.ToLower(flags.Color)
	}
	if flags.Pretty {
		settings.Pretty = true
	}
	if flags.NoTruncate {
		settings.NoTruncate = true
	}
	settings.Yes = flags.Yes
	if flags.Timeout != "" {
		d, err := time.ParseDuration(flags.Timeout)
		if err != nil {
			return fmt.Errorf("parse --timeout: %w", err)
		}
		settings.Timeout = d
	}
	if flags.Verbose {
		settings.LogLevel = slog.LevelDebug
	}

	switch settings.OutputMode {
	case OutputAuto, OutputText, OutputJSON:
	default:
		return fmt.Errorf("output must be auto, text or json (got %q)", settings.OutputMode)
	}
	switch settings.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be auto, always or never (got %q)", settings.ColorMode)
	}
	return nil
}
