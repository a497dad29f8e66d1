package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pranshuparmar/wholocked/internal/rm"
)

const (
	EnvConfigPath = "WHOLOCKED_CONFIG"
	appDir        = "wholocked"
	fileName      = "config.toml"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type Config struct {
	Query     rm.Options
	Recursive bool
	KeepGoing bool
	Ignore    []string
	Enrich    bool
	Color     string
	Refresh   time.Duration
	Log       LogConfig
}

type LogConfig struct {
	Level     string
	Timestamp bool
	NoColor   bool
}

type fileConfig struct {
	Slots             int      `toml:"slots"`
	GrowBuffer        bool     `toml:"grow_buffer"`
	MaxGrow           int      `toml:"max_grow"`
	RetryAccessDenied bool     `toml:"retry_access_denied"`
	Recursive         bool     `toml:"recursive"`
	KeepGoing         bool     `toml:"keep_going"`
	Ignore            []string `toml:"ignore"`
	Enrich            bool     `toml:"enrich"`
	Color             string   `toml:"color"`
	Refresh           string   `toml:"refresh"`
	Log               struct {
		Level     string `toml:"level"`
		Timestamp bool   `toml:"timestamp"`
		NoColor   bool   `toml:"no_color"`
	} `toml:"log"`
}

func Default() Config {
	return Config{
		Query:   rm.DefaultOptions(),
		Enrich:  true,
		Color:   ColorAuto,
		Refresh: 2 * time.Second,
		Log:     LogConfig{Level: "warn"},
	}
}

// DefaultPath is <user config dir>/wholocked/config.toml unless
// WHOLOCKED_CONFIG says otherwise
func DefaultPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDir, fileName)
}

// Load reads path over the defaults. A missing file is only an error when
// explicit is set.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("slots") {
		cfg.Query.Slots = raw.Slots
	}
	if meta.IsDefined("grow_buffer") {
		cfg.Query.Grow = raw.GrowBuffer
	}
	if meta.IsDefined("max_grow") {
		cfg.Query.MaxGrow = raw.MaxGrow
	}
	if meta.IsDefined("retry_access_denied") {
		cfg.Query.RetryAccessDenied = raw.RetryAccessDenied
	}
	if meta.IsDefined("recursive") {
		cfg.Recursive = raw.Recursive
	}
	if meta.IsDefined("keep_going") {
		cfg.KeepGoing = raw.KeepGoing
	}
	if meta.IsDefined("ignore") {
		cfg.Ignore = normalizePaths(raw.Ignore)
	}
	if meta.IsDefined("enrich") {
		cfg.Enrich = raw.Enrich
	}
	if meta.IsDefined("color") {
		cfg.Color = strings.ToLower(strings.TrimSpace(raw.Color))
	}
	if meta.IsDefined("refresh") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Refresh))
		if err != nil {
			return Config{}, fmt.Errorf("parse refresh: %w", err)
		}
		cfg.Refresh = d
	}
	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "timestamp") {
		cfg.Log.Timestamp = raw.Log.Timestamp
	}
	if meta.IsDefined("log", "no_color") {
		cfg.Log.NoColor = raw.Log.NoColor
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.Query.Slots < 1 {
		return fmt.Errorf("slots must be at least 1, got %d", cfg.Query.Slots)
	}
	if cfg.Query.MaxGrow < 0 {
		return fmt.Errorf("max_grow must not be negative, got %d", cfg.Query.MaxGrow)
	}
	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", cfg.Color)
	}
	if cfg.Refresh <= 0 {
		return fmt.Errorf("refresh must be positive, got %s", cfg.Refresh)
	}
	return nil
}

func normalizePaths(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
