package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pranshuparmar/wholocked/internal/output"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel     = "WHOLOCKED_LOG_LEVEL"
	EnvLogTimestamp = "WHOLOCKED_LOG_TIMESTAMP"
	EnvLogNoColor   = "WHOLOCKED_LOG_NOCOLOR"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	Out       io.Writer
}

func DefaultConfig(profile Profile) Config {
	switch profile {
	case ProfileTest:
		return Config{Level: zerolog.DebugLevel, NoColor: true, Out: os.Stderr}
	default:
		return Config{Level: zerolog.WarnLevel, Out: os.Stderr}
	}
}

// ApplyEnv lets the environment override cfg
func ApplyEnv(cfg *Config) {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
}

// New builds a console logger. Messages and fields can carry paths and
// process names, so they go through the terminal sanitizer; without colour
// the whole stream does.
func New(cfg Config) zerolog.Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if cfg.NoColor {
		out = output.NewSafeTerminalWriter(out)
	}
	cw := zerolog.ConsoleWriter{
		Out:                 out,
		NoColor:             cfg.NoColor,
		FormatMessage:       sanitizeValue,
		FormatFieldValue:    sanitizeValue,
		FormatErrFieldValue: sanitizeValue,
	}
	if cfg.Timestamp {
		cw.TimeFormat = time.RFC3339
	} else {
		cw.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	ctx := zerolog.New(cw).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

func sanitizeValue(i any) string {
	if i == nil {
		return ""
	}
	return output.SanitizeTerminal(fmt.Sprint(i))
}

// Configure installs the logger as the global one
func Configure(cfg Config) zerolog.Logger {
	logger := New(cfg)
	log.Logger = logger
	return logger
}

func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.WarnLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.WarnLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
