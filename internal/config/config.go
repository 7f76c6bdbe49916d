// Package config reads server settings from flags, with SMARTCHESS_*
// environment variables as defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

var ErrUnknownLogLevel = errors.New("unknown log level")

type Config struct {
	Addr           string
	DBPath         string
	AllowedOrigins string
	LogLevel       log.Level
	AlgorithmDelay time.Duration
}

func Default() Config {
	return Config{
		Addr:           ":3000",
		DBPath:         "smartchess.db",
		AllowedOrigins: "http://localhost:5173",
		LogLevel:       log.LevelInfo,
		AlgorithmDelay: 500 * time.Millisecond,
	}
}

// Load parses args on a new flag set named name. Environment values, looked
// up through getenv, replace the built-in defaults; flags given on the
// command line win over both.
func Load(name string, args []string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if v := getenv("SMARTCHESS_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("SMARTCHESS_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := getenv("SMARTCHESS_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = v
	}
	level := "info"
	if v := getenv("SMARTCHESS_LOG_LEVEL"); v != "" {
		level = v
	}
	if v := getenv("SMARTCHESS_ALGORITHM_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("SMARTCHESS_ALGORITHM_DELAY: %w", err)
		}
		cfg.AlgorithmDelay = d
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "address to listen on")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the sqlite game archive")
	fs.StringVar(&cfg.AllowedOrigins, "origins", cfg.AllowedOrigins, "comma separated CORS origins")
	fs.StringVar(&level, "log-level", level, "trace, debug, info, warn or error")
	fs.DurationVar(&cfg.AlgorithmDelay, "algorithm-delay", cfg.AlgorithmDelay, "pause before each algorithm move")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	lvl, err := ParseLevel(level)
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = lvl
	return cfg, nil
}

func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownLogLevel)
}

// Origins splits AllowedOrigins for the websocket upgrader.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
