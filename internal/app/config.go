package app

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rook-computer/backdrop/internal/render"
	"github.com/rook-computer/backdrop/internal/web"
)

const (
	EnvDebug    = "BACKDROP_DEBUG"
	EnvStdioLog = "BACKDROP_STDIO_LOG"
	EnvFPS      = "BACKDROP_FPS"
	EnvDPR      = "BACKDROP_DPR"
)

// Config holds the settings shared by every host binary. Flags override
// the values read from the environment.
type Config struct {
	Debug    bool
	StdioLog string
	FPS      int
	DPR      float64
	Server   web.ServerConfig
}

func DefaultConfigFromEnv(defaultListenAddr string) (Config, error) {
	server, err := web.DefaultServerConfigFromEnv(defaultListenAddr)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		StdioLog: os.Getenv(EnvStdioLog),
		FPS:      render.DefaultFPS,
		DPR:      1,
		Server:   server,
	}

	if raw := os.Getenv(EnvDebug); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%s must be a boolean (got %q): %w", EnvDebug, raw, err)
		}
		cfg.Debug = parsed
	}
	if raw := os.Getenv(EnvFPS); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return Config{}, fmt.Errorf("%s must be a positive integer (got %q)", EnvFPS, raw)
		}
		cfg.FPS = parsed
	}
	if raw := os.Getenv(EnvDPR); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || !(parsed > 0) {
			return Config{}, fmt.Errorf("%s must be a positive number (got %q)", EnvDPR, raw)
		}
		cfg.DPR = parsed
	}
	return cfg, nil
}

// OpenDebugLog opens path for appending and returns a FileLogger on it.
func OpenDebugLog(path string) (FileLogger, *os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return FileLogger{}, nil, fmt.Errorf("open debug log %s: %w", path, err)
	}
	return NewFileLogger(f), f, nil
}
