package web

import (
	"fmt"
	"net"
	"os"
	"strconv"
)

const (
	EnvListenAddr = "BACKDROP_LISTEN"
	EnvDevMode    = "BACKDROP_DEV"
)

// ServerConfig configures the control API server. The framebuffer binary
// listens on :80 by default, the desktop hosts on :8080.
type ServerConfig struct {
	ListenAddr string
	DevMode    bool
}

func DefaultServerConfigFromEnv(defaultListenAddr string) (ServerConfig, error) {
	cfg := ServerConfig{ListenAddr: defaultListenAddr}
	if raw := os.Getenv(EnvListenAddr); raw != "" {
		addr, err := NormalizeListenAddr(raw)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("%s: %w", EnvListenAddr, err)
		}
		cfg.ListenAddr = addr
	}
	if raw := os.Getenv(EnvDevMode); raw != "" {
		dev, err := strconv.ParseBool(raw)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("%s must be a boolean (got %q): %w", EnvDevMode, raw, err)
		}
		cfg.DevMode = dev
	}
	return cfg, nil
}

// NormalizeListenAddr accepts "host:port" or a bare port ("8080" means
// ":8080") and rejects anything net.Listen would not take.
func NormalizeListenAddr(addr string) (string, error) {
	if _, err := strconv.ParseUint(addr, 10, 16); err == nil {
		addr = ":" + addr
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return "", fmt.Errorf("invalid port in %q", addr)
	}
	return addr, nil
}
