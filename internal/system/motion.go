package system

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const EnvReducedMotion = "BACKDROP_REDUCED_MOTION"

// Where a reduced-motion answer came from.
const (
	MotionFromEnv       = "env"
	MotionFromGSettings = "gsettings"
	MotionDefault       = "default"
)

// PrefersReducedMotion samples the reduced-motion preference once.
// BACKDROP_REDUCED_MOTION wins when set; otherwise the GNOME
// enable-animations key is consulted through r. A runner failure is
// returned alongside the default (false) so callers can log it.
func PrefersReducedMotion(ctx context.Context, r Runner) (reduced bool, source string, err error) {
	if raw, ok := os.LookupEnv(EnvReducedMotion); ok && strings.TrimSpace(raw) != "" {
		parsed, perr := strconv.ParseBool(strings.TrimSpace(raw))
		if perr != nil {
			return false, MotionFromEnv, fmt.Errorf("%s must be a boolean (got %q): %w", EnvReducedMotion, raw, perr)
		}
		return parsed, MotionFromEnv, nil
	}
	if r == nil {
		return false, MotionDefault, nil
	}

	stdout, stderr, err := r.Run(ctx, "gsettings", "get", "org.gnome.desktop.interface", "enable-animations")
	if err != nil {
		return false, MotionDefault, fmt.Errorf("gsettings enable-animations: %v: %s", err, strings.TrimSpace(stderr))
	}
	switch strings.TrimSpace(stdout) {
	case "false":
		return true, MotionFromGSettings, nil
	case "true":
		return false, MotionFromGSettings, nil
	default:
		return false, MotionDefault, nil
	}
}
