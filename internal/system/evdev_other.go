//go:build !linux

package system

import "context"

// WatchKeys needs evdev; elsewhere it only logs.
func WatchKeys(ctx context.Context, l logger, keys KeyMap) {
	if len(keys) > 0 {
		l.Infof("input", "console keys unsupported on this platform")
	}
}
