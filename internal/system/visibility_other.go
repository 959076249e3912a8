//go:build !unix

package system

import "context"

// WatchVisibility has no signal source on this platform.
func WatchVisibility(ctx context.Context, l logger, onChange func(visible bool)) {
	if l != nil {
		l.Infof("visibility", "visibility signals unsupported on this platform")
	}
}
