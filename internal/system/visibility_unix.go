//go:build unix

package system

import (
	"context"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// Visibility signals: SIGUSR1 hides the output, SIGUSR2 shows it again.
var (
	SignalHidden  os.Signal = unix.SIGUSR1
	SignalVisible os.Signal = unix.SIGUSR2
)

// WatchVisibility translates visibility signals into onChange calls until
// ctx is done. Calls happen on a single goroutine, in arrival order.
func WatchVisibility(ctx context.Context, l logger, onChange func(visible bool)) {
	if onChange == nil {
		return
	}
	sigs := make(chan os.Signal, 4)
	signal.Notify(sigs, SignalHidden, SignalVisible)
	go func() {
		defer signal.Stop(sigs)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigs:
				visible := sig == SignalVisible
				if l != nil {
					l.Infof("visibility", "%v received, visible=%t", sig, visible)
				}
				onChange(visible)
			}
		}
	}()
}
