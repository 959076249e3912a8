//go:build linux

package system

import (
	"context"
	"encoding/binary"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

// WatchKeys reads every /dev/input/event* device until ctx is done and runs
// the action bound to each pressed key. Actions never run concurrently.
// Without input devices it logs and returns.
func WatchKeys(ctx context.Context, l logger, keys KeyMap) {
	if len(keys) == 0 {
		return
	}
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		l.Infof("input", "no evdev devices, console keys disabled")
		return
	}

	tvSize := binary.Size(unix.Timeval{})
	var mu sync.Mutex
	press := func(code uint16) {
		fn := keys[code]
		if fn == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		l.Infof("input", "key %d pressed", code)
		fn()
	}
	for _, path := range paths {
		go readKeys(ctx, l, path, tvSize, press)
	}
}

func readKeys(ctx context.Context, l logger, path string, tvSize int, press func(code uint16)) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		l.Infof("input", "skip %s: %v", path, err)
		return
	}
	defer unix.Close(fd)

	buf := make([]byte, 64*(tvSize+8))
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for ctx.Err() == nil {
		fds[0].Revents = 0
		ready, err := unix.Poll(fds, 250)
		if err == unix.EINTR {
			continue
		}
		if err != nil || fds[0].Revents&(unix.POLLHUP|unix.POLLERR) != 0 {
			return
		}
		if ready == 0 || fds[0].Revents&unix.POLLIN == 0 {
			continue
		}
		n, err := unix.Read(fd, buf)
		if err == unix.EAGAIN || err == unix.EINTR {
			continue
		}
		if err != nil {
			return
		}
		for _, code := range keyPresses(buf[:n], tvSize) {
			press(code)
		}
	}
}
