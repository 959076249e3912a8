//go:build linux

package system

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// linux/kd.h
const (
	kdSetMode  = 0x4B3A
	kdText     = 0x00
	kdGraphics = 0x01
)

const (
	escHideCursor = "\x1b[?25l"
	escShowCursor = "\x1b[?25h"
)

// Active VT first, then the foreground console.
var vtPaths = []string{"/dev/tty", "/dev/tty0"}

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// AcquireConsole puts the VT in graphics mode and hides its cursor so the
// text console does not paint over the framebuffer. Failures are logged.
// The returned release undoes the steps that succeeded.
func AcquireConsole(l logger) (release func()) {
	graphics := onVT(func(p string) error { return kdMode(p, kdGraphics) })
	if graphics != nil {
		l.Errorf("tty", "KD_GRAPHICS: %v", graphics)
	} else {
		l.Infof("tty", "KD_GRAPHICS set")
	}
	cursor := onVT(func(p string) error { return writeVT(p, escHideCursor) })
	if cursor != nil {
		l.Errorf("tty", "hide cursor: %v", cursor)
	}

	return func() {
		if cursor == nil {
			if err := onVT(func(p string) error { return writeVT(p, escShowCursor) }); err != nil {
				l.Errorf("tty", "show cursor: %v", err)
			}
		}
		if graphics == nil {
			if err := onVT(func(p string) error { return kdMode(p, kdText) }); err != nil {
				l.Errorf("tty", "KD_TEXT: %v", err)
			} else {
				l.Infof("tty", "KD_TEXT restored")
			}
		}
	}
}

// onVT runs fn on each VT path until one succeeds.
func onVT(fn func(path string) error) error {
	var errs []error
	for _, p := range vtPaths {
		err := fn(p)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func kdMode(path string, mode int) error {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer unix.Close(fd)
	if err := unix.IoctlSetInt(fd, kdSetMode, mode); err != nil {
		return fmt.Errorf("KDSETMODE on %s: %w", path, err)
	}
	return nil
}

func writeVT(path, seq string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	_, err = f.WriteString(seq)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
