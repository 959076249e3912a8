//go:build unix

package system

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// RedirectStdio appends stdout and stderr to path at the descriptor level,
// so runtime panics from any goroutine land in the file. Each call writes
// a session marker first. An empty path is a no-op.
func RedirectStdio(path string) error {
	if path == "" {
		return nil
	}
	f, err := openStdioLog(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, std := range []*os.File{os.Stdout, os.Stderr} {
		if err := unix.Dup2(int(f.Fd()), int(std.Fd())); err != nil {
			return fmt.Errorf("dup2 %s: %w", std.Name(), err)
		}
	}
	return nil
}

func openStdioLog(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(f, "=== backdrop pid %d %s ===\n", os.Getpid(), time.Now().Format(time.RFC3339))
	return f, nil
}
