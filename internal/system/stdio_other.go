//go:build !unix

package system

import (
	"fmt"
	"os"
	"time"
)

// RedirectStdio swaps os.Stdout and os.Stderr for path. Output the runtime
// writes to the original descriptors is not captured.
func RedirectStdio(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	fmt.Fprintf(f, "=== backdrop pid %d %s ===\n", os.Getpid(), time.Now().Format(time.RFC3339))
	os.Stdout = f
	os.Stderr = f
	return nil
}
