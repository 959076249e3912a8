package system

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner runs a desktop probe command and returns its trimmed output.
type Runner interface {
	Run(ctx context.Context, cmd string, args ...string) (stdout, stderr string, err error)
}

// ShellRunner executes commands resolved through PATH.
type ShellRunner struct{}

func (ShellRunner) Run(ctx context.Context, cmd string, args ...string) (string, string, error) {
	c := exec.CommandContext(ctx, cmd, args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	err := c.Run()
	out, errOut := strings.TrimSpace(stdout.String()), strings.TrimSpace(stderr.String())
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out, errOut, fmt.Errorf("%s exit %d: %w", cmd, exitErr.ExitCode(), err)
	}
	return out, errOut, err
}
