// Package winutil runs the shell commands the collectors depend on.
package winutil

import (
	"bytes"
	"context"
	"os/exec"
)

// ExecWithContext executes a command with context support, returning stdout, stderr, and error.
func ExecWithContext(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	return stdoutBuf.Bytes(), stderrBuf.Bytes(), err
}
