//go:build !windows

package collect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
)

// query reads os-release. Platforms without one report the GOOS name.
func (c *OSCollector) query(ctx context.Context) (OS, error) {
	f, err := os.Open(c.OSReleasePath)
	if errors.Is(err, os.ErrNotExist) {
		return OS{Name: runtime.GOOS}, nil
	}
	if err != nil {
		return OS{}, fmt.Errorf("failed to open %s: %w", c.OSReleasePath, err)
	}
	defer f.Close()
	return parseOSRelease(f)
}
