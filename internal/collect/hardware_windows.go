//go:build windows

package collect

import (
	"context"
	"fmt"
)

// query asks WMI through PowerShell.
func (c *HardwareCollector) query(ctx context.Context) (Hardware, error) {
	if c.Shell == nil {
		return Hardware{}, fmt.Errorf("hardware collector has no shell")
	}
	out, err := c.Shell.Run(ctx, hardwareScript)
	if err != nil {
		return Hardware{}, fmt.Errorf("failed to query hardware: %w", err)
	}
	return parseHardwareJSON(out)
}
