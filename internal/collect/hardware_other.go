//go:build !windows

package collect

import "context"

// query reads SMBIOS strings where the platform exposes them.
func (c *HardwareCollector) query(ctx context.Context) (Hardware, error) {
	return readDMI(c.DMIRoot), nil
}
