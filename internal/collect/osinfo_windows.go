//go:build windows

package collect

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const currentVersionKey = `SOFTWARE\Microsoft\Windows NT\CurrentVersion`

// query reads ProductName and DisplayVersion from the registry. Older
// builds have no DisplayVersion; it is left empty.
func (c *OSCollector) query(ctx context.Context) (OS, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, currentVersionKey, registry.QUERY_VALUE|registry.WOW64_64KEY)
	if err != nil {
		return OS{}, fmt.Errorf("failed to open %s: %w", currentVersionKey, err)
	}
	defer k.Close()

	name, _, err := k.GetStringValue("ProductName")
	if err != nil {
		return OS{}, fmt.Errorf("failed to read ProductName: %w", err)
	}
	version, _, err := k.GetStringValue("DisplayVersion")
	if err != nil && !errors.Is(err, registry.ErrNotExist) {
		return OS{}, fmt.Errorf("failed to read DisplayVersion: %w", err)
	}
	return OS{Name: name, Version: version}, nil
}
