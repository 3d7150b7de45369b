package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"logonlog/internal/winutil"
)

// hardwareScript queries WMI for the machine facts in one shell call.
const hardwareScript = `$cs = Get-CimInstance Win32_ComputerSystem
$p = Get-CimInstance Win32_ComputerSystemProduct
$b = Get-CimInstance Win32_BIOS
$o = Get-CimInstance Win32_OperatingSystem
[pscustomobject]@{
  Manufacturer = $cs.Manufacturer
  Model = $cs.Model
  UUID = $p.UUID
  SerialNumber = $b.SerialNumber
  Description = $o.Description
} | ConvertTo-Json -Compress`

// HardwareCollector reads make, model, UUID and serial number.
type HardwareCollector struct {
	Shell winutil.Runner
	// DMIRoot is where the kernel exposes SMBIOS strings on Linux.
	DMIRoot string
}

// NewHardwareCollector returns a collector using shell on Windows.
func NewHardwareCollector(shell winutil.Runner) *HardwareCollector {
	return &HardwareCollector{Shell: shell, DMIRoot: "/sys/class/dmi/id"}
}

// Name returns the collector's identifier.
func (c *HardwareCollector) Name() string {
	return "hardware"
}

// Collect queries the hardware and stores the result.
func (c *HardwareCollector) Collect(ctx context.Context, facts *Facts) error {
	hw, err := c.query(ctx)
	if err != nil {
		return err
	}
	facts.SetHardware(hw)
	return nil
}

type wmiHardware struct {
	Manufacturer *string `json:"Manufacturer"`
	Model        *string `json:"Model"`
	UUID         *string `json:"UUID"`
	SerialNumber *string `json:"SerialNumber"`
	Description  *string `json:"Description"`
}

// parseHardwareJSON decodes hardwareScript output. Null properties become
// empty strings.
func parseHardwareJSON(out string) (Hardware, error) {
	var w wmiHardware
	if err := json.Unmarshal([]byte(out), &w); err != nil {
		return Hardware{}, fmt.Errorf("failed to decode hardware query output: %w", err)
	}
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return strings.TrimSpace(*s)
	}
	return Hardware{
		Make:          deref(w.Manufacturer),
		Model:         deref(w.Model),
		UUID:          deref(w.UUID),
		SerialNumber:  deref(w.SerialNumber),
		OSDescription: deref(w.Description),
	}, nil
}

// readDMI reads SMBIOS strings from sysfs. Unreadable entries (product_uuid
// and product_serial need root) are left empty.
func readDMI(root string) Hardware {
	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(data))
	}
	return Hardware{
		Make:         read("sys_vendor"),
		Model:        read("product_name"),
		UUID:         read("product_uuid"),
		SerialNumber: read("product_serial"),
	}
}
