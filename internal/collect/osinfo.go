package collect

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"
)

// OSCollector reads the installed operating system's product name and version.
type OSCollector struct {
	// OSReleasePath is read on platforms without a registry.
	OSReleasePath string
}

// NewOSCollector returns an OSCollector with platform defaults.
func NewOSCollector() *OSCollector {
	return &OSCollector{OSReleasePath: "/etc/os-release"}
}

// Name returns the collector's identifier.
func (c *OSCollector) Name() string {
	return "os"
}

// Collect queries the operating system and stores the result.
func (c *OSCollector) Collect(ctx context.Context, facts *Facts) error {
	info, err := c.query(ctx)
	if err != nil {
		return err
	}
	facts.SetOS(info)
	return nil
}

// parseOSRelease reads NAME and VERSION_ID (falling back to PRETTY_NAME and
// VERSION) from an os-release file.
func parseOSRelease(r io.Reader) (OS, error) {
	vals := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if unq, err := strconv.Unquote(val); err == nil {
			val = unq
		} else {
			val = strings.Trim(val, `'"`)
		}
		vals[key] = val
	}
	if err := sc.Err(); err != nil {
		return OS{}, err
	}

	first := func(keys ...string) string {
		for _, k := range keys {
			if v := vals[k]; v != "" {
				return v
			}
		}
		return ""
	}
	return OS{
		Name:    first("NAME", "PRETTY_NAME"),
		Version: first("VERSION_ID", "VERSION"),
	}, nil
}
