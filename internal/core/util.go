package core

import (
	"regexp"
	"strings"
)

var (
	invalidNameChars = regexp.MustCompile(`[^a-z0-9_-]`)
	repeatedUnders   = regexp.MustCompile(`_+`)
)

// SanitizeName cleans a label for safe use in a file name.
// It removes or replaces characters that could be problematic in file paths.
func SanitizeName(name string) string {
	name = strings.ToLower(name)
	name = invalidNameChars.ReplaceAllString(name, "_")

	// Collapse runs of underscores, then trim them from the ends
	name = repeatedUnders.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		name = "unknown"
	}
	return name
}
