package parse

import (
	"fmt"
	"strings"
)

// ValidateAgeKey validates the --encrypt-age flag value.
// Returns whether the value is set and any validation error.
// Set is true only if non-empty and starts with "age1".
func ValidateAgeKey(s string) (set bool, err error) {
	if s == "" {
		return false, nil
	}

	if !strings.HasPrefix(s, "age1") {
		return false, fmt.Errorf("invalid --encrypt-age: must start with age1")
	}

	return true, nil
}

// ValidateParallel validates the --parallel flag value.
func ValidateParallel(n int) error {
	if n < 1 || n > 64 {
		return fmt.Errorf("invalid --parallel: must be between 1 and 64")
	}
	return nil
}
