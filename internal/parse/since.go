// Package parse provides parsing, validation, and normalization utilities for the logonlog CLI.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	sinceDuration = regexp.MustCompile(`^(?:\d+(?:\.\d+)?[wdhms])+$`)
	sinceTerm     = regexp.MustCompile(`(\d+(?:\.\d+)?)([wdhms])`)
)

var sinceUnits = map[string]time.Duration{
	"w": 7 * 24 * time.Hour,
	"d": 24 * time.Hour,
	"h": time.Hour,
	"m": time.Minute,
	"s": time.Second,
}

// ParseSince parses an --since value into a cutoff instant. It accepts an
// RFC3339 timestamp, or a lookback such as "7d", "2w" or "1d12h" that is
// subtracted from now and truncated to the second.
// wasSet is false only for an empty input.
func ParseSince(input string, now time.Time) (cutoff time.Time, wasSet bool, err error) {
	if input == "" {
		return time.Time{}, false, nil
	}

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t, true, nil
	}

	lookback, ok := parseLookback(input)
	if !ok {
		return time.Time{}, true, fmt.Errorf("invalid --since %q: must be RFC3339 or a duration like 7d, 72h, 15m, 30s, 2w", input)
	}
	return now.UTC().Add(-lookback).Truncate(time.Second), true, nil
}

// parseLookback sums number+unit terms (w, d, h, m, s). Signs and
// unknown units are rejected.
func parseLookback(s string) (time.Duration, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !sinceDuration.MatchString(s) {
		return 0, false
	}

	var total time.Duration
	for _, m := range sinceTerm.FindAllStringSubmatch(s, -1) {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		total += time.Duration(n * float64(sinceUnits[m[2]]))
	}
	return total, true
}
