// Package period labels a logon time with the school-day period it falls in.
package period

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoPeriod is returned when a time falls outside every period.
var ErrNoPeriod = errors.New("time does not fall into any period")

// Clock is a time of day with minute precision, as minutes after midnight.
type Clock int

// HM builds a Clock from hours and minutes.
func HM(h, m int) Clock {
	return Clock(h*60 + m)
}

// ParseClock parses "HH:MM" in 24-hour form.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: want HH:MM", s)
	}
	return HM(t.Hour(), t.Minute()), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// UnmarshalYAML reads a Clock from "HH:MM".
func (c *Clock) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseClock(node.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML writes a Clock as "HH:MM".
func (c Clock) MarshalYAML() (any, error) {
	return c.String(), nil
}

// Period is a named half-open interval [Start, End) of the day. When End is
// not after Start the period wraps past midnight.
type Period struct {
	Name  string `yaml:"name"`
	Start Clock  `yaml:"start"`
	End   Clock  `yaml:"end"`
}

// Wraps reports whether the period crosses midnight.
func (p Period) Wraps() bool {
	return p.End <= p.Start
}

// Contains reports whether c falls in the period.
func (p Period) Contains(c Clock) bool {
	if p.Wraps() {
		return c >= p.Start || c < p.End
	}
	return c >= p.Start && c < p.End
}

// Defaults returns the standard school-day table.
func Defaults() []Period {
	return []Period{
		{"Before School", HM(5, 0), HM(8, 45)},
		{"Form", HM(8, 45), HM(8, 55)},
		{"Period 1", HM(8, 55), HM(10, 5)},
		{"Period 2", HM(10, 5), HM(11, 15)},
		{"Morning Tea", HM(11, 15), HM(11, 55)},
		{"Period 3", HM(11, 55), HM(13, 5)},
		{"Second Lunch", HM(13, 5), HM(13, 45)},
		{"Period 4", HM(13, 45), HM(14, 55)},
		{"After Hours", HM(14, 55), HM(5, 0)},
	}
}

// Classifier maps times to period names, first match wins.
type Classifier struct {
	periods []Period
}

// NewClassifier validates periods and returns a Classifier over them.
func NewClassifier(periods []Period) (*Classifier, error) {
	if len(periods) == 0 {
		return nil, errors.New("no periods defined")
	}
	for _, p := range periods {
		if p.Name == "" {
			return nil, fmt.Errorf("period starting %s has no name", p.Start)
		}
		if p.Start < 0 || p.Start >= HM(24, 0) || p.End < 0 || p.End >= HM(24, 0) {
			return nil, fmt.Errorf("period %s is out of range", p.Name)
		}
	}
	return &Classifier{periods: append([]Period(nil), periods...)}, nil
}

// Classify returns the name of the period containing t's wall clock.
func (c *Classifier) Classify(t time.Time) (string, error) {
	at := HM(t.Hour(), t.Minute())
	for _, p := range c.periods {
		if p.Contains(at) {
			return p.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoPeriod, t.Format("15:04:05"))
}
