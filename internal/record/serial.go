package record

import (
	"math"
	"time"
)

// Serial is a spreadsheet date serial: days since 1899-12-30, with the
// fractional part carrying the time of day.
type Serial float64

const (
	// unixEpochSerial is the serial of 1970-01-01 00:00.
	unixEpochSerial = 25569
	secondsPerDay   = 86400
)

// ToSerial converts t to a date serial using its wall clock in loc, the
// inverse of FromSerial. A nil loc means time.Local. The sub-second part is
// dropped.
func ToSerial(t time.Time, loc *time.Location) Serial {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	return Serial(float64(wall.Unix())/secondsPerDay + unixEpochSerial)
}

// FromSerial converts a date serial back to a time whose wall clock is
// interpreted in loc. It reports false for values that are not finite.
func FromSerial(s Serial, loc *time.Location) (time.Time, bool) {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	secs := math.Round((f - unixEpochSerial) * secondsPerDay)
	if secs > math.MaxInt64/2 || secs < math.MinInt64/2 {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	u := time.Unix(int64(secs), 0).UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), u.Hour(), u.Minute(), u.Second(), 0, loc), true
}
