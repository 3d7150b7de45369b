package record

import (
	"strconv"

	"github.com/google/go-cmp/cmp"
)

func formatSerial(s Serial) string {
	return strconv.FormatFloat(float64(s), 'f', -1, 64)
}

// projectionDiff compares only the fields a schema carries.
func projectionDiff(s Schema, want, got Logon) string {
	project := func(l Logon) []string {
		out := make([]string, 0, s.Len())
		for i, c := range s.columns {
			if i == s.tsIndex {
				out = append(out, l.Time.String())
				continue
			}
			out = append(out, *c.field(&l))
		}
		return out
	}
	return cmp.Diff(project(want), project(got))
}
