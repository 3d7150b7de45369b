// Package directory parses LDAP distinguished names returned by Active
// Directory and extracts the organisational units the logs record.
package directory

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmpty is returned for a blank distinguished name.
	ErrEmpty = errors.New("empty distinguished name")
	// ErrMalformedRDN is returned for a component without a type=value pair.
	ErrMalformedRDN = errors.New("malformed relative distinguished name")
	// ErrDanglingEscape is returned when a name ends in a lone backslash.
	ErrDanglingEscape = errors.New("dangling escape")
	// ErrNoOU is returned when the name has no OU component.
	ErrNoOU = errors.New("no organizational unit")
	// ErrNoSuffix is returned when an OU carries no underscore-separated suffix.
	ErrNoSuffix = errors.New("organizational unit has no suffix")
)

// RDN is one type=value component of a distinguished name.
type RDN struct {
	Type  string
	Value string
}

func (r RDN) String() string {
	return r.Type + "=" + escape(r.Value)
}

// DN is a parsed distinguished name, most specific component first.
type DN []RDN

// Parse splits a distinguished name such as
// "CN=Jane Citizen,OU=Users_Staff,DC=school,DC=local" into its components.
// Commas, equals signs and backslashes inside values must be escaped with a
// backslash; an escaped pair of hex digits is decoded as a byte.
func Parse(s string) (DN, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmpty
	}

	var (
		dn    DN
		cur   strings.Builder
		typ   string
		inVal bool
	)
	flush := func() error {
		if !inVal {
			return fmt.Errorf("%w: %q", ErrMalformedRDN, cur.String())
		}
		t := strings.TrimSpace(typ)
		v := strings.TrimSpace(cur.String())
		if t == "" || v == "" {
			return fmt.Errorf("%w: %q", ErrMalformedRDN, typ+"="+cur.String())
		}
		dn = append(dn, RDN{Type: t, Value: v})
		cur.Reset()
		typ = ""
		inVal = false
		return nil
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			if i+1 >= len(s) {
				return nil, ErrDanglingEscape
			}
			if i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
				cur.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
				i += 2
				continue
			}
			i++
			cur.WriteByte(s[i])
		case c == '=' && !inVal:
			typ = cur.String()
			cur.Reset()
			inVal = true
		case c == ',':
			if err := flush(); err != nil {
				return nil, err
			}
		default:
			cur.WriteByte(c)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return dn, nil
}

// String renders dn back to its escaped form.
func (dn DN) String() string {
	parts := make([]string, len(dn))
	for i, r := range dn {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

// CommonName returns the value of the leading CN component.
func (dn DN) CommonName() (string, bool) {
	if len(dn) == 0 || !strings.EqualFold(dn[0].Type, "CN") {
		return "", false
	}
	return dn[0].Value, true
}

// ParentOU returns the first OU component, the container directly holding
// the object.
func (dn DN) ParentOU() (RDN, error) {
	for _, r := range dn {
		if strings.EqualFold(r.Type, "OU") {
			return r, nil
		}
	}
	return RDN{}, ErrNoOU
}

// UserOU returns the segment of a user's parent OU between its first and
// second underscores, so "OU=Users_Staff" and "OU=Users_Staff_Temp" both
// give "Staff".
func UserOU(dn DN) (string, error) {
	ou, err := dn.ParentOU()
	if err != nil {
		return "", err
	}
	parts := strings.SplitN(ou.Value, "_", 3)
	if len(parts) < 2 || parts[1] == "" {
		return "", fmt.Errorf("%w: %s", ErrNoSuffix, ou)
	}
	return parts[1], nil
}

// WorkstationOU returns the part of a computer's parent OU after its last
// underscore, so "OU=Computers_Lab_B12" gives "B12". An OU without an
// underscore is returned whole.
func WorkstationOU(dn DN) (string, error) {
	ou, err := dn.ParentOU()
	if err != nil {
		return "", err
	}
	v := ou.Value
	if i := strings.LastIndexByte(v, '_'); i >= 0 {
		v = v[i+1:]
	}
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrNoSuffix, ou)
	}
	return v, nil
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func escape(v string) string {
	var b strings.Builder
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case ',', '=', '\\', '+', '"', '<', '>', ';':
			b.WriteByte('\\')
		}
		b.WriteByte(v[i])
	}
	return b.String()
}
