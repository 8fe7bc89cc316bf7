// Package version implements compiler and library version numbers.
//
// A version is a non-empty sequence of dot-separated decimal components, for
// example "8.10.2" or "4.14.3.0". There is no prerelease or build metadata.
//
// Versions are compared component by component. When one version is a strict
// prefix of the other, the shorter one sorts first, so "4.14" < "4.14.0".
// This makes v.Next() (v with a trailing zero appended) the immediate
// successor of v: no version lies strictly between them.
package version

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Version is an immutable dotted version number.
// The zero value is not a valid version; use IsZero to test for it.
type Version struct {
	segs []uint64
	str  string
}

// ParseError represents a version parsing error.
type ParseError struct {
	Version string
	Message string
}

func (e *ParseError) Error() string {
	return "bad version " + strconv.Quote(e.Version) + ": " + e.Message
}

// Parse parses a version string into its components.
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, &ParseError{Version: s, Message: "empty version"}
	}

	parts := strings.Split(s, ".")
	segs := make([]uint64, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return Version{}, &ParseError{Version: s, Message: "empty component"}
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return Version{}, &ParseError{Version: s, Message: "components must be decimal digits"}
			}
		}
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return Version{}, &ParseError{Version: s, Message: "component out of range"}
		}
		segs = append(segs, n)
	}

	return fromSegments(segs), nil
}

// MustParse parses s or panics. Use only for constants and tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// New builds a version from its components.
// It panics if no components are given.
func New(segs ...uint64) Version {
	if len(segs) == 0 {
		panic("version: New requires at least one component")
	}
	return fromSegments(slices.Clone(segs))
}

func fromSegments(segs []uint64) Version {
	var sb strings.Builder
	for i, n := range segs {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.FormatUint(n, 10))
	}
	return Version{segs: segs, str: sb.String()}
}

// String returns the canonical dotted form. Leading zeros are dropped,
// so "08.010" prints as "8.10".
func (v Version) String() string {
	return v.str
}

// IsZero reports whether v is the zero value.
func (v Version) IsZero() bool {
	return len(v.segs) == 0
}

// Segments returns a copy of the numeric components.
func (v Version) Segments() []uint64 {
	return slices.Clone(v.segs)
}

// Len returns the number of components.
func (v Version) Len() int {
	return len(v.segs)
}

// Equal reports whether v and w denote the same version.
func (v Version) Equal(w Version) bool {
	return Compare(v, w) == 0
}

// Next returns the immediate successor of v: v with a zero component appended.
func (v Version) Next() Version {
	segs := make([]uint64, len(v.segs)+1)
	copy(segs, v.segs)
	return fromSegments(segs)
}

// BumpAt truncates v to i+1 components, padding with zeros if needed, and
// increments the last one. BumpAt(1) of "4.14.3" is "4.15".
func (v Version) BumpAt(i int) Version {
	segs := make([]uint64, i+1)
	copy(segs, v.segs)
	segs[i]++
	return fromSegments(segs)
}

// Compare compares two versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
//
// Components are compared numerically; if one version is a prefix of the
// other, the shorter sorts first. The zero Version sorts before everything.
func Compare(a, b Version) int {
	minLen := min(len(a.segs), len(b.segs))
	for i := range minLen {
		if c := cmp.Compare(a.segs[i], b.segs[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a.segs), len(b.segs))
}

// Less reports whether a sorts before b.
func Less(a, b Version) bool {
	return Compare(a, b) < 0
}

// Sort sorts a slice of versions in ascending order.
func Sort(versions []Version) {
	slices.SortFunc(versions, Compare)
}

// Max returns the higher of two versions.
func Max(a, b Version) Version {
	if Compare(a, b) >= 0 {
		return a
	}
	return b
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.str), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Lowest is the smallest valid version, "0".
var Lowest = New(0)
