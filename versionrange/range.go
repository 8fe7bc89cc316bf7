// Package versionrange implements the version range algebra used for
// dependency constraints such as "base >=4.14 && <4.15".
//
// A Range is an immutable set of versions stored as sorted, disjoint,
// non-adjacent half-open intervals [lo, hi). Exclusive lower bounds and
// inclusive upper bounds are normalised through version.Next, which is the
// immediate successor of a version:
//
//	>v   becomes  >=v.Next()
//	<=v  becomes  <v.Next()
//
// With every bound in this shape, a Range is empty exactly when it has no
// intervals, so IsEmpty is decidable for any range built from the
// constructors, intersections and unions in this package.
package versionrange

import (
	"slices"
	"strings"

	"github.com/albertocavalcante/go-ghcselect/version"
)

// interval is the half-open range [lo, hi), or [lo, ∞) when open is set.
type interval struct {
	lo   version.Version
	hi   version.Version
	open bool
}

func (iv interval) empty() bool {
	return !iv.open && version.Compare(iv.lo, iv.hi) >= 0
}

func (iv interval) contains(v version.Version) bool {
	if version.Compare(v, iv.lo) < 0 {
		return false
	}
	return iv.open || version.Compare(v, iv.hi) < 0
}

// Range is a set of versions. The zero value is the empty range.
type Range struct {
	ivs []interval
}

// Any returns the range that accepts every version.
// It is the identity element for Intersect.
func Any() Range {
	return Range{ivs: []interval{{lo: version.Lowest, open: true}}}
}

// None returns the range that accepts no version.
// It is the absorbing element for Intersect.
func None() Range {
	return Range{}
}

// Exactly returns the range that accepts only v.
func Exactly(v version.Version) Range {
	return span(v, v.Next())
}

// AtLeast returns >=v.
func AtLeast(v version.Version) Range {
	return Range{ivs: []interval{{lo: v, open: true}}}
}

// Above returns >v.
func Above(v version.Version) Range {
	return AtLeast(v.Next())
}

// Below returns <v.
func Below(v version.Version) Range {
	return span(version.Lowest, v)
}

// AtMost returns <=v.
func AtMost(v version.Version) Range {
	return Below(v.Next())
}

// MajorBound returns ^>=v: at least v, and below the next major version,
// where the major version is the first two components.
func MajorBound(v version.Version) Range {
	return span(v, v.BumpAt(1))
}

// Wildcard returns ==v.*: every version that has v as a prefix.
func Wildcard(v version.Version) Range {
	return span(v, v.BumpAt(v.Len()-1))
}

// span returns [lo, hi), normalised to None when empty.
func span(lo, hi version.Version) Range {
	return normalize([]interval{{lo: lo, hi: hi}})
}

// normalize drops empty intervals, sorts, and merges overlapping or
// adjacent intervals.
func normalize(ivs []interval) Range {
	kept := ivs[:0:0]
	for _, iv := range ivs {
		if !iv.empty() {
			kept = append(kept, iv)
		}
	}
	if len(kept) == 0 {
		return Range{}
	}

	slices.SortFunc(kept, func(a, b interval) int {
		return version.Compare(a.lo, b.lo)
	})

	merged := []interval{kept[0]}
	for _, iv := range kept[1:] {
		last := &merged[len(merged)-1]
		if !last.open && version.Compare(iv.lo, last.hi) > 0 {
			merged = append(merged, iv)
			continue
		}
		switch {
		case last.open:
		case iv.open:
			last.open = true
			last.hi = version.Version{}
		case version.Compare(iv.hi, last.hi) > 0:
			last.hi = iv.hi
		}
	}
	return Range{ivs: merged}
}

// Intersect returns the versions accepted by both a and b.
// The result may be empty; it is never an error.
func Intersect(a, b Range) Range {
	var out []interval
	for _, x := range a.ivs {
		for _, y := range b.ivs {
			iv := interval{lo: version.Max(x.lo, y.lo)}
			switch {
			case x.open && y.open:
				iv.open = true
			case x.open:
				iv.hi = y.hi
			case y.open:
				iv.hi = x.hi
			case version.Compare(x.hi, y.hi) <= 0:
				iv.hi = x.hi
			default:
				iv.hi = y.hi
			}
			out = append(out, iv)
		}
	}
	return normalize(out)
}

// IntersectAll folds Intersect over rs starting from Any.
func IntersectAll(rs ...Range) Range {
	acc := Any()
	for _, r := range rs {
		acc = Intersect(acc, r)
	}
	return acc
}

// Union returns the versions accepted by a or b.
func Union(a, b Range) Range {
	out := make([]interval, 0, len(a.ivs)+len(b.ivs))
	out = append(out, a.ivs...)
	out = append(out, b.ivs...)
	return normalize(out)
}

// Intersect is the method form of Intersect.
func (r Range) Intersect(other Range) Range {
	return Intersect(r, other)
}

// Union is the method form of Union.
func (r Range) Union(other Range) Range {
	return Union(r, other)
}

// IsEmpty reports whether no version satisfies r.
func (r Range) IsEmpty() bool {
	return len(r.ivs) == 0
}

// IsAny reports whether r accepts every version.
func (r Range) IsAny() bool {
	return len(r.ivs) == 1 && r.ivs[0].open && r.ivs[0].lo.Equal(version.Lowest)
}

// Contains reports whether v satisfies r.
func (r Range) Contains(v version.Version) bool {
	for _, iv := range r.ivs {
		if iv.contains(v) {
			return true
		}
	}
	return false
}

// Overlaps reports whether some version satisfies both r and other.
func (r Range) Overlaps(other Range) bool {
	return !Intersect(r, other).IsEmpty()
}

// Equal reports whether r and other accept exactly the same versions.
func (r Range) Equal(other Range) bool {
	return slices.EqualFunc(r.ivs, other.ivs, func(a, b interval) bool {
		if a.open != b.open || !a.lo.Equal(b.lo) {
			return false
		}
		return a.open || a.hi.Equal(b.hi)
	})
}

// String renders r in the syntax accepted by Parse.
func (r Range) String() string {
	if r.IsEmpty() {
		return "-none"
	}
	if r.IsAny() {
		return "-any"
	}

	parts := make([]string, 0, len(r.ivs))
	for _, iv := range r.ivs {
		parts = append(parts, iv.String())
	}
	return strings.Join(parts, " || ")
}

func (iv interval) String() string {
	lowest := iv.lo.Equal(version.Lowest)
	switch {
	case iv.open && lowest:
		return "-any"
	case iv.open:
		return ">=" + iv.lo.String()
	case iv.hi.Equal(iv.lo.Next()):
		return "==" + iv.lo.String()
	case lowest:
		return "<" + iv.hi.String()
	default:
		return ">=" + iv.lo.String() + " && <" + iv.hi.String()
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Range) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Range) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
