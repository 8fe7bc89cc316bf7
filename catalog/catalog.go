// Package catalog provides the toolchain metadata database: which base
// library each compiler release bundles, and which setup library versions
// its build tool accepts.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/albertocavalcante/go-ghcselect/version"
	"github.com/albertocavalcante/go-ghcselect/versionrange"
)

var (
	// ErrDuplicateCompiler is returned when two entries name the same compiler.
	ErrDuplicateCompiler = errors.New("duplicate compiler version")

	// ErrInvalidEntry is returned for an entry with a missing version.
	ErrInvalidEntry = errors.New("invalid catalog entry")
)

// Entry describes one compiler release.
type Entry struct {
	Compiler version.Version
	// Base is the exact version of the bundled base library.
	Base version.Version
	// Setup is the range of setup library versions the bundled build tool
	// accepts. Unlike Base it is not a single version.
	Setup versionrange.Range
}

func (e Entry) String() string {
	return fmt.Sprintf("ghc-%s (base-%s, setup %s)", e.Compiler, e.Base, e.Setup)
}

// Catalog is an immutable set of entries sorted by compiler version.
// It is safe for concurrent use.
type Catalog struct {
	entries []Entry
}

// New builds a catalog. Entries may be given in any order.
func New(entries ...Entry) (*Catalog, error) {
	sorted := slices.Clone(entries)
	for i, e := range sorted {
		if e.Compiler.IsZero() || e.Base.IsZero() {
			return nil, fmt.Errorf("%w: entry %d: compiler and base versions are required", ErrInvalidEntry, i)
		}
	}
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return version.Compare(a.Compiler, b.Compiler)
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Compiler.Equal(sorted[i-1].Compiler) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCompiler, sorted[i].Compiler)
		}
	}
	return &Catalog{entries: sorted}, nil
}

// MustNew is like New but panics on error.
func MustNew(entries ...Entry) *Catalog {
	c, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the entries in ascending compiler order.
func (c *Catalog) Entries() []Entry {
	return slices.Clone(c.entries)
}

// Versions returns the compiler versions in ascending order.
func (c *Catalog) Versions() []version.Version {
	out := make([]version.Version, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Compiler
	}
	return out
}

// Filter returns the entries for which keep reports true.
func (c *Catalog) Filter(keep func(Entry) bool) *Catalog {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return &Catalog{entries: out}
}

// WithBaseIn keeps entries whose base version lies within r.
func (c *Catalog) WithBaseIn(r versionrange.Range) *Catalog {
	return c.Filter(func(e Entry) bool {
		return r.Contains(e.Base)
	})
}

// WithSetupOverlapping keeps entries whose accepted setup range has at least
// one version in common with r.
func (c *Catalog) WithSetupOverlapping(r versionrange.Range) *Catalog {
	return c.Filter(func(e Entry) bool {
		return e.Setup.Overlaps(r)
	})
}

// Installed keeps entries whose compiler version is in installed.
func (c *Catalog) Installed(installed []version.Version) *Catalog {
	return c.Filter(func(e Entry) bool {
		return slices.ContainsFunc(installed, e.Compiler.Equal)
	})
}

// Newest returns the entry with the highest compiler version.
// It reports false for an empty catalog.
func (c *Catalog) Newest() (Entry, bool) {
	if len(c.entries) == 0 {
		return Entry{}, false
	}
	return c.entries[len(c.entries)-1], true
}

// Lookup returns the entry for an exact compiler version.
func (c *Catalog) Lookup(compiler version.Version) (Entry, bool) {
	i, found := slices.BinarySearchFunc(c.entries, compiler, func(e Entry, v version.Version) int {
		return version.Compare(e.Compiler, v)
	})
	if !found {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Closest returns the newest entry of the same major release as compiler,
// where the major release is the first two components. "8.6.4" finds
// "8.6.5" when only the latter is known.
func (c *Catalog) Closest(compiler version.Version) (Entry, bool) {
	if e, ok := c.Lookup(compiler); ok {
		return e, true
	}
	if compiler.IsZero() {
		return Entry{}, false
	}
	series := versionrange.Wildcard(prefix(compiler, 2))
	return c.Filter(func(e Entry) bool {
		return series.Contains(e.Compiler)
	}).Newest()
}

func prefix(v version.Version, n int) version.Version {
	segs := v.Segments()
	if len(segs) > n {
		segs = segs[:n]
	}
	return version.New(segs...)
}
