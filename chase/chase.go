// Package chase generates the compiler hypotheses that break the circular
// dependency between a manifest's conditionals and compiler selection.
//
// Which base range a manifest imposes depends on the compiler it is
// finalized against, and which compiler is acceptable depends on that range.
// Each known catalog entry is taken as a hypothesis: the manifest is
// finalized as if that compiler were in use, and the resulting constraints
// are then checked against the whole catalog.
package chase

import (
	"iter"

	"github.com/albertocavalcante/go-ghcselect/catalog"
	"github.com/albertocavalcante/go-ghcselect/manifest"
	"github.com/albertocavalcante/go-ghcselect/version"
	"github.com/albertocavalcante/go-ghcselect/versionrange"
)

// Candidate is one compiler hypothesis.
type Candidate struct {
	// Base is the base range implied by the caller's override, or any
	// version when there is none.
	Base versionrange.Range
	// Compiler is the synthetic compiler the manifest is finalized against.
	Compiler manifest.Compiler
	// Entry is the catalog entry the hypothesis was seeded from.
	Entry catalog.Entry
}

// Candidates yields one candidate per catalog entry. When baseOverride is
// set, only entries bundling exactly that base version are used.
//
// The order of candidates is not significant; callers rank the outcomes.
func Candidates(cat *catalog.Catalog, baseOverride *version.Version) iter.Seq[Candidate] {
	base := versionrange.Any()
	if baseOverride != nil {
		base = base.Intersect(versionrange.Exactly(*baseOverride))
	}

	return func(yield func(Candidate) bool) {
		for _, e := range cat.WithBaseIn(base).Entries() {
			c := Candidate{
				Base:     base,
				Compiler: manifest.GHC(e.Compiler),
				Entry:    e,
			}
			if !yield(c) {
				return
			}
		}
	}
}

// FirstOf evaluates attempts in order and returns the first result that
// reports true. Later attempts are not evaluated.
func FirstOf[T any](attempts ...func() (T, bool)) (T, bool) {
	for _, attempt := range attempts {
		if v, ok := attempt(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
