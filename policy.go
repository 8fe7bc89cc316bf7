package ghcselect

import (
	"github.com/albertocavalcante/go-ghcselect/chase"
	"github.com/albertocavalcante/go-ghcselect/version"
)

// Outcomes holds the best matches found across all candidates.
type Outcomes struct {
	// Known is the newest match in the whole catalog.
	Known *Match
	// Installed is the newest match among installed compilers.
	Installed *Match
}

// Policy chooses the final match from the outcomes of a resolution.
// It reports false when nothing is acceptable.
type Policy func(Outcomes) (Match, bool)

// PreferInstalled picks the newest installed match and falls back to the
// newest known one.
func PreferInstalled(o Outcomes) (Match, bool) {
	return chase.FirstOf(o.installed, o.known)
}

// AlwaysNewest picks the newest known match even when an older compiler is
// installed.
func AlwaysNewest(o Outcomes) (Match, bool) {
	return chase.FirstOf(o.known)
}

// PolicyFor returns AlwaysNewest when alwaysNewest is set and
// PreferInstalled otherwise.
func PolicyFor(alwaysNewest bool) Policy {
	if alwaysNewest {
		return AlwaysNewest
	}
	return PreferInstalled
}

func (o Outcomes) known() (Match, bool) {
	if o.Known == nil {
		return Match{}, false
	}
	return *o.Known, true
}

func (o Outcomes) installed() (Match, bool) {
	if o.Installed == nil {
		return Match{}, false
	}
	return *o.Installed, true
}

// newer returns whichever of a and b has the newer compiler. Ties keep the
// match found under the newer hypothesis.
func newer(a, b *Match) *Match {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	if c := version.Compare(a.Entry.Compiler, b.Entry.Compiler); c != 0 {
		if c > 0 {
			return a
		}
		return b
	}
	if version.Compare(b.Hypothesis, a.Hypothesis) > 0 {
		return b
	}
	return a
}
