package catalog

import (
	"github.com/albertocavalcante/go-ghcselect/version"
	"github.com/albertocavalcante/go-ghcselect/versionrange"
)

// release is one row of the built-in table.
type release struct {
	compiler string
	base     string
	// cabal is the major version of the Cabal library shipped with the
	// compiler. Its build tool accepts that version and anything newer.
	cabal string
}

// releases lists the last patch release of each GHC major series, plus
// 8.10.2 which is still pinned by older resolvers.
var releases = []release{
	{"7.10.3", "4.8.2.0", "1.22"},
	{"8.0.2", "4.9.1.0", "1.24"},
	{"8.2.2", "4.10.1.0", "2.0"},
	{"8.4.4", "4.11.1.0", "2.2"},
	{"8.6.5", "4.12.0.0", "2.4"},
	{"8.8.4", "4.13.0.0", "3.0"},
	{"8.10.2", "4.14.1.0", "3.2"},
	{"8.10.7", "4.14.3.0", "3.2"},
	{"9.0.2", "4.15.1.0", "3.4"},
	{"9.2.8", "4.16.4.0", "3.6"},
	{"9.4.8", "4.17.2.1", "3.8"},
	{"9.6.6", "4.18.2.1", "3.10"},
	{"9.8.4", "4.19.2.0", "3.10"},
	{"9.10.1", "4.20.0.0", "3.12"},
	{"9.12.1", "4.21.0.0", "3.14"},
}

var builtin = buildDefault()

func buildDefault() *Catalog {
	entries := make([]Entry, len(releases))
	for i, r := range releases {
		entries[i] = Entry{
			Compiler: version.MustParse(r.compiler),
			Base:     version.MustParse(r.base),
			Setup:    versionrange.AtLeast(version.MustParse(r.cabal)),
		}
	}
	return MustNew(entries...)
}

// Default returns the built-in catalog of GHC releases.
func Default() *Catalog {
	return builtin
}
