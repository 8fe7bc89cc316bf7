package ghcselect

import (
	"github.com/albertocavalcante/go-ghcselect/catalog"
	"github.com/albertocavalcante/go-ghcselect/constraints"
	"github.com/albertocavalcante/go-ghcselect/manifest"
	"github.com/albertocavalcante/go-ghcselect/version"
)

// Context is the environment a Resolver selects from.
type Context struct {
	// Catalog lists the known compilers. Nil means catalog.Default().
	Catalog *catalog.Catalog

	// Installed lists the compiler versions available locally. Versions
	// missing from Catalog are ignored.
	Installed []version.Version

	// Policy picks between the newest installed and newest known matches.
	// Nil means PreferInstalled.
	Policy Policy
}

// Match is a catalog entry that satisfied the bounds extracted under one
// compiler hypothesis.
type Match struct {
	Entry catalog.Entry

	// Hypothesis is the compiler the manifest was finalized against when
	// Entry was found. It differs from Entry.Compiler when the entry was
	// reached from another candidate.
	Hypothesis version.Version

	Bounds constraints.Bounds

	// Flags is the flag assignment finalization settled on.
	Flags manifest.FlagAssignment
}

// Selection is the result of a successful Resolve.
type Selection struct {
	Match

	// Installed reports whether the selected compiler is in Context.Installed.
	Installed bool

	// Warnings holds non-fatal notes about the choice, such as falling
	// back to a compiler that still has to be installed.
	Warnings []string
}

// Compiler returns the selected compiler version.
func (s *Selection) Compiler() version.Version {
	return s.Entry.Compiler
}

// Verification is the result of checking one explicit compiler.
type Verification struct {
	Compiler version.Version

	// Known reports whether Compiler is in the catalog. When false the
	// compiler could not be checked and Warning is set.
	Known bool

	// Compatible reports whether the catalog entry satisfies Bounds.
	Compatible bool

	// Reason explains an incompatibility, empty otherwise.
	Reason string

	// Warning wraps ErrUnknownCompiler for an unknown compiler.
	Warning error

	// Entry is the catalog entry for Compiler. It is the zero Entry when
	// Known is false.
	Entry catalog.Entry

	// Closest is the newest known compiler of the same series, offered as
	// a hint for unknown compilers.
	Closest *catalog.Entry

	Bounds    constraints.Bounds
	Flags     manifest.FlagAssignment
	Installed bool
}

// OK reports whether the compiler can be used: it is either compatible or
// unknown, in which case the caller proceeds with Warning.
func (v *Verification) OK() bool {
	return v.Compatible || !v.Known
}
