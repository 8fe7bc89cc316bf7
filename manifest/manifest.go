// Package manifest models conditional package descriptors and parses them
// from Starlark manifest files.
//
// A manifest declares a package, its flags, its build targets and an optional
// custom setup stage:
//
//	package(name = "demo", version = "0.1.0")
//	flag(name = "dev", default = False, manual = True)
//	library(build_depends = [
//	    "base >=4.14 && <4.17",
//	    when("impl(ghc >= 9.0)", ["ghc-bignum"], otherwise = ["integer-gmp"]),
//	])
//	executable(name = "demo", build_depends = ["base", "demo"])
//	custom_setup(setup_depends = ["base", "Cabal >=3.0"])
//
// Dependencies inside when() are conditional on flags, the target platform and
// the compiler. They are collapsed by package finalize.
package manifest

import (
	"iter"
	"strings"

	"github.com/albertocavalcante/go-ghcselect/version"
	"github.com/albertocavalcante/go-ghcselect/versionrange"
)

// TargetKind identifies the kind of a build target.
type TargetKind int

const (
	KindLibrary TargetKind = iota
	KindSubLibrary
	KindExecutable
	KindForeignLibrary
	KindTestSuite
	KindBenchmark
)

var kindNames = [...]string{
	KindLibrary:        "library",
	KindSubLibrary:     "sub_library",
	KindExecutable:     "executable",
	KindForeignLibrary: "foreign_library",
	KindTestSuite:      "test_suite",
	KindBenchmark:      "benchmark",
}

func (k TargetKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Dependency is a library name and the versions of it a target accepts.
type Dependency struct {
	Name  string
	Range versionrange.Range
}

func (d Dependency) String() string {
	if d.Range.IsAny() {
		return d.Name
	}
	return d.Name + " " + d.Range.String()
}

// Flag is a declared package flag.
// Manual flags are never toggled by the finalizer's search.
type Flag struct {
	Name        string
	Description string
	Default     bool
	Manual      bool
}

// CondTree is a list of unconditional dependencies plus conditional branches.
type CondTree struct {
	Depends  []Dependency
	Branches []Branch
}

// Branch selects Then when Cond holds and Else otherwise. Else may be nil.
type Branch struct {
	Cond Condition
	Then *CondTree
	Else *CondTree
}

// Collect appends the dependencies selected under env to dst.
func (t *CondTree) Collect(dst []Dependency, env Env) []Dependency {
	if t == nil {
		return dst
	}
	dst = append(dst, t.Depends...)
	for _, b := range t.Branches {
		if b.Cond.Eval(env) {
			dst = b.Then.Collect(dst, env)
		} else {
			dst = b.Else.Collect(dst, env)
		}
	}
	return dst
}

// Target is one build target with its conditional dependency tree.
type Target struct {
	Kind    TargetKind
	Name    string
	Depends *CondTree
}

// Package is a parsed, still conditional, package descriptor.
type Package struct {
	Name    string
	Version version.Version
	Flags   []Flag

	Library          *Target
	SubLibraries     []Target
	Executables      []Target
	ForeignLibraries []Target
	TestSuites       []Target
	Benchmarks       []Target

	// Setup lists the custom setup stage dependencies. It is never
	// conditional. A nil slice means the package has no custom setup.
	Setup []Dependency
}

// Targets yields every build target: the library first, then sub-libraries,
// executables, foreign libraries, test suites and benchmarks.
func (p *Package) Targets() iter.Seq[Target] {
	return func(yield func(Target) bool) {
		if p.Library != nil && !yield(*p.Library) {
			return
		}
		for _, group := range [][]Target{p.SubLibraries, p.Executables, p.ForeignLibraries, p.TestSuites, p.Benchmarks} {
			for _, t := range group {
				if !yield(t) {
					return
				}
			}
		}
	}
}

// Flag returns the declared flag with the given name.
func (p *Package) Flag(name string) (Flag, bool) {
	name = strings.ToLower(name)
	for _, f := range p.Flags {
		if f.Name == name {
			return f, true
		}
	}
	return Flag{}, false
}

// Platform is the build target's operating system and architecture,
// in lower case ("linux", "x86_64").
type Platform struct {
	OS   string
	Arch string
}

// Compiler identifies the compiler a manifest is finalized against.
type Compiler struct {
	Flavor  string
	Version version.Version
}

// GHC returns the compiler identity for a GHC release.
func GHC(v version.Version) Compiler {
	return Compiler{Flavor: "ghc", Version: v}
}

func (c Compiler) String() string {
	if c.Version.IsZero() {
		return c.Flavor
	}
	return c.Flavor + "-" + c.Version.String()
}

// Env is what conditions are evaluated against.
type Env struct {
	Flags    map[string]bool
	Platform Platform
	Compiler Compiler
}
