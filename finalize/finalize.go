// Package finalize collapses a conditional manifest into concrete dependency
// lists for one flag assignment, platform and compiler.
package finalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-ghcselect/manifest"
	"github.com/albertocavalcante/go-ghcselect/version"
)

// MaxFreeFlags bounds the automatic flags searched by Evaluator.
// The search visits up to 2^MaxFreeFlags assignments.
const MaxFreeFlags = 20

// ErrNoBranchResolves is returned when no flag assignment makes every
// dependency acceptable.
var ErrNoBranchResolves = errors.New("no flag assignment resolves the manifest")

// Error describes a failed finalization.
type Error struct {
	Package string
	// Missing lists the rejected dependencies of the closest assignment.
	Missing []manifest.Dependency
	// Reason replaces the missing list in the message when set.
	Reason string
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("package %s: %s", e.Package, e.Reason)
	}
	missing := make([]string, len(e.Missing))
	for i, d := range e.Missing {
		missing[i] = d.String()
	}
	return fmt.Sprintf("package %s: %v: unsatisfiable dependencies: %s",
		e.Package, ErrNoBranchResolves, strings.Join(missing, ", "))
}

func (e *Error) Unwrap() error {
	return ErrNoBranchResolves
}

// Components selects the optional targets taken into account.
type Components struct {
	Tests      bool
	Benchmarks bool
}

// AllComponents enables test suites and benchmarks.
func AllComponents() Components {
	return Components{Tests: true, Benchmarks: true}
}

func (c Components) includes(kind manifest.TargetKind) bool {
	switch kind {
	case manifest.KindTestSuite:
		return c.Tests
	case manifest.KindBenchmark:
		return c.Benchmarks
	default:
		return true
	}
}

// Request carries everything a finalization depends on.
type Request struct {
	Flags      manifest.FlagAssignment
	Components Components
	// Accept reports whether a dependency can be satisfied. When nil, any
	// dependency with a non-empty range is accepted.
	Accept   func(manifest.Dependency) bool
	Platform manifest.Platform
	Compiler manifest.Compiler
}

// Satisfiable is the default acceptability predicate.
func Satisfiable(d manifest.Dependency) bool {
	return !d.Range.IsEmpty()
}

// Target is a build target with its resolved dependencies.
type Target struct {
	Kind    manifest.TargetKind
	Name    string
	Depends []manifest.Dependency
}

// Package is a manifest with every conditional collapsed.
type Package struct {
	Name    string
	Version version.Version
	// Flags is the complete assignment that was chosen.
	Flags   manifest.FlagAssignment
	Targets []Target
	Setup   []manifest.Dependency
}

// Finalizer resolves a conditional manifest for one request.
type Finalizer interface {
	Finalize(pkg *manifest.Package, req Request) (*Package, error)
}

// Func adapts a function to the Finalizer interface.
type Func func(pkg *manifest.Package, req Request) (*Package, error)

// Finalize calls f.
func (f Func) Finalize(pkg *manifest.Package, req Request) (*Package, error) {
	return f(pkg, req)
}

// Evaluator is the stock Finalizer.
//
// Flags assigned in the request are fixed. Manual flags that are not
// assigned keep their declared default. The remaining automatic flags are
// searched depth first, trying each flag's default before its negation, and
// the first assignment under which every dependency is accepted wins.
type Evaluator struct{}

// Default is the stock Finalizer.
var Default Finalizer = Evaluator{}

// Finalize implements Finalizer.
func (Evaluator) Finalize(pkg *manifest.Package, req Request) (*Package, error) {
	accept := req.Accept
	if accept == nil {
		accept = Satisfiable
	}

	env := manifest.Env{
		Flags:    make(map[string]bool, len(pkg.Flags)+req.Flags.Len()),
		Platform: req.Platform,
		Compiler: req.Compiler,
	}

	var free []manifest.Flag
	for _, f := range pkg.Flags {
		if v, ok := req.Flags.Lookup(f.Name); ok {
			env.Flags[f.Name] = v
			continue
		}
		env.Flags[f.Name] = f.Default
		if !f.Manual {
			free = append(free, f)
		}
	}
	for name, v := range req.Flags.All() {
		env.Flags[name] = v
	}

	if len(free) > MaxFreeFlags {
		return nil, &Error{
			Package: pkg.Name,
			Reason:  fmt.Sprintf("%d automatic flags exceed the search limit of %d", len(free), MaxFreeFlags),
		}
	}

	s := &search{pkg: pkg, req: req, accept: accept, env: env, free: free}
	if fin, ok := s.run(0); ok {
		return fin, nil
	}
	return nil, &Error{Package: pkg.Name, Missing: s.bestMissing}
}

type search struct {
	pkg    *manifest.Package
	req    Request
	accept func(manifest.Dependency) bool
	env    manifest.Env
	free   []manifest.Flag

	bestMissing []manifest.Dependency
	tried       bool
}

func (s *search) run(i int) (*Package, bool) {
	if i == len(s.free) {
		return s.evaluate()
	}
	f := s.free[i]
	for _, v := range []bool{f.Default, !f.Default} {
		s.env.Flags[f.Name] = v
		if fin, ok := s.run(i + 1); ok {
			return fin, true
		}
	}
	s.env.Flags[f.Name] = f.Default
	return nil, false
}

func (s *search) evaluate() (*Package, bool) {
	fin := &Package{
		Name:    s.pkg.Name,
		Version: s.pkg.Version,
		Setup:   s.pkg.Setup,
	}

	var missing []manifest.Dependency
	for t := range s.pkg.Targets() {
		if !s.req.Components.includes(t.Kind) {
			continue
		}
		deps := t.Depends.Collect(nil, s.env)
		for _, d := range deps {
			if !s.accept(d) {
				missing = append(missing, d)
			}
		}
		fin.Targets = append(fin.Targets, Target{Kind: t.Kind, Name: t.Name, Depends: deps})
	}
	for _, d := range s.pkg.Setup {
		if !s.accept(d) {
			missing = append(missing, d)
		}
	}

	if len(missing) > 0 {
		if !s.tried || len(missing) < len(s.bestMissing) {
			s.bestMissing = missing
		}
		s.tried = true
		return nil, false
	}

	fin.Flags = s.assignment()
	return fin, true
}

// assignment returns the current flag values: declared flags in declaration
// order, then flags that were only assigned by the caller.
func (s *search) assignment() manifest.FlagAssignment {
	var a manifest.FlagAssignment
	for _, f := range s.pkg.Flags {
		a = a.With(f.Name, s.env.Flags[f.Name])
	}
	for name, v := range s.req.Flags.All() {
		a = a.With(name, v)
	}
	return a
}
