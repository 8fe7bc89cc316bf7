// Package constraints derives the version ranges a finalized package places
// on the libraries bundled with the compiler.
//
// Two libraries matter. The base library ships at one exact version per
// compiler release, and every target can constrain it. The setup library
// (Cabal) is only constrained by the custom setup stage, since that is the
// only place it is a build-time dependency.
package constraints

import (
	"errors"
	"fmt"

	"github.com/albertocavalcante/go-ghcselect/finalize"
	"github.com/albertocavalcante/go-ghcselect/manifest"
	"github.com/albertocavalcante/go-ghcselect/versionrange"
)

// ErrUnsatisfiableManifest is returned when a manifest cannot be finalized.
var ErrUnsatisfiableManifest = errors.New("unsatisfiable manifest")

// Libraries names the bundled libraries.
type Libraries struct {
	Base  string
	Setup string
}

// DefaultLibraries returns the GHC names: base and Cabal.
func DefaultLibraries() Libraries {
	return Libraries{Base: "base", Setup: "Cabal"}
}

// Bounds are the aggregate ranges on the bundled libraries.
type Bounds struct {
	Base  versionrange.Range
	Setup versionrange.Range
}

// Unconstrained returns bounds that accept any version of either library.
func Unconstrained() Bounds {
	return Bounds{Base: versionrange.Any(), Setup: versionrange.Any()}
}

func (b Bounds) String() string {
	return fmt.Sprintf("base %s, setup %s", b.Base, b.Setup)
}

// Extract intersects the ranges fin places on the bundled libraries.
// The setup range only considers setup dependencies; the base range
// considers the setup dependencies and every target's dependencies.
func Extract(fin *finalize.Package, libs Libraries) Bounds {
	b := Unconstrained()
	for _, d := range fin.Setup {
		b = b.add(d, libs, true)
	}
	for _, t := range fin.Targets {
		for _, d := range t.Depends {
			b = b.add(d, libs, false)
		}
	}
	return b
}

func (b Bounds) add(d manifest.Dependency, libs Libraries, setup bool) Bounds {
	if d.Name == libs.Base {
		b.Base = b.Base.Intersect(d.Range)
	}
	if setup && d.Name == libs.Setup {
		b.Setup = b.Setup.Intersect(d.Range)
	}
	return b
}

// FromManifest finalizes pkg with f and extracts its bounds. A finalization
// failure is reported as ErrUnsatisfiableManifest, never as partial bounds.
func FromManifest(f finalize.Finalizer, pkg *manifest.Package, req finalize.Request, libs Libraries) (Bounds, *finalize.Package, error) {
	fin, err := f.Finalize(pkg, req)
	if err != nil {
		return Bounds{}, nil, fmt.Errorf("%w: %w", ErrUnsatisfiableManifest, err)
	}
	return Extract(fin, libs), fin, nil
}
