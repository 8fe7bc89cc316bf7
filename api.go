// Package ghcselect selects a GHC compiler able to build a package.
//
// A package manifest constrains the compiler indirectly: it depends on the
// base library, whose version is fixed by the compiler, and optionally on a
// setup library with its own per-compiler support window. Because the
// manifest's conditionals may themselves test the compiler version, the
// selection treats every known compiler as a hypothesis, finalizes the
// manifest under it, and keeps the compilers whose bundled libraries satisfy
// the resulting bounds.
//
// # Overview
//
// The module provides these components:
//
//   - manifest: Parses PACKAGE.star manifests into conditional dependency trees
//   - finalize: Resolves flags and conditionals into flat dependency lists
//   - constraints: Reduces a finalized manifest to base and setup bounds
//   - catalog: The toolchain metadata database, built in or loaded from JSON/YAML
//   - Resolver: Chooses the compiler, or verifies an explicit one
//
// # Quick Start
//
// The simplest way to pick a compiler:
//
//	// Built-in catalog, nothing installed
//	sel, err := ghcselect.Resolve(ctx, manifestContent, ghcselect.ResolveOptions{})
//	fmt.Println(sel.Compiler())
//
//	// From a file, preferring what is installed
//	sel, err := ghcselect.ResolveFile(ctx, "PACKAGE.star", ghcselect.ResolveOptions{
//	    Context: ghcselect.Context{Installed: installed},
//	})
//
//	// Check an explicit compiler instead
//	v, err := ghcselect.Verify(ctx, manifestContent, version.MustParse("9.2.8"), ghcselect.ResolveOptions{})
//
// # Policies
//
// By default an installed compiler wins over a newer one that would have to
// be downloaded. AlwaysNewest picks the newest known compiler instead:
//
//	opts := ghcselect.ResolveOptions{
//	    Context: ghcselect.Context{Installed: installed, Policy: ghcselect.AlwaysNewest},
//	}
//
// # Thread Safety
//
// All public types in this package are safe for concurrent use.
package ghcselect

import (
	"context"
	"fmt"

	"github.com/albertocavalcante/go-ghcselect/manifest"
	"github.com/albertocavalcante/go-ghcselect/version"
)

// ResolveOptions configures the convenience entry points.
type ResolveOptions struct {
	// Filename is used in parse error messages. Defaults to
	// manifest.DefaultFilename.
	Filename string

	// Flags is the user flag assignment.
	Flags manifest.FlagAssignment

	// Base restricts the candidates to compilers bundling this base version.
	Base *version.Version

	Context Context

	// Options are passed to NewResolver.
	Options []Option
}

// Resolve selects a compiler for manifest content.
//
// This is the recommended entry point for one-off selections. Use a Resolver
// directly to share the finalization cache across calls.
func Resolve(ctx context.Context, content []byte, opts ResolveOptions) (*Selection, error) {
	pkg, r, err := prepare(content, opts)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, pkg, opts.Flags, opts.Base)
}

// ResolveFile selects a compiler for a manifest file.
func ResolveFile(ctx context.Context, path string, opts ResolveOptions) (*Selection, error) {
	pkg, err := manifest.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	r, err := NewResolver(opts.Context, opts.Options...)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, pkg, opts.Flags, opts.Base)
}

// Verify checks an explicit compiler against manifest content.
// See Resolver.Verify.
func Verify(ctx context.Context, content []byte, compiler version.Version, opts ResolveOptions) (*Verification, error) {
	pkg, r, err := prepare(content, opts)
	if err != nil {
		return nil, err
	}
	return r.Verify(ctx, pkg, opts.Flags, compiler)
}

func prepare(content []byte, opts ResolveOptions) (*manifest.Package, *Resolver, error) {
	filename := opts.Filename
	if filename == "" {
		filename = manifest.DefaultFilename
	}
	pkg, err := manifest.Parse(filename, content)
	if err != nil {
		return nil, nil, fmt.Errorf("parse manifest: %w", err)
	}
	r, err := NewResolver(opts.Context, opts.Options...)
	if err != nil {
		return nil, nil, err
	}
	return pkg, r, nil
}
