package ghcselect

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/albertocavalcante/go-ghcselect/catalog"
	"github.com/albertocavalcante/go-ghcselect/constraints"
	"github.com/albertocavalcante/go-ghcselect/manifest"
	"github.com/albertocavalcante/go-ghcselect/version"
)

// Verify checks whether compiler can build pkg.
//
// The manifest is finalized against compiler itself. A finalization failure
// is an error wrapping ErrUnsatisfiable. A compiler missing from the catalog
// is not an error: the result has Known set to false and a Warning wrapping
// ErrUnknownCompiler, and the caller decides whether to proceed.
func (r *Resolver) Verify(ctx context.Context, pkg *manifest.Package, flags manifest.FlagAssignment, compiler version.Version) (*Verification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := r.cfg.log().With("package", pkg.Name, "compiler", compiler.String())

	bounds, fin, err := r.bounds(pkg, flags, compiler)
	if err != nil {
		logger.Debug("finalization failed", "error", err)
		return nil, fmt.Errorf("package %s: ghc-%s: %w: %w", pkg.Name, compiler, ErrUnsatisfiable, err)
	}

	v := &Verification{
		Compiler:  compiler,
		Bounds:    bounds,
		Flags:     fin.Flags,
		Installed: slices.ContainsFunc(r.env.Installed, compiler.Equal),
	}

	entry, ok := r.env.Catalog.Lookup(compiler)
	if !ok {
		v.Warning = fmt.Errorf("%w: ghc-%s", ErrUnknownCompiler, compiler)
		if closest, ok := r.env.Catalog.Closest(compiler); ok {
			v.Closest = &closest
		}
		logger.Warn("compiler is not in the catalog, constraints cannot be verified")
		return v, nil
	}

	v.Known = true
	v.Entry = entry
	v.Compatible, v.Reason = checkCompatibility(entry, bounds)
	logger.Info("verified compiler", "compatible", v.Compatible, "bounds", bounds.String())
	return v, nil
}

// checkCompatibility checks a catalog entry against extracted bounds.
// Returns (compatible, reason) where reason explains why it's incompatible.
func checkCompatibility(e catalog.Entry, b constraints.Bounds) (bool, string) {
	var failed []string
	if !b.Base.Contains(e.Base) {
		failed = append(failed, fmt.Sprintf("base %s (ghc-%s bundles %s)", b.Base, e.Compiler, e.Base))
	}
	if !b.Setup.Overlaps(e.Setup) {
		failed = append(failed, fmt.Sprintf("setup %s (ghc-%s supports %s)", b.Setup, e.Compiler, e.Setup))
	}

	if len(failed) == 0 {
		return true, ""
	}
	return false, "requires " + strings.Join(failed, " and ")
}
