package ghcselect

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/go-ghcselect/catalog"
	"github.com/albertocavalcante/go-ghcselect/chase"
	"github.com/albertocavalcante/go-ghcselect/constraints"
	"github.com/albertocavalcante/go-ghcselect/finalize"
	"github.com/albertocavalcante/go-ghcselect/manifest"
	"github.com/albertocavalcante/go-ghcselect/version"
)

// Resolver selects a compiler for package manifests.
//
// Resolution proceeds in three phases:
//  1. Hypotheses: every catalog entry (or only those bundling the requested
//     base version) is taken as the compiler the manifest is finalized for.
//  2. Extraction: each finalized manifest yields base and setup bounds, and
//     the catalog is narrowed to the entries satisfying them. With the
//     fixed-point check enabled, an entry survives only if finalizing the
//     manifest against that entry's own compiler accepts it too.
//  3. Selection: the newest surviving entry overall and the newest installed
//     one are handed to the Policy.
//
// Candidates are evaluated concurrently. The result does not depend on the
// order in which they finish.
//
// A Resolver is safe for concurrent use.
type Resolver struct {
	env       Context
	cfg       *resolverConfig
	finalizer finalize.Finalizer
}

// NewResolver creates a resolver over rc.
func NewResolver(rc Context, opts ...Option) (*Resolver, error) {
	cfg, err := newResolverConfig(opts...)
	if err != nil {
		return nil, err
	}
	if rc.Catalog == nil {
		rc.Catalog = catalog.Default()
	}
	if rc.Policy == nil {
		rc.Policy = PreferInstalled
	}

	f := cfg.finalizer
	if cfg.cacheSize > 0 {
		cached, err := finalize.NewCached(f, cfg.cacheSize)
		if err != nil {
			return nil, err
		}
		f = cached
	}
	return &Resolver{env: rc, cfg: cfg, finalizer: f}, nil
}

// Catalog returns the catalog the resolver selects from.
func (r *Resolver) Catalog() *catalog.Catalog {
	return r.env.Catalog
}

// candidateResult is the outcome of one hypothesis.
type candidateResult struct {
	known     *Match
	installed *Match
	failure   *CandidateFailure
}

// Resolve selects a compiler for pkg under the given flag assignment.
// When baseOverride is set, only compilers bundling exactly that base
// version are considered.
//
// It returns an *ExhaustedError wrapping ErrExhausted when no candidate
// yields a match, including when the catalog is empty.
func (r *Resolver) Resolve(ctx context.Context, pkg *manifest.Package, flags manifest.FlagAssignment, baseOverride *version.Version) (*Selection, error) {
	if pkg == nil {
		return nil, errors.New("package manifest is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := r.cfg.log().With("package", pkg.Name)

	cands := slices.Collect(chase.Candidates(r.env.Catalog, baseOverride))
	logger.Debug("evaluating candidates", "count", len(cands), "flags", flags.String())

	fp := &fixpoint{r: r, pkg: pkg, flags: flags, seen: make(map[string]bool)}
	installed := r.env.Catalog.Installed(r.env.Installed)
	results := make([]candidateResult, len(cands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.concurrency)
	for i, c := range cands {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.evaluate(pkg, flags, c, installed, fp)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out Outcomes
	var failures []CandidateFailure
	for _, res := range results {
		if res.failure != nil {
			logger.Debug("dropped candidate",
				"hypothesis", res.failure.Hypothesis.String(),
				"reason", res.failure.Reason)
			failures = append(failures, *res.failure)
			continue
		}
		out.Known = newer(out.Known, res.known)
		out.Installed = newer(out.Installed, res.installed)
	}

	m, ok := r.env.Policy(out)
	if !ok {
		return nil, &ExhaustedError{Package: pkg.Name, Failures: failures}
	}

	sel := &Selection{
		Match:     m,
		Installed: hasCompiler(installed, m.Entry.Compiler),
	}
	if !sel.Installed {
		sel.Warnings = append(sel.Warnings, fmt.Sprintf("ghc-%s is not installed", m.Entry.Compiler))
	}
	if !r.cfg.fixedPoint && !m.Hypothesis.Equal(m.Entry.Compiler) {
		sel.Warnings = append(sel.Warnings,
			fmt.Sprintf("ghc-%s was selected assuming ghc-%s", m.Entry.Compiler, m.Hypothesis))
	}

	logger.Info("selected compiler",
		"compiler", m.Entry.Compiler.String(),
		"installed", sel.Installed,
		"bounds", m.Bounds.String())
	return sel, nil
}

// evaluate finalizes pkg under one hypothesis and narrows the catalog.
func (r *Resolver) evaluate(pkg *manifest.Package, flags manifest.FlagAssignment, c chase.Candidate, installed *catalog.Catalog, fp *fixpoint) candidateResult {
	hyp := c.Entry.Compiler
	bounds, fin, err := r.bounds(pkg, flags, hyp)
	if err != nil {
		return candidateResult{failure: &CandidateFailure{Hypothesis: hyp, Reason: err.Error(), Err: err}}
	}

	base := bounds.Base.Intersect(c.Base)
	keep := func(e catalog.Entry) bool {
		return base.Contains(e.Base) && bounds.Setup.Overlaps(e.Setup) && fp.holds(e)
	}
	match := func(e catalog.Entry) *Match {
		return &Match{Entry: e, Hypothesis: hyp, Bounds: bounds, Flags: fin.Flags}
	}

	var res candidateResult
	if e, ok := newestWhere(r.env.Catalog, keep); ok {
		res.known = match(e)
	}
	if e, ok := newestWhere(installed, keep); ok {
		res.installed = match(e)
	}
	if res.known == nil {
		res.failure = &CandidateFailure{
			Hypothesis: hyp,
			Reason:     fmt.Sprintf("no compiler in the catalog satisfies %s", constraints.Bounds{Base: base, Setup: bounds.Setup}),
		}
	}
	return res
}

// bounds finalizes pkg against compiler and extracts its bounds.
func (r *Resolver) bounds(pkg *manifest.Package, flags manifest.FlagAssignment, compiler version.Version) (constraints.Bounds, *finalize.Package, error) {
	req := finalize.Request{
		Flags:      flags,
		Components: r.cfg.components,
		Accept:     finalize.Satisfiable,
		Platform:   r.cfg.platform,
		Compiler:   manifest.GHC(compiler),
	}
	return constraints.FromManifest(r.finalizer, pkg, req, r.cfg.libraries)
}

// fixpoint memoizes whether finalizing against an entry's own compiler
// accepts that entry. It always holds when the check is disabled.
type fixpoint struct {
	r     *Resolver
	pkg   *manifest.Package
	flags manifest.FlagAssignment

	mu   sync.Mutex
	seen map[string]bool
}

func (f *fixpoint) holds(e catalog.Entry) bool {
	if !f.r.cfg.fixedPoint {
		return true
	}
	key := e.Compiler.String()
	f.mu.Lock()
	ok, done := f.seen[key]
	f.mu.Unlock()
	if done {
		return ok
	}

	bounds, _, err := f.r.bounds(f.pkg, f.flags, e.Compiler)
	ok = err == nil
	if ok {
		ok, _ = checkCompatibility(e, bounds)
	}

	f.mu.Lock()
	f.seen[key] = ok
	f.mu.Unlock()
	return ok
}

// newestWhere returns the newest entry of c accepted by keep. Entries are
// tested newest first so that keep runs as little as possible.
func newestWhere(c *catalog.Catalog, keep func(catalog.Entry) bool) (catalog.Entry, bool) {
	entries := c.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if keep(entries[i]) {
			return entries[i], true
		}
	}
	return catalog.Entry{}, false
}

func hasCompiler(c *catalog.Catalog, v version.Version) bool {
	_, ok := c.Lookup(v)
	return ok
}
