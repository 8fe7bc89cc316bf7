package finalize

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/albertocavalcante/go-ghcselect/manifest"
)

// DefaultCacheSize is the number of finalizations Cached keeps by default.
const DefaultCacheSize = 1024

type cacheEntry struct {
	// src pins the manifest so its address cannot be reused while the
	// entry is cached.
	src *manifest.Package
	fin *Package
	err error
}

// Cached memoizes another Finalizer. Results, including failures, are keyed
// by manifest identity, flags, components, platform and compiler. The Accept
// predicate is not part of the key, so a Cached must only be shared by callers
// that use the same predicate. Manifests must not be modified after they have
// been finalized through a Cached.
//
// Cached is safe for concurrent use.
type Cached struct {
	next  Finalizer
	cache *lru.Cache[string, cacheEntry]
}

// NewCached wraps next with an LRU cache holding up to size results.
func NewCached(next Finalizer, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create finalize cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

// Finalize implements Finalizer.
func (c *Cached) Finalize(pkg *manifest.Package, req Request) (*Package, error) {
	key := cacheKey(pkg, req)
	if e, ok := c.cache.Get(key); ok && e.src == pkg {
		return e.fin, e.err
	}

	fin, err := c.next.Finalize(pkg, req)
	c.cache.Add(key, cacheEntry{src: pkg, fin: fin, err: err})
	return fin, err
}

// Len returns the number of cached results.
func (c *Cached) Len() int {
	return c.cache.Len()
}

func cacheKey(pkg *manifest.Package, req Request) string {
	return fmt.Sprintf("%p|%s|%t|%t|%s|%s|%s",
		pkg, req.Flags, req.Components.Tests, req.Components.Benchmarks,
		req.Platform.OS, req.Platform.Arch, req.Compiler)
}
