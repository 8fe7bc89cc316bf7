// Package installed discovers the compiler versions available locally.
package installed

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/albertocavalcante/go-ghcselect/version"
)

// DefaultRoot returns the ghcup installation root: $GHCUP_INSTALL_BASE_PREFIX/.ghcup,
// or ~/.ghcup when the variable is unset.
func DefaultRoot() (string, error) {
	if prefix := os.Getenv("GHCUP_INSTALL_BASE_PREFIX"); prefix != "" {
		return filepath.Join(prefix, ".ghcup"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".ghcup"), nil
}

// Discover lists the compilers installed under root, laid out as
// <root>/ghc/<version>/. Entries whose name is not a version are skipped.
// A missing root yields no versions and no error.
func Discover(root string) ([]version.Version, error) {
	entries, err := os.ReadDir(filepath.Join(root, "ghc"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list installed compilers: %w", err)
	}

	var out []version.Version
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		v, err := version.Parse(e.Name())
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	version.Sort(out)
	return out, nil
}

// ParseList parses versions such as "8.10.7, 9.2.8". A "ghc-" prefix on an
// item is accepted.
func ParseList(items ...string) ([]version.Version, error) {
	var out []version.Version
	for _, item := range items {
		for _, s := range strings.Split(item, ",") {
			s = strings.TrimPrefix(strings.TrimSpace(s), "ghc-")
			if s == "" {
				continue
			}
			v, err := version.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("invalid installed compiler %q: %w", s, err)
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// Merge returns the sorted union of the given lists.
func Merge(lists ...[]version.Version) []version.Version {
	var out []version.Version
	for _, l := range lists {
		for _, v := range l {
			if !containsVersion(out, v) {
				out = append(out, v)
			}
		}
	}
	version.Sort(out)
	return out
}

func containsVersion(vs []version.Version, v version.Version) bool {
	for _, w := range vs {
		if w.Equal(v) {
			return true
		}
	}
	return false
}
