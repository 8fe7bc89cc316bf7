package manifest

import (
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-ghcselect/versionrange"
)

// ParseDependency parses a dependency such as "base >=4.14 && <4.15".
// A bare package name accepts any version.
func ParseDependency(s string) (Dependency, error) {
	s = strings.TrimSpace(s)

	end := 0
	for end < len(s) && isNameChar(s[end]) {
		end++
	}
	name := s[:end]
	if name == "" || name[0] == '-' || name[len(name)-1] == '-' {
		return Dependency{}, fmt.Errorf("%w: %q: missing package name", ErrInvalidDependency, s)
	}

	r, err := versionrange.Parse(s[end:])
	if err != nil {
		return Dependency{}, fmt.Errorf("%w: %q: %w", ErrInvalidDependency, s, err)
	}
	return Dependency{Name: name, Range: r}, nil
}

func isNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-'
}
