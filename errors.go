package ghcselect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-ghcselect/version"
)

// Sentinel errors for resolution failures.
var (
	// ErrExhausted indicates that every candidate was tried and none matched
	// a catalog entry.
	ErrExhausted = errors.New("could not satisfy constraints")

	// ErrUnsatisfiable indicates that the manifest cannot be finalized for
	// an explicitly requested compiler.
	ErrUnsatisfiable = errors.New("could not satisfy constraints for the requested compiler")

	// ErrUnknownCompiler marks a verification of a compiler that is not in
	// the catalog. It is reported as a warning, never returned as an error.
	ErrUnknownCompiler = errors.New("compiler version is not in the catalog")
)

// CandidateFailure records why one compiler hypothesis produced no match.
type CandidateFailure struct {
	Hypothesis version.Version
	Reason     string
	Err        error
}

func (f CandidateFailure) String() string {
	return fmt.Sprintf("ghc-%s: %s", f.Hypothesis, f.Reason)
}

// ExhaustedError is returned by Resolve when no candidate yields a
// compatible compiler.
type ExhaustedError struct {
	Package  string
	Failures []CandidateFailure
}

func (e *ExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "package %s: %v", e.Package, ErrExhausted)
	switch len(e.Failures) {
	case 0:
		b.WriteString(": no compiler in the catalog matches")
	case 1:
		fmt.Fprintf(&b, ": %s", e.Failures[0])
	default:
		fmt.Fprintf(&b, " (%d candidates tried):", len(e.Failures))
		for _, f := range e.Failures {
			fmt.Fprintf(&b, "\n  - %s", f)
		}
	}
	return b.String()
}

func (e *ExhaustedError) Unwrap() error {
	return ErrExhausted
}
