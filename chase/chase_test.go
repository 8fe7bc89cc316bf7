package chase

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/albertocavalcante/go-ghcselect/catalog"
	"github.com/albertocavalcante/go-ghcselect/version"
	"github.com/albertocavalcante/go-ghcselect/versionrange"
)

func testCatalog() *catalog.Catalog {
	entry := func(compiler, base string) catalog.Entry {
		return catalog.Entry{
			Compiler: version.MustParse(compiler),
			Base:     version.MustParse(base),
			Setup:    versionrange.Any(),
		}
	}
	return catalog.MustNew(
		entry("8.8.4", "4.13.0.0"),
		entry("8.10.2", "4.14.1.0"),
		entry("8.10.7", "4.14.3.0"),
		entry("9.2.1", "4.16.0.0"),
	)
}

func collect(seq func(func(Candidate) bool)) []string {
	var out []string
	for c := range seq {
		out = append(out, c.Compiler.String())
	}
	slices.Sort(out)
	return out
}

func TestCandidatesOnePerEntry(t *testing.T) {
	got := collect(Candidates(testCatalog(), nil))
	want := []string{"ghc-8.10.2", "ghc-8.10.7", "ghc-8.8.4", "ghc-9.2.1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Candidates() mismatch (-want +got):\n%s", diff)
	}

	for c := range Candidates(testCatalog(), nil) {
		if !c.Base.IsAny() {
			t.Errorf("candidate %s: Base = %s, want -any", c.Compiler, c.Base)
		}
		if !c.Compiler.Version.Equal(c.Entry.Compiler) {
			t.Errorf("candidate compiler %s does not match its entry %s", c.Compiler, c.Entry.Compiler)
		}
		if c.Compiler.Flavor != "ghc" {
			t.Errorf("candidate flavor = %q, want ghc", c.Compiler.Flavor)
		}
	}
}

func TestCandidatesBaseOverride(t *testing.T) {
	override := version.MustParse("4.14.3.0")
	var got []Candidate
	for c := range Candidates(testCatalog(), &override) {
		got = append(got, c)
	}
	if len(got) != 1 {
		t.Fatalf("Candidates() with override yielded %d candidates, want 1", len(got))
	}
	if got[0].Compiler.Version.String() != "8.10.7" {
		t.Errorf("candidate = %s, want ghc-8.10.7", got[0].Compiler)
	}
	if !got[0].Base.Equal(versionrange.Exactly(override)) {
		t.Errorf("candidate Base = %s, want ==%s", got[0].Base, override)
	}

	unknown := version.MustParse("4.99")
	if n := len(collect(Candidates(testCatalog(), &unknown))); n != 0 {
		t.Errorf("override matching no entry yielded %d candidates", n)
	}
}

func TestCandidatesStopsEarly(t *testing.T) {
	n := 0
	for range Candidates(testCatalog(), nil) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("iterated %d candidates, want 2", n)
	}
}

func TestCandidatesEmptyCatalog(t *testing.T) {
	if got := collect(Candidates(catalog.MustNew(), nil)); len(got) != 0 {
		t.Errorf("Candidates() of an empty catalog = %v", got)
	}
}

func TestFirstOf(t *testing.T) {
	var calls []int
	attempt := func(i int, ok bool) func() (int, bool) {
		return func() (int, bool) {
			calls = append(calls, i)
			return i, ok
		}
	}

	got, ok := FirstOf(attempt(1, false), attempt(2, true), attempt(3, true))
	if !ok || got != 2 {
		t.Errorf("FirstOf() = %d, %v, want 2, true", got, ok)
	}
	if diff := cmp.Diff([]int{1, 2}, calls); diff != "" {
		t.Errorf("attempts evaluated mismatch (-want +got):\n%s", diff)
	}

	calls = nil
	got, ok = FirstOf(attempt(1, false), attempt(2, false))
	if ok || got != 0 {
		t.Errorf("FirstOf() with no success = %d, %v, want 0, false", got, ok)
	}

	if _, ok := FirstOf[string](); ok {
		t.Error("FirstOf() with no attempts should report false")
	}
}
