package ghcselect

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/albertocavalcante/go-ghcselect/catalog"
	"github.com/albertocavalcante/go-ghcselect/constraints"
	"github.com/albertocavalcante/go-ghcselect/manifest"
	"github.com/albertocavalcante/go-ghcselect/version"
	"github.com/albertocavalcante/go-ghcselect/versionrange"
)

const rangedManifest = `
package(name = "ranged")
library(build_depends = ["base >=4.14 && <4.16"])
custom_setup(setup_depends = ["Cabal >=3.2 && <3.5"])
`

func TestVerify(t *testing.T) {
	pkg := parseManifest(t, rangedManifest)
	r := newResolver(t, Context{Catalog: testCatalog(), Installed: versions("8.10.2")})

	tests := []struct {
		compiler      string
		wantOK        bool
		wantInstalled bool
		wantReason    string
	}{
		{compiler: "8.10.2", wantOK: true, wantInstalled: true},
		{compiler: "9.0.2", wantOK: true},
		{compiler: "8.8.4", wantReason: "requires base >=4.14 && <4.16 (ghc-8.8.4 bundles 4.13.0.0)"},
		{compiler: "9.2.1", wantReason: "requires base >=4.14 && <4.16 (ghc-9.2.1 bundles 4.16.0.0) and setup >=3.2 && <3.5 (ghc-9.2.1 supports >=3.6)"},
	}
	for _, tt := range tests {
		t.Run(tt.compiler, func(t *testing.T) {
			v, err := r.Verify(context.Background(), pkg, manifest.FlagAssignment{}, version.MustParse(tt.compiler))
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if !v.Known {
				t.Error("Known = false for a catalog compiler")
			}
			if v.Compatible != tt.wantOK || v.OK() != tt.wantOK {
				t.Errorf("Compatible = %v, OK() = %v, want %v", v.Compatible, v.OK(), tt.wantOK)
			}
			if v.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", v.Reason, tt.wantReason)
			}
			if v.Installed != tt.wantInstalled {
				t.Errorf("Installed = %v, want %v", v.Installed, tt.wantInstalled)
			}
			if v.Warning != nil {
				t.Errorf("Warning = %v, want nil", v.Warning)
			}
			if v.Entry.Compiler.String() != tt.compiler {
				t.Errorf("Entry = %s", v.Entry)
			}
		})
	}
}

func TestVerifyUnknownCompiler(t *testing.T) {
	pkg := parseManifest(t, rangedManifest)
	r := newResolver(t, Context{Catalog: testCatalog()})

	v, err := r.Verify(context.Background(), pkg, manifest.FlagAssignment{}, version.MustParse("8.6.5"))
	if err != nil {
		t.Fatalf("Verify() error = %v, want a warning instead", err)
	}
	if v.Known || v.Compatible {
		t.Errorf("Known = %v, Compatible = %v, want both false", v.Known, v.Compatible)
	}
	if !v.OK() {
		t.Error("OK() = false, an unknown compiler should be usable with a warning")
	}
	if !errors.Is(v.Warning, ErrUnknownCompiler) {
		t.Errorf("Warning = %v, want ErrUnknownCompiler", v.Warning)
	}
	if v.Closest != nil {
		t.Errorf("Closest = %s, want nil for a series the catalog lacks", v.Closest)
	}

	v, err = r.Verify(context.Background(), pkg, manifest.FlagAssignment{}, version.MustParse("8.10.1"))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if v.Closest == nil || v.Closest.Compiler.String() != "8.10.2" {
		t.Errorf("Closest = %v, want ghc-8.10.2", v.Closest)
	}
}

func TestVerifyFinalizesAgainstCompiler(t *testing.T) {
	pkg := parseManifest(t, `
package(name = "cond")
library(build_depends = [
    when("impl(ghc >= 9.0)", ["base >=4.15"], otherwise = ["base <4.14"]),
])
`)
	r := newResolver(t, Context{Catalog: testCatalog()})

	for compiler, want := range map[string]bool{"8.8.4": true, "8.10.2": false, "9.0.2": true, "9.2.1": true} {
		v, err := r.Verify(context.Background(), pkg, manifest.FlagAssignment{}, version.MustParse(compiler))
		if err != nil {
			t.Fatalf("Verify(%s) error = %v", compiler, err)
		}
		if v.Compatible != want {
			t.Errorf("Verify(%s).Compatible = %v, want %v (bounds %s)", compiler, v.Compatible, want, v.Bounds)
		}
	}
}

func TestVerifyUnsatisfiable(t *testing.T) {
	pkg := parseManifest(t, `
package(name = "broken")
library(build_depends = ["base >=5 && <4"])
`)
	r := newResolver(t, Context{Catalog: testCatalog()})

	for _, compiler := range []string{"9.2.1", "8.6.5"} {
		_, err := r.Verify(context.Background(), pkg, manifest.FlagAssignment{}, version.MustParse(compiler))
		if !errors.Is(err, ErrUnsatisfiable) {
			t.Errorf("Verify(%s) error = %v, want ErrUnsatisfiable", compiler, err)
		}
		if !errors.Is(err, constraints.ErrUnsatisfiableManifest) {
			t.Errorf("Verify(%s) error = %v, want it to keep the finalization cause", compiler, err)
		}
	}
}

func TestCheckCompatibility(t *testing.T) {
	e := catalog.Entry{
		Compiler: version.MustParse("9.2.8"),
		Base:     version.MustParse("4.16.4.0"),
		Setup:    versionrange.AtLeast(version.MustParse("3.6")),
	}

	tests := []struct {
		name   string
		bounds constraints.Bounds
		want   bool
		reason string
	}{
		{"unconstrained", constraints.Unconstrained(), true, ""},
		{"base in range", constraints.Bounds{Base: versionrange.MustParse("^>=4.16"), Setup: versionrange.Any()}, true, ""},
		{"base excluded", constraints.Bounds{Base: versionrange.MustParse("<4.16"), Setup: versionrange.Any()}, false, "base <4.16"},
		{"setup disjoint", constraints.Bounds{Base: versionrange.Any(), Setup: versionrange.MustParse("<3.6")}, false, "setup <3.6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := checkCompatibility(e, tt.bounds)
			if ok != tt.want {
				t.Errorf("checkCompatibility() = %v, want %v", ok, tt.want)
			}
			if !strings.Contains(reason, tt.reason) {
				t.Errorf("reason = %q, want it to contain %q", reason, tt.reason)
			}
			if ok && reason != "" {
				t.Errorf("compatible entry has reason %q", reason)
			}
		})
	}
}
