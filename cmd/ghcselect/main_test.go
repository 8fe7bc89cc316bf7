package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testDB = `schema_version: "1"
toolchains:
  - compiler: 8.8.4
    base: 4.13.0.0
    setup: ">=3.0"
  - compiler: 8.10.7
    base: 4.14.3.0
    setup: ">=3.2"
  - compiler: 9.2.8
    base: 4.16.4.0
    setup: ">=3.6"
`

const testManifest = `
package(name = "cli")
flag(name = "legacy", default = False, manual = True)
library(build_depends = [
    "base >=4.13",
    when("flag(legacy)", ["base <4.14"]),
])
`

type fixture struct {
	dir      string
	db       string
	manifest string
	ghcup    string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:      dir,
		db:       filepath.Join(dir, "ghc.yaml"),
		manifest: filepath.Join(dir, "PACKAGE.star"),
		ghcup:    filepath.Join(dir, "ghcup"),
	}
	for path, content := range map[string]string{f.db: testDB, f.manifest: testManifest} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(f.ghcup, "ghc", "8.10.7"), 0o755); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestRun(t *testing.T) {
	f := newFixture(t)
	common := []string{"-db", f.db, "-manifest", f.manifest, "-installed-dir", f.ghcup}

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantOut    string
		wantStderr string
	}{
		{"prefers installed", nil, 0, "8.10.7", ""},
		{"newest", []string{"-newest"}, 0, "9.2.8", "not installed"},
		{"extra installed", []string{"-installed", "9.2.8"}, 0, "9.2.8", ""},
		{"flags", []string{"-flags", "+legacy"}, 0, "8.8.4", "not installed"},
		{"base override", []string{"-base", "4.16.4.0"}, 0, "9.2.8", ""},
		{"base override unknown", []string{"-base", "4.99"}, 1, "", "could not satisfy constraints"},
		{"verify compatible", []string{"-compiler", "9.2.8"}, 0, "9.2.8", ""},
		{"verify incompatible", []string{"-compiler", "9.2.8", "-flags", "+legacy"}, 1, "", "requires base"},
		{"verify unknown", []string{"-compiler", "8.10.2"}, 0, "8.10.2", "closest known compiler is ghc-8.10.7"},
		{"bad flags", []string{"-flags", "+"}, 2, "", "ghcselect:"},
		{"bad compiler", []string{"-compiler", "nine"}, 2, "", "bad version"},
		{"unknown option", []string{"-colour"}, 2, "", "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), append(append([]string{}, common...), tt.args...), &stdout, &stderr)
			if code != tt.wantCode {
				t.Fatalf("run() = %d, want %d\nstderr: %s", code, tt.wantCode, stderr.String())
			}
			if got := strings.TrimSpace(stdout.String()); got != tt.wantOut {
				t.Errorf("stdout = %q, want %q", got, tt.wantOut)
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestRunConfigFile(t *testing.T) {
	f := newFixture(t)
	cfg := filepath.Join(f.dir, "ghcselect.toml")
	content := "catalog = " + quote(f.db) + "\ninstalled_dir = " + quote(f.ghcup) + "\nalways_newest = true\n"
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"-config", cfg, "-manifest", f.manifest}, &stdout, &stderr); code != 0 {
		t.Fatalf("run() = %d\nstderr: %s", code, stderr.String())
	}
	if got := strings.TrimSpace(stdout.String()); got != "9.2.8" {
		t.Errorf("stdout = %q, want 9.2.8", got)
	}

	stdout.Reset()
	stderr.Reset()
	if code := run(context.Background(), []string{"-config", cfg, "-manifest", f.manifest, "-newest=false"}, &stdout, &stderr); code != 0 {
		t.Fatalf("run() = %d\nstderr: %s", code, stderr.String())
	}
	if got := strings.TrimSpace(stdout.String()); got != "8.10.7" {
		t.Errorf("command-line -newest=false should win over the config file, got %q", got)
	}
}

func TestRunVerbose(t *testing.T) {
	f := newFixture(t)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-v", "-db", f.db, "-manifest", f.manifest, "-installed-dir", f.ghcup}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run() = %d\nstderr: %s", code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "selected compiler") {
		t.Errorf("stderr = %q, want resolution logs", stderr.String())
	}
}

func TestRunMissingManifest(t *testing.T) {
	f := newFixture(t)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-db", f.db, "-manifest", filepath.Join(f.dir, "nope.star"), "-installed-dir", f.ghcup}, &stdout, &stderr)
	if code != 2 {
		t.Errorf("run() = %d, want 2", code)
	}
}

func quote(s string) string {
	return "'" + s + "'"
}
