// Command ghcselect picks the GHC version able to build a package.
//
// It reads a PACKAGE.star manifest, selects the compiler from the toolchain
// catalog and prints its version. With -compiler it checks that version
// instead and fails when it cannot build the package.
//
// Usage:
//
//	ghcselect
//	ghcselect -manifest pkg/PACKAGE.star -flags "+dev -fast"
//	ghcselect -installed 9.2.8,9.4.8 -newest
//	ghcselect -compiler 9.2.8
//	ghcselect -db https://example.com/ghc.yaml -base 4.16.4.0
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	ghcselect "github.com/albertocavalcante/go-ghcselect"
	"github.com/albertocavalcante/go-ghcselect/internal/config"
	"github.com/albertocavalcante/go-ghcselect/internal/installed"
	"github.com/albertocavalcante/go-ghcselect/manifest"
	"github.com/albertocavalcante/go-ghcselect/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and returns its exit code: 0 on success, 1 when
// no compiler fits, 2 on usage or input errors.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ghcselect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	manifestPath := fs.String("manifest", manifest.DefaultFilename, "package manifest")
	flagsArg := fs.String("flags", "", `flag assignment, e.g. "+dev -fast"`)
	baseArg := fs.String("base", "", "only consider compilers bundling this base version")
	compilerArg := fs.String("compiler", "", "verify this compiler instead of selecting one")
	db := fs.String("db", "", "catalog file or http(s) URL (default: built-in)")
	installedArg := fs.String("installed", "", "comma-separated installed compiler versions")
	installedDir := fs.String("installed-dir", "", "ghcup root to discover installed compilers in")
	newest := fs.Bool("newest", false, "prefer the newest known compiler over installed ones")
	configPath := fs.String("config", "", "config file (default: "+config.DefaultFile+" if present)")
	verbose := fs.Bool("v", false, "log resolution details")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fail(stderr, err)
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "flags":
			cfg.Flags = *flagsArg
		case "db":
			cfg.Catalog = *db
		case "installed":
			cfg.Installed = []string{*installedArg}
		case "installed-dir":
			cfg.InstalledDir = *installedDir
		case "newest":
			cfg.AlwaysNewest = *newest
		case "v":
			if *verbose {
				cfg.LogLevel = "debug"
			}
		}
	})

	level, err := cfg.Level()
	if err != nil {
		return fail(stderr, err)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cat, err := cfg.LoadCatalog(ctx)
	if err != nil {
		return fail(stderr, err)
	}
	have, err := installedVersions(cfg)
	if err != nil {
		return fail(stderr, err)
	}
	flags, err := manifest.ParseFlagAssignment(cfg.Flags)
	if err != nil {
		return fail(stderr, err)
	}
	pkg, err := manifest.ParseFile(*manifestPath)
	if err != nil {
		return fail(stderr, err)
	}

	r, err := ghcselect.NewResolver(ghcselect.Context{
		Catalog:   cat,
		Installed: have,
		Policy:    ghcselect.PolicyFor(cfg.AlwaysNewest),
	}, cfg.Options(logger)...)
	if err != nil {
		return fail(stderr, err)
	}

	if *compilerArg != "" {
		compiler, err := version.Parse(*compilerArg)
		if err != nil {
			return fail(stderr, err)
		}
		return verify(ctx, r, pkg, flags, compiler, stdout, stderr)
	}

	var base *version.Version
	if *baseArg != "" {
		v, err := version.Parse(*baseArg)
		if err != nil {
			return fail(stderr, err)
		}
		base = &v
	}

	sel, err := r.Resolve(ctx, pkg, flags, base)
	if err != nil {
		if errors.Is(err, ghcselect.ErrExhausted) {
			fmt.Fprintf(stderr, "ghcselect: %v\n", err)
			return 1
		}
		return fail(stderr, err)
	}
	for _, w := range sel.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}
	fmt.Fprintln(stdout, sel.Compiler())
	return 0
}

func verify(ctx context.Context, r *ghcselect.Resolver, pkg *manifest.Package, flags manifest.FlagAssignment, compiler version.Version, stdout, stderr io.Writer) int {
	v, err := r.Verify(ctx, pkg, flags, compiler)
	if err != nil {
		fmt.Fprintf(stderr, "ghcselect: %v\n", err)
		return 1
	}
	if !v.Known {
		fmt.Fprintf(stderr, "warning: %v; proceeding without checking its bundled libraries\n", v.Warning)
		if v.Closest != nil {
			fmt.Fprintf(stderr, "warning: closest known compiler is ghc-%s\n", v.Closest.Compiler)
		}
	}
	if !v.OK() {
		fmt.Fprintf(stderr, "ghcselect: ghc-%s cannot build %s: %s\n", compiler, pkg.Name, v.Reason)
		return 1
	}
	fmt.Fprintln(stdout, compiler)
	return 0
}

func installedVersions(cfg *config.Config) ([]version.Version, error) {
	listed, err := installed.ParseList(cfg.Installed...)
	if err != nil {
		return nil, err
	}
	root := cfg.InstalledDir
	if root == "" && len(cfg.Installed) == 0 {
		if root, err = installed.DefaultRoot(); err != nil {
			return listed, nil
		}
	}
	if root == "" {
		return listed, nil
	}
	found, err := installed.Discover(root)
	if err != nil {
		return nil, err
	}
	return installed.Merge(listed, found), nil
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "ghcselect: %v\n", err)
	return 2
}
