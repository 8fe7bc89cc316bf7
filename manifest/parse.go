package manifest

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/bazelbuild/buildtools/build"

	"github.com/albertocavalcante/go-ghcselect/internal/buildutil"
	"github.com/albertocavalcante/go-ghcselect/version"
)

// DefaultFilename is the manifest file name looked up by the CLI.
const DefaultFilename = "PACKAGE.star"

// ParseFile reads and parses a manifest from disk.
func ParseFile(filename string) (*Package, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return Parse(filename, data)
}

// Parse parses manifest content. filename is only used in error messages.
func Parse(filename string, data []byte) (*Package, error) {
	f, err := build.ParseBzl(filename, data)
	if err != nil {
		return nil, &ParseError{
			Pos:     Position{Filename: filename},
			Message: fmt.Sprintf("syntax error: %v", err),
			Wrapped: err,
		}
	}

	p := &parser{filename: filename, pkg: &Package{}}
	for _, stmt := range f.Stmt {
		if err := p.statement(stmt); err != nil {
			return nil, err
		}
	}
	if !p.sawPackage {
		return nil, &ParseError{Pos: Position{Filename: filename}, Message: "missing package() declaration"}
	}
	return p.pkg, nil
}

type parser struct {
	filename   string
	pkg        *Package
	sawPackage bool
	sawSetup   bool
}

// attributes accepted by each top-level function.
var allowedAttrs = map[string][]string{
	"package":         {"name", "version"},
	"flag":            {"name", "default", "manual", "description"},
	"library":         {"build_depends"},
	"sub_library":     {"name", "build_depends"},
	"executable":      {"name", "build_depends"},
	"foreign_library": {"name", "build_depends"},
	"test_suite":      {"name", "build_depends"},
	"benchmark":       {"name", "build_depends"},
	"custom_setup":    {"setup_depends"},
}

func (p *parser) errorf(expr build.Expr, format string, args ...any) *ParseError {
	line, col := buildutil.Pos(expr)
	return &ParseError{
		Pos:     Position{Filename: p.filename, Line: line, Column: col},
		Message: fmt.Sprintf(format, args...),
	}
}

func (p *parser) wrap(expr build.Expr, err error) *ParseError {
	pe := p.errorf(expr, "%v", err)
	pe.Wrapped = err
	return pe
}

func (p *parser) statement(stmt build.Expr) error {
	if _, ok := stmt.(*build.CommentBlock); ok {
		return nil
	}

	call, ok := stmt.(*build.CallExpr)
	if !ok {
		return p.errorf(stmt, "unexpected statement; only declarations are allowed")
	}

	name := buildutil.FuncName(call)
	allowed, known := allowedAttrs[name]
	if !known {
		return p.errorf(call, "unknown declaration %q", name)
	}
	if args := buildutil.Positional(call); len(args) > 0 {
		return p.errorf(args[0], "%s() takes keyword arguments only", name)
	}
	for _, kw := range buildutil.KwargNames(call) {
		if !slices.Contains(allowed, kw) {
			return p.errorf(call, "%s() got unexpected argument %q", name, kw)
		}
	}

	switch name {
	case "package":
		return p.packageDecl(call)
	case "flag":
		return p.flagDecl(call)
	case "custom_setup":
		return p.setupDecl(call)
	case "library":
		if p.pkg.Library != nil {
			return p.errorf(call, "duplicate library() declaration")
		}
		tree, err := p.dependsAttr(call, "build_depends")
		if err != nil {
			return err
		}
		p.pkg.Library = &Target{Kind: KindLibrary, Name: p.pkg.Name, Depends: tree}
		return nil
	}
	return p.namedTarget(call, name)
}

func (p *parser) packageDecl(call *build.CallExpr) error {
	if p.sawPackage {
		return p.errorf(call, "duplicate package() declaration")
	}
	p.sawPackage = true

	name, err := p.requiredString(call, "package", "name")
	if err != nil {
		return err
	}
	p.pkg.Name = name
	if p.pkg.Library != nil {
		p.pkg.Library.Name = name
	}

	expr := buildutil.Kwarg(call, "version")
	if expr == nil {
		return nil
	}
	s, ok := buildutil.AsString(expr)
	if !ok {
		return p.errorf(expr, "package() version must be a string")
	}
	v, err := version.Parse(s)
	if err != nil {
		return p.wrap(expr, err)
	}
	p.pkg.Version = v
	return nil
}

func (p *parser) flagDecl(call *build.CallExpr) error {
	name, err := p.requiredString(call, "flag", "name")
	if err != nil {
		return err
	}
	if !validFlagName(name) {
		return p.errorf(call, "invalid flag name %q", name)
	}
	name = strings.ToLower(name)
	if _, dup := p.pkg.Flag(name); dup {
		return p.errorf(call, "duplicate flag %q", name)
	}

	flag := Flag{Name: name, Default: true}
	if expr := buildutil.Kwarg(call, "default"); expr != nil {
		v, ok := buildutil.AsBool(expr)
		if !ok {
			return p.errorf(expr, "flag %q: default must be True or False", name)
		}
		flag.Default = v
	}
	if expr := buildutil.Kwarg(call, "manual"); expr != nil {
		v, ok := buildutil.AsBool(expr)
		if !ok {
			return p.errorf(expr, "flag %q: manual must be True or False", name)
		}
		flag.Manual = v
	}
	if expr := buildutil.Kwarg(call, "description"); expr != nil {
		s, ok := buildutil.AsString(expr)
		if !ok {
			return p.errorf(expr, "flag %q: description must be a string", name)
		}
		flag.Description = s
	}

	p.pkg.Flags = append(p.pkg.Flags, flag)
	return nil
}

func (p *parser) setupDecl(call *build.CallExpr) error {
	if p.sawSetup {
		return p.errorf(call, "duplicate custom_setup() declaration")
	}
	p.sawSetup = true

	tree, err := p.dependsAttr(call, "setup_depends")
	if err != nil {
		return err
	}
	if len(tree.Branches) > 0 {
		return p.errorf(call, "custom_setup() dependencies cannot be conditional")
	}
	p.pkg.Setup = tree.Depends
	if p.pkg.Setup == nil {
		p.pkg.Setup = []Dependency{}
	}
	return nil
}

var targetKinds = map[string]TargetKind{
	"sub_library":     KindSubLibrary,
	"executable":      KindExecutable,
	"foreign_library": KindForeignLibrary,
	"test_suite":      KindTestSuite,
	"benchmark":       KindBenchmark,
}

func (p *parser) namedTarget(call *build.CallExpr, fn string) error {
	name, err := p.requiredString(call, fn, "name")
	if err != nil {
		return err
	}
	tree, err := p.dependsAttr(call, "build_depends")
	if err != nil {
		return err
	}

	kind := targetKinds[fn]
	group := p.group(kind)
	for _, t := range *group {
		if t.Name == name {
			return p.errorf(call, "duplicate %s %q", fn, name)
		}
	}
	*group = append(*group, Target{Kind: kind, Name: name, Depends: tree})
	return nil
}

func (p *parser) group(kind TargetKind) *[]Target {
	switch kind {
	case KindSubLibrary:
		return &p.pkg.SubLibraries
	case KindExecutable:
		return &p.pkg.Executables
	case KindForeignLibrary:
		return &p.pkg.ForeignLibraries
	case KindTestSuite:
		return &p.pkg.TestSuites
	default:
		return &p.pkg.Benchmarks
	}
}

func (p *parser) requiredString(call *build.CallExpr, fn, attr string) (string, error) {
	expr := buildutil.Kwarg(call, attr)
	if expr == nil {
		return "", p.errorf(call, "%s() requires %s", fn, attr)
	}
	s, ok := buildutil.AsString(expr)
	if !ok || s == "" {
		return "", p.errorf(expr, "%s() %s must be a non-empty string", fn, attr)
	}
	return s, nil
}

// dependsAttr reads a dependency list attribute. A missing attribute is an
// empty tree.
func (p *parser) dependsAttr(call *build.CallExpr, attr string) (*CondTree, error) {
	expr := buildutil.Kwarg(call, attr)
	if expr == nil {
		return &CondTree{}, nil
	}
	return p.depends(expr)
}

func (p *parser) depends(expr build.Expr) (*CondTree, error) {
	items, ok := buildutil.AsList(expr)
	if !ok {
		return nil, p.errorf(expr, "dependencies must be a list")
	}

	tree := &CondTree{}
	for _, item := range items {
		if s, ok := buildutil.AsString(item); ok {
			dep, err := ParseDependency(s)
			if err != nil {
				return nil, p.wrap(item, err)
			}
			tree.Depends = append(tree.Depends, dep)
			continue
		}

		call, ok := item.(*build.CallExpr)
		if !ok || buildutil.FuncName(call) != "when" {
			return nil, p.errorf(item, "dependency must be a string or when(...)")
		}
		branch, err := p.when(call)
		if err != nil {
			return nil, err
		}
		tree.Branches = append(tree.Branches, branch)
	}
	return tree, nil
}

// when parses when(cond, then, otherwise = else). The else list may also be
// given as a third positional argument.
func (p *parser) when(call *build.CallExpr) (Branch, error) {
	args := buildutil.Positional(call)
	for _, kw := range buildutil.KwargNames(call) {
		if kw != "otherwise" {
			return Branch{}, p.errorf(call, "when() got unexpected argument %q", kw)
		}
	}

	otherwise := buildutil.Kwarg(call, "otherwise")
	switch {
	case len(args) == 3 && otherwise == nil:
		otherwise = args[2]
	case len(args) != 2:
		return Branch{}, p.errorf(call, "when() takes a condition, a list and an optional otherwise list")
	}

	s, ok := buildutil.AsString(args[0])
	if !ok {
		return Branch{}, p.errorf(args[0], "when() condition must be a string")
	}
	cond, err := ParseCondition(s)
	if err != nil {
		return Branch{}, p.wrap(args[0], err)
	}

	then, err := p.depends(args[1])
	if err != nil {
		return Branch{}, err
	}
	branch := Branch{Cond: cond, Then: then}
	if otherwise != nil {
		if branch.Else, err = p.depends(otherwise); err != nil {
			return Branch{}, err
		}
	}
	return branch, nil
}
