package manifest

import (
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-ghcselect/versionrange"
)

// Condition is a boolean test over an Env, as written inside when().
type Condition interface {
	Eval(env Env) bool
	String() string
}

// Literal is the constant condition true or false.
type Literal bool

func (c Literal) Eval(Env) bool { return bool(c) }

func (c Literal) String() string {
	if c {
		return "true"
	}
	return "false"
}

// FlagTest holds when the named flag is enabled.
type FlagTest string

func (c FlagTest) Eval(env Env) bool { return env.Flags[string(c)] }
func (c FlagTest) String() string    { return "flag(" + string(c) + ")" }

// OSTest holds when the target operating system matches.
type OSTest string

func (c OSTest) Eval(env Env) bool { return canonicalOS(env.Platform.OS) == canonicalOS(string(c)) }
func (c OSTest) String() string    { return "os(" + string(c) + ")" }

// ArchTest holds when the target architecture matches.
type ArchTest string

func (c ArchTest) Eval(env Env) bool { return strings.EqualFold(env.Platform.Arch, string(c)) }
func (c ArchTest) String() string    { return "arch(" + string(c) + ")" }

// ImplTest holds when the compiler flavor matches and its version is in Range.
type ImplTest struct {
	Flavor string
	Range  versionrange.Range
}

func (c ImplTest) Eval(env Env) bool {
	if !strings.EqualFold(env.Compiler.Flavor, c.Flavor) {
		return false
	}
	return c.Range.IsAny() || c.Range.Contains(env.Compiler.Version)
}

func (c ImplTest) String() string {
	if c.Range.IsAny() {
		return "impl(" + c.Flavor + ")"
	}
	return "impl(" + c.Flavor + " " + c.Range.String() + ")"
}

// Not negates a condition.
type Not struct{ Cond Condition }

func (c Not) Eval(env Env) bool { return !c.Cond.Eval(env) }
func (c Not) String() string    { return "!" + c.Cond.String() }

// And holds when both sides hold.
type And struct{ Left, Right Condition }

func (c And) Eval(env Env) bool { return c.Left.Eval(env) && c.Right.Eval(env) }
func (c And) String() string    { return "(" + c.Left.String() + " && " + c.Right.String() + ")" }

// Or holds when either side holds.
type Or struct{ Left, Right Condition }

func (c Or) Eval(env Env) bool { return c.Left.Eval(env) || c.Right.Eval(env) }
func (c Or) String() string    { return "(" + c.Left.String() + " || " + c.Right.String() + ")" }

var osAliases = map[string]string{
	"mingw32": "windows",
	"win32":   "windows",
	"darwin":  "osx",
	"macos":   "osx",
}

func canonicalOS(s string) string {
	s = strings.ToLower(s)
	if alias, ok := osAliases[s]; ok {
		return alias
	}
	return s
}

// ParseCondition parses a condition expression such as
// "flag(dev) && !os(windows) || impl(ghc >= 9.0)".
func ParseCondition(s string) (Condition, error) {
	p := &condParser{input: s}
	c, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return nil, p.errorf("unexpected %q", p.input[p.pos:])
	}
	return c, nil
}

type condParser struct {
	input string
	pos   int
}

func (p *condParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w %q at offset %d: %s", ErrInvalidCondition, p.input, p.pos, fmt.Sprintf(format, args...))
}

func (p *condParser) skipSpace() {
	for p.pos < len(p.input) && strings.IndexByte(" \t\n\r", p.input[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *condParser) consume(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.input[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *condParser) parseOr() (Condition, error) {
	c, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.consume("||") {
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		c = Or{Left: c, Right: rhs}
	}
	return c, nil
}

func (p *condParser) parseAnd() (Condition, error) {
	c, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.consume("&&") {
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		c = And{Left: c, Right: rhs}
	}
	return c, nil
}

func (p *condParser) parseUnary() (Condition, error) {
	if p.consume("!") {
		c, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{Cond: c}, nil
	}
	return p.parsePrimary()
}

func (p *condParser) parsePrimary() (Condition, error) {
	if p.consume("(") {
		c, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.consume(")") {
			return nil, p.errorf("expected ')'")
		}
		return c, nil
	}

	p.skipSpace()
	word := p.ident()
	switch strings.ToLower(word) {
	case "":
		if p.pos >= len(p.input) {
			return nil, p.errorf("unexpected end of condition")
		}
		return nil, p.errorf("unexpected %q", p.input[p.pos:p.pos+1])
	case "true":
		return Literal(true), nil
	case "false":
		return Literal(false), nil
	case "flag", "os", "arch", "impl":
	default:
		return nil, p.errorf("unknown test %q", word)
	}

	if !p.consume("(") {
		return nil, p.errorf("expected '(' after %s", word)
	}
	arg, err := p.argument()
	if err != nil {
		return nil, err
	}

	test := strings.ToLower(word)
	if test == "impl" {
		return p.impl(arg)
	}
	if err := p.singleWord(test, arg); err != nil {
		return nil, err
	}

	name := strings.ToLower(arg)
	switch test {
	case "flag":
		return FlagTest(name), nil
	case "os":
		return OSTest(name), nil
	default:
		return ArchTest(name), nil
	}
}

func (p *condParser) ident() string {
	start := p.pos
	for p.pos < len(p.input) && isIdentChar(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func isIdentChar(c byte) bool {
	return isNameChar(c) || c == '_'
}

// argument returns the text up to the matching close parenthesis and
// consumes it.
func (p *condParser) argument() (string, error) {
	depth := 0
	start := p.pos
	for ; p.pos < len(p.input); p.pos++ {
		switch p.input[p.pos] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				arg := strings.TrimSpace(p.input[start:p.pos])
				p.pos++
				return arg, nil
			}
			depth--
		}
	}
	return "", p.errorf("unterminated argument list")
}

func (p *condParser) singleWord(test, arg string) error {
	if arg == "" {
		return p.errorf("%s() needs an argument", test)
	}
	for i := 0; i < len(arg); i++ {
		if !isIdentChar(arg[i]) {
			return p.errorf("%s(%s): invalid name", test, arg)
		}
	}
	return nil
}

func (p *condParser) impl(arg string) (Condition, error) {
	end := 0
	for end < len(arg) && isIdentChar(arg[end]) {
		end++
	}
	flavor := strings.ToLower(arg[:end])
	if flavor == "" {
		return nil, p.errorf("impl() needs a compiler name")
	}
	r, err := versionrange.Parse(arg[end:])
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidCondition, p.input, err)
	}
	return ImplTest{Flavor: flavor, Range: r}, nil
}
