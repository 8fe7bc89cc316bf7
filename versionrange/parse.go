package versionrange

import (
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-ghcselect/version"
)

// SyntaxError reports a malformed version range.
type SyntaxError struct {
	Input   string
	Pos     int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid version range %q at offset %d: %s", e.Input, e.Pos, e.Message)
}

// Parse parses a version range expression.
//
// Grammar, loosest binding first:
//
//	range := conj ("||" conj)*
//	conj  := atom ("&&" atom)*
//	atom  := "(" range ")"
//	       | "-any" | "any" | "-none" | "none"
//	       | op VERSION
//	       | "==" VERSION ".*"
//	       | ("==" | "^>=") "{" VERSION ("," VERSION)* "}"
//	op    := "==" | ">=" | ">" | "<=" | "<" | "^>="
//
// An empty or all-blank input means any version.
func Parse(s string) (Range, error) {
	if strings.TrimSpace(s) == "" {
		return Any(), nil
	}

	p := &rangeParser{input: s}
	if err := p.lex(); err != nil {
		return Range{}, err
	}

	r, err := p.parseOr()
	if err != nil {
		return Range{}, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return Range{}, p.errorf(tok, "unexpected %q", tok.text)
	}
	return r, nil
}

// MustParse parses s or panics. Use only for constants and tests.
func MustParse(s string) Range {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokOp
	tokAnd
	tokOr
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokComma
	tokVersion
	tokWord
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type rangeParser struct {
	input  string
	tokens []token
	next   int
}

// operators sorted so that longer spellings are tried first.
var operators = []string{"^>=", "==", ">=", "<=", ">", "<"}

func (p *rangeParser) lex() error {
	s := p.input
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
			continue
		case strings.HasPrefix(s[i:], "&&"):
			p.emit(tokAnd, "&&", i)
			i += 2
			continue
		case strings.HasPrefix(s[i:], "||"):
			p.emit(tokOr, "||", i)
			i += 2
			continue
		}

		if op := matchOperator(s[i:]); op != "" {
			p.emit(tokOp, op, i)
			i += len(op)
			continue
		}

		switch {
		case c == '(':
			p.emit(tokLParen, "(", i)
			i++
		case c == ')':
			p.emit(tokRParen, ")", i)
			i++
		case c == '{':
			p.emit(tokLBrace, "{", i)
			i++
		case c == '}':
			p.emit(tokRBrace, "}", i)
			i++
		case c == ',':
			p.emit(tokComma, ",", i)
			i++
		case isDigit(c):
			start := i
			for i < len(s) && (isDigit(s[i]) || s[i] == '.' || s[i] == '*') {
				i++
			}
			p.emit(tokVersion, s[start:i], start)
		case c == '-' || isLetter(c):
			start := i
			i++
			for i < len(s) && isLetter(s[i]) {
				i++
			}
			p.emit(tokWord, s[start:i], start)
		default:
			return &SyntaxError{Input: s, Pos: i, Message: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	p.emit(tokEOF, "", len(s))
	return nil
}

func matchOperator(s string) string {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func (p *rangeParser) emit(kind tokenKind, text string, pos int) {
	p.tokens = append(p.tokens, token{kind: kind, text: text, pos: pos})
}

func (p *rangeParser) peek() token {
	return p.tokens[p.next]
}

func (p *rangeParser) advance() token {
	tok := p.tokens[p.next]
	if tok.kind != tokEOF {
		p.next++
	}
	return tok
}

func (p *rangeParser) errorf(tok token, format string, args ...any) error {
	if tok.kind == tokEOF {
		return &SyntaxError{Input: p.input, Pos: tok.pos, Message: "unexpected end of input"}
	}
	return &SyntaxError{Input: p.input, Pos: tok.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *rangeParser) parseOr() (Range, error) {
	r, err := p.parseAnd()
	if err != nil {
		return Range{}, err
	}
	for p.peek().kind == tokOr {
		p.advance()
		rhs, err := p.parseAnd()
		if err != nil {
			return Range{}, err
		}
		r = Union(r, rhs)
	}
	return r, nil
}

func (p *rangeParser) parseAnd() (Range, error) {
	r, err := p.parseAtom()
	if err != nil {
		return Range{}, err
	}
	for p.peek().kind == tokAnd {
		p.advance()
		rhs, err := p.parseAtom()
		if err != nil {
			return Range{}, err
		}
		r = Intersect(r, rhs)
	}
	return r, nil
}

func (p *rangeParser) parseAtom() (Range, error) {
	tok := p.advance()
	switch tok.kind {
	case tokLParen:
		r, err := p.parseOr()
		if err != nil {
			return Range{}, err
		}
		if closing := p.advance(); closing.kind != tokRParen {
			return Range{}, p.errorf(closing, "expected ')', got %q", closing.text)
		}
		return r, nil

	case tokWord:
		switch tok.text {
		case "-any", "any":
			return Any(), nil
		case "-none", "none":
			return None(), nil
		}
		return Range{}, p.errorf(tok, "unknown keyword %q", tok.text)

	case tokOp:
		return p.parseOperand(tok)
	}
	return Range{}, p.errorf(tok, "expected a version constraint, got %q", tok.text)
}

func (p *rangeParser) parseOperand(op token) (Range, error) {
	if p.peek().kind == tokLBrace {
		return p.parseSet(op)
	}

	tok := p.advance()
	if tok.kind != tokVersion {
		return Range{}, p.errorf(tok, "expected a version after %q, got %q", op.text, tok.text)
	}

	text := tok.text
	if strings.HasSuffix(text, ".*") {
		if op.text != "==" {
			return Range{}, p.errorf(tok, "wildcard is only allowed with ==")
		}
		v, err := p.version(tok, strings.TrimSuffix(text, ".*"))
		if err != nil {
			return Range{}, err
		}
		return Wildcard(v), nil
	}

	v, err := p.version(tok, text)
	if err != nil {
		return Range{}, err
	}
	return apply(op.text, v), nil
}

func (p *rangeParser) parseSet(op token) (Range, error) {
	if op.text != "==" && op.text != "^>=" {
		return Range{}, p.errorf(op, "version sets are only allowed with == and ^>=")
	}
	p.advance() // {

	r := None()
	for {
		tok := p.advance()
		if tok.kind != tokVersion {
			return Range{}, p.errorf(tok, "expected a version in set, got %q", tok.text)
		}
		v, err := p.version(tok, tok.text)
		if err != nil {
			return Range{}, err
		}
		r = Union(r, apply(op.text, v))

		sep := p.advance()
		if sep.kind == tokRBrace {
			return r, nil
		}
		if sep.kind != tokComma {
			return Range{}, p.errorf(sep, "expected ',' or '}', got %q", sep.text)
		}
	}
}

func (p *rangeParser) version(tok token, text string) (version.Version, error) {
	v, err := version.Parse(text)
	if err != nil {
		return version.Version{}, &SyntaxError{Input: p.input, Pos: tok.pos, Message: err.Error()}
	}
	return v, nil
}

func apply(op string, v version.Version) Range {
	switch op {
	case "==":
		return Exactly(v)
	case ">=":
		return AtLeast(v)
	case ">":
		return Above(v)
	case "<=":
		return AtMost(v)
	case "<":
		return Below(v)
	case "^>=":
		return MajorBound(v)
	default:
		return None()
	}
}
