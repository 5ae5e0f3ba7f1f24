// Package formula evaluates the arithmetic expressions merchants attach to
// shapes (surface area, volume). The language is intentionally tiny: numbers,
// variables, + - * /, unary minus and parentheses.
//
// Evaluation never fails. Unknown variables read as 0, division by zero yields
// 0 and malformed input evaluates to 0; use Validate to surface problems to
// the merchant.
package formula

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	ErrEmpty       = errors.New("empty_formula")
	ErrSyntax      = errors.New("invalid_formula_syntax")
	ErrUnknownVar  = errors.New("undeclared_variable")
	errUnbalanced  = fmt.Errorf("%w: unbalanced parentheses", ErrSyntax)
	errUnexpectEnd = fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
)

// Evaluate parses and evaluates src against bindings.
func Evaluate(src string, bindings map[string]float64) float64 {
	prog, err := Compile(src)
	if err != nil {
		return 0
	}
	return prog.Eval(bindings)
}

// Program is a compiled expression. It is immutable and safe for concurrent use.
type Program struct {
	src  string
	root node
	vars []string
}

// Source returns the text the program was compiled from.
func (p *Program) Source() string { return p.src }

// Variables lists referenced variable names in first-use order.
func (p *Program) Variables() []string {
	return append([]string(nil), p.vars...)
}

// Eval evaluates the program. A nil program evaluates to 0.
func (p *Program) Eval(bindings map[string]float64) float64 {
	if p == nil || p.root == nil {
		return 0
	}
	v := p.root.eval(bindings)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Compile parses src into a Program.
func Compile(src string) (*Program, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, ErrEmpty
	}

	p := &parser{toks: toks, seen: map[string]struct{}{}}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		tok := p.toks[p.pos]
		if tok.kind == tokRParen {
			return nil, errUnbalanced
		}
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, tok.text, tok.offset)
	}

	return &Program{src: src, root: root, vars: p.vars}, nil
}

// Issue describes a problem found in a formula.
type Issue struct {
	Err      error  `json:"-"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Variable string `json:"variable,omitempty"`
}

// Validate reports syntax errors and references to variables outside
// declared. A nil result means the formula is sound.
func Validate(src string, declared []string) []Issue {
	prog, err := Compile(src)
	if err != nil {
		return []Issue{newIssue(err, "")}
	}

	known := make(map[string]struct{}, len(declared))
	for _, key := range declared {
		known[key] = struct{}{}
	}

	var issues []Issue
	for _, name := range prog.vars {
		if _, ok := known[name]; !ok {
			issues = append(issues, newIssue(fmt.Errorf("%w: %s", ErrUnknownVar, name), name))
		}
	}
	return issues
}

func newIssue(err error, variable string) Issue {
	code := ErrSyntax.Error()
	switch {
	case errors.Is(err, ErrEmpty):
		code = ErrEmpty.Error()
	case errors.Is(err, ErrUnknownVar):
		code = ErrUnknownVar.Error()
	}
	return Issue{Err: err, Code: code, Message: err.Error(), Variable: variable}
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind   tokenKind
	text   string
	num    float64
	offset int
}

func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '+' || c == '-' || c == '*' || c == '/':
			toks = append(toks, token{kind: tokOp, text: string(c), offset: i})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", offset: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", offset: i})
			i++
		case isDigit(c) || c == '.':
			start := i
			dots := 0
			for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
				if src[i] == '.' {
					dots++
				}
				i++
			}
			text := src[start:i]
			if dots > 1 || text == "." {
				return nil, fmt.Errorf("%w: invalid number %q at offset %d", ErrSyntax, text, start)
			}
			num, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid number %q at offset %d", ErrSyntax, text, start)
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: num, offset: start})
		case isIdentStart(c):
			start := i
			for i < len(src) && (isIdentStart(src[i]) || isDigit(src[i])) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], offset: start})
		default:
			return nil, fmt.Errorf("%w: invalid character %q at offset %d", ErrSyntax, c, i)
		}
	}
	return toks, nil
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

// parser is a recursive-descent parser over:
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary }
//	unary  = ("-" | "+") unary | primary
//	primary = number | ident | "(" expr ")"
type parser struct {
	toks []token
	pos  int
	vars []string
	seen map[string]struct{}
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokOp || (tok.text != "+" && tok.text != "-") {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binary{op: tok.text[0], left: left, right: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokOp || (tok.text != "*" && tok.text != "/") {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binary{op: tok.text[0], left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	tok, ok := p.peek()
	if ok && tok.kind == tokOp && (tok.text == "-" || tok.text == "+") {
		p.pos++
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if tok.text == "+" {
			return operand, nil
		}
		return negate{operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, errUnexpectEnd
	}
	p.pos++

	switch tok.kind {
	case tokNumber:
		return number(tok.num), nil
	case tokIdent:
		if _, dup := p.seen[tok.text]; !dup {
			p.seen[tok.text] = struct{}{}
			p.vars = append(p.vars, tok.text)
		}
		return variable(tok.text), nil
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != tokRParen {
			return nil, errUnbalanced
		}
		p.pos++
		return inner, nil
	case tokRParen:
		return nil, errUnbalanced
	default:
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, tok.text, tok.offset)
	}
}

type node interface {
	eval(bindings map[string]float64) float64
}

type number float64

func (n number) eval(map[string]float64) float64 { return float64(n) }

type variable string

func (v variable) eval(bindings map[string]float64) float64 {
	return bindings[string(v)]
}

type negate struct{ operand node }

func (n negate) eval(bindings map[string]float64) float64 { return -n.operand.eval(bindings) }

type binary struct {
	op          byte
	left, right node
}

func (b binary) eval(bindings map[string]float64) float64 {
	l := b.left.eval(bindings)
	r := b.right.eval(bindings)
	switch b.op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	case '/':
		if r == 0 {
			return 0
		}
		return l / r
	}
	return 0
}
