// Package calc evaluates the arithmetic strings users type into amount
// fields ("500+300", "1200*0.5"). The grammar is deliberately tiny: digits,
// decimal point, + - * / %, parentheses and unary minus. Nothing else is
// accepted, so there is no way to smuggle code through an amount field.
package calc

import (
	"errors"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidExpression means the input could not be parsed. Callers keep
	// whatever value they already had.
	ErrInvalidExpression = errors.New("invalid expression")
	// ErrDivideByZero is returned for division or modulo by zero.
	ErrDivideByZero = errors.New("division by zero")
)

// Evaluate parses and evaluates an arithmetic expression, rounding the
// result half-up to 2 decimal places. Empty or whitespace-only input
// evaluates to 0.
func Evaluate(input string) (decimal.Decimal, error) {
	if strings.TrimSpace(input) == "" {
		return decimal.Zero, nil
	}
	p := &parser{input: input}
	v, err := p.expr()
	if err != nil {
		return decimal.Zero, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return decimal.Zero, ErrInvalidExpression
	}
	return v.Round(2), nil
}

// EvaluateCents evaluates an expression and converts the result to integer
// cents. The amount must be positive.
func EvaluateCents(input string) (int64, error) {
	v, err := Evaluate(input)
	if err != nil {
		return 0, err
	}
	return v.Mul(decimal.NewFromInt(100)).IntPart(), nil
}

// parser is a recursive-descent parser over the expression grammar:
//
//	expr   = term   { ("+" | "-") term }
//	term   = factor { ("*" | "/" | "%") factor }
//	factor = [ "-" ] ( number | "(" expr ")" )
type parser struct {
	input string
	pos   int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

// peek returns the next non-space byte without consuming it, or 0 at end.
func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) expr() (decimal.Decimal, error) {
	v, err := p.term()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			r, err := p.term()
			if err != nil {
				return decimal.Zero, err
			}
			v = v.Add(r)
		case '-':
			p.pos++
			r, err := p.term()
			if err != nil {
				return decimal.Zero, err
			}
			v = v.Sub(r)
		default:
			return v, nil
		}
	}
}

func (p *parser) term() (decimal.Decimal, error) {
	v, err := p.factor()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			r, err := p.factor()
			if err != nil {
				return decimal.Zero, err
			}
			v = v.Mul(r)
		case '/':
			p.pos++
			r, err := p.factor()
			if err != nil {
				return decimal.Zero, err
			}
			if r.IsZero() {
				return decimal.Zero, ErrDivideByZero
			}
			v = v.Div(r)
		case '%':
			p.pos++
			r, err := p.factor()
			if err != nil {
				return decimal.Zero, err
			}
			if r.IsZero() {
				return decimal.Zero, ErrDivideByZero
			}
			v = v.Mod(r)
		default:
			return v, nil
		}
	}
}

func (p *parser) factor() (decimal.Decimal, error) {
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.factor()
		if err != nil {
			return decimal.Zero, err
		}
		return v.Neg(), nil
	case '(':
		p.pos++
		v, err := p.expr()
		if err != nil {
			return decimal.Zero, err
		}
		if p.peek() != ')' {
			return decimal.Zero, ErrInvalidExpression
		}
		p.pos++
		return v, nil
	default:
		return p.number()
	}
}

func (p *parser) number() (decimal.Decimal, error) {
	p.skipSpace()
	start := p.pos
	sawDigit := false
	sawDot := false
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if ch >= '0' && ch <= '9' {
			sawDigit = true
			p.pos++
			continue
		}
		if ch == '.' {
			if sawDot {
				return decimal.Zero, ErrInvalidExpression
			}
			sawDot = true
			p.pos++
			continue
		}
		break
	}
	if !sawDigit {
		return decimal.Zero, ErrInvalidExpression
	}
	v, err := decimal.NewFromString(p.input[start:p.pos])
	if err != nil {
		return decimal.Zero, ErrInvalidExpression
	}
	return v, nil
}
