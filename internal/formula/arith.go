package formula

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/efp"
)

// checkArithmetic rejects anything outside digits, '.', + - * / ( ) and
// whitespace, and unbalanced parentheses.
func checkArithmetic(expr string) error {
	depth := 0
	for _, r := range expr {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ' ', r == '\t':
		case r == '+', r == '-', r == '*', r == '/':
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: unbalanced parentheses", ErrEvaluation)
			}
		default:
			return fmt.Errorf("%w: unsupported character %q", ErrEvaluation, r)
		}
	}
	if depth != 0 {
		return fmt.Errorf("%w: unbalanced parentheses", ErrEvaluation)
	}
	return nil
}

// evalArithmetic evaluates a pure arithmetic expression. The text is
// checked against the allow-list before it is tokenized.
func evalArithmetic(expr string) (float64, error) {
	if err := checkArithmetic(expr); err != nil {
		return 0, err
	}

	ps := efp.ExcelParser()
	tokens := ps.Parse(strings.ReplaceAll(expr, "\t", " "))

	// efp reports the implied leading '=' as an infix token
	if len(tokens) > 0 && tokens[0].TType == efp.TokenTypeOperatorInfix && tokens[0].TValue == "=" {
		tokens = tokens[1:]
	}
	if len(tokens) == 0 {
		return 0, fmt.Errorf("%w: empty expression", ErrEvaluation)
	}

	p := &arithParser{tokens: tokens}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.pos < len(p.tokens) {
		return 0, fmt.Errorf("%w: unexpected %q", ErrEvaluation, p.tokens[p.pos].TValue)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: result is not finite", ErrEvaluation)
	}
	return v, nil
}

// arithParser is a recursive-descent evaluator over efp tokens:
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary }
//	unary  = "-" unary | primary
//	primary = number | "(" expr ")"
type arithParser struct {
	tokens []efp.Token
	pos    int
}

func (p *arithParser) peek() (efp.Token, bool) {
	if p.pos >= len(p.tokens) {
		return efp.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *arithParser) isInfix(values ...string) (string, bool) {
	tok, ok := p.peek()
	if !ok || tok.TType != efp.TokenTypeOperatorInfix || tok.TSubType != efp.TokenSubTypeMath {
		return "", false
	}
	for _, v := range values {
		if tok.TValue == v {
			return v, true
		}
	}
	return "", false
}

func (p *arithParser) parseExpr() (float64, error) {
	val, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.isInfix("+", "-")
		if !ok {
			return val, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			val += right
		} else {
			val -= right
		}
	}
}

func (p *arithParser) parseTerm() (float64, error) {
	val, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.isInfix("*", "/")
		if !ok {
			return val, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == "*" {
			val *= right
			continue
		}
		if right == 0 {
			return 0, fmt.Errorf("%w: division by zero", ErrEvaluation)
		}
		val /= right
	}
}

func (p *arithParser) parseUnary() (float64, error) {
	tok, ok := p.peek()
	if ok && tok.TType == efp.TokenTypeOperatorPrefix && tok.TValue == "-" {
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}
	return p.parsePrimary()
}

func (p *arithParser) parsePrimary() (float64, error) {
	tok, ok := p.peek()
	if !ok {
		return 0, fmt.Errorf("%w: unexpected end of expression", ErrEvaluation)
	}

	switch {
	case tok.TType == efp.TokenTypeOperand && tok.TSubType == efp.TokenSubTypeNumber:
		p.pos++
		f, err := strconv.ParseFloat(tok.TValue, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid number %q", ErrEvaluation, tok.TValue)
		}
		return f, nil

	case tok.TType == efp.TokenTypeSubexpression && tok.TSubType == efp.TokenSubTypeStart:
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		closing, ok := p.peek()
		if !ok || closing.TType != efp.TokenTypeSubexpression || closing.TSubType != efp.TokenSubTypeStop {
			return 0, fmt.Errorf("%w: missing closing parenthesis", ErrEvaluation)
		}
		p.pos++
		return v, nil

	default:
		return 0, fmt.Errorf("%w: unexpected %q", ErrEvaluation, tok.TValue)
	}
}
