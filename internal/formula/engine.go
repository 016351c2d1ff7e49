// Package formula evaluates spreadsheet cell formulas against a read-only
// snapshot of a sheet.
//
// A raw value that is text beginning with "=" is a formula; anything else
// is returned unchanged. Supported formulas are SUM and AVERAGE over a range
// or address list, arithmetic over numbers and cell references, and the
// accounting functions VAT and NETTO. Failures never escape as Go errors:
// they become error values ("#ERROR: <cause>"). Unrecognized expressions,
// such as a bare reference, are returned as their original text.
package formula

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fuabioo/kontab/internal/cell"
)

var (
	sumPattern     = regexp.MustCompile(`^SUM\(([^()]*)\)$`)
	averagePattern = regexp.MustCompile(`^AVERAGE\(([^()]*)\)$`)
)

// Engine evaluates formulas. It holds configuration only and is safe for
// concurrent use.
type Engine struct {
	rate float64
}

// Option configures an Engine
type Option func(*Engine)

// WithAccountingRate sets the rate VAT and NETTO use when called without one
func WithAccountingRate(rate float64) Option {
	return func(e *Engine) {
		e.rate = rate
	}
}

// New creates an Engine
func New(opts ...Option) *Engine {
	e := &Engine{rate: DefaultAccountingRate}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// Evaluate evaluates raw against g with the default Engine
func Evaluate(raw cell.Value, g cell.Grid) cell.Value {
	return defaultEngine.Evaluate(raw, g)
}

// IsFormula reports whether v is text starting with "="
func IsFormula(v cell.Value) bool {
	s, ok := v.Text()
	return ok && strings.HasPrefix(s, "=")
}

// Evaluate returns the value to display for a cell holding raw. Literals
// pass through; formulas are computed against g, which is only read.
func (e *Engine) Evaluate(raw cell.Value, g cell.Grid) (result cell.Value) {
	if !IsFormula(raw) {
		return raw
	}
	text, _ := raw.Text()

	defer func() {
		if r := recover(); r != nil {
			result = cell.Error(fmt.Sprintf("internal failure: %v", r))
		}
	}()

	v, err := e.eval(text, g)
	if err != nil {
		return cell.Error(err.Error())
	}
	return v
}

// EvaluateString is a convenience for callers holding the formula as text
func (e *Engine) EvaluateString(formula string, g cell.Grid) cell.Value {
	return e.Evaluate(cell.Text(formula), g)
}

func (e *Engine) eval(formula string, g cell.Grid) (cell.Value, error) {
	expr := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(formula, "=")))

	if m := sumPattern.FindStringSubmatch(expr); m != nil {
		ops, err := collect(m[1], g)
		if err != nil {
			return cell.Value{}, err
		}
		total, err := ops.sum()
		if err != nil {
			return cell.Value{}, err
		}
		return cell.Number(total), nil
	}

	if m := averagePattern.FindStringSubmatch(expr); m != nil {
		ops, err := collect(m[1], g)
		if err != nil {
			return cell.Value{}, err
		}
		avg, err := ops.average()
		if err != nil {
			return cell.Value{}, err
		}
		return cell.Number(avg), nil
	}

	if hasAccounting(expr) {
		rewritten, err := rewriteAccounting(expr, e.rate)
		if err != nil {
			return cell.Value{}, err
		}
		return e.arithmetic(rewritten, g)
	}

	if strings.ContainsAny(expr, "+-*/") {
		return e.arithmetic(expr, g)
	}

	return cell.Text(formula), nil
}

// arithmetic substitutes numeric references and evaluates what remains.
// References to empty or non-numeric cells stay as text and fail the
// allow-list, so they surface as errors instead of silently reading 0.
func (e *Engine) arithmetic(expr string, g cell.Grid) (cell.Value, error) {
	bindings, err := buildContext(expr, g)
	if err != nil {
		return cell.Value{}, err
	}

	substituted := refPattern.ReplaceAllStringFunc(expr, func(ref string) string {
		n, ok := bindings[ref]
		if !ok {
			return ref
		}
		if n < 0 {
			return "(" + cell.FormatNumber(n) + ")"
		}
		return cell.FormatNumber(n)
	})

	if ref := refPattern.FindString(substituted); ref != "" {
		return cell.Value{}, fmt.Errorf("%w: %s is empty or not a number", ErrEvaluation, ref)
	}

	n, err := evalArithmetic(substituted)
	if err != nil {
		return cell.Value{}, err
	}
	return cell.Number(n), nil
}

// buildContext maps every reference in expr whose cell holds a number to
// that number.
func buildContext(expr string, g cell.Grid) (map[string]float64, error) {
	refs := extractRefs(expr)
	bindings := make(map[string]float64, len(refs))
	for _, ref := range refs {
		a, err := cell.ParseAddress(ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		if n, ok := g.Cell(a.Row, a.Col).Number(); ok {
			bindings[ref] = n
		}
	}
	return bindings, nil
}
