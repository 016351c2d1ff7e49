package formula

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fuabioo/kontab/internal/cell"
)

// DefaultAccountingRate is the VAT rate applied when VAT or NETTO omit one
const DefaultAccountingRate = 0.2

// accountingPattern matches VAT(amount[, rate]) and NETTO(brutto[, rate])
// whose arguments contain no parentheses or further commas.
var accountingPattern = regexp.MustCompile(`\b(VAT|NETTO)\(\s*([^(),]+?)\s*(?:,\s*([^(),]+?)\s*)?\)`)

// leftoverAccounting detects calls the rewrite could not handle
var leftoverAccounting = regexp.MustCompile(`\b(VAT|NETTO)\(`)

// hasAccounting reports whether expr calls VAT or NETTO
func hasAccounting(expr string) bool {
	return leftoverAccounting.MatchString(expr)
}

// rewriteAccounting replaces VAT and NETTO calls with plain arithmetic:
//
//	VAT(a, r)   -> ((a) * (r))
//	NETTO(b, r) -> ((b) / (1 + (r)))
//
// Nested or malformed calls are rejected rather than guessed at.
func rewriteAccounting(expr string, defaultRate float64) (string, error) {
	rate := cell.FormatNumber(defaultRate)

	out := accountingPattern.ReplaceAllStringFunc(expr, func(call string) string {
		m := accountingPattern.FindStringSubmatch(call)
		arg, r := m[2], m[3]
		if strings.TrimSpace(r) == "" {
			r = rate
		}
		if m[1] == "VAT" {
			return fmt.Sprintf("((%s) * (%s))", arg, r)
		}
		return fmt.Sprintf("((%s) / (1 + (%s)))", arg, r)
	})

	if m := leftoverAccounting.FindString(out); m != "" {
		return "", fmt.Errorf("%w: unsupported nested or malformed %s call", ErrEvaluation, strings.TrimSuffix(m, "("))
	}
	return out, nil
}
