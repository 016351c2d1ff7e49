package formula

import (
	"regexp"
	"strings"

	"github.com/fuabioo/kontab/internal/cell"
)

// refPattern matches single-cell references such as A1 or XFD1048
var refPattern = regexp.MustCompile(`\b[A-Z]{1,3}[0-9]{1,5}\b`)

// rangePattern matches two references joined by a colon
var rangePattern = regexp.MustCompile(`\b([A-Z]{1,3}[0-9]{1,5})\s*:\s*([A-Z]{1,3}[0-9]{1,5})\b`)

// extractRefs returns every distinct reference token in expr, in first-seen order.
// expr must already be upper-cased.
func extractRefs(expr string) []string {
	matches := refPattern.FindAllString(expr, -1)
	seen := make(map[string]struct{}, len(matches))
	refs := matches[:0]
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		refs = append(refs, m)
	}
	return refs
}

// Dependencies returns the distinct cell addresses a formula refers to.
// Range corners are reported as individual addresses; use Footprint for
// the full rectangles. Tokens that look like references but do not parse
// (e.g. A0) are skipped.
func Dependencies(formula string) []cell.Address {
	refs := extractRefs(strings.ToUpper(formula))
	deps := make([]cell.Address, 0, len(refs))
	for _, ref := range refs {
		a, err := cell.ParseAddress(ref)
		if err != nil {
			continue
		}
		deps = append(deps, a)
	}
	return deps
}

// Footprint returns the rectangles a formula reads: every A1:B2 range plus
// every standalone reference as a single-cell range.
func Footprint(formula string) []cell.Range {
	expr := strings.ToUpper(formula)

	var out []cell.Range
	for _, m := range rangePattern.FindAllStringSubmatch(expr, -1) {
		a, errA := cell.ParseAddress(m[1])
		b, errB := cell.ParseAddress(m[2])
		if errA != nil || errB != nil {
			continue
		}
		out = append(out, cell.NewRange(a, b))
	}

	// Corners are already covered by their ranges
	rest := rangePattern.ReplaceAllString(expr, " ")
	for _, ref := range extractRefs(rest) {
		a, err := cell.ParseAddress(ref)
		if err != nil {
			continue
		}
		out = append(out, cell.Range{Start: a, End: a})
	}
	return out
}

// DependsOn reports whether formula reads the cell at a
func DependsOn(formula string, a cell.Address) bool {
	for _, r := range Footprint(formula) {
		if r.Contains(a) {
			return true
		}
	}
	return false
}
