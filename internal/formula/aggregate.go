package formula

import (
	"fmt"
	"math"
	"strings"

	"github.com/fuabioo/kontab/internal/cell"
	"github.com/montanaflynn/stats"
)

// operands holds the numeric values found in an aggregate argument together
// with the number of cells it addresses, empty ones included.
type operands struct {
	values []float64
	count  int
}

// collect resolves a range ("A1:B10") or a comma-separated list of
// addresses ("A1, B2, C3") against g. Non-numeric and missing cells
// contribute nothing.
func collect(arg string, g cell.Grid) (operands, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return operands{}, fmt.Errorf("%w: empty argument list", ErrParse)
	}

	if strings.Contains(arg, ":") {
		r, err := cell.ParseRange(arg)
		if err != nil {
			return operands{}, fmt.Errorf("%w: %w", ErrParse, err)
		}
		return collectRange(r, g), nil
	}

	entries := strings.Split(arg, ",")
	ops := operands{count: len(entries)}
	for _, entry := range entries {
		a, err := cell.ParseAddress(entry)
		if err != nil {
			return operands{}, fmt.Errorf("%w: %w", ErrParse, err)
		}
		if n, ok := g.Cell(a.Row, a.Col).Number(); ok {
			ops.values = append(ops.values, n)
		}
	}
	return ops, nil
}

// collectRange walks r in row-major order. Only the part of r that overlaps
// the grid is visited; the count still covers the whole rectangle.
func collectRange(r cell.Range, g cell.Grid) operands {
	ops := operands{count: r.Size()}

	rows, cols := g.Bounds()
	lastRow := min(r.End.Row, rows-1)
	lastCol := min(r.End.Col, cols-1)
	for row := r.Start.Row; row <= lastRow; row++ {
		for col := r.Start.Col; col <= lastCol; col++ {
			if n, ok := g.Cell(row, col).Number(); ok {
				ops.values = append(ops.values, n)
			}
		}
	}
	return ops
}

// sum adds the collected values; an empty set sums to 0
func (o operands) sum() (float64, error) {
	if len(o.values) == 0 {
		return 0, nil
	}
	total, err := stats.Sum(o.values)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEvaluation, err)
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, fmt.Errorf("%w: sum is not finite", ErrEvaluation)
	}
	return total, nil
}

// average divides the sum by the addressed cell count, not the count of
// numeric cells. A zero count averages to 0.
func (o operands) average() (float64, error) {
	total, err := o.sum()
	if err != nil {
		return 0, err
	}
	if o.count == 0 {
		return 0, nil
	}
	return total / float64(o.count), nil
}
