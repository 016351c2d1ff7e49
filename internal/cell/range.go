package cell

import (
	"fmt"
	"strings"
)

// Range is an inclusive rectangle of cells. Start is always the top-left
// corner and End the bottom-right one.
type Range struct {
	Start Address
	End   Address
}

// NewRange builds a normalized range from two corners given in any order
func NewRange(a, b Address) Range {
	return Range{
		Start: Address{Row: min(a.Row, b.Row), Col: min(a.Col, b.Col)},
		End:   Address{Row: max(a.Row, b.Row), Col: max(a.Col, b.Col)},
	}
}

// ParseRange parses "A1:C10" (corners in any order) or a single "A1"
func ParseRange(s string) (Range, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	switch len(parts) {
	case 1:
		a, err := ParseAddress(parts[0])
		if err != nil {
			return Range{}, err
		}
		return Range{Start: a, End: a}, nil

	case 2:
		start, err := ParseAddress(parts[0])
		if err != nil {
			return Range{}, fmt.Errorf("%w: invalid start %q", ErrInvalidRange, parts[0])
		}
		end, err := ParseAddress(parts[1])
		if err != nil {
			return Range{}, fmt.Errorf("%w: invalid end %q", ErrInvalidRange, parts[1])
		}
		return NewRange(start, end), nil

	default:
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
}

// Rows returns the number of rows spanned
func (r Range) Rows() int {
	return r.End.Row - r.Start.Row + 1
}

// Cols returns the number of columns spanned
func (r Range) Cols() int {
	return r.End.Col - r.Start.Col + 1
}

// Size returns the number of cells addressed, empty ones included
func (r Range) Size() int {
	return r.Rows() * r.Cols()
}

// Contains reports whether a lies inside r
func (r Range) Contains(a Address) bool {
	return a.Row >= r.Start.Row && a.Row <= r.End.Row &&
		a.Col >= r.Start.Col && a.Col <= r.End.Col
}

// String returns the range as "A1:C10", or "A1" for a single cell
func (r Range) String() string {
	if r.Start == r.End {
		return r.Start.String()
	}
	return r.Start.String() + ":" + r.End.String()
}
