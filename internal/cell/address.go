package cell

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Error types
var (
	ErrInvalidAddress = errors.New("invalid cell address")
	ErrInvalidRange   = errors.New("invalid cell range")
)

const (
	// MaxColumnLetters bounds column names to ZZZ
	MaxColumnLetters = 3

	// MaxColumns is the number of columns addressable with MaxColumnLetters
	MaxColumns = 26 + 26*26 + 26*26*26

	// MaxRows is the largest 1-based row number accepted
	MaxRows = 99999
)

// Address is a zero-based (row, column) pair. Its text form is A1 notation.
type Address struct {
	Row int
	Col int
}

// addressRegex matches cell addresses like A1, B23, AA100
var addressRegex = regexp.MustCompile(`^([A-Z]+)([0-9]+)$`)

// ParseAddress parses an A1-style reference into a zero-based Address.
// Input is trimmed and upper-cased first.
func ParseAddress(s string) (Address, error) {
	ref := strings.ToUpper(strings.TrimSpace(s))
	matches := addressRegex.FindStringSubmatch(ref)
	if matches == nil {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	col, err := ColumnIndex(matches[1])
	if err != nil {
		return Address{}, err
	}

	row, err := strconv.Atoi(matches[2])
	if err != nil || row < 1 || row > MaxRows {
		return Address{}, fmt.Errorf("%w: row out of bounds in %q", ErrInvalidAddress, s)
	}

	return Address{Row: row - 1, Col: col}, nil
}

// MustParseAddress is like ParseAddress but panics on malformed input.
// Intended for literals in tests and fixtures.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ColumnIndex decodes bijective base-26 column letters (A=0, Z=25, AA=26)
func ColumnIndex(letters string) (int, error) {
	if letters == "" || len(letters) > MaxColumnLetters {
		return 0, fmt.Errorf("%w: column %q", ErrInvalidAddress, letters)
	}
	result := 0
	for _, ch := range letters {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("%w: column %q", ErrInvalidAddress, letters)
		}
		result = result*26 + int(ch-'A'+1)
	}
	return result - 1, nil
}

// ColumnName encodes a zero-based column index as letters (0=A, 26=AA).
// Negative indexes yield an empty string.
func ColumnName(col int) string {
	var buf [16]byte
	i := len(buf)
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:])
}

// String returns the address in A1 notation
func (a Address) String() string {
	return ColumnName(a.Col) + strconv.Itoa(a.Row+1)
}

// MarshalText implements encoding.TextMarshaler so addresses encode as "A1"
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
