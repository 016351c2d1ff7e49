package cell

import "fmt"

// Grid is read access to a sheet's raw values. Absent cells read as empty.
type Grid interface {
	Cell(row, col int) Value
	Bounds() (rows, cols int)
}

// Data is a possibly ragged row-major grid. Missing rows and columns are
// treated as empty.
type Data [][]Value

// Cell returns the value at (row, col), or empty when out of bounds
func (d Data) Cell(row, col int) Value {
	if row < 0 || row >= len(d) {
		return Empty()
	}
	r := d[row]
	if col < 0 || col >= len(r) {
		return Empty()
	}
	return r[col]
}

// At returns the value stored at a
func (d Data) At(a Address) Value {
	return d.Cell(a.Row, a.Col)
}

// Bounds returns the row count and the widest row's column count
func (d Data) Bounds() (rows, cols int) {
	for _, r := range d {
		cols = max(cols, len(r))
	}
	return len(d), cols
}

// Set stores v at a, growing the grid as needed
func (d *Data) Set(a Address, v Value) {
	for len(*d) <= a.Row {
		*d = append(*d, nil)
	}
	row := (*d)[a.Row]
	for len(row) <= a.Col {
		row = append(row, Empty())
	}
	row[a.Col] = v
	(*d)[a.Row] = row
}

// Clone returns a deep copy safe to read while d is mutated
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	out := make(Data, len(d))
	for i, r := range d {
		if r != nil {
			out[i] = append([]Value(nil), r...)
		}
	}
	return out
}

// NewData returns a rows x cols grid of empty values
func NewData(rows, cols int) Data {
	d := make(Data, rows)
	for i := range d {
		d[i] = make([]Value, cols)
	}
	return d
}

// FromRows converts loosely typed rows (e.g. decoded JSON) into Data
func FromRows(rows [][]any) (Data, error) {
	d := make(Data, len(rows))
	for i, r := range rows {
		d[i] = make([]Value, len(r))
		for j, x := range r {
			v, err := FromAny(x)
			if err != nil {
				return nil, fmt.Errorf("cell %s: %w", Address{Row: i, Col: j}, err)
			}
			d[i][j] = v
		}
	}
	return d, nil
}
