package xlsx

import (
	"errors"
	"strconv"

	"github.com/fuabioo/kontab/internal/cell"
)

// Error types
var (
	ErrSheetNotFound = errors.New("sheet not found")
	ErrFileNotFound  = errors.New("file not found")
	ErrInvalidFormat = errors.New("invalid xlsx format")
	ErrFileTooLarge  = errors.New("file exceeds size limit")
	ErrTooManyCells  = errors.New("sheet exceeds cell limit")
)

// Load limits
const (
	MaxFileSize  = 50 * 1024 * 1024 // 50MB
	MaxLoadCells = 2_000_000
)

// SheetInfo summarizes a loaded worksheet
type SheetInfo struct {
	Name     string `json:"name"`
	Rows     int    `json:"rows"`
	Cols     int    `json:"cols"`
	Formulas int    `json:"formulas"`
}

// SheetList is the summary of every sheet in a workbook
type SheetList []SheetInfo

// Table flattens the list for delimited output
func (l SheetList) Table() [][]string {
	rows := [][]string{{"name", "rows", "cols", "formulas"}}
	for _, s := range l {
		rows = append(rows, []string{s.Name, strconv.Itoa(s.Rows), strconv.Itoa(s.Cols), strconv.Itoa(s.Formulas)})
	}
	return rows
}

// CellInfo is one cell as stored and as computed
type CellInfo struct {
	Sheet    string     `json:"sheet"`
	Address  string     `json:"address"`
	Raw      cell.Value `json:"raw"`
	Computed cell.Value `json:"computed"`
	Type     string     `json:"type"` // text, number, bool, formula, error, empty
}

func (c CellInfo) Table() [][]string {
	return [][]string{
		{"sheet", "address", "raw", "computed", "type"},
		{c.Sheet, c.Address, c.Raw.String(), c.Computed.String(), c.Type},
	}
}

// WriteMode selects what a workbook snapshot stores for formula cells
type WriteMode int

const (
	// WriteComputed stores computed values
	WriteComputed WriteMode = iota
	// WriteFormulas stores formula text as workbook formulas
	WriteFormulas
)
