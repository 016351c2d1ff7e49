package sheet

import (
	"strings"
	"time"

	"github.com/fuabioo/kontab/internal/cell"
	"github.com/google/uuid"
)

// FormulaCell tracks a cell whose raw content is a formula
type FormulaCell struct {
	ID             string         `json:"id"`
	Address        cell.Address   `json:"address"`
	Formula        string         `json:"formula"`
	Dependencies   []cell.Address `json:"dependencies"`
	Value          cell.Value     `json:"value"`
	LastCalculated time.Time      `json:"last_calculated,omitzero"`
}

// newID returns a time-ordered id, falling back to a random one
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

// Report summarizes a recalculation
type Report struct {
	Sheet    string        `json:"sheet,omitempty"`
	Formulas []FormulaCell `json:"formulas"`
	Errors   int           `json:"errors"`
	Output   string        `json:"output,omitempty"`
}

// NewReport counts the failing formulas in records
func NewReport(sheet string, records []FormulaCell) Report {
	r := Report{Sheet: sheet, Formulas: records}
	if r.Formulas == nil {
		r.Formulas = []FormulaCell{}
	}
	for _, rec := range records {
		if rec.Value.IsError() {
			r.Errors++
		}
	}
	return r
}

// Table flattens the report for delimited output
func (r Report) Table() [][]string {
	rows := [][]string{{"address", "formula", "value", "dependencies"}}
	for _, rec := range r.Formulas {
		deps := make([]string, len(rec.Dependencies))
		for i, a := range rec.Dependencies {
			deps[i] = a.String()
		}
		rows = append(rows, []string{rec.Address.String(), rec.Formula, rec.Value.String(), strings.Join(deps, " ")})
	}
	return rows
}
