package formula

import (
	"strings"

	"github.com/fuabioo/kontab/internal/cell"
)

// Evaluation is a computed result together with what it was computed from
type Evaluation struct {
	Input        string         `json:"input"`
	Formula      bool           `json:"formula"`
	Value        cell.Value     `json:"value"`
	Kind         string         `json:"kind"`
	Dependencies []cell.Address `json:"dependencies"`
}

// Explain evaluates raw against g and reports its dependencies
func (e *Engine) Explain(raw cell.Value, g cell.Grid) Evaluation {
	v := e.Evaluate(raw, g)
	ev := Evaluation{
		Input:        raw.String(),
		Formula:      IsFormula(raw),
		Value:        v,
		Kind:         v.Kind().String(),
		Dependencies: []cell.Address{},
	}
	if ev.Formula {
		ev.Dependencies = Dependencies(ev.Input)
	}
	return ev
}

// Table flattens the evaluation for delimited output
func (ev Evaluation) Table() [][]string {
	deps := make([]string, len(ev.Dependencies))
	for i, a := range ev.Dependencies {
		deps[i] = a.String()
	}
	return [][]string{
		{"input", "value", "kind", "dependencies"},
		{ev.Input, ev.Value.String(), ev.Kind, strings.Join(deps, " ")},
	}
}
