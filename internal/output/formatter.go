package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Format represents output format options
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
)

// Tabular is implemented by results that know how to flatten themselves
// into a header row followed by data rows.
type Tabular interface {
	Table() [][]string
}

// Formatter renders command results
type Formatter interface {
	// FormatValue formats a single result
	FormatValue(v any) ([]byte, error)

	// FormatRows formats already flattened rows
	FormatRows(rows [][]string) ([]byte, error)
}

// ParseFormat validates a format name
func ParseFormat(format string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(format))); f {
	case FormatJSON, FormatCSV, FormatTSV:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format: %s (valid: json, csv, tsv)", format)
	}
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format string) (Formatter, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatCSV:
		return delimited{comma: ','}, nil
	case FormatTSV:
		return delimited{comma: '\t'}, nil
	default:
		return JSONFormatter{}, nil
	}
}

// JSONFormatter outputs one JSON document per result
type JSONFormatter struct{}

func (JSONFormatter) FormatValue(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON value: %w", err)
	}
	return append(data, '\n'), nil
}

func (f JSONFormatter) FormatRows(rows [][]string) ([]byte, error) {
	if rows == nil {
		rows = [][]string{}
	}
	return f.FormatValue(rows)
}

// delimited outputs CSV or TSV
type delimited struct {
	comma rune
}

func (d delimited) FormatValue(v any) ([]byte, error) {
	rows, err := toRows(v)
	if err != nil {
		return nil, err
	}
	return d.FormatRows(rows)
}

func (d delimited) FormatRows(rows [][]string) ([]byte, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)
	w.Comma = d.comma
	for i, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("writer error: %w", err)
	}
	return []byte(buf.String()), nil
}

// toRows flattens a result for CSV/TSV output
func toRows(v any) ([][]string, error) {
	switch val := v.(type) {
	case Tabular:
		return val.Table(), nil
	case [][]string:
		return val, nil
	case []string:
		rows := make([][]string, len(val))
		for i, s := range val {
			rows[i] = []string{s}
		}
		return rows, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		row := make([]string, len(keys))
		for i, k := range keys {
			row[i] = fmt.Sprint(val[k])
		}
		return [][]string{keys, row}, nil
	case fmt.Stringer:
		return [][]string{{val.String()}}, nil
	default:
		return [][]string{{fmt.Sprintf("%v", v)}}, nil
	}
}

// FormatRows is a convenience function for formatting row data
func FormatRows(format string, rows [][]string) ([]byte, error) {
	f, err := NewFormatter(format)
	if err != nil {
		return nil, fmt.Errorf("failed to create formatter: %w", err)
	}
	return f.FormatRows(rows)
}

// FormatSingle is a convenience function for formatting a single object
func FormatSingle(format string, v any) ([]byte, error) {
	f, err := NewFormatter(format)
	if err != nil {
		return nil, fmt.Errorf("failed to create formatter: %w", err)
	}
	data, err := f.FormatValue(v)
	if err != nil {
		return nil, fmt.Errorf("failed to format value: %w", err)
	}
	return data, nil
}
