package xlsx

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fuabioo/kontab/internal/cell"
	"github.com/xuri/excelize/v2"
)

var rawOpts = excelize.Options{RawCellValue: true}

// OpenFile opens an xlsx file and returns the excelize handle
func OpenFile(path string) (*excelize.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d bytes",
			ErrFileTooLarge, info.Size(), MaxFileSize)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFormat, path, err)
	}
	return f, nil
}

// GetSheets returns a list of all sheet names in the workbook
func GetSheets(f *excelize.File) ([]string, error) {
	if f == nil {
		return nil, fmt.Errorf("file handle is nil")
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in workbook")
	}
	return sheets, nil
}

// GetDefaultSheet returns the first sheet name or error if none exist
func GetDefaultSheet(f *excelize.File) (string, error) {
	sheets, err := GetSheets(f)
	if err != nil {
		return "", err
	}
	return sheets[0], nil
}

// ResolveSheetName returns the actual sheet name (with correct casing) or default
func ResolveSheetName(f *excelize.File, sheet string) (string, error) {
	if sheet == "" {
		return GetDefaultSheet(f)
	}

	for _, s := range f.GetSheetList() {
		if strings.EqualFold(s, sheet) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
}

// LoadSheet reads a worksheet into a grid of raw cell values. Formula cells
// load as their "=..." text so they can be recomputed.
func LoadSheet(ctx context.Context, f *excelize.File, sheet string) (cell.Data, error) {
	resolved, err := ResolveSheetName(f, sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.Rows(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to open row iterator: %w", err)
	}
	defer rows.Close()

	var (
		data   cell.Data
		cells  int
		rowNum int
	)
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rowNum++

		cols, err := rows.Columns(rawOpts)
		if err != nil {
			return nil, fmt.Errorf("error reading row %d: %w", rowNum, err)
		}
		cells += len(cols)
		if cells > MaxLoadCells {
			return nil, fmt.Errorf("%w: more than %d cells in %s", ErrTooManyCells, MaxLoadCells, resolved)
		}

		for i, raw := range cols {
			name, err := excelize.CoordinatesToCellName(i+1, rowNum)
			if err != nil {
				return nil, err
			}
			v, err := readValue(f, resolved, name, raw)
			if err != nil {
				return nil, err
			}
			if !v.IsEmpty() {
				data.Set(cell.Address{Row: rowNum - 1, Col: i}, v)
			}
		}
	}

	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return data, nil
}

// ReadCell returns the raw value stored at ref
func ReadCell(f *excelize.File, sheet, ref string) (cell.Value, error) {
	resolved, err := ResolveSheetName(f, sheet)
	if err != nil {
		return cell.Value{}, err
	}
	a, err := cell.ParseAddress(ref)
	if err != nil {
		return cell.Value{}, err
	}

	name := a.String()
	raw, err := f.GetCellValue(resolved, name, rawOpts)
	if err != nil {
		return cell.Value{}, fmt.Errorf("failed to get cell %s: %w", name, err)
	}
	return readValue(f, resolved, name, raw)
}

// readValue converts the stored form of one cell into a Value
func readValue(f *excelize.File, sheet, name, raw string) (cell.Value, error) {
	formula, err := f.GetCellFormula(sheet, name)
	if err != nil {
		return cell.Value{}, fmt.Errorf("failed to get formula of %s: %w", name, err)
	}
	if formula != "" {
		return cell.Text("=" + formula), nil
	}
	if raw == "" {
		return cell.Empty(), nil
	}

	cellType, err := f.GetCellType(sheet, name)
	if err != nil {
		return guessValue(raw), nil
	}

	switch cellType {
	case excelize.CellTypeNumber, excelize.CellTypeDate:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return cell.Number(n), nil
		}
		return cell.Text(raw), nil
	case excelize.CellTypeBool:
		return cell.Bool(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeError:
		return cell.Error(raw), nil
	case excelize.CellTypeInlineString, excelize.CellTypeSharedString:
		return cell.Text(raw), nil
	default:
		return guessValue(raw), nil
	}
}

// guessValue is the fallback for cells without a type attribute
func guessValue(raw string) cell.Value {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return cell.Number(n)
	}
	return cell.Text(raw)
}

// TypeName returns the label used for a value in cell listings
func TypeName(v cell.Value) string {
	switch {
	case v.Kind() == cell.KindText && strings.HasPrefix(v.String(), "="):
		return "formula"
	default:
		return v.Kind().String()
	}
}

// Inspect returns the raw and computed value of a single cell. compute
// receives the raw value and the loaded sheet.
func Inspect(ctx context.Context, f *excelize.File, sheet, ref string, compute func(cell.Value, cell.Grid) cell.Value) (*CellInfo, error) {
	resolved, err := ResolveSheetName(f, sheet)
	if err != nil {
		return nil, err
	}
	raw, err := ReadCell(f, resolved, ref)
	if err != nil {
		return nil, err
	}

	computed := raw
	if TypeName(raw) == "formula" {
		data, err := LoadSheet(ctx, f, resolved)
		if err != nil {
			return nil, err
		}
		computed = compute(raw, data)
	}

	return &CellInfo{
		Sheet:    resolved,
		Address:  strings.ToUpper(strings.TrimSpace(ref)),
		Raw:      raw,
		Computed: computed,
		Type:     TypeName(raw),
	}, nil
}

// Info summarizes a loaded sheet
func Info(name string, data cell.Data) SheetInfo {
	rows, cols := data.Bounds()
	info := SheetInfo{Name: name, Rows: rows, Cols: cols}
	for _, r := range data {
		for _, v := range r {
			if TypeName(v) == "formula" {
				info.Formulas++
			}
		}
	}
	return info
}
