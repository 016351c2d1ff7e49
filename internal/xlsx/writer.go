package xlsx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fuabioo/kontab/internal/cell"
	"github.com/xuri/excelize/v2"
)

// NewWorkbook builds a single-sheet workbook holding d. In WriteFormulas
// mode formula text is stored as workbook formulas, otherwise every value
// is stored as is.
func NewWorkbook(sheet string, d cell.Data, mode WriteMode) (*excelize.File, error) {
	if sheet == "" {
		sheet = "Sheet1"
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet %q: %w", sheet, err)
	}
	if err := WriteSheet(f, sheet, d, mode); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WriteSheet writes every non-empty cell of d into sheet
func WriteSheet(f *excelize.File, sheet string, d cell.Data, mode WriteMode) error {
	for row, cols := range d {
		for col, v := range cols {
			if v.IsEmpty() {
				continue
			}
			name, err := excelize.CoordinatesToCellName(col+1, row+1)
			if err != nil {
				return err
			}
			if err := setCell(f, sheet, name, v, mode); err != nil {
				return err
			}
		}
	}
	return nil
}

// setCell writes one value with the matching excelize setter
func setCell(f *excelize.File, sheet, name string, v cell.Value, mode WriteMode) error {
	var err error
	switch v.Kind() {
	case cell.KindNumber:
		n, _ := v.Number()
		err = f.SetCellFloat(sheet, name, n, -1, 64)
	case cell.KindBool:
		b, _ := v.Bool()
		err = f.SetCellBool(sheet, name, b)
	case cell.KindText:
		text, _ := v.Text()
		if mode == WriteFormulas && strings.HasPrefix(text, "=") {
			err = f.SetCellFormula(sheet, name, strings.TrimPrefix(text, "="))
		} else {
			err = f.SetCellStr(sheet, name, text)
		}
	default:
		err = f.SetCellStr(sheet, name, v.String())
	}
	if err != nil {
		return fmt.Errorf("failed to set cell %s: %w", name, err)
	}
	return nil
}

// SaveSnapshot writes d as a single-sheet workbook at path
func SaveSnapshot(path, sheet string, d cell.Data, mode WriteMode) error {
	f, err := NewWorkbook(sheet, d, mode)
	if err != nil {
		return err
	}
	defer f.Close()
	return SaveFileAtomic(f, path)
}

// SaveFileAtomic saves the file atomically using temp file + rename.
// This prevents corruption if the process is interrupted.
func SaveFileAtomic(f *excelize.File, path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	tmpPath := filepath.Join(dir, filepath.Base(path)+".tmp")
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file %s: %w", tmpPath, err)
	}

	if err := f.Write(tmpFile); err != nil {
		tmpFile.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write to temp file %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file %s: %w", tmpPath, err)
	}

	// rename is atomic on most filesystems
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	return nil
}
