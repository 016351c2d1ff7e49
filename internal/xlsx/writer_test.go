package xlsx

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fuabioo/kontab/internal/cell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData(t *testing.T) cell.Data {
	t.Helper()
	d, err := cell.FromRows([][]any{
		{"Item", "Net", "VAT"},
		{"Rent", 1000, "=VAT(B2)"},
		{"Broken", true, cell.Error("division by zero")},
	})
	require.NoError(t, err)
	return d
}

func TestSaveSnapshotFormulas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "raw.xlsx")
	require.NoError(t, SaveSnapshot(path, "Ledger", sampleData(t), WriteFormulas))

	f, err := OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets, err := GetSheets(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ledger"}, sheets)

	fx, err := f.GetCellFormula("Ledger", "C2")
	require.NoError(t, err)
	assert.Equal(t, "VAT(B2)", fx)

	data, err := LoadSheet(context.Background(), f, "Ledger")
	require.NoError(t, err)
	assert.Equal(t, cell.Text("=VAT(B2)"), data.At(cell.MustParseAddress("C2")))
	assert.Equal(t, cell.Number(1000), data.At(cell.MustParseAddress("B2")))
	assert.Equal(t, cell.Bool(true), data.At(cell.MustParseAddress("B3")))
	assert.Equal(t, cell.Text(cell.ErrorPrefix+"division by zero"), data.At(cell.MustParseAddress("C3")))
}

func TestSaveSnapshotComputed(t *testing.T) {
	d := sampleData(t)
	d.Set(cell.MustParseAddress("C2"), cell.Number(200))

	path := filepath.Join(t.TempDir(), "computed.xlsx")
	require.NoError(t, SaveSnapshot(path, "", d, WriteComputed))

	f, err := OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := ReadCell(f, "Sheet1", "C2")
	require.NoError(t, err)
	assert.Equal(t, cell.Number(200), v)

	fx, err := f.GetCellFormula("Sheet1", "C2")
	require.NoError(t, err)
	assert.Empty(t, fx)
}

func TestSaveFileAtomicLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.xlsx")

	f, err := NewWorkbook("S", sampleData(t), WriteComputed)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, SaveFileAtomic(f, path))
	// overwrite in place
	require.NoError(t, SaveFileAtomic(f, path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.xlsx", entries[0].Name())
}
