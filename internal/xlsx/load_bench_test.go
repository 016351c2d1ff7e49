package xlsx

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// createLargeTestFile writes numRows ledger rows (item, net, VAT formula)
// using the streaming writer.
func createLargeTestFile(t testing.TB, numRows int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "large.xlsx")
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter("Sheet1")
	if err != nil {
		t.Fatalf("NewStreamWriter failed: %v", err)
	}
	for i := 1; i <= numRows; i++ {
		ref, _ := excelize.CoordinatesToCellName(1, i)
		row := []any{
			fmt.Sprintf("item %d", i),
			float64(i) * 10,
			excelize.Cell{Formula: fmt.Sprintf("VAT(B%d)", i)},
		}
		if err := sw.SetRow(ref, row); err != nil {
			t.Fatalf("SetRow failed: %v", err)
		}
	}
	if err := sw.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	return path
}

func TestLoadSheetLarge(t *testing.T) {
	f, err := OpenFile(createLargeTestFile(t, 5000))
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer f.Close()

	data, err := LoadSheet(context.Background(), f, "Sheet1")
	if err != nil {
		t.Fatalf("LoadSheet failed: %v", err)
	}
	info := Info("Sheet1", data)
	if info.Rows != 5000 || info.Cols != 3 || info.Formulas != 5000 {
		t.Errorf("Info = %+v; want 5000 rows, 3 cols, 5000 formulas", info)
	}
}

// BenchmarkLoadSheet measures allocations when loading a whole sheet
func BenchmarkLoadSheet(b *testing.B) {
	for _, n := range []int{100, 10000} {
		b.Run(fmt.Sprintf("rows=%d", n), func(b *testing.B) {
			f, err := OpenFile(createLargeTestFile(b, n))
			if err != nil {
				b.Fatalf("OpenFile failed: %v", err)
			}
			defer f.Close()

			b.ReportAllocs()
			b.ResetTimer()

			for b.Loop() {
				data, err := LoadSheet(context.Background(), f, "Sheet1")
				if err != nil {
					b.Fatalf("LoadSheet failed: %v", err)
				}
				if rows, _ := data.Bounds(); rows != n {
					b.Errorf("expected %d rows, got %d", n, rows)
				}
			}
		})
	}
}
