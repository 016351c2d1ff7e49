package main

import (
	"fmt"
	"log"

	"github.com/fuabioo/kontab/internal/cell"
	"github.com/fuabioo/kontab/internal/xlsx"
	"github.com/xuri/excelize/v2"
)

func main() {
	// Ledger sheet: net amounts with VAT and gross columns
	ledger, err := cell.FromRows([][]any{
		{"Item", "Net", "VAT", "Gross"},
		{"Rent", 1000, "=VAT(B2)", "=B2+C2"},
		{"Power", 250, "=VAT(B3, 0.1)", "=B3*1.1"},
		{"Internet", 45.5, "=B4*0.2", "=B4+B4*0.2"},
		{"Office", 320, "=VAT(B5)", "=NETTO(D2)"},
		{"Total", "=SUM(B2:B5)", "=SUM(C2:C5)", "=AVERAGE(B2:B5)"},
	})
	if err != nil {
		log.Fatal(err)
	}

	f, err := xlsx.NewWorkbook("Ledger", ledger, xlsx.WriteFormulas)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Fatal(err)
		}
	}()

	// Invoices sheet: gross amounts to be split back into net
	invoices, err := cell.FromRows([][]any{
		{"Invoice", "Gross", "Net"},
		{"INV-001", 1200, "=NETTO(B2)"},
		{"INV-002", 550, "=NETTO(B3, 0.1)"},
		{"INV-003", 99.99, "=NETTO(B4)"},
		{"Broken", "n/a", "=B5/0"},
	})
	if err != nil {
		log.Fatal(err)
	}
	if _, err := f.NewSheet("Invoices"); err != nil {
		log.Fatal(err)
	}
	if err := xlsx.WriteSheet(f, "Invoices", invoices, xlsx.WriteFormulas); err != nil {
		log.Fatal(err)
	}

	// Set Ledger as active
	f.SetActiveSheet(0)

	if err := f.SaveAs("testdata/test.xlsx", excelize.Options{}); err != nil {
		log.Fatal(err)
	}

	rows, _ := ledger.Bounds()
	invRows, _ := invoices.Bounds()
	fmt.Println("Created test.xlsx with", rows, "rows in Ledger and", invRows, "rows in Invoices sheet")
}
