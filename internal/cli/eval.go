package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fuabioo/kontab/internal/cell"
	"github.com/fuabioo/kontab/internal/xlsx"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval <formula>",
	Short: "Evaluate a formula",
	Long: `Evaluate a single cell formula against an inline grid (--grid) or a workbook
sheet (--file). Without either, the formula is evaluated against an empty grid.

Examples:
  kontab eval "=2+3*4"
  kontab eval "=VAT(A1)" --grid '[[100]]'
  kontab eval "=SUM(B2:B9)" --file ledger.xlsx --sheet Ledger`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		sheetName, _ := cmd.Flags().GetString("sheet")
		gridJSON, _ := cmd.Flags().GetString("grid")

		if file != "" && gridJSON != "" {
			return errors.New("pass either --grid or --file, not both")
		}

		var g cell.Data
		switch {
		case file != "":
			f, err := xlsx.OpenFile(resolveArg(cmd, file))
			if err != nil {
				return err
			}
			defer f.Close()

			name, err := xlsx.ResolveSheetName(f, sheetName)
			if err != nil {
				return err
			}
			if g, err = xlsx.LoadSheet(cmd.Context(), f, name); err != nil {
				return err
			}
		case gridJSON != "":
			var rows [][]any
			if err := json.Unmarshal([]byte(gridJSON), &rows); err != nil {
				return fmt.Errorf("invalid --grid: %w", err)
			}
			data, err := cell.FromRows(rows)
			if err != nil {
				return fmt.Errorf("invalid --grid: %w", err)
			}
			g = data
		}

		return printResult(cmd, cfg.Engine().Explain(cell.Parse(args[0]), g))
	},
}

func init() {
	evalCmd.Flags().String("file", "", "Workbook to evaluate against")
	evalCmd.Flags().String("sheet", "", "Sheet name (default: first sheet)")
	evalCmd.Flags().String("grid", "", "Inline grid as JSON rows, e.g. '[[1,2],[3]]'")
	rootCmd.AddCommand(evalCmd)
}
