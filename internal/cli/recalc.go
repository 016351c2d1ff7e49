package cli

import (
	"fmt"
	"log/slog"

	"github.com/fuabioo/kontab/internal/sheet"
	"github.com/fuabioo/kontab/internal/xlsx"
	"github.com/spf13/cobra"
)

var recalcCmd = &cobra.Command{
	Use:   "recalc <file.xlsx> [sheet]",
	Short: "Evaluate every formula in a sheet",
	Long: `Load a sheet, evaluate each formula cell and print a report of the results.
With --out, the computed values are also written to a new workbook; the
source file is never modified.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := xlsx.OpenFile(resolveArg(cmd, args[0]))
		if err != nil {
			return err
		}
		defer f.Close()

		var requested string
		if len(args) == 2 {
			requested = args[1]
		}
		name, err := xlsx.ResolveSheetName(f, requested)
		if err != nil {
			return err
		}
		data, err := xlsx.LoadSheet(cmd.Context(), f, name)
		if err != nil {
			return err
		}

		store := sheet.NewFromData(data, cfg.SheetOptions()...)
		computed, records, err := store.Computed(cmd.Context())
		if err != nil {
			return err
		}
		report := sheet.NewReport(name, records)

		if out, _ := cmd.Flags().GetString("out"); out != "" {
			out = resolveArg(cmd, out)
			if err := xlsx.SaveSnapshot(out, name, computed, xlsx.WriteComputed); err != nil {
				return fmt.Errorf("failed to save snapshot: %w", err)
			}
			slog.Debug("snapshot written", "path", out, "sheet", name)
			report.Output = out
		}
		return printResult(cmd, report)
	},
}

func init() {
	recalcCmd.Flags().StringP("out", "o", "", "Write computed values to this xlsx file")
	rootCmd.AddCommand(recalcCmd)
}
