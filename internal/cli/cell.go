package cli

import (
	"github.com/fuabioo/kontab/internal/xlsx"
	"github.com/spf13/cobra"
)

var cellCmd = &cobra.Command{
	Use:   "cell <file.xlsx> [sheet] <address>",
	Short: "Get raw and computed cell value",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := xlsx.OpenFile(resolveArg(cmd, args[0]))
		if err != nil {
			return err
		}
		defer f.Close()

		var sheet, address string
		if len(args) == 2 {
			// Only file and address provided, use default sheet
			address = args[1]
		} else {
			sheet = args[1]
			address = args[2]
		}

		info, err := xlsx.Inspect(cmd.Context(), f, sheet, address, cfg.Engine().Evaluate)
		if err != nil {
			return err
		}
		return printResult(cmd, info)
	},
}

func init() {
	rootCmd.AddCommand(cellCmd)
}
