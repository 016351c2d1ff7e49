package cli

import (
	"github.com/fuabioo/kontab/internal/xlsx"
	"github.com/spf13/cobra"
)

var sheetsCmd = &cobra.Command{
	Use:   "sheets <file.xlsx>",
	Short: "List all sheets in workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := xlsx.OpenFile(resolveArg(cmd, args[0]))
		if err != nil {
			return err
		}
		defer f.Close()

		names, err := xlsx.GetSheets(f)
		if err != nil {
			return err
		}

		infos := make(xlsx.SheetList, 0, len(names))
		for _, name := range names {
			data, err := xlsx.LoadSheet(cmd.Context(), f, name)
			if err != nil {
				return err
			}
			infos = append(infos, xlsx.Info(name, data))
		}
		return printResult(cmd, infos)
	},
}

func init() {
	rootCmd.AddCommand(sheetsCmd)
}
