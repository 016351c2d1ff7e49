package cli

import (
	"github.com/fuabioo/kontab/internal/formula"
	"github.com/spf13/cobra"
)

var depsCmd = &cobra.Command{
	Use:   "deps <formula>",
	Short: "List the cells a formula refers to",
	Long: `List the distinct cell addresses a formula references, in the order they
first appear. A range contributes its two corner cells.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps := formula.Dependencies(args[0])
		out := make([]string, len(deps))
		for i, a := range deps {
			out[i] = a.String()
		}
		return printResult(cmd, out)
	},
}

func init() {
	rootCmd.AddCommand(depsCmd)
}
