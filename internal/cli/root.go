package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/fang"
	"github.com/fuabioo/kontab/internal/config"
	"github.com/fuabioo/kontab/internal/output"
	"github.com/spf13/cobra"
)

var (
	// cfg is loaded from the environment before any command runs
	cfg        = config.Default()
	appVersion = "dev"
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "kontab",
	Short: "kontab - accounting spreadsheet formulas",
	Long: `kontab evaluates accounting spreadsheet formulas (SUM, AVERAGE, arithmetic,
VAT, NETTO) against inline grids or xlsx workbooks.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		slog.SetDefault(cfg.Logger())
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute(ctx context.Context, version, commit, date string) error {
	versionStr := version
	if versionStr == "" {
		versionStr = "dev"
	}
	appVersion = versionStr
	if commit != "" {
		versionStr += fmt.Sprintf(" (commit: %s)", commit)
	}
	if date != "" {
		versionStr += fmt.Sprintf(" built: %s", date)
	}

	return fang.Execute(ctx, rootCmd,
		fang.WithVersion(versionStr),
	)
}

func init() {
	rootCmd.PersistentFlags().StringP("format", "f", "json", "Output format (json, csv, tsv)")
	rootCmd.PersistentFlags().String("basepath", "", "Base directory for relative file paths (env: KONTAB_BASEPATH)")
}

// GetFormatFromCmd returns the validated --format value
func GetFormatFromCmd(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		format = ""
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return "", err
	}
	return string(f), nil
}

// printResult writes v to the command's stdout in the requested format
func printResult(cmd *cobra.Command, v any) error {
	format, err := GetFormatFromCmd(cmd)
	if err != nil {
		return err
	}
	return output.Print(cmd.OutOrStdout(), v, format)
}
