package cli

import (
	"fmt"
	"log/slog"

	"github.com/fuabioo/kontab/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as MCP server (stdio)",
	Long:  `Run kontab as a Model Context Protocol server using stdio transport.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		allowedPaths, err := cmd.Flags().GetStringSlice("allowed-paths")
		if err != nil {
			return fmt.Errorf("failed to get allowed-paths flag: %w", err)
		}

		opts := []mcp.Option{mcp.WithConfig(cfg), mcp.WithLogger(slog.Default())}
		if len(allowedPaths) > 0 {
			// CLI flag takes precedence over KONTAB_ALLOWED_PATHS
			opts = append(opts, mcp.WithAllowedPaths(allowedPaths))
		}

		return mcp.New(appVersion, opts...).Run()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringSlice("allowed-paths", nil,
		"Directories to allow file access (comma-separated, e.g. --allowed-paths /tmp,/data)")
}
