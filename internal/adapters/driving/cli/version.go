package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quill/internal/adapters/driving/mcp"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "quill version %s\n", version)
		if verbose {
			fmt.Fprintf(out, "mcp server %s\n", mcp.Version)
			fmt.Fprintf(out, "%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
