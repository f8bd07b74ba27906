package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quill/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can write
cited sections and articles with Quill.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Prompt templates in the prompts directory are reloaded when edited.

Examples:
  # Stdio mode (default)
  quill mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  quill mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "quill": {
        "command": "/path/to/quill",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	writer, release, err := openWriter()
	if err != nil {
		return err
	}
	defer release()

	server, err := mcp.NewServer(&mcp.Ports{
		Article: writer,
		Prompts: promptWatcher,
	})
	if err != nil {
		return err
	}

	var addr string
	if port > 0 {
		addr = fmt.Sprintf(":%d", port)
		cmd.PrintErrf("MCP server listening on http://localhost%s\n", addr)
	}
	return server.Serve(cmd.Context(), addr)
}
