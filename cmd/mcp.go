package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joescharf/codetime/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

Configure it in an MCP client with:

  {
    "mcpServers": {
      "codetime": { "command": "codetime", "args": ["mcp"] }
    }
  }

Available tools: codetime_analyze, codetime_parse_tag`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mcp.NewServer(newLoader(), sessionConfig(), buildVersion)
	return srv.ServeStdio(ctx)
}
