package main

import (
	"context"

	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"grantmaster/internal/logging"
	mcpserver "grantmaster/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing the grantmaster tools
(save_profile, run_research, draft_section, list_opportunities,
get_latest_sections) to MCP clients.

The server monitors for parent process death. When the client disconnects,
the server self-terminates to prevent zombie processes.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	pipeline, err := buildPipeline(st)
	if err != nil {
		return err
	}

	srv := mcpserver.NewServer(st, pipeline, cfg.Portal)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchStdin(ctx, nil, cancel)

	logging.New("mcp").Info("starting grantmaster MCP server over stdio (parent watchdog active)")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
