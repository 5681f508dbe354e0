package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/storage/flat"
	"github.com/custodia-labs/ragkit/internal/adapters/driven/watcher"
	"github.com/custodia-labs/ragkit/internal/adapters/driving/mcp"
	"github.com/custodia-labs/ragkit/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

Tools: query, ask, check_rule. Resources: ragkit://index, ragkit://rules.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead. Use --watch to reload the
index when another process rebuilds it with 'ragkit build --force'.

Examples:
  # Stdio mode (default, for Claude Desktop)
  ragkit mcp serve

  # HTTP mode with hot reload
  ragkit mcp serve --port 8080 --watch

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "ragkit": {
        "command": "/path/to/ragkit",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("watch", false, "reload the index when its artifacts are rebuilt")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("getting watch flag: %w", err)
	}

	rt, err := openRuntime(cmd, RuntimeOptions{})
	if err != nil {
		return err
	}
	defer rt.close()

	server, err := mcp.NewServer(&mcp.Ports{
		Retrieval:  rt.Retrieval,
		Answers:    rt.Answers,
		Compliance: rt.Compliance,
		Rules:      rt.Rules,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	if watch {
		if err := startIndexWatcher(ctx, rt); err != nil {
			return err
		}
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

// startIndexWatcher reloads rt's index whenever vectors.bin is rewritten.
// The vectors artifact is renamed into place after metadata.db, so its
// arrival means both are complete.
func startIndexWatcher(ctx context.Context, rt *Runtime) error {
	if rt.Reload == nil || rt.IndexDir == "" {
		return errors.New("index reload not supported by this runtime")
	}

	w, err := watcher.New(watcher.Config{
		Dir:      rt.IndexDir,
		Triggers: []string{flat.VectorsFile},
	}, rt.Reload)
	if err != nil {
		return err
	}

	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("index watcher stopped: %v", err)
		}
	}()
	return nil
}
