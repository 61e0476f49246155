package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/lessonflow/pkg/adapters/mcp"
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the flows of the configured store as MCP tools, so that agents can
edit blocks, undo and redo, and query the asset context of a flow.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		mgr, closer, err := newManager(appConfig, logger, domain.LifecycleHooks{})
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer closer.Close()

		srv := mcp.NewServer(mgr, mcp.WithLogger(logger))
		defer func() {
			if err := mgr.SaveAll(context.Background()); err != nil {
				logger.Error("Failed to persist open flows", "err", err)
			}
		}()

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("Starting Lessonflow MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("Starting Lessonflow MCP Server (SSE)", "port", port)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
