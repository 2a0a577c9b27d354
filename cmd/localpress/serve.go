package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/localpress/localpress/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, or the MCP stdio server with --mcp",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a.Logger.Info("LocalPress starting", logging.WithFields(map[string]interface{}{
			"cms":      appCfg.CMS.Backend,
			"provider": appCfg.News.Provider,
			"mcp":      appCfg.Server.MCPMode,
		}))

		defer a.Close()
		if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		a.Logger.Info("LocalPress stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("http", "", "HTTP server address (default :8080)")
	serveCmd.Flags().Bool("mcp", false, "run in MCP stdio mode")
}
