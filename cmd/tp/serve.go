package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/amonks/taskprompt/internal/serverlog"
	"github.com/amonks/taskprompt/internal/ui"
	"github.com/amonks/taskprompt/mcpserver"
	"github.com/amonks/taskprompt/rpc"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve task state over HTTP for editor hosts",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the update_todo_list tool over MCP on stdio",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd, mcpCmd)

	serveCmd.Flags().StringVar(&serveAddr, "listen", "", "Address or port to listen on (default from server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, err := rpc.ResolveAddr(appConfig, serveAddr)
	if err != nil {
		return err
	}
	manager, err := openManager()
	if err != nil {
		return err
	}
	logger := serverlog.New(os.Stderr, appConfig.Server.LogLevel, ui.IsTerminal(os.Stderr))
	server, err := rpc.NewServer(rpc.ServerOptions{Manager: manager, Logger: logger})
	if err != nil {
		return err
	}
	return server.Serve(addr)
}

func runMCP(cmd *cobra.Command, args []string) error {
	manager, err := openManager()
	if err != nil {
		return err
	}
	logger := serverlog.New(os.Stderr, appConfig.Server.LogLevel, ui.IsTerminal(os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return mcpserver.New(manager, logger, version).Run(ctx)
}
