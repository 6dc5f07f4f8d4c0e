package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/deskgrid/internal/daemon"
	mcpserver "github.com/1broseidon/deskgrid/internal/mcp"
)

// NewMCPCommand creates the mcp command group.
func NewMCPCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}

	var monitors []string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start the MCP server on stdio. Designed to be invoked by MCP clients.
Monitors are tracked while serving when an X server is reachable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCPServe(rootOpts, cmd, monitors)
		},
	}
	serve.Flags().StringArrayVar(&monitors, "monitor", nil, "fixed monitor ID=WxH+X+Y[*] instead of querying X (repeatable)")
	cmd.AddCommand(serve)
	return cmd
}

func runMCPServe(opts *RootOptions, cmd *cobra.Command, specs []string) error {
	env, err := opts.loadEnv(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var guard *daemon.Guarded
	sess, err := env.startSession(specs)
	switch {
	case err == nil:
		defer sess.Close()
		guard = sess.guard
	case servesUnbound(err, specs):
		env.logger.Warn("monitor tracking disabled", "error", err)
		st, err := env.openStore(nil)
		if err != nil {
			return err
		}
		guard = daemon.NewGuarded(st)
	default:
		return err
	}

	watchCtx, cancelWatch := context.WithCancel(ctx)
	watchDone := make(chan error, 1)
	if sess != nil {
		go func() { watchDone <- sess.watcher.Run(watchCtx) }()
	} else {
		close(watchDone)
	}

	serveErr := mcpserver.NewServer(guard, env.logger).Run(ctx)
	cancelWatch()
	watchErr := <-watchDone
	return errors.Join(serveErr, watchErr)
}

// servesUnbound reports whether mcp serve should carry on without monitor
// tracking: only when X is unreachable and no monitors were given.
func servesUnbound(err error, specs []string) bool {
	return len(specs) == 0 && errors.Is(err, errNoDisplay)
}
