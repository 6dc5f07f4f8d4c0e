package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	var monitors []string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Track monitors and keep layouts bound",
		Long: `Poll the X server for monitor changes, bind each monitor to its stored
layout (importing legacy layouts the first time a monitor is seen) and
write pending changes. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(rootOpts, cmd, monitors)
		},
	}
	cmd.Flags().StringArrayVar(&monitors, "monitor", nil, "fixed monitor ID=WxH+X+Y[*] instead of querying X (repeatable)")
	return cmd
}

func runWatch(opts *RootOptions, cmd *cobra.Command, specs []string) error {
	env, err := opts.loadEnv(cmd)
	if err != nil {
		return err
	}
	sess, err := env.startSession(specs)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return sess.watcher.Run(ctx)
}
