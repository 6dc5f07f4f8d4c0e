package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/1broseidon/deskgrid/internal/daemon"
	"github.com/1broseidon/deskgrid/internal/store"
)

type lookupResult struct {
	Icon    string `json:"icon"`
	Monitor string `json:"monitor"`
	Layout  uint64 `json:"layout"`
	Row     uint   `json:"row"`
	Col     uint   `json:"col"`
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	var monitors []string
	cmd := &cobra.Command{
		Use:   "lookup <icon>",
		Short: "Show where an icon is placed on the connected monitors",
		Long: `Bind the stored layouts to the connected monitors the same way the
watcher does, then report which monitor and cell the icon resolves to.
Nothing is written.`,
		Example: `  # Ask the X server for monitors
  deskgrid lookup file:///home/me/Desktop/notes.desktop

  # Headless, with an explicit monitor set (trailing * marks the primary)
  deskgrid lookup trash --monitor 'DP-1=1920x1080+0+0*' --monitor HDMI-1=1280x1024+1920+0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(rootOpts, cmd, args[0], monitors)
		},
	}
	cmd.Flags().StringArrayVar(&monitors, "monitor", nil, "monitor as ID=WxH+X+Y[*] (repeatable)")
	return cmd
}

func runLookup(opts *RootOptions, cmd *cobra.Command, icon string, specs []string) error {
	env, err := opts.loadEnv(cmd)
	if err != nil {
		return err
	}
	provider, closer, err := env.provider(specs)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	st, err := env.openStore(nil)
	if err != nil {
		return err
	}

	guard := daemon.NewGuarded(st)
	watcher := daemon.NewWatcher(daemon.WatcherConfig{Logger: env.logger}, provider, guard)
	if err := watcher.Poll(); err != nil {
		return WrapExitError(ExitCommandError, "failed to bind monitors", err)
	}

	var (
		p     store.Placement
		found bool
	)
	_ = guard.Do(func(s *store.Store) error {
		p, found = s.Lookup(icon)
		return nil
	})

	f := formatter(opts, cmd)
	if !found {
		_ = f.Error("E_NOT_FOUND", fmt.Sprintf("icon %q has no position on the connected monitors", icon), nil)
		return NewExitError(ExitFailure, "icon not found")
	}

	res := lookupResult{Icon: icon, Monitor: p.Monitor.ID, Layout: uint64(p.Config), Row: p.Row, Col: p.Col}
	return f.Success(res, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s: monitor %s, layout %d, row %d, col %d\n", res.Icon, res.Monitor, res.Layout, res.Row, res.Col)
		return err
	})
}
