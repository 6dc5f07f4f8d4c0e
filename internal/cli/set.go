package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/1broseidon/deskgrid/internal/store"
)

type setResult struct {
	Icon     string `json:"icon"`
	Layout   uint64 `json:"layout"`
	Row      uint   `json:"row"`
	Col      uint   `json:"col"`
	LastSeen uint64 `json:"last_seen,omitempty"`
	File     string `json:"file"`
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	var res setResult
	cmd := &cobra.Command{
		Use:   "set <icon>",
		Short: "Store an icon position in a layout",
		Long: `Store an icon's grid cell in one layout and write the file. The icon is
dropped from every other layout of the same or a weaker level.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res.Icon = args[0]
			return runSet(rootOpts, cmd, res)
		},
	}
	cmd.Flags().Uint64Var(&res.Layout, "layout", 0, "layout id (see show)")
	cmd.Flags().UintVar(&res.Row, "row", 0, "grid row")
	cmd.Flags().UintVar(&res.Col, "col", 0, "grid column")
	cmd.Flags().Uint64Var(&res.LastSeen, "last-seen", 0, "unix time a removable volume was last seen")
	_ = cmd.MarkFlagRequired("layout")
	_ = cmd.MarkFlagRequired("row")
	_ = cmd.MarkFlagRequired("col")
	return cmd
}

func runSet(opts *RootOptions, cmd *cobra.Command, res setResult) error {
	env, err := opts.loadEnv(cmd)
	if err != nil {
		return err
	}
	st, err := env.openStore(nil)
	if err != nil {
		return err
	}

	f := formatter(opts, cmd)
	if err := st.SetIconPosition(store.ConfigID(res.Layout), res.Icon, res.Row, res.Col, res.LastSeen); err != nil {
		if errors.Is(err, store.ErrUnknownConfig) {
			_ = f.Error("E_NO_LAYOUT", fmt.Sprintf("no layout %d (see deskgrid show)", res.Layout), nil)
			return NewExitError(ExitCommandError, "unknown layout")
		}
		return err
	}
	if err := st.Save(); err != nil {
		return WrapExitError(ExitFailure, "failed to save icon positions", err)
	}

	res.File = st.Path()
	return f.Success(res, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s -> layout %d, row %d, col %d\n", res.Icon, res.Layout, res.Row, res.Col)
		return err
	})
}
