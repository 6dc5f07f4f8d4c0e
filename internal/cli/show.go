package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/deskgrid/internal/store"
)

type monitorView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Geometry string `json:"geometry"`
}

type iconView struct {
	Icon     string `json:"icon"`
	Row      uint   `json:"row"`
	Col      uint   `json:"col"`
	LastSeen uint64 `json:"last_seen,omitempty"`
}

type layoutView struct {
	Layout   uint64        `json:"layout"`
	Level    string        `json:"level"`
	Monitors []monitorView `json:"monitors"`
	Icons    []iconView    `json:"icons"`
}

type showResult struct {
	Path    string       `json:"path"`
	Layouts []layoutView `json:"layouts"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	var icons bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "List stored layouts",
		Long: `List the stored layouts in priority order with the monitors each one
remembers. Pass --icons to list every stored icon position as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, cmd, icons)
		},
	}
	cmd.Flags().BoolVar(&icons, "icons", false, "list icon positions")
	return cmd
}

func runShow(opts *RootOptions, cmd *cobra.Command, icons bool) error {
	env, err := opts.loadEnv(cmd)
	if err != nil {
		return err
	}
	st, err := env.openStore(nil)
	if err != nil {
		return err
	}

	res := showResult{Path: st.Path(), Layouts: layoutViews(st.Configurations())}
	return formatter(opts, cmd).Success(res, func(w io.Writer) error {
		return renderShow(w, res, icons)
	})
}

func layoutViews(infos []store.Info) []layoutView {
	out := make([]layoutView, 0, len(infos))
	for _, info := range infos {
		v := layoutView{
			Layout:   uint64(info.ID),
			Level:    info.Config.Level.String(),
			Monitors: make([]monitorView, 0, len(info.Config.Monitors)),
			Icons:    make([]iconView, 0, len(info.Config.Icons)),
		}
		for id, rec := range info.Config.Monitors {
			v.Monitors = append(v.Monitors, monitorView{ID: id, Name: rec.DisplayName, Geometry: rec.Geometry.String()})
		}
		sort.Slice(v.Monitors, func(i, j int) bool { return v.Monitors[i].ID < v.Monitors[j].ID })
		for id, pos := range info.Config.Icons {
			v.Icons = append(v.Icons, iconView{Icon: id, Row: pos.Row, Col: pos.Col, LastSeen: pos.LastSeen})
		}
		sort.Slice(v.Icons, func(i, j int) bool { return v.Icons[i].Icon < v.Icons[j].Icon })
		out = append(out, v)
	}
	return out
}

func renderShow(w io.Writer, res showResult, icons bool) error {
	if len(res.Layouts) == 0 {
		_, err := fmt.Fprintf(w, "No layouts stored in %s\n", res.Path)
		return err
	}

	t := newTable(w)
	t.row("LAYOUT", "LEVEL", "MONITORS", "ICONS")
	for _, l := range res.Layouts {
		mons := make([]string, len(l.Monitors))
		for i, m := range l.Monitors {
			mons[i] = fmt.Sprintf("%s %s", m.ID, m.Geometry)
		}
		t.row(l.Layout, l.Level, strings.Join(mons, ", "), len(l.Icons))
	}
	if err := t.flush(); err != nil {
		return err
	}
	if !icons {
		return nil
	}

	fmt.Fprintln(w)
	t = newTable(w)
	t.row("LAYOUT", "ICON", "ROW", "COL", "LAST SEEN")
	for _, l := range res.Layouts {
		for _, ic := range l.Icons {
			seen := "-"
			if ic.LastSeen != 0 {
				seen = fmt.Sprint(ic.LastSeen)
			}
			t.row(l.Layout, ic.Icon, ic.Row, ic.Col, seen)
		}
	}
	return t.flush()
}
