package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/1broseidon/deskgrid/internal/codec"
)

type validateResult struct {
	Valid   bool   `json:"valid"`
	File    string `json:"file"`
	Layouts int    `json:"layouts"`
	Icons   int    `json:"icons"`
}

type parseDetails struct {
	Line   int    `json:"line"`
	Column int    `json:"column"`
	State  string `json:"state"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check an icon positions file",
		Long: `Parse an icon positions file and report the first error with its line
and column. Defaults to the configured positions file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd, args)
		},
	}
}

func runValidate(opts *RootOptions, cmd *cobra.Command, args []string) error {
	f := formatter(opts, cmd)

	var path string
	switch {
	case len(args) == 1:
		path = args[0]
	case opts.File != "":
		path = opts.File
	default:
		env, err := opts.loadEnv(cmd)
		if err != nil {
			return err
		}
		path = env.cfg.PositionsFile
	}

	cfgs, err := codec.ReadFile(path)
	if err != nil {
		var perr *codec.ParseError
		if errors.As(err, &perr) {
			_ = f.Error("E_PARSE", err.Error(), parseDetails{Line: perr.Line, Column: perr.Column, State: perr.State})
			return NewExitError(ExitFailure, "invalid icon positions file")
		}
		code := "E_READ"
		if errors.Is(err, fs.ErrNotExist) {
			code = "E_NOT_FOUND"
		}
		_ = f.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot read icon positions file", err)
	}

	res := validateResult{Valid: true, File: path, Layouts: len(cfgs)}
	for _, cfg := range cfgs {
		res.Icons += len(cfg.Icons)
	}
	return f.Success(res, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ %s is valid (%d layouts, %d icons)\n", res.File, res.Layouts, res.Icons)
		return err
	})
}
